// Package ratelimit bounds admissions per client key in fixed windows.
package ratelimit

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/Raj-Randive/soar-school-management-system/pkg/util/errorutil"
)

// Decision is the outcome of one admission attempt.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Store keeps per-key window counters. Take must check and increment
// atomically: an attempt that would exceed max is rejected and not counted.
type Store interface {
	Take(ctx context.Context, key string, window time.Duration, max int) (Decision, error)
}

// KeyFunc derives the client key for a request.
type KeyFunc func(c *fiber.Ctx) string

// ClientIP keys requests by network address.
func ClientIP(c *fiber.Ctx) string {
	ip := c.IP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

// Limiter is one endpoint group's window. Groups never share counters: keys
// are namespaced by the limiter name.
type Limiter struct {
	name   string
	window time.Duration
	max    int
	store  Store
	keyFn  KeyFunc
	logger *zap.Logger
}

// New builds a limiter admitting max attempts per window for each client key.
func New(name string, window time.Duration, max int, store Store, logger *zap.Logger) (*Limiter, error) {
	if name == "" {
		return nil, errors.New("ratelimit: name is required")
	}
	if window <= 0 || max <= 0 {
		return nil, errors.New("ratelimit: window and max must be positive")
	}
	if store == nil {
		return nil, errors.New("ratelimit: store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{name: name, window: window, max: max, store: store, keyFn: ClientIP, logger: logger}, nil
}

// Name returns the endpoint group name.
func (l *Limiter) Name() string { return l.name }

// Window returns the window length.
func (l *Limiter) Window() time.Duration { return l.window }

// Max returns the admissions allowed per window.
func (l *Limiter) Max() int { return l.max }

// Admit records one attempt for clientKey.
func (l *Limiter) Admit(ctx context.Context, clientKey string) (Decision, error) {
	return l.store.Take(ctx, l.name+":"+clientKey, l.window, l.max)
}

// Handler rejects over-limit requests with 429 before any later stage runs.
// Store failures are logged and the request is admitted.
func (l *Limiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := l.keyFn(c)
		decision, err := l.Admit(c.UserContext(), key)
		if err != nil {
			l.logger.Warn("rate limit store unavailable", zap.String("group", l.name), zap.Error(err))
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			secs := int(math.Ceil(decision.RetryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
			l.logger.Debug("rate limited", zap.String("group", l.name), zap.String("key", key))
			return apperrors.NewRateLimited(decision.RetryAfter.Milliseconds())
		}
		return c.Next()
	}
}

package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Raj-Randive/soar-school-management-system/internal/service"
)

// Sweeper drops expired state on demand.
type Sweeper interface {
	Sweep() int
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartSweeper runs s.Sweep every interval until ctx is done.
func StartSweeper(ctx context.Context, s Sweeper, interval time.Duration, logger *zap.Logger) {
	if s == nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 && logger != nil {
					logger.Debug("swept expired rate windows", zap.Int("count", n))
				}
			}
		}
	}()
}

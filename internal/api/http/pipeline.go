package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/Raj-Randive/soar-school-management-system/internal/auth"
	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
	"github.com/Raj-Randive/soar-school-management-system/internal/ratelimit"
	"github.com/Raj-Randive/soar-school-management-system/internal/validation"
)

// Route declares one endpoint. Stages run in a fixed order: the named rate
// limiter, the access guard when Roles is non-empty, validation when Rules is
// non-empty, then Handler. A rejecting stage ends the request.
type Route struct {
	Method  string
	Path    string
	Limiter string
	Roles   []domain.Role
	Rules   []validation.Rule
	Handler fiber.Handler
}

// RouteModule is a group of routes mounted under one prefix.
type RouteModule struct {
	Prefix string
	Routes []Route
}

// Pipeline mounts routes onto a router with their admission stages.
type Pipeline struct {
	router   fiber.Router
	guard    *auth.AccessGuard
	limiters map[string]*ratelimit.Limiter
}

// NewPipeline builds a pipeline. Limiters are addressed by name.
func NewPipeline(router fiber.Router, guard *auth.AccessGuard, limiters ...*ratelimit.Limiter) (*Pipeline, error) {
	if router == nil {
		return nil, errors.New("pipeline: router is required")
	}
	byName := make(map[string]*ratelimit.Limiter, len(limiters))
	for _, l := range limiters {
		if _, dup := byName[l.Name()]; dup {
			return nil, fmt.Errorf("pipeline: duplicate limiter %q", l.Name())
		}
		byName[l.Name()] = l
	}
	return &Pipeline{router: router, guard: guard, limiters: byName}, nil
}

// Stages returns the handler chain for r.
func (p *Pipeline) Stages(r Route) ([]fiber.Handler, error) {
	if r.Handler == nil {
		return nil, fmt.Errorf("%s %s: no handler", r.Method, r.Path)
	}
	stages := make([]fiber.Handler, 0, 4)
	if r.Limiter != "" {
		l, ok := p.limiters[r.Limiter]
		if !ok {
			return nil, fmt.Errorf("%s %s: unknown limiter %q", r.Method, r.Path, r.Limiter)
		}
		stages = append(stages, l.Handler())
	}
	if len(r.Roles) > 0 {
		if p.guard == nil {
			return nil, fmt.Errorf("%s %s: roles declared without an access guard", r.Method, r.Path)
		}
		stages = append(stages, p.guard.Handle(r.Roles...))
	}
	if len(r.Rules) > 0 {
		stages = append(stages, validation.Handler(r.Rules))
	}
	return append(stages, r.Handler), nil
}

// Mount registers routes under prefix. Either every route mounts or none does.
func (p *Pipeline) Mount(prefix string, routes []Route) error {
	chains := make([][]fiber.Handler, len(routes))
	for i, r := range routes {
		stages, err := p.Stages(r)
		if err != nil {
			return fmt.Errorf("mount %s: %w", prefix, err)
		}
		chains[i] = stages
	}

	group := p.router.Group(prefix)
	for i, r := range routes {
		group.Add(r.Method, r.Path, chains[i]...)
	}
	return nil
}

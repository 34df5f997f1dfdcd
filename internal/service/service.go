// Package service holds the school management use cases. Services return
// DomainErrors so the HTTP layer can render them without translation.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Raj-Randive/soar-school-management-system/internal/events"
	"github.com/Raj-Randive/soar-school-management-system/internal/repository"
	apperrors "github.com/Raj-Randive/soar-school-management-system/pkg/util/errorutil"
)

// publisher emits events when a dispatcher is configured.
type publisher struct {
	dispatcher events.Dispatcher
}

func (p publisher) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	_ = p.dispatcher.Publish(ctx, event)
}

// notFound maps a repository miss onto a 404 for resource; other errors pass through.
func notFound(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource)
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmedOrNil(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

// setIfNonEmpty assigns a trimmed non-empty replacement.
func setIfNonEmpty(dst *string, src *string) {
	if v := trimmedOrNil(src); v != nil {
		*dst = *v
	}
}

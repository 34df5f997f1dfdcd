// Package handlers implements the terminal stage of each route. Requests
// reaching a handler have already passed rate limiting, the access guard and
// validation.
package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/Raj-Randive/soar-school-management-system/internal/auth"
	"github.com/Raj-Randive/soar-school-management-system/internal/events"
	"github.com/Raj-Randive/soar-school-management-system/internal/validation"
	apperrors "github.com/Raj-Randive/soar-school-management-system/pkg/util/errorutil"
)

func actorFrom(c *fiber.Ctx) events.Actor {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return events.Actor{}
	}
	return events.Actor{UserID: claims.ID, Role: claims.Role}
}

// param copies a route parameter out of the request buffer, which fasthttp
// reuses once the handler returns.
func param(c *fiber.Ctx, name string) string {
	return utils.CopyString(c.Params(name))
}

func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewBadRequest("Invalid request body")
	}
	return nil
}

func optionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := validation.ParseDate(strings.TrimSpace(*raw))
	if err != nil {
		return nil, apperrors.NewValidationFailed([]apperrors.FieldError{{Field: field, Message: "Invalid date"}})
	}
	return &t, nil
}

func stringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

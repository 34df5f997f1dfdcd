package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
	apperrors "github.com/Raj-Randive/soar-school-management-system/pkg/util/errorutil"
)

const claimsKey = "auth_claims"

// TokenVerifier decodes session tokens.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// AccessGuard admits requests carrying a valid token whose role is allowed.
// It holds no mutable state and is safe for concurrent use.
type AccessGuard struct {
	tokens TokenVerifier
}

// NewAccessGuard constructs the guard.
func NewAccessGuard(tokens TokenVerifier) *AccessGuard {
	return &AccessGuard{tokens: tokens}
}

// Authorize decides admission from a raw Authorization header value.
// A missing token and an invalid token are both 401; a disallowed role is 403.
func (g *AccessGuard) Authorize(authHeader string, allowed RoleSet) (*Claims, error) {
	token, present := bearerToken(authHeader)
	if !present {
		return nil, apperrors.NewUnauthorized("Unauthorized")
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.NewUnauthorized("Invalid token")
	}

	if !allowed.Contains(claims.Role) {
		return nil, apperrors.NewForbidden("Forbidden")
	}
	return claims, nil
}

// Handle enforces authentication and role membership for protected routes.
func (g *AccessGuard) Handle(roles ...domain.Role) fiber.Handler {
	allowed := NewRoleSet(roles...)
	return func(c *fiber.Ctx) error {
		claims, err := g.Authorize(c.Get(fiber.HeaderAuthorization), allowed)
		if err != nil {
			return err
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// ClaimsFromContext retrieves the claims attached by the guard.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}

// bearerToken returns the token part of the header. A non-bearer scheme yields
// the raw value so it fails verification rather than reading as absent.
func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		if strings.EqualFold(header, "Bearer") {
			return "", false
		}
		return header, true
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return header, true
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Raj-Randive/soar-school-management-system/internal/api/dto"
	"github.com/Raj-Randive/soar-school-management-system/internal/auth"
	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
	"github.com/Raj-Randive/soar-school-management-system/internal/service"
	apperrors "github.com/Raj-Randive/soar-school-management-system/pkg/util/errorutil"
)

// AuthHandler exposes account endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		SchoolID: req.SchoolID,
	})
	if err != nil {
		return err
	}
	return dto.Created(c, "User registered successfully", dto.NewUserResponse(user))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return dto.OK(c, "Login successful", dto.LoginResponse{
		Token:     res.Token,
		Role:      res.User.Role,
		ExpiresAt: res.ExpiresAt,
	})
}

// Logout handles POST /api/auth/logout. Tokens are discarded client side.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext(), c.Get(fiber.HeaderAuthorization)); err != nil {
		return err
	}
	return dto.OK(c, "Logged out successfully", nil)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthorized")
	}
	resp := dto.MeResponse{ID: claims.ID, Role: claims.Role}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		resp.ExpiresAt = &exp
	}
	return dto.OK(c, "Authenticated", resp)
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Raj-Randive/soar-school-management-system/internal/auth"
	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
	"github.com/Raj-Randive/soar-school-management-system/internal/events"
	"github.com/Raj-Randive/soar-school-management-system/internal/repository"
	apperrors "github.com/Raj-Randive/soar-school-management-system/pkg/util/errorutil"
)

// RegisterInput describes a new administrator account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	SchoolID *string
}

// LoginResult carries the issued session token.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	publisher
	users      repository.UserRepository
	schools    repository.SchoolRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	SchoolRepo repository.SchoolRepository
	Tokens     *auth.TokenManager
	BcryptCost int
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		publisher:  publisher{dispatcher: deps.Dispatcher},
		users:      deps.UserRepo,
		schools:    deps.SchoolRepo,
		tokens:     deps.Tokens,
		bcryptCost: deps.BcryptCost,
	}
}

// Register creates an administrator account. School administrators must name
// an existing school.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if !input.Role.Valid() {
		return nil, apperrors.NewBadRequest("Invalid role")
	}
	schoolID := trimmedOrNil(input.SchoolID)
	if input.Role == domain.RoleSchoolAdmin && schoolID == nil {
		return nil, apperrors.NewBadRequest("school_id is required for schooladmin users")
	}
	if schoolID != nil {
		if _, err := s.schools.GetByID(ctx, *schoolID); err != nil {
			return nil, notFound(err, "School")
		}
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        normalizeEmail(input.Email),
		PasswordHash: hash,
		Role:         input.Role,
		SchoolID:     schoolID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("Email already registered")
		}
		return nil, err
	}

	s.publish(ctx, events.New(events.EventUserRegistered, stringOrEmpty(schoolID), user.ID,
		events.Actor{UserID: user.ID, Role: user.Role},
		events.UserPayload{Email: user.Email, Role: user.Role, SchoolID: user.SchoolID}))
	return user, nil
}

// Login checks credentials and issues a session token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("Invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("Invalid credentials")
	}

	token, exp, err := s.tokens.Issue(auth.Subject{ID: user.ID, Role: user.Role})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// Logout is a no-op: tokens are stateless and expire on their own.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

func stringOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

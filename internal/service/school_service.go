package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
	"github.com/Raj-Randive/soar-school-management-system/internal/events"
	"github.com/Raj-Randive/soar-school-management-system/internal/repository"
	apperrors "github.com/Raj-Randive/soar-school-management-system/pkg/util/errorutil"
)

// SchoolInput describes a new school.
type SchoolInput struct {
	Name      string
	Address   string
	Phone     string
	Capacity  int
	Resources []string
	AdminID   *string
}

// SchoolUpdate carries optional changes; nil fields are left as they are.
type SchoolUpdate struct {
	Name       *string
	Address    *string
	Phone      *string
	Capacity   *int
	Resources  []string
	NewAdminID *string
}

// SchoolService manages schools.
type SchoolService struct {
	publisher
	schools repository.SchoolRepository
	users   repository.UserRepository
}

// NewSchoolService constructs the service.
func NewSchoolService(schools repository.SchoolRepository, users repository.UserRepository, dispatcher events.Dispatcher) *SchoolService {
	return &SchoolService{publisher: publisher{dispatcher: dispatcher}, schools: schools, users: users}
}

// List returns every school.
func (s *SchoolService) List(ctx context.Context) ([]domain.School, error) {
	return s.schools.List(ctx)
}

// Get returns one school.
func (s *SchoolService) Get(ctx context.Context, id string) (*domain.School, error) {
	school, err := s.schools.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "School")
	}
	return school, nil
}

// Create adds a school, optionally with its first administrator.
func (s *SchoolService) Create(ctx context.Context, actor events.Actor, input SchoolInput) (*domain.School, error) {
	school := &domain.School{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(input.Name),
		Address:   strings.TrimSpace(input.Address),
		Phone:     strings.TrimSpace(input.Phone),
		Capacity:  input.Capacity,
		Resources: append([]string{}, input.Resources...),
		AdminIDs:  []string{},
	}
	if adminID := trimmedOrNil(input.AdminID); adminID != nil {
		if err := s.requireAdmin(ctx, *adminID); err != nil {
			return nil, err
		}
		school.AdminIDs = append(school.AdminIDs, *adminID)
	}

	if err := s.schools.Create(ctx, school); err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.EventSchoolCreated, school.ID, school.ID, actor, schoolPayload(school)))
	return school, nil
}

// Update applies the provided changes. A new administrator is appended once;
// naming one already attached is rejected.
func (s *SchoolService) Update(ctx context.Context, actor events.Actor, id string, input SchoolUpdate) (*domain.School, error) {
	school, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	setIfNonEmpty(&school.Name, input.Name)
	setIfNonEmpty(&school.Address, input.Address)
	setIfNonEmpty(&school.Phone, input.Phone)
	if input.Capacity != nil {
		school.Capacity = *input.Capacity
	}
	if input.Resources != nil {
		school.Resources = append([]string{}, input.Resources...)
	}

	if adminID := trimmedOrNil(input.NewAdminID); adminID != nil {
		if err := s.requireAdmin(ctx, *adminID); err != nil {
			return nil, err
		}
		if school.HasAdmin(*adminID) {
			return nil, apperrors.NewBadRequest("Admin ID already exists in the school.")
		}
		school.AdminIDs = append(school.AdminIDs, *adminID)
	}

	if err := s.schools.Update(ctx, school); err != nil {
		return nil, notFound(err, "School")
	}
	s.publish(ctx, events.New(events.EventSchoolUpdated, school.ID, school.ID, actor, schoolPayload(school)))
	return school, nil
}

// Delete removes a school together with its classrooms and students.
func (s *SchoolService) Delete(ctx context.Context, actor events.Actor, id string) error {
	if err := s.schools.Delete(ctx, id); err != nil {
		return notFound(err, "School")
	}
	s.publish(ctx, events.New(events.EventSchoolDeleted, id, id, actor, nil))
	return nil
}

func (s *SchoolService) requireAdmin(ctx context.Context, userID string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return notFound(err, "Admin user")
	}
	return nil
}

func schoolPayload(school *domain.School) events.SchoolPayload {
	return events.SchoolPayload{Name: school.Name, Capacity: school.Capacity, AdminIDs: school.AdminIDs}
}

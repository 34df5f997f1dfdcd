package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
	"github.com/Raj-Randive/soar-school-management-system/internal/events"
	"github.com/Raj-Randive/soar-school-management-system/internal/repository"
	apperrors "github.com/Raj-Randive/soar-school-management-system/pkg/util/errorutil"
)

const duplicateClassroomMessage = "A classroom with the same name already exists in this school"

// ClassroomInput describes a new classroom.
type ClassroomInput struct {
	Name      string
	Capacity  int
	Resources []string
}

// ClassroomUpdate carries optional changes. Resources are merged into the
// existing list, never replacing it.
type ClassroomUpdate struct {
	Name      *string
	Capacity  *int
	Resources []string
}

// ClassroomService manages classrooms within schools.
type ClassroomService struct {
	publisher
	classrooms repository.ClassroomRepository
	schools    repository.SchoolRepository
}

// NewClassroomService constructs the service.
func NewClassroomService(classrooms repository.ClassroomRepository, schools repository.SchoolRepository, dispatcher events.Dispatcher) *ClassroomService {
	return &ClassroomService{publisher: publisher{dispatcher: dispatcher}, classrooms: classrooms, schools: schools}
}

// ListBySchool returns the classrooms of an existing school.
func (s *ClassroomService) ListBySchool(ctx context.Context, schoolID string) ([]domain.Classroom, error) {
	if _, err := s.schools.GetByID(ctx, schoolID); err != nil {
		return nil, notFound(err, "School")
	}
	return s.classrooms.ListBySchool(ctx, schoolID)
}

// Get returns one classroom.
func (s *ClassroomService) Get(ctx context.Context, id string) (*domain.Classroom, error) {
	c, err := s.classrooms.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Classroom")
	}
	return c, nil
}

// Create adds a classroom to a school.
func (s *ClassroomService) Create(ctx context.Context, actor events.Actor, schoolID string, input ClassroomInput) (*domain.Classroom, error) {
	if _, err := s.schools.GetByID(ctx, schoolID); err != nil {
		return nil, notFound(err, "School")
	}

	c := &domain.Classroom{
		ID:       uuid.NewString(),
		SchoolID: schoolID,
		Name:     strings.TrimSpace(input.Name),
		Capacity: input.Capacity,
	}
	c.MergeResources(input.Resources)

	if err := s.classrooms.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict(duplicateClassroomMessage)
		}
		return nil, notFound(err, "School")
	}
	s.publish(ctx, events.New(events.EventClassroomCreated, c.SchoolID, c.ID, actor,
		events.ClassroomPayload{Name: c.Name, Capacity: c.Capacity}))
	return c, nil
}

// Update applies the provided changes.
func (s *ClassroomService) Update(ctx context.Context, actor events.Actor, id string, input ClassroomUpdate) (*domain.Classroom, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	setIfNonEmpty(&c.Name, input.Name)
	if input.Capacity != nil && *input.Capacity > 0 {
		c.Capacity = *input.Capacity
	}
	if input.Resources != nil {
		c.MergeResources(input.Resources)
	}

	if err := s.classrooms.Update(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict(duplicateClassroomMessage)
		}
		return nil, notFound(err, "Classroom")
	}
	s.publish(ctx, events.New(events.EventClassroomUpdated, c.SchoolID, c.ID, actor,
		events.ClassroomPayload{Name: c.Name, Capacity: c.Capacity}))
	return c, nil
}

// Delete removes a classroom; its students stay enrolled without a seat.
func (s *ClassroomService) Delete(ctx context.Context, actor events.Actor, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.classrooms.Delete(ctx, id); err != nil {
		return notFound(err, "Classroom")
	}
	s.publish(ctx, events.New(events.EventClassroomDeleted, c.SchoolID, c.ID, actor, nil))
	return nil
}

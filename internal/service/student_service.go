package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
	"github.com/Raj-Randive/soar-school-management-system/internal/events"
	"github.com/Raj-Randive/soar-school-management-system/internal/repository"
	apperrors "github.com/Raj-Randive/soar-school-management-system/pkg/util/errorutil"
)

// StudentInput describes a new enrollment.
type StudentInput struct {
	Name           string
	Email          *string
	Phone          *string
	ClassroomID    *string
	EnrollmentDate *time.Time
	Status         *domain.StudentStatus
}

// StudentUpdate carries optional changes; nil fields are left as they are.
type StudentUpdate struct {
	Name           *string
	Email          *string
	Phone          *string
	ClassroomID    *string
	EnrollmentDate *time.Time
	Status         *domain.StudentStatus
}

// StudentService manages enrollments.
type StudentService struct {
	publisher
	students   repository.StudentRepository
	classrooms repository.ClassroomRepository
	schools    repository.SchoolRepository
	now        func() time.Time
}

// NewStudentService constructs the service.
func NewStudentService(students repository.StudentRepository, classrooms repository.ClassroomRepository, schools repository.SchoolRepository, dispatcher events.Dispatcher) *StudentService {
	return &StudentService{
		publisher:  publisher{dispatcher: dispatcher},
		students:   students,
		classrooms: classrooms,
		schools:    schools,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ListBySchool returns the students of an existing school.
func (s *StudentService) ListBySchool(ctx context.Context, schoolID string) ([]domain.Student, error) {
	if _, err := s.schools.GetByID(ctx, schoolID); err != nil {
		return nil, notFound(err, "School")
	}
	return s.students.ListBySchool(ctx, schoolID)
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, id string) (*domain.Student, error) {
	st, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Student")
	}
	return st, nil
}

// Enroll adds a student to a school, optionally seating them in one of its classrooms.
func (s *StudentService) Enroll(ctx context.Context, actor events.Actor, schoolID string, input StudentInput) (*domain.Student, error) {
	if _, err := s.schools.GetByID(ctx, schoolID); err != nil {
		return nil, notFound(err, "School")
	}

	classroomID := trimmedOrNil(input.ClassroomID)
	if classroomID != nil {
		if err := s.requireClassroomIn(ctx, *classroomID, schoolID, "Classroom does not belong to this school"); err != nil {
			return nil, err
		}
	}

	st := &domain.Student{
		ID:             uuid.NewString(),
		SchoolID:       schoolID,
		ClassroomID:    classroomID,
		Name:           strings.TrimSpace(input.Name),
		Phone:          trimmedOrNil(input.Phone),
		EnrollmentDate: s.now(),
		Status:         domain.StudentStatusActive,
	}
	if email := trimmedOrNil(input.Email); email != nil {
		normalized := normalizeEmail(*email)
		st.Email = &normalized
	}
	if input.EnrollmentDate != nil {
		st.EnrollmentDate = input.EnrollmentDate.UTC()
	}
	if input.Status != nil {
		st.Status = *input.Status
	}

	if err := s.students.Create(ctx, st); err != nil {
		return nil, studentWriteError(err)
	}
	s.publish(ctx, events.New(events.EventStudentEnrolled, st.SchoolID, st.ID, actor, studentPayload(st)))
	return st, nil
}

// Update applies the provided changes. A new classroom must belong to the
// student's school.
func (s *StudentService) Update(ctx context.Context, actor events.Actor, id string, input StudentUpdate) (*domain.Student, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if classroomID := trimmedOrNil(input.ClassroomID); classroomID != nil {
		if err := s.requireClassroomIn(ctx, *classroomID, st.SchoolID, "Classroom does not belong to the same school as the student"); err != nil {
			return nil, err
		}
		st.ClassroomID = classroomID
	}

	setIfNonEmpty(&st.Name, input.Name)
	if email := trimmedOrNil(input.Email); email != nil {
		normalized := normalizeEmail(*email)
		st.Email = &normalized
	}
	if phone := trimmedOrNil(input.Phone); phone != nil {
		st.Phone = phone
	}
	if input.EnrollmentDate != nil {
		st.EnrollmentDate = input.EnrollmentDate.UTC()
	}
	if input.Status != nil {
		st.Status = *input.Status
	}

	if err := s.students.Update(ctx, st); err != nil {
		return nil, studentWriteError(err)
	}
	s.publish(ctx, events.New(events.EventStudentUpdated, st.SchoolID, st.ID, actor, studentPayload(st)))
	return st, nil
}

// Deactivate marks a student inactive. Records are never removed.
func (s *StudentService) Deactivate(ctx context.Context, actor events.Actor, id string) (*domain.Student, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	st.Status = domain.StudentStatusInactive
	if err := s.students.Update(ctx, st); err != nil {
		return nil, studentWriteError(err)
	}
	s.publish(ctx, events.New(events.EventStudentDeactivated, st.SchoolID, st.ID, actor, studentPayload(st)))
	return st, nil
}

func (s *StudentService) requireClassroomIn(ctx context.Context, classroomID, schoolID, mismatch string) error {
	c, err := s.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		return notFound(err, "Classroom")
	}
	if c.SchoolID != schoolID {
		return apperrors.NewBadRequest(mismatch)
	}
	return nil
}

func studentWriteError(err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.NewConflict("Email already exists")
	}
	return notFound(err, "Student")
}

func studentPayload(st *domain.Student) events.StudentPayload {
	return events.StudentPayload{Name: st.Name, ClassroomID: st.ClassroomID, Status: st.Status}
}

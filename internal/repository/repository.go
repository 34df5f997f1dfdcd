// Package repository defines storage access for users, schools, classrooms
// and students, with a Postgres implementation over pgx.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
)

var (
	// ErrNotFound is returned when no record has the requested key.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a uniqueness constraint would be broken.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines persistence access for administrator accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// SchoolRepository manages schools.
type SchoolRepository interface {
	Create(ctx context.Context, school *domain.School) error
	Update(ctx context.Context, school *domain.School) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.School, error)
	List(ctx context.Context) ([]domain.School, error)
}

// ClassroomRepository manages classrooms. Names are unique per school.
type ClassroomRepository interface {
	Create(ctx context.Context, classroom *domain.Classroom) error
	Update(ctx context.Context, classroom *domain.Classroom) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Classroom, error)
	ListBySchool(ctx context.Context, schoolID string) ([]domain.Classroom, error)
}

// StudentRepository manages students. Emails are unique when present.
type StudentRepository interface {
	Create(ctx context.Context, student *domain.Student) error
	Update(ctx context.Context, student *domain.Student) error
	GetByID(ctx context.Context, id string) (*domain.Student, error)
	ListBySchool(ctx context.Context, schoolID string) ([]domain.Student, error)
}

// Repositories bundles one implementation of every repository.
type Repositories struct {
	Users      UserRepository
	Schools    SchoolRepository
	Classrooms ClassroomRepository
	Students   StudentRepository
}

// NewPostgresRepositories builds every repository over one pool.
func NewPostgresRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:      NewUserRepository(pool),
		Schools:    NewSchoolRepository(pool),
		Classrooms: NewClassroomRepository(pool),
		Students:   NewStudentRepository(pool),
	}
}

const (
	pgUniqueViolation     = "23505"
	pgInvalidTextRepr     = "22P02"
	pgForeignKeyViolation = "23503"
)

// mapError converts driver errors into the package sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicate
		case pgInvalidTextRepr, pgForeignKeyViolation:
			return ErrNotFound
		}
	}
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

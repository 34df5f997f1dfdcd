package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
)

type studentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository builds the repository.
func NewStudentRepository(pool *pgxpool.Pool) StudentRepository {
	return &studentRepository{pool: pool}
}

func (r *studentRepository) Create(ctx context.Context, s *domain.Student) error {
	const query = `
        INSERT INTO students (id, school_id, classroom_id, name, email, phone, enrollment_date, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		s.ID,
		s.SchoolID,
		s.ClassroomID,
		s.Name,
		s.Email,
		s.Phone,
		s.EnrollmentDate,
		string(s.Status),
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return mapError(err)
}

func (r *studentRepository) Update(ctx context.Context, s *domain.Student) error {
	const query = `
        UPDATE students SET classroom_id=$1, name=$2, email=$3, phone=$4, enrollment_date=$5, status=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		s.ClassroomID,
		s.Name,
		s.Email,
		s.Phone,
		s.EnrollmentDate,
		string(s.Status),
		s.ID,
	).Scan(&s.UpdatedAt)
	return mapError(err)
}

const selectStudent = `
        SELECT id, school_id, classroom_id, name, email, phone, enrollment_date, status, created_at, updated_at
        FROM students`

func scanStudent(row pgx.Row) (*domain.Student, error) {
	var (
		s      domain.Student
		status string
	)
	if err := row.Scan(
		&s.ID,
		&s.SchoolID,
		&s.ClassroomID,
		&s.Name,
		&s.Email,
		&s.Phone,
		&s.EnrollmentDate,
		&status,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.Status = domain.StudentStatus(status)
	return &s, nil
}

func (r *studentRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	s, err := scanStudent(r.pool.QueryRow(ctx, selectStudent+" WHERE id=$1", id))
	if err != nil {
		return nil, mapError(err)
	}
	return s, nil
}

func (r *studentRepository) ListBySchool(ctx context.Context, schoolID string) ([]domain.Student, error) {
	rows, err := r.pool.Query(ctx, selectStudent+" WHERE school_id=$1 ORDER BY name", schoolID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	students := make([]domain.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *s)
	}
	return students, mapError(rows.Err())
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
)

type classroomRepository struct {
	pool *pgxpool.Pool
}

// NewClassroomRepository builds the repository.
func NewClassroomRepository(pool *pgxpool.Pool) ClassroomRepository {
	return &classroomRepository{pool: pool}
}

func (r *classroomRepository) Create(ctx context.Context, c *domain.Classroom) error {
	const query = `
        INSERT INTO classrooms (id, school_id, name, capacity, resources)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		c.ID,
		c.SchoolID,
		c.Name,
		c.Capacity,
		nonNil(c.Resources),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return mapError(err)
}

func (r *classroomRepository) Update(ctx context.Context, c *domain.Classroom) error {
	const query = `
        UPDATE classrooms SET name=$1, capacity=$2, resources=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		c.Name,
		c.Capacity,
		nonNil(c.Resources),
		c.ID,
	).Scan(&c.UpdatedAt)
	return mapError(err)
}

func (r *classroomRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM classrooms WHERE id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const selectClassroom = `
        SELECT id, school_id, name, capacity, resources, created_at, updated_at
        FROM classrooms`

func scanClassroom(row pgx.Row) (*domain.Classroom, error) {
	var c domain.Classroom
	if err := row.Scan(
		&c.ID,
		&c.SchoolID,
		&c.Name,
		&c.Capacity,
		&c.Resources,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *classroomRepository) GetByID(ctx context.Context, id string) (*domain.Classroom, error) {
	c, err := scanClassroom(r.pool.QueryRow(ctx, selectClassroom+" WHERE id=$1", id))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (r *classroomRepository) ListBySchool(ctx context.Context, schoolID string) ([]domain.Classroom, error) {
	rows, err := r.pool.Query(ctx, selectClassroom+" WHERE school_id=$1 ORDER BY name", schoolID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	classrooms := make([]domain.Classroom, 0)
	for rows.Next() {
		c, err := scanClassroom(rows)
		if err != nil {
			return nil, err
		}
		classrooms = append(classrooms, *c)
	}
	return classrooms, mapError(rows.Err())
}

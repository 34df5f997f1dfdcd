package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Raj-Randive/soar-school-management-system/internal/domain"
)

type schoolRepository struct {
	pool *pgxpool.Pool
}

// NewSchoolRepository builds the repository.
func NewSchoolRepository(pool *pgxpool.Pool) SchoolRepository {
	return &schoolRepository{pool: pool}
}

func (r *schoolRepository) Create(ctx context.Context, school *domain.School) error {
	const query = `
        INSERT INTO schools (id, name, address, phone, admin_ids, capacity, resources)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		school.ID,
		school.Name,
		school.Address,
		school.Phone,
		nonNil(school.AdminIDs),
		school.Capacity,
		nonNil(school.Resources),
	).Scan(&school.CreatedAt, &school.UpdatedAt)
	return mapError(err)
}

func (r *schoolRepository) Update(ctx context.Context, school *domain.School) error {
	const query = `
        UPDATE schools SET name=$1, address=$2, phone=$3, admin_ids=$4, capacity=$5, resources=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		school.Name,
		school.Address,
		school.Phone,
		nonNil(school.AdminIDs),
		school.Capacity,
		nonNil(school.Resources),
		school.ID,
	).Scan(&school.UpdatedAt)
	return mapError(err)
}

func (r *schoolRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM schools WHERE id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const selectSchool = `
        SELECT id, name, address, phone, admin_ids, capacity, resources, created_at, updated_at
        FROM schools`

func scanSchool(row pgx.Row) (*domain.School, error) {
	var s domain.School
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Address,
		&s.Phone,
		&s.AdminIDs,
		&s.Capacity,
		&s.Resources,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *schoolRepository) GetByID(ctx context.Context, id string) (*domain.School, error) {
	s, err := scanSchool(r.pool.QueryRow(ctx, selectSchool+" WHERE id=$1", id))
	if err != nil {
		return nil, mapError(err)
	}
	return s, nil
}

func (r *schoolRepository) List(ctx context.Context) ([]domain.School, error) {
	rows, err := r.pool.Query(ctx, selectSchool+" ORDER BY created_at")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	schools := make([]domain.School, 0)
	for rows.Next() {
		s, err := scanSchool(rows)
		if err != nil {
			return nil, err
		}
		schools = append(schools, *s)
	}
	return schools, mapError(rows.Err())
}

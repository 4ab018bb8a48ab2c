package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/courier-service/internal/domain"
)

type roleRepository struct {
	db DB
}

// NewRoleRepository returns a Postgres-backed implementation.
func NewRoleRepository(db DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *domain.Role) error {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx, `INSERT INTO roles (id, name) VALUES ($1,$2)`, role.ID, role.Name)
	return err
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	var role domain.Role
	if err := r.db.QueryRow(ctx, `SELECT id, name FROM roles WHERE id=$1`, id).Scan(&role.ID, &role.Name); err != nil {
		return nil, notFoundIfNoRows(err)
	}
	return &role, nil
}

func (r *roleRepository) GetByName(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	var role domain.Role
	if err := r.db.QueryRow(ctx, `SELECT id, name FROM roles WHERE name=$1`, name).Scan(&role.ID, &role.Name); err != nil {
		return nil, notFoundIfNoRows(err)
	}
	return &role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Role{}
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		result = append(result, role)
	}
	return result, rows.Err()
}

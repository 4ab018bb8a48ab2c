package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/courier-service/internal/domain"
)

const userEmailConstraint = "users_email_lower_key"

const userColumns = `u.id, u.name, u.email, u.phone, u.role_id, COALESCE(r.name, ''), u.branch_id, u.active, u.password_hash, u.created_at`

const userSelect = `SELECT ` + userColumns + ` FROM users u LEFT JOIN roles r ON r.id = u.role_id`

type userRepository struct {
	db DB
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, name, email, phone, role_id, branch_id, active, password_hash, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Phone,
		user.RoleID,
		user.BranchID,
		user.Active,
		user.PasswordHash,
		user.CreatedAt,
	)
	if isUniqueViolation(err, userEmailConstraint) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=$2, phone=$3, role_id=$4, branch_id=$5, active=$6, password_hash=$7
        WHERE id=$8`

	cmd, err := r.db.Exec(ctx, query,
		user.Name,
		user.Email,
		user.Phone,
		user.RoleID,
		user.BranchID,
		user.Active,
		user.PasswordHash,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err, userEmailConstraint) {
			return ErrDuplicateEmail
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, userSelect+` WHERE u.id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, userSelect+` WHERE LOWER(u.email)=LOWER($1)`, domain.NormalizeEmail(email))
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.fetchMany(ctx, userSelect+` ORDER BY u.created_at DESC, u.id`)
}

func (r *userRepository) ListActiveByRole(ctx context.Context, role domain.RoleName) ([]domain.User, error) {
	return r.fetchMany(ctx, userSelect+` WHERE r.name=$1 AND u.active ORDER BY u.name`, role)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.db.QueryRow(ctx, query, arg).Scan(userTargets(&user)...); err != nil {
		return nil, notFoundIfNoRows(err)
	}
	user.CreatedAt = NormalizeUTC(user.CreatedAt)
	return &user, nil
}

func (r *userRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.User{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(userTargets(&user)...); err != nil {
			return nil, err
		}
		user.CreatedAt = NormalizeUTC(user.CreatedAt)
		result = append(result, user)
	}
	return result, rows.Err()
}

func userTargets(user *domain.User) []any {
	return []any{
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.RoleID,
		&user.RoleName,
		&user.BranchID,
		&user.Active,
		&user.PasswordHash,
		&user.CreatedAt,
	}
}

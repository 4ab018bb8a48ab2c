package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/courier-service/internal/auth"
	"github.com/spec-kit/courier-service/internal/config"
	"github.com/spec-kit/courier-service/internal/domain"
	"github.com/spec-kit/courier-service/internal/repository"
	apperrors "github.com/spec-kit/courier-service/pkg/util/errorutil"
)

// UserService manages staff accounts and the role catalog.
type UserService struct {
	users      repository.UserRepository
	roles      repository.RoleRepository
	branches   repository.BranchRepository
	bcryptCost int
	logger     *zap.Logger
}

// UserDependencies encapsulates repositories required for user management.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	RoleRepo   repository.RoleRepository
	BranchRepo repository.BranchRepository
	Logger     *zap.Logger
}

// UserCreateInput describes a new staff account.
type UserCreateInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	RoleID   string
	BranchID *string
	Active   *bool
}

// UserUpdateInput is a partial update; nil fields are left untouched.
type UserUpdateInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Password *string
	RoleID   *string
	BranchID *string
	Active   *bool
}

// NewUserService constructs the service.
func NewUserService(cfg config.Config, deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		roles:      deps.RoleRepo,
		branches:   deps.BranchRepo,
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	return users, apperrors.MapError(err)
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return user, nil
}

// Create stores a new account with a hashed password.
func (s *UserService) Create(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	user := &domain.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    domain.NormalizeEmail(input.Email),
		Phone:    strings.TrimSpace(input.Phone),
		RoleID:   strings.TrimSpace(input.RoleID),
		BranchID: trimmedOrNil(input.BranchID),
		Active:   true,
	}
	if input.Active != nil {
		user.Active = *input.Active
	}

	if missing := missingFields(
		field{"name", user.Name},
		field{"email", user.Email},
		field{"password", input.Password},
		field{"role_id", user.RoleID},
	); len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	if err := s.checkAssignments(ctx, user); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash

	if err := s.users.Create(ctx, user); err != nil {
		return nil, conflictOnDuplicate(err, user.Email)
	}
	s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.RoleName)))
	return user, nil
}

// Update applies a partial update. The password is re-hashed only when given.
func (s *UserService) Update(ctx context.Context, id string, input UserUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user", id)
	}

	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			user.Name = name
		}
	}
	if input.Email != nil {
		if email := domain.NormalizeEmail(*input.Email); email != "" {
			user.Email = email
		}
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.RoleID != nil {
		if roleID := strings.TrimSpace(*input.RoleID); roleID != "" {
			user.RoleID = roleID
		}
	}
	if input.BranchID != nil {
		user.BranchID = trimmedOrNil(input.BranchID)
	}
	if input.Active != nil {
		user.Active = *input.Active
	}
	if err := s.checkAssignments(ctx, user); err != nil {
		return nil, err
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(err, "user", id)
		}
		return nil, conflictOnDuplicate(err, user.Email)
	}
	return user, nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return notFound(err, "user", id)
	}
	s.logger.Info("user deleted", zap.String("user_id", id))
	return nil
}

func (s *UserService) checkAssignments(ctx context.Context, user *domain.User) error {
	if _, err := s.roles.GetByID(ctx, user.RoleID); err != nil {
		return missingReference(err, "role_id", user.RoleID, "role")
	}
	if user.BranchID != nil {
		if _, err := s.branches.GetByID(ctx, *user.BranchID); err != nil {
			return missingReference(err, "branch_id", *user.BranchID, "branch")
		}
	}
	return nil
}

// ListRoles returns the role catalog.
func (s *UserService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.roles.List(ctx)
	return roles, apperrors.MapError(err)
}

// ListOperators returns the active Logistics Operators.
func (s *UserService) ListOperators(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListActiveByRole(ctx, domain.RoleOperator)
	return users, apperrors.MapError(err)
}

// ListCouriers returns the active Couriers.
func (s *UserService) ListCouriers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListActiveByRole(ctx, domain.RoleCourier)
	return users, apperrors.MapError(err)
}

// OperatorPhone returns the first active operator's phone number, or an
// empty string when none is on file.
func (s *UserService) OperatorPhone(ctx context.Context) (string, error) {
	operators, err := s.ListOperators(ctx)
	if err != nil {
		return "", err
	}
	for _, op := range operators {
		if op.Phone != "" {
			return op.Phone, nil
		}
	}
	return "", nil
}

// EnsureRoles creates any catalog role that is missing.
func (s *UserService) EnsureRoles(ctx context.Context) error {
	for _, name := range domain.RoleCatalog() {
		_, err := s.roles.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := s.roles.Create(ctx, &domain.Role{Name: name}); err != nil {
			return err
		}
		s.logger.Info("role seeded", zap.String("role", string(name)))
	}
	return nil
}

// EnsureSeedAdmin creates the configured administrator account once.
func (s *UserService) EnsureSeedAdmin(ctx context.Context, seed config.SeedAdminConfig) error {
	if !seed.Enabled() {
		return nil
	}
	email := domain.NormalizeEmail(seed.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	role, err := s.roles.GetByName(ctx, domain.RoleAdministrator)
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(seed.Password, s.bcryptCost)
	if err != nil {
		return err
	}
	user := &domain.User{
		Name:         seed.Name,
		Email:        email,
		RoleID:       role.ID,
		Active:       true,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	s.logger.Info("seed administrator created", zap.String("email", email))
	return nil
}

func conflictOnDuplicate(err error, email string) error {
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return apperrors.NewConflict("email already registered", map[string]any{"email": email})
	}
	return apperrors.MapError(err)
}

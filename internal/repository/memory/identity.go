package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/spec-kit/courier-service/internal/domain"
	"github.com/spec-kit/courier-service/internal/repository"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(user.Email, "") {
		return repository.ErrDuplicateEmail
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now().UTC()
	}
	user.RoleName = s.roleName(user.RoleID)
	s.users = append(s.users, cloneUser(*user))
	return nil
}

func (r *userRepository) Update(_ context.Context, user *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findUser(user.ID)
	if idx < 0 {
		return repository.ErrNotFound
	}
	if s.emailTaken(user.Email, user.ID) {
		return repository.ErrDuplicateEmail
	}
	user.RoleName = s.roleName(user.RoleID)
	user.CreatedAt = s.users[idx].CreatedAt
	stored := cloneUser(*user)
	stored.ID = s.users[idx].ID
	s.users[idx] = stored
	return nil
}

func (r *userRepository) Delete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findUser(id)
	if idx < 0 {
		return repository.ErrNotFound
	}
	s.users = append(s.users[:idx], s.users[idx+1:]...)
	for i := range s.packages {
		pkg := &s.packages[i]
		if pkg.OperatorID != nil && *pkg.OperatorID == id {
			pkg.OperatorID = nil
		}
		if pkg.CourierID != nil && *pkg.CourierID == id {
			pkg.CourierID = nil
		}
	}
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.findUser(id)
	if idx < 0 {
		return nil, repository.ErrNotFound
	}
	user := s.resolvedUser(idx)
	return &user, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := domain.NormalizeEmail(email)
	for i := range s.users {
		if domain.NormalizeEmail(s.users[i].Email) == want {
			user := s.resolvedUser(i)
			return &user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) List(_ context.Context) ([]domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.User, 0, len(s.users))
	for i := len(s.users) - 1; i >= 0; i-- {
		result = append(result, s.resolvedUser(i))
	}
	return result, nil
}

func (r *userRepository) ListActiveByRole(_ context.Context, role domain.RoleName) ([]domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.User{}
	for i := range s.users {
		user := s.resolvedUser(i)
		if user.Active && user.RoleName == role {
			result = append(result, user)
		}
	}
	sort.SliceStable(result, func(a, b int) bool { return result[a].Name < result[b].Name })
	return result, nil
}

func (s *Store) resolvedUser(idx int) domain.User {
	user := cloneUser(s.users[idx])
	user.RoleName = s.roleName(user.RoleID)
	return user
}

func (s *Store) emailTaken(email, exceptID string) bool {
	want := domain.NormalizeEmail(email)
	for _, user := range s.users {
		if user.ID != exceptID && domain.NormalizeEmail(user.Email) == want {
			return true
		}
	}
	return false
}

type roleRepository struct {
	s *Store
}

func (r *roleRepository) Create(_ context.Context, role *domain.Role) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	s.roles = append(s.roles, *role)
	return nil
}

func (r *roleRepository) GetByID(_ context.Context, id string) (*domain.Role, error) {
	return r.find(func(role domain.Role) bool { return role.ID == id })
}

func (r *roleRepository) GetByName(_ context.Context, name domain.RoleName) (*domain.Role, error) {
	return r.find(func(role domain.Role) bool { return role.Name == name })
}

func (r *roleRepository) find(pred func(domain.Role) bool) (*domain.Role, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, role := range s.roles {
		if pred(role) {
			found := role
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *roleRepository) List(_ context.Context) ([]domain.Role, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Role, len(s.roles))
	copy(result, s.roles)
	return result, nil
}

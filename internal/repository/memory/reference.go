package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/courier-service/internal/domain"
	"github.com/spec-kit/courier-service/internal/repository"
)

type branchRepository struct {
	s *Store
}

func (r *branchRepository) Create(_ context.Context, branch *domain.Branch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if branch.ID == "" {
		branch.ID = uuid.NewString()
	}
	r.s.branches = append(r.s.branches, *branch)
	return nil
}

func (r *branchRepository) Update(_ context.Context, branch *domain.Branch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.branches {
		if r.s.branches[i].ID == branch.ID {
			updated := *branch
			updated.ID = r.s.branches[i].ID
			r.s.branches[i] = updated
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *branchRepository) GetByID(_ context.Context, id string) (*domain.Branch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if branch := r.s.branch(&id); branch != nil {
		return branch, nil
	}
	return nil, repository.ErrNotFound
}

func (r *branchRepository) List(_ context.Context) ([]domain.Branch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]domain.Branch, len(r.s.branches))
	copy(result, r.s.branches)
	return result, nil
}

type clientRepository struct {
	s *Store
}

func (r *clientRepository) Create(_ context.Context, client *domain.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	r.s.clients = append(r.s.clients, *client)
	return nil
}

func (r *clientRepository) Update(_ context.Context, client *domain.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.clients {
		if r.s.clients[i].ID == client.ID {
			updated := *client
			updated.ID = r.s.clients[i].ID
			r.s.clients[i] = updated
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *clientRepository) GetByID(_ context.Context, id string) (*domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if client := r.s.client(id); client != nil {
		return client, nil
	}
	return nil, repository.ErrNotFound
}

func (r *clientRepository) List(_ context.Context) ([]domain.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]domain.Client, len(r.s.clients))
	copy(result, r.s.clients)
	return result, nil
}

type distributorRepository struct {
	s *Store
}

func (r *distributorRepository) Create(_ context.Context, distributor *domain.Distributor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if distributor.ID == "" {
		distributor.ID = uuid.NewString()
	}
	r.s.distributors = append(r.s.distributors, *distributor)
	return nil
}

func (r *distributorRepository) Update(_ context.Context, distributor *domain.Distributor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.distributors {
		if r.s.distributors[i].ID == distributor.ID {
			updated := *distributor
			updated.ID = r.s.distributors[i].ID
			r.s.distributors[i] = updated
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *distributorRepository) GetByID(_ context.Context, id string) (*domain.Distributor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if distributor := r.s.distributor(id); distributor != nil {
		return distributor, nil
	}
	return nil, repository.ErrNotFound
}

func (r *distributorRepository) List(_ context.Context) ([]domain.Distributor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]domain.Distributor, len(r.s.distributors))
	copy(result, r.s.distributors)
	return result, nil
}

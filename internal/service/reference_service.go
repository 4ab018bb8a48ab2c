package service

import (
	"context"
	"strings"

	"github.com/spec-kit/courier-service/internal/domain"
	"github.com/spec-kit/courier-service/internal/repository"
	apperrors "github.com/spec-kit/courier-service/pkg/util/errorutil"
)

// ReferenceService manages branches, clients and distributors. Reference
// records are never deleted since packages keep pointing at them.
type ReferenceService struct {
	branches     repository.BranchRepository
	clients      repository.ClientRepository
	distributors repository.DistributorRepository
}

// ReferenceDependencies bundles repositories for reference data.
type ReferenceDependencies struct {
	BranchRepo      repository.BranchRepository
	ClientRepo      repository.ClientRepository
	DistributorRepo repository.DistributorRepository
}

// NewReferenceService constructs the service.
func NewReferenceService(deps ReferenceDependencies) *ReferenceService {
	return &ReferenceService{
		branches:     deps.BranchRepo,
		clients:      deps.ClientRepo,
		distributors: deps.DistributorRepo,
	}
}

// ListBranches returns every branch.
func (s *ReferenceService) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	branches, err := s.branches.List(ctx)
	return branches, apperrors.MapError(err)
}

// SaveBranch creates the branch when its id is blank and updates it otherwise.
func (s *ReferenceService) SaveBranch(ctx context.Context, branch domain.Branch) (*domain.Branch, error) {
	branch.Name = strings.TrimSpace(branch.Name)
	branch.Address = strings.TrimSpace(branch.Address)
	if missing := missingFields(field{"name", branch.Name}, field{"address", branch.Address}); len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	if branch.ID == "" {
		if err := s.branches.Create(ctx, &branch); err != nil {
			return nil, apperrors.MapError(err)
		}
		return &branch, nil
	}
	if err := s.branches.Update(ctx, &branch); err != nil {
		return nil, notFound(err, "branch", branch.ID)
	}
	return &branch, nil
}

// ListClients returns every client.
func (s *ReferenceService) ListClients(ctx context.Context) ([]domain.Client, error) {
	clients, err := s.clients.List(ctx)
	return clients, apperrors.MapError(err)
}

// SaveClient creates or updates a client. Unknown types fall back to person.
func (s *ReferenceService) SaveClient(ctx context.Context, client domain.Client) (*domain.Client, error) {
	client.Type = domain.ParseClientType(strings.TrimSpace(string(client.Type)))
	client.Name = strings.TrimSpace(client.Name)
	client.Document = strings.TrimSpace(client.Document)
	client.Phone = strings.TrimSpace(client.Phone)
	client.Email = strings.TrimSpace(client.Email)
	client.Address = strings.TrimSpace(client.Address)
	if missing := missingFields(field{"name", client.Name}); len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	if client.ID == "" {
		if err := s.clients.Create(ctx, &client); err != nil {
			return nil, apperrors.MapError(err)
		}
		return &client, nil
	}
	if err := s.clients.Update(ctx, &client); err != nil {
		return nil, notFound(err, "client", client.ID)
	}
	return &client, nil
}

// ListDistributors returns every distributor.
func (s *ReferenceService) ListDistributors(ctx context.Context) ([]domain.Distributor, error) {
	distributors, err := s.distributors.List(ctx)
	return distributors, apperrors.MapError(err)
}

// SaveDistributor creates or updates a distributor.
func (s *ReferenceService) SaveDistributor(ctx context.Context, distributor domain.Distributor) (*domain.Distributor, error) {
	distributor.TradeName = strings.TrimSpace(distributor.TradeName)
	distributor.LegalName = strings.TrimSpace(distributor.LegalName)
	distributor.Phone = strings.TrimSpace(distributor.Phone)
	distributor.Address = strings.TrimSpace(distributor.Address)
	if missing := missingFields(field{"trade_name", distributor.TradeName}); len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	if distributor.ID == "" {
		if err := s.distributors.Create(ctx, &distributor); err != nil {
			return nil, apperrors.MapError(err)
		}
		return &distributor, nil
	}
	if err := s.distributors.Update(ctx, &distributor); err != nil {
		return nil, notFound(err, "distributor", distributor.ID)
	}
	return &distributor, nil
}

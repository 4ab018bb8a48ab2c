package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/spec-kit/courier-service/internal/domain"
	"github.com/spec-kit/courier-service/internal/repository"
)

type packageRepository struct {
	s *Store
}

func (r *packageRepository) Create(_ context.Context, pkg *domain.Package, codes domain.CodeSource) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	code := ""
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		candidate := codes.Next()
		if _, taken := s.codes[candidate]; !taken {
			code = candidate
			break
		}
		if s.onCollision != nil {
			s.onCollision()
		}
	}
	if code == "" {
		return repository.ErrTrackingCodeExhausted
	}

	if pkg.ID == "" {
		pkg.ID = uuid.NewString()
	}
	pkg.TrackingCode = code
	s.codes[code] = struct{}{}
	s.packages = append(s.packages, clonePackage(*pkg))
	s.history[pkg.ID] = []domain.HistoryEntry{{
		PackageID: pkg.ID,
		Status:    pkg.Status,
		Timestamp: pkg.CreatedAt,
	}}
	return nil
}

func (r *packageRepository) GetByID(_ context.Context, id string) (*domain.Package, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.findPackage(func(p *domain.Package) bool { return p.ID == id })
	if idx < 0 {
		return nil, repository.ErrNotFound
	}
	pkg := clonePackage(s.packages[idx])
	return &pkg, nil
}

func (r *packageRepository) GetDetail(_ context.Context, id string) (*domain.PackageDetail, error) {
	return r.detailWhere(func(p *domain.Package) bool { return p.ID == id })
}

func (r *packageRepository) GetDetailByCode(_ context.Context, code string) (*domain.PackageDetail, error) {
	return r.detailWhere(func(p *domain.Package) bool { return p.TrackingCode == code })
}

func (r *packageRepository) detailWhere(pred func(*domain.Package) bool) (*domain.PackageDetail, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.findPackage(pred)
	if idx < 0 {
		return nil, repository.ErrNotFound
	}
	detail := s.detail(&s.packages[idx])
	return &detail, nil
}

func (r *packageRepository) List(_ context.Context, filter repository.PackageFilter) ([]domain.Package, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.Package{}
	for _, idx := range s.matching(filter) {
		result = append(result, clonePackage(s.packages[idx]))
	}
	return result, nil
}

func (r *packageRepository) ListDetailed(_ context.Context, filter repository.PackageFilter) ([]domain.PackageDetail, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.PackageDetail{}
	for _, idx := range s.matching(filter) {
		result = append(result, s.detail(&s.packages[idx]))
	}
	return result, nil
}

// matching returns indexes of packages passing the filter, newest first.
func (s *Store) matching(filter repository.PackageFilter) []int {
	indexes := []int{}
	for i := range s.packages {
		pkg := &s.packages[i]
		if filter.Status != nil && pkg.Status != *filter.Status {
			continue
		}
		if filter.CourierID != nil && !pkg.AssignedTo(*filter.CourierID) {
			continue
		}
		indexes = append(indexes, i)
	}
	sort.SliceStable(indexes, func(a, b int) bool {
		return s.packages[indexes[a]].CreatedAt.After(s.packages[indexes[b]].CreatedAt)
	})
	return indexes
}

func (r *packageRepository) UpdateStatus(_ context.Context, id string, entry domain.HistoryEntry) (*domain.Package, error) {
	return r.mutate(id, entry, func(pkg *domain.Package) {
		pkg.Status = entry.Status
	})
}

func (r *packageRepository) Reschedule(_ context.Context, id string, window domain.RescheduleWindow, entry domain.HistoryEntry) (*domain.Package, error) {
	return r.mutate(id, entry, func(pkg *domain.Package) {
		w := window
		pkg.Reschedule = &w
		pkg.Status = entry.Status
		if window.Address != "" {
			pkg.DestinationText = window.Address
		}
	})
}

func (r *packageRepository) mutate(id string, entry domain.HistoryEntry, apply func(*domain.Package)) (*domain.Package, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.findPackage(func(p *domain.Package) bool { return p.ID == id })
	if idx < 0 {
		return nil, repository.ErrNotFound
	}
	apply(&s.packages[idx])
	// Key by the stored id; the caller's string may alias a request buffer.
	key := s.packages[idx].ID
	entry.PackageID = key
	s.history[key] = append(s.history[key], entry)
	pkg := clonePackage(s.packages[idx])
	return &pkg, nil
}

func (r *packageRepository) History(_ context.Context, id string) ([]domain.HistoryEntry, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneHistory(s.history[id]), nil
}

// Package memory implements the storage contract over process-local slices.
// Data does not survive a restart.
package memory

import (
	"sync"
	"time"

	"github.com/spec-kit/courier-service/internal/domain"
	"github.com/spec-kit/courier-service/internal/repository"
)

// maxCodeAttempts bounds local tracking-code draws per create.
const maxCodeAttempts = 1000

// Store holds every collection behind one lock. Lookups are linear scans over
// insertion-ordered slices.
type Store struct {
	mu sync.RWMutex

	packages     []domain.Package
	history      map[string][]domain.HistoryEntry
	codes        map[string]struct{}
	users        []domain.User
	roles        []domain.Role
	branches     []domain.Branch
	clients      []domain.Client
	distributors []domain.Distributor

	onCollision func()
	now         func() time.Time
}

// New returns an empty store.
func New(opts repository.StoreOptions) *Store {
	return &Store{
		history:     make(map[string][]domain.HistoryEntry),
		codes:       make(map[string]struct{}),
		onCollision: opts.OnCodeCollision,
		now:         time.Now,
	}
}

// Repositories exposes the store through the shared contract.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Packages:     &packageRepository{s: s},
		Users:        &userRepository{s: s},
		Roles:        &roleRepository{s: s},
		Branches:     &branchRepository{s: s},
		Clients:      &clientRepository{s: s},
		Distributors: &distributorRepository{s: s},
	}
}

func (s *Store) findPackage(pred func(*domain.Package) bool) int {
	for i := range s.packages {
		if pred(&s.packages[i]) {
			return i
		}
	}
	return -1
}

func (s *Store) findUser(id string) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) roleName(id string) domain.RoleName {
	for _, role := range s.roles {
		if role.ID == id {
			return role.Name
		}
	}
	return ""
}

func (s *Store) client(id string) *domain.Client {
	for i := range s.clients {
		if s.clients[i].ID == id {
			c := s.clients[i]
			return &c
		}
	}
	return nil
}

func (s *Store) distributor(id string) *domain.Distributor {
	for i := range s.distributors {
		if s.distributors[i].ID == id {
			d := s.distributors[i]
			return &d
		}
	}
	return nil
}

func (s *Store) branch(id *string) *domain.Branch {
	if id == nil {
		return nil
	}
	for i := range s.branches {
		if s.branches[i].ID == *id {
			b := s.branches[i]
			return &b
		}
	}
	return nil
}

func (s *Store) contact(id *string) *domain.StaffContact {
	if id == nil {
		return nil
	}
	if idx := s.findUser(*id); idx >= 0 {
		return s.users[idx].Contact()
	}
	return nil
}

// detail joins a package with its related entities. Callers hold the lock.
func (s *Store) detail(pkg *domain.Package) domain.PackageDetail {
	detail := domain.PackageDetail{
		Package:           clonePackage(*pkg),
		SenderKind:        pkg.ShipmentType.SenderKind(),
		Recipient:         s.client(pkg.RecipientID),
		Operator:          s.contact(pkg.OperatorID),
		Courier:           s.contact(pkg.CourierID),
		OriginBranch:      s.branch(&pkg.OriginBranchID),
		DestinationBranch: s.branch(pkg.DestinationBranchID),
		History:           cloneHistory(s.history[pkg.ID]),
	}
	if pkg.ShipmentType == domain.ShipmentClientToClient {
		detail.Sender = domain.ClientParty(s.client(pkg.SenderID()))
	} else {
		detail.Sender = domain.DistributorParty(s.distributor(pkg.SenderID()))
	}
	return detail
}

func clonePackage(pkg domain.Package) domain.Package {
	pkg.SenderDistributorID = cloneString(pkg.SenderDistributorID)
	pkg.SenderClientID = cloneString(pkg.SenderClientID)
	pkg.OperatorID = cloneString(pkg.OperatorID)
	pkg.CourierID = cloneString(pkg.CourierID)
	pkg.DestinationBranchID = cloneString(pkg.DestinationBranchID)
	if pkg.Reschedule != nil {
		window := *pkg.Reschedule
		pkg.Reschedule = &window
	}
	return pkg
}

func cloneHistory(entries []domain.HistoryEntry) []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(entries))
	copy(out, entries)
	return out
}

func cloneUser(user domain.User) domain.User {
	user.BranchID = cloneString(user.BranchID)
	return user
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

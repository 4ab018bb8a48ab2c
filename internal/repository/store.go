package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/courier-service/internal/domain"
)

// MaxTrackingCodeAttempts bounds how many fresh codes the relational adapter
// tries before giving up on a create.
const MaxTrackingCodeAttempts = 5

var (
	// ErrNotFound signals an absent entity.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail signals a user email collision.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrTrackingCodeExhausted is returned when no unique code could be allocated.
	ErrTrackingCodeExhausted = errors.New("could not allocate a unique tracking code")
)

// DB is the subset of *pgxpool.Pool the relational adapter depends on.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PackageFilter narrows package listings.
type PackageFilter struct {
	Status    *domain.Status
	CourierID *string
}

// PackageRepository persists packages and their history ledger.
type PackageRepository interface {
	// Create allocates a tracking code from codes and stores the package with
	// its initial history entry atomically.
	Create(ctx context.Context, pkg *domain.Package, codes domain.CodeSource) error
	GetByID(ctx context.Context, id string) (*domain.Package, error)
	GetDetail(ctx context.Context, id string) (*domain.PackageDetail, error)
	GetDetailByCode(ctx context.Context, code string) (*domain.PackageDetail, error)
	List(ctx context.Context, filter PackageFilter) ([]domain.Package, error)
	ListDetailed(ctx context.Context, filter PackageFilter) ([]domain.PackageDetail, error)
	UpdateStatus(ctx context.Context, id string, entry domain.HistoryEntry) (*domain.Package, error)
	Reschedule(ctx context.Context, id string, window domain.RescheduleWindow, entry domain.HistoryEntry) (*domain.Package, error)
	History(ctx context.Context, id string) ([]domain.HistoryEntry, error)
}

// UserRepository persists staff accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListActiveByRole(ctx context.Context, role domain.RoleName) ([]domain.User, error)
}

// RoleRepository persists the role catalog.
type RoleRepository interface {
	Create(ctx context.Context, role *domain.Role) error
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name domain.RoleName) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
}

// BranchRepository persists branches.
type BranchRepository interface {
	Create(ctx context.Context, branch *domain.Branch) error
	Update(ctx context.Context, branch *domain.Branch) error
	GetByID(ctx context.Context, id string) (*domain.Branch, error)
	List(ctx context.Context) ([]domain.Branch, error)
}

// ClientRepository persists clients.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	Update(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context) ([]domain.Client, error)
}

// DistributorRepository persists distributors.
type DistributorRepository interface {
	Create(ctx context.Context, distributor *domain.Distributor) error
	Update(ctx context.Context, distributor *domain.Distributor) error
	GetByID(ctx context.Context, id string) (*domain.Distributor, error)
	List(ctx context.Context) ([]domain.Distributor, error)
}

// Store bundles every repository behind one storage backend.
type Store struct {
	Packages     PackageRepository
	Users        UserRepository
	Roles        RoleRepository
	Branches     BranchRepository
	Clients      ClientRepository
	Distributors DistributorRepository
}

// StoreOptions tunes adapter behavior shared by both backends.
type StoreOptions struct {
	// OnCodeCollision is invoked each time a candidate tracking code is rejected.
	OnCodeCollision func()
}

// NewPostgresStore wires the relational adapter over db.
func NewPostgresStore(db DB, opts StoreOptions) *Store {
	return &Store{
		Packages:     NewPackageRepository(db, opts),
		Users:        NewUserRepository(db),
		Roles:        NewRoleRepository(db),
		Branches:     NewBranchRepository(db),
		Clients:      NewClientRepository(db),
		Distributors: NewDistributorRepository(db),
	}
}

func notFoundIfNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && (constraint == "" || pgErr.ConstraintName == constraint)
}

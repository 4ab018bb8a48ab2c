package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/spec-kit/courier-service/internal/domain"
)

type branchRepository struct {
	db DB
}

// NewBranchRepository returns a Postgres-backed implementation.
func NewBranchRepository(db DB) BranchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) Create(ctx context.Context, branch *domain.Branch) error {
	if branch.ID == "" {
		branch.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx, `INSERT INTO branches (id, name, address) VALUES ($1,$2,$3)`,
		branch.ID, branch.Name, branch.Address)
	return err
}

func (r *branchRepository) Update(ctx context.Context, branch *domain.Branch) error {
	cmd, err := r.db.Exec(ctx, `UPDATE branches SET name=$1, address=$2 WHERE id=$3`,
		branch.Name, branch.Address, branch.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *branchRepository) GetByID(ctx context.Context, id string) (*domain.Branch, error) {
	var branch domain.Branch
	if err := r.db.QueryRow(ctx, `SELECT id, name, address FROM branches WHERE id=$1`, id).
		Scan(&branch.ID, &branch.Name, &branch.Address); err != nil {
		return nil, notFoundIfNoRows(err)
	}
	return &branch, nil
}

func (r *branchRepository) List(ctx context.Context) ([]domain.Branch, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, address FROM branches ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Branch{}
	for rows.Next() {
		var branch domain.Branch
		if err := rows.Scan(&branch.ID, &branch.Name, &branch.Address); err != nil {
			return nil, err
		}
		result = append(result, branch)
	}
	return result, rows.Err()
}

type clientRepository struct {
	db DB
}

// NewClientRepository returns a Postgres-backed implementation.
func NewClientRepository(db DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	const query = `
        INSERT INTO clients (id, client_type, name, document, phone, email, address)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx, query,
		client.ID, client.Type, client.Name, client.Document, client.Phone, client.Email, client.Address)
	return err
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	const query = `
        UPDATE clients SET client_type=$1, name=$2, document=$3, phone=$4, email=$5, address=$6
        WHERE id=$7`
	cmd, err := r.db.Exec(ctx, query,
		client.Type, client.Name, client.Document, client.Phone, client.Email, client.Address, client.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	const query = `SELECT id, client_type, name, document, phone, email, address FROM clients WHERE id=$1`
	var client domain.Client
	if err := r.db.QueryRow(ctx, query, id).Scan(clientTargets(&client)...); err != nil {
		return nil, notFoundIfNoRows(err)
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context) ([]domain.Client, error) {
	rows, err := r.db.Query(ctx, `SELECT id, client_type, name, document, phone, email, address FROM clients ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Client{}
	for rows.Next() {
		var client domain.Client
		if err := rows.Scan(clientTargets(&client)...); err != nil {
			return nil, err
		}
		result = append(result, client)
	}
	return result, rows.Err()
}

func clientTargets(client *domain.Client) []any {
	return []any{&client.ID, &client.Type, &client.Name, &client.Document, &client.Phone, &client.Email, &client.Address}
}

type distributorRepository struct {
	db DB
}

// NewDistributorRepository returns a Postgres-backed implementation.
func NewDistributorRepository(db DB) DistributorRepository {
	return &distributorRepository{db: db}
}

func (r *distributorRepository) Create(ctx context.Context, distributor *domain.Distributor) error {
	const query = `
        INSERT INTO distributors (id, trade_name, legal_name, phone, address)
        VALUES ($1,$2,$3,$4,$5)`
	if distributor.ID == "" {
		distributor.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx, query,
		distributor.ID, distributor.TradeName, distributor.LegalName, distributor.Phone, distributor.Address)
	return err
}

func (r *distributorRepository) Update(ctx context.Context, distributor *domain.Distributor) error {
	const query = `UPDATE distributors SET trade_name=$1, legal_name=$2, phone=$3, address=$4 WHERE id=$5`
	cmd, err := r.db.Exec(ctx, query,
		distributor.TradeName, distributor.LegalName, distributor.Phone, distributor.Address, distributor.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *distributorRepository) GetByID(ctx context.Context, id string) (*domain.Distributor, error) {
	const query = `SELECT id, trade_name, legal_name, phone, address FROM distributors WHERE id=$1`
	var distributor domain.Distributor
	if err := r.db.QueryRow(ctx, query, id).Scan(distributorTargets(&distributor)...); err != nil {
		return nil, notFoundIfNoRows(err)
	}
	return &distributor, nil
}

func (r *distributorRepository) List(ctx context.Context) ([]domain.Distributor, error) {
	rows, err := r.db.Query(ctx, `SELECT id, trade_name, legal_name, phone, address FROM distributors ORDER BY trade_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Distributor{}
	for rows.Next() {
		var distributor domain.Distributor
		if err := rows.Scan(distributorTargets(&distributor)...); err != nil {
			return nil, err
		}
		result = append(result, distributor)
	}
	return result, rows.Err()
}

func distributorTargets(d *domain.Distributor) []any {
	return []any{&d.ID, &d.TradeName, &d.LegalName, &d.Phone, &d.Address}
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/courier-service/internal/domain"
)

var packageColumnNames = []string{
	"id", "tracking_code", "shipment_type", "sender_distributor_id", "sender_client_id",
	"recipient_id", "operator_id", "courier_id", "origin_branch_id", "destination_branch_id",
	"destination_text", "description", "current_status", "created_at",
	"reschedule_date", "reschedule_start_time", "reschedule_end_time", "reschedule_address",
}

func strPtr(s string) *string { return &s }

func sequence(codes ...string) domain.CodeSource {
	i := 0
	return domain.CodeSourceFunc(func() string {
		code := codes[i%len(codes)]
		i++
		return code
	})
}

// anyArgs matches n positional arguments of any value.
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

// packageInsertArgs matches the package insert, pinning the tracking code.
func packageInsertArgs(code string) []any {
	return append([]any{pgxmock.AnyArg(), code}, anyArgs(12)...)
}

func trackingCodeViolation() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: trackingCodeConstraint}
}

func newPackageFixture() *domain.Package {
	return domain.NewPackage{
		SenderID:        "d1",
		RecipientID:     "c1",
		OriginBranchID:  "b1",
		DestinationText: "Jr. Callao 456",
	}.Build(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
}

func TestPackageCreateCommitsPackageAndHistory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	pkg := newPackageFixture()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO packages").
		WithArgs(packageInsertArgs("TM-2026-4321")...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO history_entries").
		WithArgs(pgxmock.AnyArg(), domain.StatusInWarehouse, pkg.CreatedAt, "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := NewPackageRepository(mock, StoreOptions{})
	require.NoError(t, repo.Create(context.Background(), pkg, sequence("TM-2026-4321")))

	assert.NotEmpty(t, pkg.ID)
	assert.Equal(t, "TM-2026-4321", pkg.TrackingCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPackageCreateRetriesOnTrackingCodeViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO packages").
		WithArgs(packageInsertArgs("TM-2026-1111")...).
		WillReturnError(trackingCodeViolation())
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO packages").
		WithArgs(packageInsertArgs("TM-2026-2222")...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO history_entries").
		WithArgs(anyArgs(4)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	collisions := 0
	repo := NewPackageRepository(mock, StoreOptions{OnCodeCollision: func() { collisions++ }})
	pkg := newPackageFixture()
	require.NoError(t, repo.Create(context.Background(), pkg, sequence("TM-2026-1111", "TM-2026-2222")))

	assert.Equal(t, "TM-2026-2222", pkg.TrackingCode)
	assert.Equal(t, 1, collisions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPackageCreateStopsAfterMaxAttempts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	for i := 0; i < MaxTrackingCodeAttempts; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO packages").
			WithArgs(packageInsertArgs("TM-2026-1111")...).
			WillReturnError(trackingCodeViolation())
		mock.ExpectRollback()
	}

	repo := NewPackageRepository(mock, StoreOptions{})
	err = repo.Create(context.Background(), newPackageFixture(), sequence("TM-2026-1111"))

	assert.ErrorIs(t, err, ErrTrackingCodeExhausted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPackageCreatePropagatesOtherFaults(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	fault := &pgconn.PgError{Code: "23503", ConstraintName: "packages_recipient_id_fkey"}
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO packages").
		WithArgs(anyArgs(14)...).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO history_entries").
		WithArgs(anyArgs(4)...).
		WillReturnError(fault)
	mock.ExpectRollback()

	repo := NewPackageRepository(mock, StoreOptions{})
	err = repo.Create(context.Background(), newPackageFixture(), sequence("TM-2026-1111"))

	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, "23503", pgErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPackageUpdateStatusUnknownPackage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE packages AS p SET current_status").
		WithArgs(domain.StatusDelivered, "missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	repo := NewPackageRepository(mock, StoreOptions{})
	_, err = repo.UpdateStatus(context.Background(), "missing", domain.HistoryEntry{Status: domain.StatusDelivered})

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPackageUpdateStatusAppendsHistoryInTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	at := time.Date(2026, 1, 3, 8, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(packageColumnNames).AddRow(
		"p1", "TM-2026-0001", domain.ShipmentDistributorToClient, strPtr("d1"), (*string)(nil),
		"c1", (*string)(nil), strPtr("u9"), "b1", (*string)(nil),
		"Jr. Callao 456", "Medicines", domain.StatusDelivered, at,
		(*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil),
	)
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE packages AS p SET current_status").
		WithArgs(domain.StatusDelivered, "p1").
		WillReturnRows(rows)
	mock.ExpectExec("INSERT INTO history_entries").
		WithArgs("p1", domain.StatusDelivered, at, "signed by recipient").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := NewPackageRepository(mock, StoreOptions{})
	pkg, err := repo.UpdateStatus(context.Background(), "p1", domain.HistoryEntry{
		Status:    domain.StatusDelivered,
		Timestamp: at,
		Note:      "signed by recipient",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, pkg.Status)
	assert.True(t, pkg.AssignedTo("u9"))
	assert.Nil(t, pkg.Reschedule)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPackageRescheduleOverridesDestinationText(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	at := time.Date(2026, 1, 3, 8, 0, 0, 0, time.UTC)
	window := domain.RescheduleWindow{Date: "2026-01-05", StartTime: "09:00", EndTime: "12:00", Address: "Av. Raimondi 12"}
	rows := pgxmock.NewRows(packageColumnNames).AddRow(
		"p1", "TM-2026-0001", domain.ShipmentDistributorToClient, strPtr("d1"), (*string)(nil),
		"c1", (*string)(nil), (*string)(nil), "b1", (*string)(nil),
		"Av. Raimondi 12", "Medicines", domain.StatusInTransit, at,
		strPtr("2026-01-05"), strPtr("09:00"), strPtr("12:00"), strPtr("Av. Raimondi 12"),
	)
	mock.ExpectBegin()
	mock.ExpectQuery("destination_text=\\$6 WHERE p.id=\\$7").
		WithArgs("2026-01-05", "09:00", "12:00", strPtr("Av. Raimondi 12"), domain.StatusInTransit, "Av. Raimondi 12", "p1").
		WillReturnRows(rows)
	mock.ExpectExec("INSERT INTO history_entries").
		WithArgs("p1", domain.StatusInTransit, at, domain.RescheduleNote).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := NewPackageRepository(mock, StoreOptions{})
	pkg, err := repo.Reschedule(context.Background(), "p1", window, domain.HistoryEntry{
		Status:    domain.StatusInTransit,
		Timestamp: at,
		Note:      domain.RescheduleNote,
	})

	require.NoError(t, err)
	assert.Equal(t, "Av. Raimondi 12", pkg.DestinationText)
	require.NotNil(t, pkg.Reschedule)
	assert.Equal(t, window, *pkg.Reschedule)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPackageGetByIDNormalizesToUTC(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	lima := time.FixedZone("PET", -5*3600)
	created := time.Date(2026, 1, 2, 7, 0, 0, 0, lima)
	rows := pgxmock.NewRows(packageColumnNames).AddRow(
		"p2", "TM-2026-3333", domain.ShipmentClientToClient, (*string)(nil), strPtr("c2"),
		"c1", (*string)(nil), (*string)(nil), "b1", strPtr("b2"),
		"", "", domain.StatusInWarehouse, created,
		(*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil),
	)
	mock.ExpectQuery("FROM packages p WHERE p.id=\\$1").WithArgs("p2").WillReturnRows(rows)

	repo := NewPackageRepository(mock, StoreOptions{})
	pkg, err := repo.GetByID(context.Background(), "p2")

	require.NoError(t, err)
	assert.Equal(t, time.UTC, pkg.CreatedAt.Location())
	assert.Equal(t, 12, pkg.CreatedAt.Hour())
	assert.Equal(t, "c2", pkg.SenderID())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPackageGetDetailByCodeNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("WHERE p.tracking_code=\\$1").WithArgs("TM-2026-9999").WillReturnError(pgx.ErrNoRows)

	repo := NewPackageRepository(mock, StoreOptions{})
	_, err = repo.GetDetailByCode(context.Background(), "TM-2026-9999")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPackageListBuildsFilterClauses(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	status := domain.StatusInTransit
	courier := "u9"
	mock.ExpectQuery("p.current_status=\\$1 AND p.courier_id=\\$2").
		WithArgs(status, courier).
		WillReturnRows(pgxmock.NewRows(packageColumnNames))

	repo := NewPackageRepository(mock, StoreOptions{})
	list, err := repo.List(context.Background(), PackageFilter{Status: &status, CourierID: &courier})

	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

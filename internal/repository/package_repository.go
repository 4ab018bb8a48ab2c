package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/courier-service/internal/domain"
)

const trackingCodeConstraint = "packages_tracking_code_key"

const packageColumns = `p.id, p.tracking_code, p.shipment_type, p.sender_distributor_id, p.sender_client_id,
               p.recipient_id, p.operator_id, p.courier_id, p.origin_branch_id, p.destination_branch_id,
               p.destination_text, p.description, p.current_status, p.created_at,
               p.reschedule_date, p.reschedule_start_time, p.reschedule_end_time, p.reschedule_address`

const packageDetailSelect = `
        SELECT ` + packageColumns + `,
               CASE WHEN p.shipment_type = 'client_to_client' THEN sc.id ELSE sd.id END,
               CASE WHEN p.shipment_type = 'client_to_client' THEN sc.name ELSE sd.trade_name END,
               CASE WHEN p.shipment_type = 'client_to_client' THEN NULL ELSE sd.legal_name END,
               CASE WHEN p.shipment_type = 'client_to_client' THEN sc.document ELSE NULL END,
               CASE WHEN p.shipment_type = 'client_to_client' THEN sc.phone ELSE sd.phone END,
               CASE WHEN p.shipment_type = 'client_to_client' THEN sc.email ELSE NULL END,
               CASE WHEN p.shipment_type = 'client_to_client' THEN sc.address ELSE sd.address END,
               rc.id, rc.client_type, rc.name, rc.document, rc.phone, rc.email, rc.address,
               op.id, op.name, op.phone, op.email,
               co.id, co.name, co.phone, co.email,
               ob.id, ob.name, ob.address,
               db.id, db.name, db.address
        FROM packages p
        LEFT JOIN distributors sd ON sd.id = p.sender_distributor_id
        LEFT JOIN clients sc ON sc.id = p.sender_client_id
        JOIN clients rc ON rc.id = p.recipient_id
        LEFT JOIN users op ON op.id = p.operator_id
        LEFT JOIN users co ON co.id = p.courier_id
        JOIN branches ob ON ob.id = p.origin_branch_id
        LEFT JOIN branches db ON db.id = p.destination_branch_id`

type packageRepository struct {
	db          DB
	onCollision func()
}

// NewPackageRepository returns the Postgres-backed package repository.
func NewPackageRepository(db DB, opts StoreOptions) PackageRepository {
	return &packageRepository{db: db, onCollision: opts.OnCodeCollision}
}

func (r *packageRepository) Create(ctx context.Context, pkg *domain.Package, codes domain.CodeSource) error {
	if pkg.ID == "" {
		pkg.ID = uuid.NewString()
	}
	for attempt := 0; attempt < MaxTrackingCodeAttempts; attempt++ {
		pkg.TrackingCode = codes.Next()
		err := r.insert(ctx, pkg)
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err, trackingCodeConstraint) {
			return err
		}
		if r.onCollision != nil {
			r.onCollision()
		}
	}
	return ErrTrackingCodeExhausted
}

func (r *packageRepository) insert(ctx context.Context, pkg *domain.Package) error {
	const insertPackage = `
        INSERT INTO packages (id, tracking_code, shipment_type, sender_distributor_id, sender_client_id,
            recipient_id, operator_id, courier_id, origin_branch_id, destination_branch_id,
            destination_text, description, current_status, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	const insertHistory = `
        INSERT INTO history_entries (package_id, status, recorded_at, note)
        VALUES ($1,$2,$3,$4)`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, insertPackage,
		pkg.ID,
		pkg.TrackingCode,
		pkg.ShipmentType,
		pkg.SenderDistributorID,
		pkg.SenderClientID,
		pkg.RecipientID,
		pkg.OperatorID,
		pkg.CourierID,
		pkg.OriginBranchID,
		pkg.DestinationBranchID,
		pkg.DestinationText,
		pkg.Description,
		pkg.Status,
		pkg.CreatedAt,
	); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if _, err := tx.Exec(ctx, insertHistory, pkg.ID, pkg.Status, pkg.CreatedAt, ""); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *packageRepository) GetByID(ctx context.Context, id string) (*domain.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages p WHERE p.id=$1`
	var row packageRow
	if err := r.db.QueryRow(ctx, query, id).Scan(row.targets()...); err != nil {
		return nil, notFoundIfNoRows(err)
	}
	pkg := row.build()
	return &pkg, nil
}

func (r *packageRepository) GetDetail(ctx context.Context, id string) (*domain.PackageDetail, error) {
	return r.fetchDetail(ctx, packageDetailSelect+` WHERE p.id=$1`, id)
}

func (r *packageRepository) GetDetailByCode(ctx context.Context, code string) (*domain.PackageDetail, error) {
	return r.fetchDetail(ctx, packageDetailSelect+` WHERE p.tracking_code=$1`, code)
}

func (r *packageRepository) fetchDetail(ctx context.Context, query string, arg any) (*domain.PackageDetail, error) {
	var row detailRow
	if err := r.db.QueryRow(ctx, query, arg).Scan(row.targets()...); err != nil {
		return nil, notFoundIfNoRows(err)
	}
	detail := row.build()
	history, err := r.History(ctx, detail.ID)
	if err != nil {
		return nil, err
	}
	detail.History = history
	return &detail, nil
}

func (r *packageRepository) List(ctx context.Context, filter PackageFilter) ([]domain.Package, error) {
	where, args := buildPackageFilter(filter)
	query := fmt.Sprintf(`SELECT %s FROM packages p WHERE %s ORDER BY p.created_at DESC, p.id`, packageColumns, where)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Package{}
	for rows.Next() {
		var row packageRow
		if err := rows.Scan(row.targets()...); err != nil {
			return nil, err
		}
		result = append(result, row.build())
	}
	return result, rows.Err()
}

func (r *packageRepository) ListDetailed(ctx context.Context, filter PackageFilter) ([]domain.PackageDetail, error) {
	where, args := buildPackageFilter(filter)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY p.created_at DESC, p.id`, packageDetailSelect, where)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := []domain.PackageDetail{}
	ids := []string{}
	for rows.Next() {
		var row detailRow
		if err := rows.Scan(row.targets()...); err != nil {
			return nil, err
		}
		detail := row.build()
		details = append(details, detail)
		ids = append(ids, detail.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return details, nil
	}

	history, err := r.historyFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range details {
		details[i].History = history[details[i].ID]
		if details[i].History == nil {
			details[i].History = []domain.HistoryEntry{}
		}
	}
	return details, nil
}

func (r *packageRepository) UpdateStatus(ctx context.Context, id string, entry domain.HistoryEntry) (*domain.Package, error) {
	query := `UPDATE packages AS p SET current_status=$1 WHERE p.id=$2 RETURNING ` + packageColumns
	return r.mutate(ctx, entry, query, entry.Status, id)
}

func (r *packageRepository) Reschedule(ctx context.Context, id string, window domain.RescheduleWindow, entry domain.HistoryEntry) (*domain.Package, error) {
	sets := []string{
		"reschedule_date=$1",
		"reschedule_start_time=$2",
		"reschedule_end_time=$3",
		"reschedule_address=$4",
		"current_status=$5",
	}
	args := []any{window.Date, window.StartTime, window.EndTime, nullableText(window.Address), entry.Status}
	if window.Address != "" {
		args = append(args, window.Address)
		sets = append(sets, fmt.Sprintf("destination_text=$%d", len(args)))
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE packages AS p SET %s WHERE p.id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), packageColumns)
	return r.mutate(ctx, entry, query, args...)
}

// mutate runs a package UPDATE ... RETURNING and appends the history entry in
// the same transaction.
func (r *packageRepository) mutate(ctx context.Context, entry domain.HistoryEntry, query string, args ...any) (*domain.Package, error) {
	const insertHistory = `
        INSERT INTO history_entries (package_id, status, recorded_at, note)
        VALUES ($1,$2,$3,$4)`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	var row packageRow
	if err := tx.QueryRow(ctx, query, args...).Scan(row.targets()...); err != nil {
		_ = tx.Rollback(ctx)
		return nil, notFoundIfNoRows(err)
	}
	pkg := row.build()
	if _, err := tx.Exec(ctx, insertHistory, pkg.ID, entry.Status, entry.Timestamp, entry.Note); err != nil {
		_ = tx.Rollback(ctx)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *packageRepository) History(ctx context.Context, id string) ([]domain.HistoryEntry, error) {
	const query = `
        SELECT package_id, status, recorded_at, note
        FROM history_entries WHERE package_id=$1 ORDER BY recorded_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.HistoryEntry{}
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *packageRepository) historyFor(ctx context.Context, ids []string) (map[string][]domain.HistoryEntry, error) {
	const query = `
        SELECT package_id, status, recorded_at, note
        FROM history_entries WHERE package_id = ANY($1) ORDER BY recorded_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]domain.HistoryEntry, len(ids))
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		result[entry.PackageID] = append(result[entry.PackageID], entry)
	}
	return result, rows.Err()
}

func scanHistory(rows pgx.Rows) (domain.HistoryEntry, error) {
	var entry domain.HistoryEntry
	var note *string
	if err := rows.Scan(&entry.PackageID, &entry.Status, &entry.Timestamp, &note); err != nil {
		return entry, err
	}
	entry.Timestamp = NormalizeUTC(entry.Timestamp)
	if note != nil {
		entry.Note = *note
	}
	return entry, nil
}

func buildPackageFilter(filter PackageFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("p.current_status=$%d", len(args)))
	}
	if filter.CourierID != nil {
		args = append(args, *filter.CourierID)
		clauses = append(clauses, fmt.Sprintf("p.courier_id=$%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func nullableText(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func derefText(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

type packageRow struct {
	pkg               domain.Package
	rescheduleDate    *string
	rescheduleStart   *string
	rescheduleEnd     *string
	rescheduleAddress *string
}

func (r *packageRow) targets() []any {
	return []any{
		&r.pkg.ID,
		&r.pkg.TrackingCode,
		&r.pkg.ShipmentType,
		&r.pkg.SenderDistributorID,
		&r.pkg.SenderClientID,
		&r.pkg.RecipientID,
		&r.pkg.OperatorID,
		&r.pkg.CourierID,
		&r.pkg.OriginBranchID,
		&r.pkg.DestinationBranchID,
		&r.pkg.DestinationText,
		&r.pkg.Description,
		&r.pkg.Status,
		&r.pkg.CreatedAt,
		&r.rescheduleDate,
		&r.rescheduleStart,
		&r.rescheduleEnd,
		&r.rescheduleAddress,
	}
}

func (r *packageRow) build() domain.Package {
	pkg := r.pkg
	pkg.CreatedAt = NormalizeUTC(pkg.CreatedAt)
	if pkg.ShipmentType == "" {
		pkg.ShipmentType = domain.ShipmentDistributorToClient
	}
	if r.rescheduleDate != nil {
		pkg.Reschedule = &domain.RescheduleWindow{
			Date:      *r.rescheduleDate,
			StartTime: derefText(r.rescheduleStart),
			EndTime:   derefText(r.rescheduleEnd),
			Address:   derefText(r.rescheduleAddress),
		}
	}
	return pkg
}

type detailRow struct {
	packageRow

	senderID, senderName, senderLegalName, senderDocument *string
	senderPhone, senderEmail, senderAddress               *string

	recipient domain.Client

	operatorID, operatorName, operatorPhone, operatorEmail *string
	courierID, courierName, courierPhone, courierEmail     *string

	origin domain.Branch

	destinationID, destinationName, destinationAddress *string
}

func (r *detailRow) targets() []any {
	return append(r.packageRow.targets(),
		&r.senderID, &r.senderName, &r.senderLegalName, &r.senderDocument,
		&r.senderPhone, &r.senderEmail, &r.senderAddress,
		&r.recipient.ID, &r.recipient.Type, &r.recipient.Name, &r.recipient.Document,
		&r.recipient.Phone, &r.recipient.Email, &r.recipient.Address,
		&r.operatorID, &r.operatorName, &r.operatorPhone, &r.operatorEmail,
		&r.courierID, &r.courierName, &r.courierPhone, &r.courierEmail,
		&r.origin.ID, &r.origin.Name, &r.origin.Address,
		&r.destinationID, &r.destinationName, &r.destinationAddress,
	)
}

func (r *detailRow) build() domain.PackageDetail {
	pkg := r.packageRow.build()
	recipient := r.recipient
	origin := r.origin
	detail := domain.PackageDetail{
		Package:      pkg,
		SenderKind:   pkg.ShipmentType.SenderKind(),
		Recipient:    &recipient,
		OriginBranch: &origin,
	}
	if r.senderID != nil {
		detail.Sender = &domain.Party{
			ID:        *r.senderID,
			Kind:      detail.SenderKind,
			Name:      derefText(r.senderName),
			LegalName: derefText(r.senderLegalName),
			Document:  derefText(r.senderDocument),
			Phone:     derefText(r.senderPhone),
			Email:     derefText(r.senderEmail),
			Address:   derefText(r.senderAddress),
		}
	}
	detail.Operator = contactFromColumns(r.operatorID, r.operatorName, r.operatorPhone, r.operatorEmail)
	detail.Courier = contactFromColumns(r.courierID, r.courierName, r.courierPhone, r.courierEmail)
	if r.destinationID != nil {
		detail.DestinationBranch = &domain.Branch{
			ID:      *r.destinationID,
			Name:    derefText(r.destinationName),
			Address: derefText(r.destinationAddress),
		}
	}
	return detail
}

func contactFromColumns(id, name, phone, email *string) *domain.StaffContact {
	if id == nil {
		return nil
	}
	return &domain.StaffContact{
		ID:    *id,
		Name:  derefText(name),
		Phone: derefText(phone),
		Email: derefText(email),
	}
}

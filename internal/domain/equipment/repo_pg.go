package equipment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careops/careops/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

const equipmentCols = `id, organization_id, name, serial_number, category, criticality, status, created_by, created_at, updated_at`

func scanEquipment(row pgx.Row) (*Equipment, error) {
	var e Equipment
	err := row.Scan(&e.ID, &e.OrganizationID, &e.Name, &e.SerialNumber, &e.Category,
		&e.Criticality, &e.Status, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	return &e, err
}

func (r *RepoPG) Create(ctx context.Context, e *Equipment) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO equipment (organization_id, name, serial_number, category, criticality, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		e.OrganizationID, e.Name, e.SerialNumber, e.Category, e.Criticality, e.Status, e.CreatedBy,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (r *RepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Equipment, error) {
	return scanEquipment(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+equipmentCols+` FROM equipment WHERE id = $1`, id))
}

func (r *RepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, expected, target string) (bool, error) {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE equipment SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		target, id, expected)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RepoPG) ListByOrganization(ctx context.Context, orgID uuid.UUID, status string, limit, offset int) ([]*Equipment, int, error) {
	where := `WHERE organization_id = $1`
	args := []interface{}{orgID}
	if status != "" {
		where += ` AND status = $2`
		args = append(args, status)
	}

	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM equipment `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + equipmentCols + ` FROM equipment ` + where + ` ORDER BY created_at DESC`
	if status != "" {
		q += ` LIMIT $3 OFFSET $4`
	} else {
		q += ` LIMIT $2 OFFSET $3`
	}
	args = append(args, limit, offset)

	rows, err := conn(ctx, r.pool).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

type FailureReportRepoPG struct {
	pool *pgxpool.Pool
}

func NewFailureReportRepoPG(pool *pgxpool.Pool) *FailureReportRepoPG {
	return &FailureReportRepoPG{pool: pool}
}

func (r *FailureReportRepoPG) Create(ctx context.Context, fr *FailureReport) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO failure_report (organization_id, equipment_id, urgency, description, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		fr.OrganizationID, fr.EquipmentID, fr.Urgency, fr.Description, fr.CreatedBy,
	).Scan(&fr.ID, &fr.CreatedAt)
}

func (r *FailureReportRepoPG) ListByEquipment(ctx context.Context, orgID, equipmentID uuid.UUID) ([]*FailureReport, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, organization_id, equipment_id, urgency, description, created_by, created_at
		FROM failure_report
		WHERE organization_id = $1 AND equipment_id = $2
		ORDER BY created_at DESC`, orgID, equipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*FailureReport
	for rows.Next() {
		var fr FailureReport
		if err := rows.Scan(&fr.ID, &fr.OrganizationID, &fr.EquipmentID, &fr.Urgency,
			&fr.Description, &fr.CreatedBy, &fr.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &fr)
	}
	return items, rows.Err()
}

type MaintenanceRepoPG struct {
	pool *pgxpool.Pool
}

func NewMaintenanceRepoPG(pool *pgxpool.Pool) *MaintenanceRepoPG {
	return &MaintenanceRepoPG{pool: pool}
}

const maintenanceCols = `id, organization_id, equipment_id, scheduled_at, COALESCE(notes, ''), completed_at, created_by, created_at`

func scanMaintenance(row pgx.Row) (*MaintenanceRecord, error) {
	var m MaintenanceRecord
	err := row.Scan(&m.ID, &m.OrganizationID, &m.EquipmentID, &m.ScheduledAt,
		&m.Notes, &m.CompletedAt, &m.CreatedBy, &m.CreatedAt)
	return &m, err
}

func (r *MaintenanceRepoPG) Create(ctx context.Context, m *MaintenanceRecord) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO maintenance_record (organization_id, equipment_id, scheduled_at, notes, created_by)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		RETURNING id, created_at`,
		m.OrganizationID, m.EquipmentID, m.ScheduledAt, m.Notes, m.CreatedBy,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *MaintenanceRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*MaintenanceRecord, error) {
	return scanMaintenance(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+maintenanceCols+` FROM maintenance_record WHERE id = $1`, id))
}

func (r *MaintenanceRepoPG) Complete(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE maintenance_record SET completed_at = $1 WHERE id = $2 AND completed_at IS NULL`, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *MaintenanceRepoPG) ListByEquipment(ctx context.Context, orgID, equipmentID uuid.UUID) ([]*MaintenanceRecord, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+maintenanceCols+` FROM maintenance_record
		 WHERE organization_id = $1 AND equipment_id = $2
		 ORDER BY scheduled_at ASC`, orgID, equipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMaintenance(rows)
}

func (r *MaintenanceRepoPG) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]*MaintenanceRecord, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+maintenanceCols+` FROM maintenance_record
		 WHERE completed_at IS NULL AND scheduled_at >= $1 AND scheduled_at < $2
		 ORDER BY scheduled_at ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMaintenance(rows)
}

func collectMaintenance(rows pgx.Rows) ([]*MaintenanceRecord, error) {
	var items []*MaintenanceRecord
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

type SupplyRepoPG struct {
	pool *pgxpool.Pool
}

func NewSupplyRepoPG(pool *pgxpool.Pool) *SupplyRepoPG {
	return &SupplyRepoPG{pool: pool}
}

const supplyCols = `id, organization_id, name, current_stock, reorder_point, created_by, created_at, updated_at`

func scanSupply(row pgx.Row) (*SupplyItem, error) {
	var s SupplyItem
	err := row.Scan(&s.ID, &s.OrganizationID, &s.Name, &s.CurrentStock, &s.ReorderPoint,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *SupplyRepoPG) Create(ctx context.Context, s *SupplyItem) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO supply_item (organization_id, name, current_stock, reorder_point, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		s.OrganizationID, s.Name, s.CurrentStock, s.ReorderPoint, s.CreatedBy,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *SupplyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SupplyItem, error) {
	return scanSupply(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+supplyCols+` FROM supply_item WHERE id = $1`, id))
}

// AdjustStock applies the delta atomically and returns the new level. Stock
// never goes negative; the GREATEST clamp keeps concurrent decrements sane.
func (r *SupplyRepoPG) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	var level int
	err := conn(ctx, r.pool).QueryRow(ctx, `
		UPDATE supply_item
		SET current_stock = GREATEST(current_stock + $1, 0), updated_at = NOW()
		WHERE id = $2
		RETURNING current_stock`, delta, id).Scan(&level)
	return level, err
}

func (r *SupplyRepoPG) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*SupplyItem, int, error) {
	var total int
	if err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM supply_item WHERE organization_id = $1`, orgID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+supplyCols+` FROM supply_item WHERE organization_id = $1 ORDER BY name ASC LIMIT $2 OFFSET $3`,
		orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*SupplyItem
	for rows.Next() {
		s, err := scanSupply(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *SupplyRepoPG) ListBelowReorder(ctx context.Context) ([]*SupplyItem, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+supplyCols+` FROM supply_item WHERE current_stock < reorder_point ORDER BY organization_id, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*SupplyItem
	for rows.Next() {
		s, err := scanSupply(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

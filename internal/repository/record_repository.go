package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// RecordRepository persists one of the per-owner list tables (teachers,
// classes, subjects). Each record is a JSON document keyed by its own id.
type RecordRepository struct {
	db    *sqlx.DB
	table string
}

// NewRecordRepository returns a repository bound to the table of kind.
func NewRecordRepository(db *sqlx.DB, kind models.RecordKind) (*RecordRepository, error) {
	switch kind {
	case models.RecordKindTeachers, models.RecordKindClasses, models.RecordKindSubjects:
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
	return &RecordRepository{db: db, table: string(kind)}, nil
}

// Kind reports the table this repository writes to.
func (r *RecordRepository) Kind() models.RecordKind {
	return models.RecordKind(r.table)
}

// ListByOwner returns the owner's records in saved order.
func (r *RecordRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.WorkspaceRecord, error) {
	query := fmt.Sprintf(`SELECT id, owner_id, record_id, position, data, created_at, updated_at
FROM %s WHERE owner_id = $1 ORDER BY position ASC, record_id ASC`, r.table)
	var records []models.WorkspaceRecord
	if err := r.db.SelectContext(ctx, &records, query, ownerID); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.table, err)
	}
	return records, nil
}

// ReplaceAll swaps the owner's whole list for records in one transaction.
func (r *RecordRepository) ReplaceAll(ctx context.Context, ownerID string, records []models.WorkspaceRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace %s tx: %w", r.table, err)
	}

	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE owner_id = $1`, r.table)
	if _, err := tx.ExecContext(ctx, deleteQuery, ownerID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear %s: %w", r.table, err)
	}

	insertQuery := fmt.Sprintf(`INSERT INTO %s (id, owner_id, record_id, position, data, created_at, updated_at)
VALUES (:id, :owner_id, :record_id, :position, :data, :created_at, :updated_at)`, r.table)
	now := time.Now().UTC()
	for i := range records {
		rec := records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		rec.OwnerID = ownerID
		rec.Position = i
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		if _, err := tx.NamedExecContext(ctx, insertQuery, rec); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert %s %s: %w", r.table, rec.RecordID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace %s tx: %w", r.table, err)
	}
	return nil
}

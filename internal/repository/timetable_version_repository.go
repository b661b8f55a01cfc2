package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// TimetableVersionRepository keeps the latest timetable version of each owner.
type TimetableVersionRepository struct {
	db *sqlx.DB
}

func NewTimetableVersionRepository(db *sqlx.DB) *TimetableVersionRepository {
	return &TimetableVersionRepository{db: db}
}

// GetLatest returns sql.ErrNoRows when nothing was generated yet.
func (r *TimetableVersionRepository) GetLatest(ctx context.Context, ownerID string) (*models.TimetableVersionRow, error) {
	const query = `SELECT owner_id, version_id, status, score, version_data, generated_at, updated_at
FROM timetable_versions WHERE owner_id = $1`
	var row models.TimetableVersionRow
	if err := r.db.GetContext(ctx, &row, query, ownerID); err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert replaces the owner's latest version.
func (r *TimetableVersionRepository) Upsert(ctx context.Context, row *models.TimetableVersionRow) error {
	const query = `INSERT INTO timetable_versions (owner_id, version_id, status, score, version_data, generated_at, updated_at)
VALUES (:owner_id, :version_id, :status, :score, :version_data, :generated_at, :updated_at)
ON CONFLICT (owner_id)
DO UPDATE SET version_id = EXCLUDED.version_id, status = EXCLUDED.status, score = EXCLUDED.score,
              version_data = EXCLUDED.version_data, generated_at = EXCLUDED.generated_at, updated_at = EXCLUDED.updated_at`
	row.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert timetable version: %w", err)
	}
	return nil
}

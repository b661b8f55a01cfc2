package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// SchoolSettingsRepository stores one settings row per owner.
type SchoolSettingsRepository struct {
	db *sqlx.DB
}

func NewSchoolSettingsRepository(db *sqlx.DB) *SchoolSettingsRepository {
	return &SchoolSettingsRepository{db: db}
}

// Get returns sql.ErrNoRows when the owner has never saved settings.
func (r *SchoolSettingsRepository) Get(ctx context.Context, ownerID string) (*models.SchoolSettingsRow, error) {
	const query = `SELECT owner_id, school_name, board_type, academic_year, divisions_per_grade, custom_subjects, created_at, updated_at
FROM school_settings WHERE owner_id = $1`
	var row models.SchoolSettingsRow
	if err := r.db.GetContext(ctx, &row, query, ownerID); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *SchoolSettingsRepository) Upsert(ctx context.Context, row *models.SchoolSettingsRow) error {
	const query = `INSERT INTO school_settings (owner_id, school_name, board_type, academic_year, divisions_per_grade, custom_subjects, created_at, updated_at)
VALUES (:owner_id, :school_name, :board_type, :academic_year, :divisions_per_grade, :custom_subjects, :created_at, :updated_at)
ON CONFLICT (owner_id)
DO UPDATE SET school_name = EXCLUDED.school_name, board_type = EXCLUDED.board_type, academic_year = EXCLUDED.academic_year,
              divisions_per_grade = EXCLUDED.divisions_per_grade, custom_subjects = EXCLUDED.custom_subjects,
              updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert school settings: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

type TimeSlotConfigRepository struct {
	db *sqlx.DB
}

func NewTimeSlotConfigRepository(db *sqlx.DB) *TimeSlotConfigRepository {
	return &TimeSlotConfigRepository{db: db}
}

// Get returns sql.ErrNoRows when the owner has no saved templates.
func (r *TimeSlotConfigRepository) Get(ctx context.Context, ownerID string) (*models.TimeSlotConfigRow, error) {
	const query = `SELECT owner_id, weekday_slots, saturday_slots, is_saturday_half_day, created_at, updated_at
FROM time_slot_config WHERE owner_id = $1`
	var row models.TimeSlotConfigRow
	if err := r.db.GetContext(ctx, &row, query, ownerID); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *TimeSlotConfigRepository) Upsert(ctx context.Context, row *models.TimeSlotConfigRow) error {
	const query = `INSERT INTO time_slot_config (owner_id, weekday_slots, saturday_slots, is_saturday_half_day, created_at, updated_at)
VALUES (:owner_id, :weekday_slots, :saturday_slots, :is_saturday_half_day, :created_at, :updated_at)
ON CONFLICT (owner_id)
DO UPDATE SET weekday_slots = EXCLUDED.weekday_slots, saturday_slots = EXCLUDED.saturday_slots,
              is_saturday_half_day = EXCLUDED.is_saturday_half_day, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert time slot config: %w", err)
	}
	return nil
}

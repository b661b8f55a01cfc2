package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TimeSlot is either a teaching period (PeriodNumber >= 1) or a break.
type TimeSlot struct {
	PeriodNumber int    `json:"period_number" validate:"gte=0"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	IsBreak      bool   `json:"is_break"`
	Label        string `json:"label,omitempty"`
}

// Teaching reports whether the slot can hold a lesson.
func (s TimeSlot) Teaching() bool {
	return !s.IsBreak && s.PeriodNumber >= 1
}

// Range renders the slot as "start - end".
func (s TimeSlot) Range() string {
	return s.StartTime + " - " + s.EndTime
}

// TimeSlotConfig holds the weekday and Saturday templates.
type TimeSlotConfig struct {
	WeekdaySlots    []TimeSlot `json:"weekday_slots" validate:"dive"`
	SaturdaySlots   []TimeSlot `json:"saturday_slots" validate:"dive"`
	SaturdayHalfDay bool       `json:"is_saturday_half_day"`
}

// SlotsFor returns the template that applies to day.
func (c TimeSlotConfig) SlotsFor(day Day) []TimeSlot {
	if day == Saturday {
		return c.SaturdaySlots
	}
	return c.WeekdaySlots
}

// TeachingSlots filters out breaks, keeping template order.
func TeachingSlots(slots []TimeSlot) []TimeSlot {
	out := make([]TimeSlot, 0, len(slots))
	for _, s := range slots {
		if s.Teaching() {
			out = append(out, s)
		}
	}
	return out
}

// TimeSlotConfigRow is the persisted form of TimeSlotConfig.
type TimeSlotConfigRow struct {
	OwnerID         string         `db:"owner_id"`
	WeekdaySlots    types.JSONText `db:"weekday_slots"`
	SaturdaySlots   types.JSONText `db:"saturday_slots"`
	SaturdayHalfDay bool           `db:"is_saturday_half_day"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

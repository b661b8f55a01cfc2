package models

import (
	"fmt"
	"strings"
)

// Day enumerates the school week. The zero value is not a valid day.
type Day int

const (
	Monday Day = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// DaysPerWeek is the number of school days including Saturday.
const DaysPerWeek = 6

// Weekdays lists Monday to Friday in order.
var Weekdays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

// SchoolDays lists every school day in order.
var SchoolDays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

var dayNames = map[Day]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
}

var dayAliases = map[string]Day{
	"MONDAY":    Monday,
	"MON":       Monday,
	"TUESDAY":   Tuesday,
	"TUE":       Tuesday,
	"WEDNESDAY": Wednesday,
	"WED":       Wednesday,
	"THURSDAY":  Thursday,
	"THU":       Thursday,
	"FRIDAY":    Friday,
	"FRI":       Friday,
	"SATURDAY":  Saturday,
	"SAT":       Saturday,
}

// ParseDay converts a day name ("Monday", "MON", "monday") into a Day.
func ParseDay(raw string) (Day, error) {
	day, ok := dayAliases[strings.ToUpper(strings.TrimSpace(raw))]
	if !ok {
		return 0, fmt.Errorf("unknown day %q", raw)
	}
	return day, nil
}

// Valid reports whether d is one of the six school days.
func (d Day) Valid() bool {
	return d >= Monday && d <= Saturday
}

// Index returns a zero based position usable for fixed size per-day arrays.
func (d Day) Index() int {
	return int(d) - 1
}

func (d Day) String() string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Day(%d)", int(d))
}

// MarshalText encodes the day by name.
func (d Day) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid day %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText decodes a day name.
func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

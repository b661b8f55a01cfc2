package scheduler

import "github.com/noah-isme/sma-timetable-api/internal/models"

// ResourceKind identifies a room resource shared by every class.
type ResourceKind int

const (
	ResourceLab ResourceKind = iota
	ResourcePlayground
)

type slotKey struct {
	Day    models.Day
	Period int
}

// --- Teacher availability ---

type teacherAvailability struct {
	teacher  models.Teacher
	perDay   [models.DaysPerWeek]int
	weekly   int
	assigned map[slotKey]bool
}

func newTeacherAvailability(teacher models.Teacher) *teacherAvailability {
	return &teacherAvailability{
		teacher:  teacher,
		assigned: make(map[slotKey]bool),
	}
}

func (t *teacherAvailability) free(day models.Day, period int) bool {
	return !t.assigned[slotKey{Day: day, Period: period}]
}

func (t *teacherAvailability) canTeach(day models.Day, period int) bool {
	if !day.Valid() || t.teacher.IsAbsent || !t.teacher.AvailableOn(day) {
		return false
	}
	if !t.free(day, period) {
		return false
	}
	if t.perDay[day.Index()] >= t.teacher.MaxPeriodsPerDay {
		return false
	}
	return t.weekly < t.teacher.MaxPeriodsPerWeek
}

func (t *teacherAvailability) reserve(day models.Day, period int) {
	t.assigned[slotKey{Day: day, Period: period}] = true
	if day.Valid() {
		t.perDay[day.Index()]++
	}
	t.weekly++
}

// Tracker holds the committed slots and loads of a single generation run.
// It must not be shared between runs.
type Tracker struct {
	teachers  map[string]*teacherAvailability
	resources map[ResourceKind]map[slotKey]bool
}

// NewTracker builds empty availability state for teachers.
func NewTracker(teachers []models.Teacher) *Tracker {
	t := &Tracker{
		teachers: make(map[string]*teacherAvailability, len(teachers)),
		resources: map[ResourceKind]map[slotKey]bool{
			ResourceLab:        {},
			ResourcePlayground: {},
		},
	}
	for _, teacher := range teachers {
		if _, exists := t.teachers[teacher.ID]; exists {
			continue
		}
		t.teachers[teacher.ID] = newTeacherAvailability(teacher)
	}
	return t
}

// IsTeacherFree reports whether the teacher holds nothing at (day, period).
// Unknown teachers are never free.
func (t *Tracker) IsTeacherFree(teacherID string, day models.Day, period int) bool {
	ta, ok := t.teachers[teacherID]
	return ok && ta.free(day, period)
}

// CanAssign checks every hard teacher constraint for (day, period).
func (t *Tracker) CanAssign(teacherID string, day models.Day, period int) bool {
	ta, ok := t.teachers[teacherID]
	return ok && ta.canTeach(day, period)
}

// Commit records an assignment. Callers commit each placement exactly once.
func (t *Tracker) Commit(teacherID string, day models.Day, period int) {
	if ta, ok := t.teachers[teacherID]; ok {
		ta.reserve(day, period)
	}
}

// DailyLoad returns the periods committed to the teacher on day.
func (t *Tracker) DailyLoad(teacherID string, day models.Day) int {
	ta, ok := t.teachers[teacherID]
	if !ok || !day.Valid() {
		return 0
	}
	return ta.perDay[day.Index()]
}

// WeeklyLoad returns the periods committed to the teacher this week.
func (t *Tracker) WeeklyLoad(teacherID string) int {
	if ta, ok := t.teachers[teacherID]; ok {
		return ta.weekly
	}
	return 0
}

// IsResourceFree reports whether no class uses the resource at (day, period).
func (t *Tracker) IsResourceFree(kind ResourceKind, day models.Day, period int) bool {
	return !t.resources[kind][slotKey{Day: day, Period: period}]
}

// CommitResource marks the resource taken at (day, period).
func (t *Tracker) CommitResource(kind ResourceKind, day models.Day, period int) {
	slots, ok := t.resources[kind]
	if !ok {
		slots = make(map[slotKey]bool)
		t.resources[kind] = slots
	}
	slots[slotKey{Day: day, Period: period}] = true
}

package scheduler

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// GenerateInput is the complete, caller owned snapshot a generation run reads.
type GenerateInput struct {
	Classes       []models.Class
	Subjects      []models.Subject
	Teachers      []models.Teacher
	WeekdaySlots  []models.TimeSlot
	SaturdaySlots []models.TimeSlot
	// GradeRange limits regeneration to a band of grades. Entries in Previous
	// that belong to classes outside the band are kept.
	GradeRange *GradeRange
	Previous   []models.TimetableEntry
	// AllowOverfill enables the second pass that may exceed quotas by one.
	AllowOverfill bool
	GeneratedAt   time.Time
}

// Result is the outcome of one generation run.
type Result struct {
	Entries     []models.TimetableEntry
	Errors      []string
	Score       int
	FilledSlots int
	TotalSlots  int
}

// Generate fills the weekly grid of every targeted class. It never fails:
// anything it cannot satisfy is reported in Result.Errors.
func Generate(in GenerateInput) Result {
	generatedAt := in.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}

	week := buildWeek(in.WeekdaySlots, in.SaturdaySlots)
	tracker := NewTracker(in.Teachers)
	teachers := lo.KeyBy(in.Teachers, func(t models.Teacher) string { return t.ID })
	targets := TargetClasses(in.Classes, in.GradeRange)

	preserved := preservedEntries(in)
	subjects := lo.KeyBy(in.Subjects, func(s models.Subject) string { return s.ID })
	for _, entries := range preserved {
		for _, entry := range entries {
			tracker.Commit(entry.TeacherID, entry.Day, entry.Period)
			for _, kind := range heldResources(entry, subjects) {
				tracker.CommitResource(kind, entry.Day, entry.Period)
			}
		}
	}

	var diagnostics []string
	generated := make(map[string][]models.TimetableEntry, len(targets))
	for _, class := range targets {
		run := newClassRun(class, week, in.Subjects, teachers, tracker)
		run.lockTeachers()
		run.seedClassTeacher()
		run.fill(false)
		if in.AllowOverfill {
			run.fill(true)
		}
		generated[class.ID] = run.entries(generatedAt)
		diagnostics = append(diagnostics, run.diagnostics()...)
	}

	var entries []models.TimetableEntry
	activeClasses := 0
	seen := make(map[string]bool, len(in.Classes))
	for _, class := range in.Classes {
		if seen[class.ID] {
			continue
		}
		seen[class.ID] = true
		if list, ok := generated[class.ID]; ok {
			entries = append(entries, list...)
			activeClasses++
			continue
		}
		if list, ok := preserved[class.ID]; ok {
			entries = append(entries, list...)
			if class.Enabled {
				activeClasses++
			}
		}
	}

	total := activeClasses * teachingSlotsPerWeek(week)
	return Result{
		Entries:     entries,
		Errors:      diagnostics,
		Score:       Score(len(entries), total, len(diagnostics)),
		FilledSlots: len(entries),
		TotalSlots:  total,
	}
}

// TargetClasses returns the enabled classes inside gradeRange, in input order.
func TargetClasses(classes []models.Class, gradeRange *GradeRange) []models.Class {
	filtered := lo.Filter(classes, func(c models.Class, _ int) bool {
		return c.Enabled && gradeRange.Contains(c.Grade)
	})
	return lo.UniqBy(filtered, func(c models.Class) string { return c.ID })
}

func preservedEntries(in GenerateInput) map[string][]models.TimetableEntry {
	preserved := make(map[string][]models.TimetableEntry)
	if in.GradeRange == nil {
		return preserved
	}
	classes := lo.KeyBy(in.Classes, func(c models.Class) string { return c.ID })
	for _, entry := range in.Previous {
		class, ok := classes[entry.ClassID]
		if !ok || in.GradeRange.Contains(class.Grade) {
			continue
		}
		preserved[entry.ClassID] = append(preserved[entry.ClassID], entry)
	}
	return preserved
}

// heldResources reports the shared resources a kept entry occupies. The
// subject flags decide; the room label is only read for unknown subjects.
func heldResources(entry models.TimetableEntry, subjects map[string]models.Subject) []ResourceKind {
	var held []ResourceKind
	if subject, ok := subjects[entry.SubjectID]; ok {
		if subject.IsLab {
			held = append(held, ResourceLab)
		}
		if subject.NeedsPlayground {
			held = append(held, ResourcePlayground)
		}
		return held
	}
	switch entry.Room {
	case models.RoomComputerLab:
		held = append(held, ResourceLab)
	case models.RoomPlayground:
		held = append(held, ResourcePlayground)
	}
	return held
}

// --- Week layout ---

type daySlots struct {
	day      models.Day
	slots    []models.TimeSlot
	position map[int]int
}

func buildWeek(weekday, saturday []models.TimeSlot) []daySlots {
	cfg := models.TimeSlotConfig{WeekdaySlots: weekday, SaturdaySlots: saturday}
	week := make([]daySlots, 0, models.DaysPerWeek)
	for _, day := range models.SchoolDays {
		slots := models.TeachingSlots(cfg.SlotsFor(day))
		sort.SliceStable(slots, func(i, j int) bool { return slots[i].PeriodNumber < slots[j].PeriodNumber })
		slots = lo.UniqBy(slots, func(s models.TimeSlot) int { return s.PeriodNumber })

		position := make(map[int]int, len(slots))
		for i, s := range slots {
			position[s.PeriodNumber] = i
		}
		week = append(week, daySlots{day: day, slots: slots, position: position})
	}
	return week
}

func teachingSlotsPerWeek(week []daySlots) int {
	return lo.SumBy(week, func(ds daySlots) int { return len(ds.slots) })
}

// --- Per class state ---

type subjectState struct {
	subject   models.Subject
	order     int
	qualified []string
	assigned  int
	perDay    [models.DaysPerWeek]int
	locked    string
}

func (s *subjectState) remaining() int {
	return s.subject.PeriodsPerWeek - s.assigned
}

type placement struct {
	subject   *subjectState
	teacherID string
	room      string
}

type classRun struct {
	class    models.Class
	week     []daySlots
	subjects []*subjectState
	teachers map[string]models.Teacher
	tracker  *Tracker
	grid     map[slotKey]*placement
	unfilled map[slotKey]bool
}

func newClassRun(class models.Class, week []daySlots, subjects []models.Subject, teachers map[string]models.Teacher, tracker *Tracker) *classRun {
	run := &classRun{
		class:    class,
		week:     week,
		teachers: teachers,
		tracker:  tracker,
		grid:     make(map[slotKey]*placement),
		unfilled: make(map[slotKey]bool),
	}
	for _, subject := range subjects {
		if subject.ClassID != class.ID {
			continue
		}
		qualified := lo.Uniq(lo.Filter(subject.QualifiedTeacherIDs, func(id string, _ int) bool {
			_, ok := teachers[id]
			return ok
		}))
		run.subjects = append(run.subjects, &subjectState{
			subject:   subject,
			order:     len(run.subjects),
			qualified: qualified,
		})
	}
	return run
}

// lockTeachers picks, per subject, the least loaded qualified teacher who is
// not absent. Ties keep the order of QualifiedTeacherIDs.
func (r *classRun) lockTeachers() {
	for _, s := range r.subjects {
		best, bestLoad := "", 0
		for _, id := range s.qualified {
			if r.teachers[id].IsAbsent {
				continue
			}
			load := r.tracker.WeeklyLoad(id)
			if best == "" || load < bestLoad {
				best, bestLoad = id, load
			}
		}
		s.locked = best
	}
}

// seedClassTeacher opens and closes each day with the class teacher when the
// teacher is qualified for one of the class subjects.
func (r *classRun) seedClassTeacher() {
	teacherID := r.class.ClassTeacherID
	if teacherID == "" {
		return
	}
	owned := lo.Filter(r.subjects, func(s *subjectState, _ int) bool {
		return lo.Contains(s.qualified, teacherID)
	})
	if len(owned) == 0 {
		return
	}

	for _, ds := range r.week {
		if len(ds.slots) == 0 {
			continue
		}
		periods := []int{ds.slots[0].PeriodNumber}
		if last := ds.slots[len(ds.slots)-1].PeriodNumber; last != periods[0] {
			periods = append(periods, last)
		}
		for _, period := range periods {
			if r.grid[slotKey{Day: ds.day, Period: period}] != nil {
				continue
			}
			if !r.tracker.CanAssign(teacherID, ds.day, period) {
				continue
			}
			for _, s := range orderCandidates(owned, false) {
				if !r.distributionAllows(s, ds, period, false) || !r.resourcesFree(s, ds.day, period) {
					continue
				}
				r.place(s, teacherID, ds.day, period)
				break
			}
		}
	}
}

// fill walks every empty slot once. The strict pass only places subjects that
// still need periods; the overfill pass allows one unit past each quota.
func (r *classRun) fill(overfill bool) {
	for _, ds := range r.week {
		for _, slot := range ds.slots {
			period := slot.PeriodNumber
			key := slotKey{Day: ds.day, Period: period}
			if r.grid[key] != nil {
				continue
			}

			blocked := false
			for _, s := range orderCandidates(r.subjects, overfill) {
				if !r.distributionAllows(s, ds, period, overfill) {
					continue
				}
				if !r.resourcesFree(s, ds.day, period) {
					blocked = true
					continue
				}
				teacherID := r.pickTeacher(s, ds.day, period)
				if teacherID == "" {
					blocked = true
					continue
				}
				r.place(s, teacherID, ds.day, period)
				break
			}
			if r.grid[key] == nil && blocked {
				r.unfilled[key] = true
			}
		}
	}
}

func orderCandidates(subjects []*subjectState, overfill bool) []*subjectState {
	candidates := lo.Filter(subjects, func(s *subjectState, _ int) bool {
		if len(s.qualified) == 0 {
			return false
		}
		if overfill {
			return s.subject.PeriodsPerWeek > 0 && s.assigned < s.subject.PeriodsPerWeek+1
		}
		return s.remaining() > 0
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if overfill {
			if needA, needB := a.remaining() > 0, b.remaining() > 0; needA != needB {
				return needA
			}
		}
		if ra, rb := a.subject.Priority.Rank(), b.subject.Priority.Rank(); ra != rb {
			return ra < rb
		}
		if a.remaining() != b.remaining() {
			return a.remaining() > b.remaining()
		}
		return a.order < b.order
	})
	return candidates
}

// distributionAllows applies the per-day cap and the double period rule.
func (r *classRun) distributionAllows(s *subjectState, ds daySlots, period int, overfill bool) bool {
	if limit := s.subject.MaxPerDay; limit > 0 {
		if overfill {
			limit++
		}
		if s.perDay[ds.day.Index()] >= limit {
			return false
		}
	}
	if s.subject.AllowDoublePeriod {
		return true
	}
	pos, ok := ds.position[period]
	if !ok {
		return false
	}
	for _, neighbour := range []int{pos - 1, pos + 1} {
		if neighbour < 0 || neighbour >= len(ds.slots) {
			continue
		}
		if p := r.grid[slotKey{Day: ds.day, Period: ds.slots[neighbour].PeriodNumber}]; p != nil && p.subject == s {
			return false
		}
	}
	return true
}

func (r *classRun) resourcesFree(s *subjectState, day models.Day, period int) bool {
	if s.subject.IsLab && !r.tracker.IsResourceFree(ResourceLab, day, period) {
		return false
	}
	if s.subject.NeedsPlayground && !r.tracker.IsResourceFree(ResourcePlayground, day, period) {
		return false
	}
	return true
}

// pickTeacher prefers the subject's locked teacher, then the least weekly
// loaded qualified teacher who can take the slot.
func (r *classRun) pickTeacher(s *subjectState, day models.Day, period int) string {
	if s.locked != "" && r.tracker.CanAssign(s.locked, day, period) {
		return s.locked
	}
	best, bestLoad := "", 0
	for _, id := range s.qualified {
		if !r.tracker.CanAssign(id, day, period) {
			continue
		}
		load := r.tracker.WeeklyLoad(id)
		if best == "" || load < bestLoad {
			best, bestLoad = id, load
		}
	}
	return best
}

func (r *classRun) place(s *subjectState, teacherID string, day models.Day, period int) {
	room := ClassRoom(r.class)
	switch {
	case s.subject.IsLab:
		room = models.RoomComputerLab
		r.tracker.CommitResource(ResourceLab, day, period)
		if s.subject.NeedsPlayground {
			r.tracker.CommitResource(ResourcePlayground, day, period)
		}
	case s.subject.NeedsPlayground:
		room = models.RoomPlayground
		r.tracker.CommitResource(ResourcePlayground, day, period)
	}

	r.tracker.Commit(teacherID, day, period)
	s.assigned++
	s.perDay[day.Index()]++
	r.grid[slotKey{Day: day, Period: period}] = &placement{subject: s, teacherID: teacherID, room: room}
}

func (r *classRun) entries(generatedAt time.Time) []models.TimetableEntry {
	var entries []models.TimetableEntry
	for _, ds := range r.week {
		for _, slot := range ds.slots {
			p := r.grid[slotKey{Day: ds.day, Period: slot.PeriodNumber}]
			if p == nil {
				continue
			}
			entries = append(entries, models.TimetableEntry{
				ID:          EntryID(r.class.ID, ds.day, slot.PeriodNumber),
				ClassID:     r.class.ID,
				Day:         ds.day,
				Period:      slot.PeriodNumber,
				TimeSlot:    slot.Range(),
				SubjectID:   p.subject.subject.ID,
				TeacherID:   p.teacherID,
				Room:        p.room,
				Status:      models.TimetableStatusDraft,
				GeneratedAt: generatedAt,
			})
		}
	}
	return entries
}

func (r *classRun) diagnostics() []string {
	label := r.class.Label()
	var out []string
	for _, ds := range r.week {
		for _, slot := range ds.slots {
			key := slotKey{Day: ds.day, Period: slot.PeriodNumber}
			if r.grid[key] == nil && r.unfilled[key] {
				out = append(out, fmt.Sprintf("%s: no subject or teacher available for %s period %d", label, ds.day, slot.PeriodNumber))
			}
		}
	}
	for _, s := range r.subjects {
		switch {
		case s.assigned < s.subject.PeriodsPerWeek:
			out = append(out, fmt.Sprintf("%s: %s under-assigned (%d/%d periods)", label, s.subject.Name, s.assigned, s.subject.PeriodsPerWeek))
		case s.assigned > s.subject.PeriodsPerWeek:
			out = append(out, fmt.Sprintf("%s: %s over-assigned (%d/%d periods)", label, s.subject.Name, s.assigned, s.subject.PeriodsPerWeek))
		}
	}
	return out
}

// EntryID builds the stable identifier of a (class, day, period) cell.
func EntryID(classID string, day models.Day, period int) string {
	return fmt.Sprintf("tt_%s_%s_%d", classID, day, period)
}

// ClassRoom is the home room label of a class.
func ClassRoom(class models.Class) string {
	return "Room " + class.Label()
}

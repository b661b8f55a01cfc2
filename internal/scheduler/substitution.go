package scheduler

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// dayLedger is who teaches what on one day of the current timetable.
type dayLedger struct {
	busy map[string]map[int]bool
	load map[string]int
}

func newDayLedger(entries []models.TimetableEntry, day models.Day) dayLedger {
	ledger := dayLedger{busy: make(map[string]map[int]bool), load: make(map[string]int)}
	for _, entry := range entries {
		if entry.Day != day || entry.TeacherID == "" {
			continue
		}
		if ledger.busy[entry.TeacherID] == nil {
			ledger.busy[entry.TeacherID] = make(map[int]bool)
		}
		ledger.busy[entry.TeacherID][entry.Period] = true
		ledger.load[entry.TeacherID]++
	}
	return ledger
}

// Compatibility ranks a candidate: subject matches land in 85-100, other free
// teachers in 40-60, both decreasing with the candidate's load that day.
func Compatibility(subjectMatch bool, sameDayLoad int) int {
	if subjectMatch {
		return max(85, 100-3*sameDayLoad)
	}
	return max(40, 60-4*sameDayLoad)
}

func subjectMatches(teacher models.Teacher, subject models.Subject, known bool) bool {
	if !known {
		return false
	}
	return subject.IsQualified(teacher.ID) || teacher.TeachesSubject(subject.Name)
}

// rankCandidates lists teachers able to cover entry, best first.
func rankCandidates(entry models.TimetableEntry, subject models.Subject, knownSubject bool, teachers []models.Teacher, ledger dayLedger, exclude map[string]bool) []models.SubstitutionSuggestion {
	type ranked struct {
		suggestion models.SubstitutionSuggestion
		order      int
	}

	var candidates []ranked
	for i, teacher := range teachers {
		if teacher.IsAbsent || exclude[teacher.ID] || teacher.ID == entry.TeacherID {
			continue
		}
		if ledger.busy[teacher.ID][entry.Period] {
			continue
		}
		load := ledger.load[teacher.ID]
		match := subjectMatches(teacher, subject, knownSubject)
		reason := fmt.Sprintf("Free this period, %d periods today", load)
		if match {
			reason = fmt.Sprintf("Teaches %s, %d periods today", subject.Name, load)
		}
		candidates = append(candidates, ranked{
			suggestion: models.SubstitutionSuggestion{
				TeacherID:     teacher.ID,
				TeacherName:   teacher.Name,
				Reason:        reason,
				Compatibility: Compatibility(match, load),
				CurrentLoad:   load,
				SubjectMatch:  match,
			},
			order: i,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i].suggestion, candidates[j].suggestion
		if a.Compatibility != b.Compatibility {
			return a.Compatibility > b.Compatibility
		}
		if a.CurrentLoad != b.CurrentLoad {
			return a.CurrentLoad < b.CurrentLoad
		}
		return candidates[i].order < candidates[j].order
	})

	return lo.Map(candidates, func(c ranked, _ int) models.SubstitutionSuggestion { return c.suggestion })
}

// SuggestSubstitutes returns, for every period absentTeacherID holds on day,
// the teachers who could cover it ranked best first. Teachers already busy in
// that period, including substitutes applied earlier, are never suggested.
func SuggestSubstitutes(entries []models.TimetableEntry, teachers []models.Teacher, subjects []models.Subject, absentTeacherID string, day models.Day) []models.PeriodSuggestions {
	ledger := newDayLedger(entries, day)
	subjectByID := lo.KeyBy(subjects, func(s models.Subject) string { return s.ID })
	exclude := map[string]bool{absentTeacherID: true}

	affected := lo.Filter(entries, func(e models.TimetableEntry, _ int) bool {
		return e.TeacherID == absentTeacherID && e.Day == day
	})
	sort.SliceStable(affected, func(i, j int) bool { return affected[i].Period < affected[j].Period })

	out := make([]models.PeriodSuggestions, 0, len(affected))
	for _, entry := range affected {
		subject, ok := subjectByID[entry.SubjectID]
		out = append(out, models.PeriodSuggestions{
			EntryID:    entry.ID,
			ClassID:    entry.ClassID,
			SubjectID:  entry.SubjectID,
			Day:        entry.Day,
			Period:     entry.Period,
			Candidates: rankCandidates(entry, subject, ok, teachers, ledger, exclude),
		})
	}
	return out
}

// ApplySubstitution returns a copy of entries in which the entry held by
// absentTeacherID at (day, period) is taught by substituteTeacherID, plus the
// index of that entry. Load caps are not re-checked. The index is -1 when no
// such entry exists.
func ApplySubstitution(entries []models.TimetableEntry, absentTeacherID, substituteTeacherID string, day models.Day, period int) ([]models.TimetableEntry, int) {
	out := make([]models.TimetableEntry, len(entries))
	copy(out, entries)
	for i := range out {
		if out[i].TeacherID != absentTeacherID || out[i].Day != day || out[i].Period != period {
			continue
		}
		out[i].TeacherID = substituteTeacherID
		if out[i].SubstitutedFor == "" {
			out[i].SubstitutedFor = absentTeacherID
		}
		return out, i
	}
	return out, -1
}

package scheduler

import (
	"fmt"
	"sort"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

type coverSlot struct {
	entry      models.TimetableEntry
	candidates []models.SubstitutionSuggestion
}

// PlanCover proposes one substitute per uncovered period for every teacher in
// absentTeacherIDs on day. Within a period each substitute covers at most one
// class. Subject matched cover is maximised first, then the remaining periods
// are matched against any free teacher.
func PlanCover(entries []models.TimetableEntry, teachers []models.Teacher, subjects []models.Subject, absentTeacherIDs []string, day models.Day) (models.CoverPlan, error) {
	plan := models.CoverPlan{Day: day, Assignments: []models.CoverAssignment{}, Uncovered: []models.UncoveredPeriod{}}

	absent := lo.SliceToMap(absentTeacherIDs, func(id string) (string, bool) { return id, true })
	absentOrder := make(map[string]int, len(absentTeacherIDs))
	for i, id := range absentTeacherIDs {
		if _, ok := absentOrder[id]; !ok {
			absentOrder[id] = i
		}
	}

	ledger := newDayLedger(entries, day)
	subjectByID := lo.KeyBy(subjects, func(s models.Subject) string { return s.ID })

	affected := lo.Filter(entries, func(e models.TimetableEntry, _ int) bool {
		return e.Day == day && absent[e.TeacherID]
	})
	sort.SliceStable(affected, func(i, j int) bool {
		if affected[i].Period != affected[j].Period {
			return affected[i].Period < affected[j].Period
		}
		return absentOrder[affected[i].TeacherID] < absentOrder[affected[j].TeacherID]
	})

	byPeriod := lo.GroupBy(affected, func(e models.TimetableEntry) int { return e.Period })
	periods := lo.Keys(byPeriod)
	sort.Ints(periods)

	for _, period := range periods {
		slots := lo.Map(byPeriod[period], func(e models.TimetableEntry, _ int) coverSlot {
			subject, ok := subjectByID[e.SubjectID]
			return coverSlot{entry: e, candidates: rankCandidates(e, subject, ok, teachers, ledger, absent)}
		})

		chosen, err := matchPeriod(slots)
		if err != nil {
			return plan, fmt.Errorf("match period %d: %w", period, err)
		}

		for i, slot := range slots {
			suggestion, ok := chosen[i]
			if !ok {
				plan.Uncovered = append(plan.Uncovered, models.UncoveredPeriod{
					AbsentTeacherID: slot.entry.TeacherID,
					ClassID:         slot.entry.ClassID,
					SubjectID:       slot.entry.SubjectID,
					Day:             slot.entry.Day,
					Period:          slot.entry.Period,
				})
				continue
			}
			plan.Assignments = append(plan.Assignments, models.CoverAssignment{
				AbsentTeacherID:     slot.entry.TeacherID,
				SubstituteTeacherID: suggestion.TeacherID,
				ClassID:             slot.entry.ClassID,
				SubjectID:           slot.entry.SubjectID,
				Day:                 slot.entry.Day,
				Period:              slot.entry.Period,
				Compatibility:       suggestion.Compatibility,
			})
		}
	}

	return plan, nil
}

// matchPeriod pairs the slots of one period with distinct substitutes.
func matchPeriod(slots []coverSlot) (map[int]models.SubstitutionSuggestion, error) {
	chosen := make(map[int]models.SubstitutionSuggestion, len(slots))
	used := make(map[string]bool)

	for _, subjectOnly := range []bool{true, false} {
		var left []int
		for i := range slots {
			if _, done := chosen[i]; !done {
				left = append(left, i)
			}
		}

		var right []string
		seen := make(map[string]bool)
		for _, i := range left {
			for _, c := range slots[i].candidates {
				if used[c.TeacherID] || seen[c.TeacherID] || (subjectOnly && !c.SubjectMatch) {
					continue
				}
				seen[c.TeacherID] = true
				right = append(right, c.TeacherID)
			}
		}
		if len(left) == 0 || len(right) == 0 {
			continue
		}

		neighbours := func(slotAny, teacherAny any) (bool, error) {
			slot := slots[slotAny.(int)]
			teacherID := teacherAny.(string)
			_, ok := lo.Find(slot.candidates, func(c models.SubstitutionSuggestion) bool {
				return c.TeacherID == teacherID && (!subjectOnly || c.SubjectMatch)
			})
			return ok, nil
		}

		leftAny := lo.Map(left, func(i int, _ int) any { return i })
		rightAny := lo.Map(right, func(id string, _ int) any { return id })
		graph, err := bipartitegraph.NewBipartiteGraph(leftAny, rightAny, neighbours)
		if err != nil {
			return nil, err
		}

		for _, edge := range graph.LargestMatching() {
			slotIndex, teacherID := left[edge.Node1], right[edge.Node2-len(left)]
			suggestion, _ := lo.Find(slots[slotIndex].candidates, func(c models.SubstitutionSuggestion) bool {
				return c.TeacherID == teacherID
			})
			chosen[slotIndex] = suggestion
			used[teacherID] = true
		}
	}

	return chosen, nil
}

// ApplyCoverPlan applies every assignment of plan to entries.
func ApplyCoverPlan(entries []models.TimetableEntry, plan models.CoverPlan) []models.TimetableEntry {
	out := append([]models.TimetableEntry(nil), entries...)
	for _, a := range plan.Assignments {
		out, _ = ApplySubstitution(out, a.AbsentTeacherID, a.SubstituteTeacherID, a.Day, a.Period)
	}
	return out
}

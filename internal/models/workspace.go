package models

// WorkspaceSection names one independently persisted part of a workspace.
type WorkspaceSection string

const (
	SectionSchool    WorkspaceSection = "school"
	SectionTimeSlots WorkspaceSection = "timeslots"
	SectionTeachers  WorkspaceSection = "teachers"
	SectionClasses   WorkspaceSection = "classes"
	SectionSubjects  WorkspaceSection = "subjects"
	SectionTimetable WorkspaceSection = "timetable"
)

// AllSections lists every section in persistence order.
var AllSections = []WorkspaceSection{
	SectionSchool, SectionTimeSlots, SectionTeachers, SectionClasses, SectionSubjects, SectionTimetable,
}

// Workspace is everything one owner edits: school settings, the period
// templates, the three record lists and the latest timetable.
type Workspace struct {
	School    School            `json:"school"`
	TimeSlots TimeSlotConfig    `json:"time_slots"`
	Teachers  []Teacher         `json:"teachers"`
	Classes   []Class           `json:"classes"`
	Subjects  []Subject         `json:"subjects"`
	Timetable *TimetableVersion `json:"timetable,omitempty"`
}

// Clone returns a deep copy safe to hand out of a lock.
func (w *Workspace) Clone() *Workspace {
	if w == nil {
		return nil
	}
	out := &Workspace{
		School:    w.School.clone(),
		TimeSlots: w.TimeSlots.clone(),
		Teachers:  make([]Teacher, len(w.Teachers)),
		Classes:   append([]Class(nil), w.Classes...),
		Subjects:  make([]Subject, len(w.Subjects)),
	}
	for i, t := range w.Teachers {
		out.Teachers[i] = t.clone()
	}
	for i, s := range w.Subjects {
		s.QualifiedTeacherIDs = append([]string(nil), s.QualifiedTeacherIDs...)
		out.Subjects[i] = s
	}
	if w.Timetable != nil {
		v := *w.Timetable
		v.Entries = append([]TimetableEntry(nil), w.Timetable.Entries...)
		v.Errors = append([]string(nil), w.Timetable.Errors...)
		out.Timetable = &v
	}
	return out
}

// FindTeacher returns the index of the teacher with id, or -1.
func (w *Workspace) FindTeacher(id string) int {
	for i := range w.Teachers {
		if w.Teachers[i].ID == id {
			return i
		}
	}
	return -1
}

// FindClass returns the index of the class with id, or -1.
func (w *Workspace) FindClass(id string) int {
	for i := range w.Classes {
		if w.Classes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s School) clone() School {
	out := s
	out.CustomSubjects = append([]string(nil), s.CustomSubjects...)
	if s.DivisionsPerGrade != nil {
		out.DivisionsPerGrade = make(map[string][]string, len(s.DivisionsPerGrade))
		for grade, sections := range s.DivisionsPerGrade {
			out.DivisionsPerGrade[grade] = append([]string(nil), sections...)
		}
	}
	return out
}

func (c TimeSlotConfig) clone() TimeSlotConfig {
	return TimeSlotConfig{
		WeekdaySlots:    append([]TimeSlot(nil), c.WeekdaySlots...),
		SaturdaySlots:   append([]TimeSlot(nil), c.SaturdaySlots...),
		SaturdayHalfDay: c.SaturdayHalfDay,
	}
}

func (t Teacher) clone() Teacher {
	out := t
	out.SubjectsCanTeach = append([]string(nil), t.SubjectsCanTeach...)
	out.ClassesHandled = append([]string(nil), t.ClassesHandled...)
	out.AvailableDays = append([]Day(nil), t.AvailableDays...)
	out.SubjectClassMap = make([]SubjectClassMapping, len(t.SubjectClassMap))
	for i, m := range t.SubjectClassMap {
		out.SubjectClassMap[i] = SubjectClassMapping{Subject: m.Subject, ClassIDs: append([]string(nil), m.ClassIDs...)}
	}
	return out
}

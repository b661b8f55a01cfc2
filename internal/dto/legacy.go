package dto

// Browser storage keys of a legacy workspace export.
const (
	LegacyKeySchool    = "aceedx_school"
	LegacyKeyTeachers  = "aceedx_teachers"
	LegacyKeyClasses   = "aceedx_classes"
	LegacyKeySubjects  = "aceedx_subjects"
	LegacyKeyTimeSlots = "aceedx_timeslots"
	LegacyKeyTimetable = "aceedx_timetable"
)

// LegacyImportRequest is the raw key/value dump of browser storage. Values
// may be JSON encoded strings or already decoded objects.
type LegacyImportRequest map[string]interface{}

type LegacySchool struct {
	SchoolName        string              `mapstructure:"schoolName"`
	BoardType         string              `mapstructure:"boardType"`
	AcademicYear      string              `mapstructure:"academicYear"`
	DivisionsPerGrade map[string][]string `mapstructure:"divisionsPerGrade"`
	CustomSubjects    []string            `mapstructure:"customSubjects"`
}

type LegacySubjectClassMapping struct {
	Subject  string   `mapstructure:"subject"`
	ClassIDs []string `mapstructure:"classIds"`
}

type LegacyTeacher struct {
	TeacherID         string                      `mapstructure:"teacherId"`
	Name              string                      `mapstructure:"name"`
	TeacherRole       string                      `mapstructure:"teacherRole"`
	SubjectsCanTeach  []string                    `mapstructure:"subjectsCanTeach"`
	ClassesHandled    []string                    `mapstructure:"classesHandled"`
	SubjectClassMap   []LegacySubjectClassMapping `mapstructure:"subjectClassMap"`
	MaxPeriodsPerDay  int                         `mapstructure:"maxPeriodsPerDay"`
	MaxPeriodsPerWeek int                         `mapstructure:"maxPeriodsPerWeek"`
	AvailableDays     []string                    `mapstructure:"availableDays"`
	IsAbsent          bool                        `mapstructure:"isAbsent"`
}

type LegacyClass struct {
	ClassID        string `mapstructure:"classId"`
	Grade          string `mapstructure:"grade"`
	Section        string `mapstructure:"section"`
	ClassTeacherID string `mapstructure:"classTeacherId"`
	// IsEnabled is a pointer because older exports omit it; absent means enabled.
	IsEnabled *bool `mapstructure:"isEnabled"`
}

type LegacySubject struct {
	SubjectID           string   `mapstructure:"subjectId"`
	ClassID             string   `mapstructure:"classId"`
	SubjectName         string   `mapstructure:"subjectName"`
	PeriodsPerWeek      int      `mapstructure:"periodsPerWeek"`
	MaxPerDay           int      `mapstructure:"maxPerDay"`
	IsLab               bool     `mapstructure:"isLab"`
	AllowDoublePeriod   bool     `mapstructure:"allowDoublePeriod"`
	Priority            string   `mapstructure:"priority"`
	QualifiedTeacherIDs []string `mapstructure:"qualifiedTeacherIds"`
	NeedsPlayground     bool     `mapstructure:"needsPlayground"`
}

type LegacyTimeSlot struct {
	PeriodNumber int    `mapstructure:"periodNumber"`
	StartTime    string `mapstructure:"startTime"`
	EndTime      string `mapstructure:"endTime"`
	IsBreak      bool   `mapstructure:"isBreak"`
	Label        string `mapstructure:"label"`
}

type LegacyTimeSlots struct {
	WeekdaySlots      []LegacyTimeSlot `mapstructure:"weekdaySlots"`
	SaturdaySlots     []LegacyTimeSlot `mapstructure:"saturdaySlots"`
	IsSaturdayHalfDay *bool            `mapstructure:"isSaturdayHalfDay"`
}

type LegacyTimetableEntry struct {
	TimetableID string `mapstructure:"timetableId"`
	ClassID     string `mapstructure:"classId"`
	Day         string `mapstructure:"day"`
	Period      int    `mapstructure:"period"`
	TimeSlot    string `mapstructure:"timeSlot"`
	SubjectID   string `mapstructure:"subjectId"`
	TeacherID   string `mapstructure:"teacherId"`
	Room        string `mapstructure:"room"`
	Status      string `mapstructure:"status"`
	GeneratedAt string `mapstructure:"generatedAt"`
}

type LegacyTimetable struct {
	VersionID   string                 `mapstructure:"versionId"`
	GeneratedAt string                 `mapstructure:"generatedAt"`
	Score       int                    `mapstructure:"score"`
	Status      string                 `mapstructure:"status"`
	IsActive    bool                   `mapstructure:"isActive"`
	Entries     []LegacyTimetableEntry `mapstructure:"entries"`
}

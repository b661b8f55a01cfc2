package models

// SubstitutionSuggestion is one ranked candidate for covering a period.
type SubstitutionSuggestion struct {
	TeacherID     string `json:"teacher_id"`
	TeacherName   string `json:"teacher_name"`
	Reason        string `json:"reason"`
	Compatibility int    `json:"compatibility"`
	CurrentLoad   int    `json:"current_load"`
	SubjectMatch  bool   `json:"subject_match"`
}

// PeriodSuggestions groups candidates for one period held by an absent teacher.
type PeriodSuggestions struct {
	EntryID    string                   `json:"entry_id"`
	ClassID    string                   `json:"class_id"`
	SubjectID  string                   `json:"subject_id"`
	Day        Day                      `json:"day"`
	Period     int                      `json:"period"`
	Candidates []SubstitutionSuggestion `json:"candidates"`
}

// CoverAssignment pairs an absent teacher's period with a substitute.
type CoverAssignment struct {
	AbsentTeacherID     string `json:"absent_teacher_id"`
	SubstituteTeacherID string `json:"substitute_teacher_id"`
	ClassID             string `json:"class_id"`
	SubjectID           string `json:"subject_id"`
	Day                 Day    `json:"day"`
	Period              int    `json:"period"`
	Compatibility       int    `json:"compatibility"`
}

// UncoveredPeriod is a period no free teacher could take.
type UncoveredPeriod struct {
	AbsentTeacherID string `json:"absent_teacher_id"`
	ClassID         string `json:"class_id"`
	SubjectID       string `json:"subject_id"`
	Day             Day    `json:"day"`
	Period          int    `json:"period"`
}

// CoverPlan is a bulk substitution proposal for one day.
type CoverPlan struct {
	Day         Day               `json:"day"`
	Assignments []CoverAssignment `json:"assignments"`
	Uncovered   []UncoveredPeriod `json:"uncovered"`
	Applied     bool              `json:"applied"`
}

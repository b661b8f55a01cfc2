package models

// WorkloadItem counts periods a teacher holds for one class and subject.
type WorkloadItem struct {
	ClassID     string `json:"class_id"`
	ClassLabel  string `json:"class_name"`
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	Count       int    `json:"count"`
}

// TeacherWorkload summarises a teacher's weekly periods.
type TeacherWorkload struct {
	TeacherID string         `json:"teacher_id"`
	Total     int            `json:"total"`
	PerDay    map[Day]int    `json:"per_day"`
	Breakdown []WorkloadItem `json:"breakdown"`
}

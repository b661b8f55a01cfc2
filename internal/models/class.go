package models

// Class is one grade/section of the school. Only enabled classes take part in generation.
type Class struct {
	ID             string `json:"id" validate:"required"`
	Grade          string `json:"grade" validate:"required"`
	Section        string `json:"section" validate:"required"`
	ClassTeacherID string `json:"class_teacher_id,omitempty"`
	Enabled        bool   `json:"is_enabled"`
}

// Label renders the class as "<grade>-<section>".
func (c Class) Label() string {
	return c.Grade + "-" + c.Section
}

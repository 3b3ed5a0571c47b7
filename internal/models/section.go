package models

// Section is a school.register.section record (a section template such as "1er grado").
type Section struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	SubjectIDs []int64 `json:"subject_ids,omitempty"`
}

// SectionInput is the create/update payload.
type SectionInput struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required,oneof=pre primary secundary"`
}

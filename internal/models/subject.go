package models

// Subject is a school.register.subject record.
type Subject struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	SectionIDs   []int64 `json:"section_ids"`
	ProfessorIDs []int64 `json:"professor_ids"`
}

// SubjectInput is the create/update payload.
type SubjectInput struct {
	Name         string  `json:"name" validate:"required"`
	SectionIDs   []int64 `json:"section_ids"`
	ProfessorIDs []int64 `json:"professor_ids"`
}

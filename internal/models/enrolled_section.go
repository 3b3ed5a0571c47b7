package models

// EnrolledSection is a school.section record: a section template opened for a school year.
type EnrolledSection struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	YearID       int64   `json:"year_id,omitempty"`
	YearName     string  `json:"year_name,omitempty"`
	SectionID    int64   `json:"section_id,omitempty"`
	SectionName  string  `json:"section_name,omitempty"`
	Type         string  `json:"type"`
	Current      bool    `json:"current"`
	ProfessorIDs []int64 `json:"professor_ids"`
	SubjectIDs   []int64 `json:"subject_ids"`
	StudentIDs   []int64 `json:"student_ids"`
}

// EnrolledSectionInput opens a section for a year. Updates only replace the professors.
type EnrolledSectionInput struct {
	YearID       int64   `json:"year_id" validate:"required,gt=0"`
	SectionID    int64   `json:"section_id" validate:"required,gt=0"`
	ProfessorIDs []int64 `json:"professor_ids"`
}

// EnrolledSectionUpdate replaces the professors of an enrolled section.
type EnrolledSectionUpdate struct {
	ProfessorIDs []int64 `json:"professor_ids"`
}

package models

// Professor is a school.professor assignment for a school year.
type Professor struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	EmployeeID int64   `json:"employee_id,omitempty"`
	YearID     int64   `json:"year_id,omitempty"`
	YearName   string  `json:"year_name,omitempty"`
	SectionIDs []int64 `json:"section_ids"`
	SubjectIDs []int64 `json:"subject_ids"`
	Current    bool    `json:"current"`
}

// SectionsCount returns the number of assigned sections.
func (p Professor) SectionsCount() int { return len(p.SectionIDs) }

// SubjectsCount returns the number of assigned subjects.
func (p Professor) SubjectsCount() int { return len(p.SubjectIDs) }

// ProfessorInput assigns an employee as professor for a year.
type ProfessorInput struct {
	EmployeeID int64   `json:"employee_id" validate:"required,gt=0"`
	YearID     int64   `json:"year_id" validate:"required,gt=0"`
	SectionIDs []int64 `json:"section_ids"`
	SubjectIDs []int64 `json:"subject_ids"`
}

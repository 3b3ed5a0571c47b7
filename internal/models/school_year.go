package models

// SchoolYear is a normalised school.year record.
type SchoolYear struct {
	ID                    int64  `json:"id"`
	Name                  string `json:"name"`
	Current               bool   `json:"current"`
	EvaluationTypeSecID   int64  `json:"evaluation_type_secundary_id,omitempty"`
	EvaluationTypeSecName string `json:"evaluation_type_secundary_name,omitempty"`
	EvaluationTypePriID   int64  `json:"evaluation_type_primary_id,omitempty"`
	EvaluationTypePriName string `json:"evaluation_type_primary_name,omitempty"`
	EvaluationTypePreID   int64  `json:"evaluation_type_pree_id,omitempty"`
	EvaluationTypePreName string `json:"evaluation_type_pree_name,omitempty"`
	TotalStudentsCount    int    `json:"total_students_count"`
	ApprovedStudentsCount int    `json:"approved_students_count"`
	TotalSectionsCount    int    `json:"total_sections_count"`
	TotalProfessorsCount  int    `json:"total_professors_count"`
}

// ApprovalRate returns the approved percentage rounded to an integer.
func (y SchoolYear) ApprovalRate() int {
	if y.TotalStudentsCount <= 0 {
		return 0
	}
	return int(float64(y.ApprovedStudentsCount)*100/float64(y.TotalStudentsCount) + 0.5)
}

// SchoolYearInput is the create/update payload.
type SchoolYearInput struct {
	Name                string `json:"name" validate:"required"`
	Current             bool   `json:"current"`
	EvaluationTypeSecID int64  `json:"evaluation_type_secundary_id" validate:"required,gt=0"`
	EvaluationTypePriID int64  `json:"evaluation_type_primary_id" validate:"required,gt=0"`
	EvaluationTypePreID int64  `json:"evaluation_type_pree_id" validate:"required,gt=0"`
}

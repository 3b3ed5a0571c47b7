package models

// Enrollment states of school.student.
const (
	EnrollmentStateDraft  = "draft"
	EnrollmentStateDone   = "done"
	EnrollmentStateCancel = "cancel"
)

// StudentEnrollment is a normalised school.student record: a student enrolled in a section for a year.
type StudentEnrollment struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	YearID            int64  `json:"year_id,omitempty"`
	YearName          string `json:"year_name,omitempty"`
	SectionID         int64  `json:"section_id,omitempty"`
	SectionName       string `json:"section_name,omitempty"`
	StudentID         int64  `json:"student_id,omitempty"`
	StudentName       string `json:"student_name,omitempty"`
	ParentID          int64  `json:"parent_id,omitempty"`
	ParentName        string `json:"parent_name,omitempty"`
	MentionID         int64  `json:"mention_id,omitempty"`
	MentionName       string `json:"mention_name,omitempty"`
	Type              string `json:"type"`
	State             string `json:"state"`
	InscriptionDate   string `json:"inscription_date,omitempty"`
	UninscriptionDate string `json:"uninscription_date,omitempty"`
	FromSchool        string `json:"from_school,omitempty"`
	Observations      string `json:"observations,omitempty"`
	Current           bool   `json:"current"`
}

// EnrollmentInput is the create payload.
type EnrollmentInput struct {
	YearID       int64  `json:"year_id" validate:"required,gt=0"`
	SectionID    int64  `json:"section_id" validate:"required,gt=0"`
	StudentID    int64  `json:"student_id" validate:"required,gt=0"`
	ParentID     int64  `json:"parent_id"`
	FromSchool   string `json:"from_school"`
	Observations string `json:"observations"`
}

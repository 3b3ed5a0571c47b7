package models

// Evaluation states as computed by Odoo.
const (
	EvaluationStateAll     = "all"
	EvaluationStatePartial = "partial"
	EvaluationStateDraft   = "draft"
)

// Education levels shared by sections, evaluations and time slots.
const (
	LevelPre       = "pre"
	LevelPrimary   = "primary"
	LevelSecundary = "secundary"
)

// Evaluation is a normalised school.evaluation record.
type Evaluation struct {
	ID                   int64   `json:"id"`
	Name                 string  `json:"name"`
	Description          string  `json:"description"`
	EvaluationDate       string  `json:"evaluation_date"`
	YearID               int64   `json:"year_id,omitempty"`
	YearName             string  `json:"year_name,omitempty"`
	ProfessorID          int64   `json:"professor_id,omitempty"`
	ProfessorName        string  `json:"professor_name,omitempty"`
	SectionID            int64   `json:"section_id,omitempty"`
	SectionName          string  `json:"section_name,omitempty"`
	SubjectID            int64   `json:"subject_id,omitempty"`
	SubjectName          string  `json:"subject_name,omitempty"`
	Type                 string  `json:"type"`
	State                string  `json:"state"`
	StateScore           string  `json:"state_score,omitempty"`
	ScoreAverage         string  `json:"score_average,omitempty"`
	Current              bool    `json:"current"`
	InvisibleScore       bool    `json:"invisible_score"`
	InvisibleObservation bool    `json:"invisible_observation"`
	InvisibleLiteral     bool    `json:"invisible_literal"`
	ScoreIDs             []int64 `json:"evaluation_score_ids"`
}

// EvaluationInput is the create/update payload.
type EvaluationInput struct {
	Name           string `json:"name" validate:"required"`
	Description    string `json:"description" validate:"required"`
	EvaluationDate string `json:"evaluation_date" validate:"required,datetime=2006-01-02"`
	YearID         int64  `json:"year_id" validate:"required,gt=0"`
	ProfessorID    int64  `json:"professor_id" validate:"required,gt=0"`
	SectionID      int64  `json:"section_id" validate:"required,gt=0"`
	SubjectID      int64  `json:"subject_id"`
}

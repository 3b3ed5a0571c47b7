package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

const evaluationModel = "school.evaluation"

var evaluationFields = []string{
	"id", "name", "description", "evaluation_date", "year_id", "professor_id", "section_id", "subject_id",
	"type", "state", "state_score", "score_average", "current",
	"invisible_score", "invisible_observation", "invisible_literal", "evaluation_score_ids",
}

type odooEvaluation struct {
	ID                   int64         `json:"id"`
	Name                 odoo.String   `json:"name"`
	Description          odoo.String   `json:"description"`
	EvaluationDate       odoo.String   `json:"evaluation_date"`
	Year                 odoo.Many2One `json:"year_id"`
	Professor            odoo.Many2One `json:"professor_id"`
	Section              odoo.Many2One `json:"section_id"`
	Subject              odoo.Many2One `json:"subject_id"`
	Type                 odoo.String   `json:"type"`
	State                odoo.String   `json:"state"`
	StateScore           odoo.String   `json:"state_score"`
	ScoreAverage         odoo.String   `json:"score_average"`
	Current              bool          `json:"current"`
	InvisibleScore       bool          `json:"invisible_score"`
	InvisibleObservation bool          `json:"invisible_observation"`
	InvisibleLiteral     bool          `json:"invisible_literal"`
	ScoreIDs             []int64       `json:"evaluation_score_ids"`
}

func normalizeEvaluation(r odooEvaluation) models.Evaluation {
	return models.Evaluation{
		ID:                   r.ID,
		Name:                 string(r.Name),
		Description:          string(r.Description),
		EvaluationDate:       string(r.EvaluationDate),
		YearID:               r.Year.ID,
		YearName:             r.Year.Name,
		ProfessorID:          r.Professor.ID,
		ProfessorName:        r.Professor.Name,
		SectionID:            r.Section.ID,
		SectionName:          r.Section.Name,
		SubjectID:            r.Subject.ID,
		SubjectName:          r.Subject.Name,
		Type:                 string(r.Type),
		State:                string(r.State),
		StateScore:           string(r.StateScore),
		ScoreAverage:         string(r.ScoreAverage),
		Current:              r.Current,
		InvisibleScore:       r.InvisibleScore,
		InvisibleObservation: r.InvisibleObservation,
		InvisibleLiteral:     r.InvisibleLiteral,
		ScoreIDs:             ids(r.ScoreIDs),
	}
}

// EvaluationRepository reads and writes school.evaluation.
type EvaluationRepository struct {
	client OdooClient
}

// NewEvaluationRepository constructs an EvaluationRepository.
func NewEvaluationRepository(client OdooClient) *EvaluationRepository {
	return &EvaluationRepository{client: client}
}

// ListCurrent returns the evaluations of the current year, latest first.
func (r *EvaluationRepository) ListCurrent(ctx context.Context) ([]models.Evaluation, error) {
	var rows []odooEvaluation
	opts := odoo.SearchOptions{Fields: evaluationFields, Order: "evaluation_date desc, name asc"}
	if err := r.client.SearchRead(ctx, evaluationModel, currentOnly, opts, &rows); err != nil {
		return nil, fmt.Errorf("search evaluations: %w", err)
	}
	out := make([]models.Evaluation, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeEvaluation(row))
	}
	return out, nil
}

// CountByState counts current evaluations in the given state.
func (r *EvaluationRepository) CountByState(ctx context.Context, state string) (int, error) {
	domain := currentOnly.And(odoo.Where("state", "=", state))
	count, err := r.client.SearchCount(ctx, evaluationModel, domain)
	if err != nil {
		return 0, fmt.Errorf("count evaluations in %s: %w", state, err)
	}
	return count, nil
}

// Create inserts an evaluation.
func (r *EvaluationRepository) Create(ctx context.Context, in models.EvaluationInput) (int64, error) {
	id, err := r.client.Create(ctx, evaluationModel, evaluationValues(in))
	if err != nil {
		return 0, fmt.Errorf("create evaluation: %w", err)
	}
	return id, nil
}

// Update overwrites an evaluation.
func (r *EvaluationRepository) Update(ctx context.Context, id int64, in models.EvaluationInput) error {
	if err := r.client.Write(ctx, evaluationModel, []int64{id}, evaluationValues(in)); err != nil {
		return fmt.Errorf("update evaluation %d: %w", id, err)
	}
	return nil
}

// Delete removes an evaluation.
func (r *EvaluationRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Unlink(ctx, evaluationModel, []int64{id}); err != nil {
		return fmt.Errorf("delete evaluation %d: %w", id, err)
	}
	return nil
}

func evaluationValues(in models.EvaluationInput) odoo.Values {
	return odoo.Values{
		"name":            in.Name,
		"description":     in.Description,
		"evaluation_date": in.EvaluationDate,
		"year_id":         in.YearID,
		"professor_id":    in.ProfessorID,
		"section_id":      in.SectionID,
		"subject_id":      many2oneValue(in.SubjectID),
	}
}

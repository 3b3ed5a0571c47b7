package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

const enrollmentModel = "school.student"

var enrollmentFields = []string{
	"id", "name", "year_id", "section_id", "student_id", "type", "state", "current",
	"inscription_date", "uninscription_date", "from_school", "observations", "parent_id", "mention_id",
}

type odooEnrollment struct {
	ID                int64         `json:"id"`
	Name              odoo.String   `json:"name"`
	Year              odoo.Many2One `json:"year_id"`
	Section           odoo.Many2One `json:"section_id"`
	Student           odoo.Many2One `json:"student_id"`
	Parent            odoo.Many2One `json:"parent_id"`
	Mention           odoo.Many2One `json:"mention_id"`
	Type              odoo.String   `json:"type"`
	State             odoo.String   `json:"state"`
	Current           bool          `json:"current"`
	InscriptionDate   odoo.String   `json:"inscription_date"`
	UninscriptionDate odoo.String   `json:"uninscription_date"`
	FromSchool        odoo.String   `json:"from_school"`
	Observations      odoo.String   `json:"observations"`
}

func normalizeEnrollment(r odooEnrollment) models.StudentEnrollment {
	return models.StudentEnrollment{
		ID:                r.ID,
		Name:              string(r.Name),
		YearID:            r.Year.ID,
		YearName:          r.Year.Name,
		SectionID:         r.Section.ID,
		SectionName:       r.Section.Name,
		StudentID:         r.Student.ID,
		StudentName:       r.Student.Name,
		ParentID:          r.Parent.ID,
		ParentName:        r.Parent.Name,
		MentionID:         r.Mention.ID,
		MentionName:       r.Mention.Name,
		Type:              string(r.Type),
		State:             string(r.State),
		InscriptionDate:   string(r.InscriptionDate),
		UninscriptionDate: string(r.UninscriptionDate),
		FromSchool:        string(r.FromSchool),
		Observations:      string(r.Observations),
		Current:           r.Current,
	}
}

// EnrollmentRepository manages school.student inscriptions.
type EnrollmentRepository struct {
	client OdooClient
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(client OdooClient) *EnrollmentRepository {
	return &EnrollmentRepository{client: client}
}

// ListCurrent returns inscriptions of the current year grouped by section.
func (r *EnrollmentRepository) ListCurrent(ctx context.Context) ([]models.StudentEnrollment, error) {
	var rows []odooEnrollment
	opts := odoo.SearchOptions{Fields: enrollmentFields, Limit: 1000, Order: "section_id asc, name asc"}
	if err := r.client.SearchRead(ctx, enrollmentModel, currentOnly, opts, &rows); err != nil {
		return nil, fmt.Errorf("search enrollments: %w", err)
	}
	out := make([]models.StudentEnrollment, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeEnrollment(row))
	}
	return out, nil
}

// CountByState counts current inscriptions in a state.
func (r *EnrollmentRepository) CountByState(ctx context.Context, state string) (int, error) {
	count, err := r.client.SearchCount(ctx, enrollmentModel, currentOnly.And(odoo.Where("state", "=", state)))
	if err != nil {
		return 0, fmt.Errorf("count enrollments in %s: %w", state, err)
	}
	return count, nil
}

// Create inserts a draft inscription.
func (r *EnrollmentRepository) Create(ctx context.Context, in models.EnrollmentInput) (int64, error) {
	values := odoo.Values{
		"year_id":    in.YearID,
		"section_id": in.SectionID,
		"student_id": in.StudentID,
	}
	if in.ParentID > 0 {
		values["parent_id"] = in.ParentID
	}
	if in.FromSchool != "" {
		values["from_school"] = in.FromSchool
	}
	if in.Observations != "" {
		values["observations"] = in.Observations
	}
	id, err := r.client.Create(ctx, enrollmentModel, values)
	if err != nil {
		return 0, fmt.Errorf("create enrollment: %w", err)
	}
	return id, nil
}

// Confirm moves a draft inscription to done through validate_inscription.
func (r *EnrollmentRepository) Confirm(ctx context.Context, id int64) error {
	if err := r.client.CallMethod(ctx, enrollmentModel, "validate_inscription", []interface{}{[]int64{id}}, nil, nil); err != nil {
		return fmt.Errorf("confirm enrollment %d: %w", id, err)
	}
	return nil
}

// Delete removes an inscription; Odoo rejects non-draft ones.
func (r *EnrollmentRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Unlink(ctx, enrollmentModel, []int64{id}); err != nil {
		return fmt.Errorf("delete enrollment %d: %w", id, err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

const schoolYearModel = "school.year"

var schoolYearFields = []string{
	"id", "name", "current",
	"evalution_type_secundary", "evalution_type_primary", "evalution_type_pree",
	"total_students_count", "approved_students_count", "total_sections_count", "total_professors_count",
}

type odooSchoolYear struct {
	ID                    int64         `json:"id"`
	Name                  odoo.String   `json:"name"`
	Current               bool          `json:"current"`
	EvaluationTypeSec     odoo.Many2One `json:"evalution_type_secundary"`
	EvaluationTypePri     odoo.Many2One `json:"evalution_type_primary"`
	EvaluationTypePre     odoo.Many2One `json:"evalution_type_pree"`
	TotalStudentsCount    odoo.Int      `json:"total_students_count"`
	ApprovedStudentsCount odoo.Int      `json:"approved_students_count"`
	TotalSectionsCount    odoo.Int      `json:"total_sections_count"`
	TotalProfessorsCount  odoo.Int      `json:"total_professors_count"`
}

func normalizeSchoolYear(r odooSchoolYear) models.SchoolYear {
	return models.SchoolYear{
		ID:                    r.ID,
		Name:                  string(r.Name),
		Current:               r.Current,
		EvaluationTypeSecID:   r.EvaluationTypeSec.ID,
		EvaluationTypeSecName: r.EvaluationTypeSec.Name,
		EvaluationTypePriID:   r.EvaluationTypePri.ID,
		EvaluationTypePriName: r.EvaluationTypePri.Name,
		EvaluationTypePreID:   r.EvaluationTypePre.ID,
		EvaluationTypePreName: r.EvaluationTypePre.Name,
		TotalStudentsCount:    int(r.TotalStudentsCount),
		ApprovedStudentsCount: int(r.ApprovedStudentsCount),
		TotalSectionsCount:    int(r.TotalSectionsCount),
		TotalProfessorsCount:  int(r.TotalProfessorsCount),
	}
}

// SchoolYearRepository reads and writes school.year through JSON-RPC.
type SchoolYearRepository struct {
	client OdooClient
}

// NewSchoolYearRepository constructs a SchoolYearRepository.
func NewSchoolYearRepository(client OdooClient) *SchoolYearRepository {
	return &SchoolYearRepository{client: client}
}

// List returns every school year, newest first.
func (r *SchoolYearRepository) List(ctx context.Context) ([]models.SchoolYear, error) {
	return r.search(ctx, odoo.Domain{}, 0)
}

// Current returns the year flagged as current, or nil when none is.
func (r *SchoolYearRepository) Current(ctx context.Context) (*models.SchoolYear, error) {
	years, err := r.search(ctx, currentOnly, 1)
	if err != nil {
		return nil, err
	}
	if len(years) == 0 {
		return nil, nil
	}
	return &years[0], nil
}

// FindByID loads a single year.
func (r *SchoolYearRepository) FindByID(ctx context.Context, id int64) (*models.SchoolYear, error) {
	var rows []odooSchoolYear
	if err := r.client.Read(ctx, schoolYearModel, []int64{id}, schoolYearFields, &rows); err != nil {
		return nil, fmt.Errorf("read school year %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "school year not found")
	}
	year := normalizeSchoolYear(rows[0])
	return &year, nil
}

// Count returns the number of school years.
func (r *SchoolYearRepository) Count(ctx context.Context) (int, error) {
	count, err := r.client.SearchCount(ctx, schoolYearModel, odoo.Domain{})
	if err != nil {
		return 0, fmt.Errorf("count school years: %w", err)
	}
	return count, nil
}

// Create inserts a school year.
func (r *SchoolYearRepository) Create(ctx context.Context, in models.SchoolYearInput) (int64, error) {
	id, err := r.client.Create(ctx, schoolYearModel, schoolYearValues(in))
	if err != nil {
		return 0, fmt.Errorf("create school year: %w", err)
	}
	return id, nil
}

// Update overwrites a school year.
func (r *SchoolYearRepository) Update(ctx context.Context, id int64, in models.SchoolYearInput) error {
	if err := r.client.Write(ctx, schoolYearModel, []int64{id}, schoolYearValues(in)); err != nil {
		return fmt.Errorf("update school year %d: %w", id, err)
	}
	return nil
}

// Delete removes a school year.
func (r *SchoolYearRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Unlink(ctx, schoolYearModel, []int64{id}); err != nil {
		return fmt.Errorf("delete school year %d: %w", id, err)
	}
	return nil
}

func (r *SchoolYearRepository) search(ctx context.Context, domain odoo.Domain, limit int) ([]models.SchoolYear, error) {
	var rows []odooSchoolYear
	opts := odoo.SearchOptions{Fields: schoolYearFields, Limit: limit, Order: "id desc"}
	if err := r.client.SearchRead(ctx, schoolYearModel, domain, opts, &rows); err != nil {
		return nil, fmt.Errorf("search school years: %w", err)
	}
	years := make([]models.SchoolYear, 0, len(rows))
	for _, row := range rows {
		years = append(years, normalizeSchoolYear(row))
	}
	return years, nil
}

func schoolYearValues(in models.SchoolYearInput) odoo.Values {
	return odoo.Values{
		"name":                     in.Name,
		"current":                  in.Current,
		"evalution_type_secundary": many2oneValue(in.EvaluationTypeSecID),
		"evalution_type_primary":   many2oneValue(in.EvaluationTypePriID),
		"evalution_type_pree":      many2oneValue(in.EvaluationTypePreID),
	}
}

package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

const professorModel = "school.professor"

var professorFields = []string{"id", "name", "professor_id", "year_id", "section_ids", "subject_ids", "current"}

type odooProfessor struct {
	ID         int64         `json:"id"`
	Name       odoo.String   `json:"name"`
	Employee   odoo.Many2One `json:"professor_id"`
	Year       odoo.Many2One `json:"year_id"`
	SectionIDs []int64       `json:"section_ids"`
	SubjectIDs []int64       `json:"subject_ids"`
	Current    bool          `json:"current"`
}

func normalizeProfessor(r odooProfessor) models.Professor {
	name := string(r.Name)
	if name == "" {
		name = r.Employee.Name
	}
	return models.Professor{
		ID:         r.ID,
		Name:       name,
		EmployeeID: r.Employee.ID,
		YearID:     r.Year.ID,
		YearName:   r.Year.Name,
		SectionIDs: ids(r.SectionIDs),
		SubjectIDs: ids(r.SubjectIDs),
		Current:    r.Current,
	}
}

// ProfessorRepository manages school.professor assignments.
type ProfessorRepository struct {
	client OdooClient
}

// NewProfessorRepository constructs a ProfessorRepository.
func NewProfessorRepository(client OdooClient) *ProfessorRepository {
	return &ProfessorRepository{client: client}
}

// ListCurrent returns the professors assigned in the current year.
func (r *ProfessorRepository) ListCurrent(ctx context.Context) ([]models.Professor, error) {
	var rows []odooProfessor
	opts := odoo.SearchOptions{Fields: professorFields, Order: "name asc"}
	if err := r.client.SearchRead(ctx, professorModel, currentOnly, opts, &rows); err != nil {
		return nil, fmt.Errorf("search professors: %w", err)
	}
	out := make([]models.Professor, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeProfessor(row))
	}
	return out, nil
}

// Create assigns an employee as professor.
func (r *ProfessorRepository) Create(ctx context.Context, in models.ProfessorInput) (int64, error) {
	id, err := r.client.Create(ctx, professorModel, professorValues(in))
	if err != nil {
		return 0, fmt.Errorf("create professor: %w", err)
	}
	return id, nil
}

// Update replaces the sections and subjects of an assignment.
func (r *ProfessorRepository) Update(ctx context.Context, id int64, in models.ProfessorInput) error {
	if err := r.client.Write(ctx, professorModel, []int64{id}, professorValues(in)); err != nil {
		return fmt.Errorf("update professor %d: %w", id, err)
	}
	return nil
}

// Delete removes an assignment.
func (r *ProfessorRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Unlink(ctx, professorModel, []int64{id}); err != nil {
		return fmt.Errorf("delete professor %d: %w", id, err)
	}
	return nil
}

func professorValues(in models.ProfessorInput) odoo.Values {
	return odoo.Values{
		"professor_id": in.EmployeeID,
		"year_id":      in.YearID,
		"section_ids":  odoo.ReplaceIDs(in.SectionIDs),
		"subject_ids":  odoo.ReplaceIDs(in.SubjectIDs),
	}
}

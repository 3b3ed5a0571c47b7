package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

const subjectModel = "school.register.subject"

var subjectFields = []string{"id", "name", "section_ids", "professor_ids"}

type odooSubject struct {
	ID           int64       `json:"id"`
	Name         odoo.String `json:"name"`
	SectionIDs   []int64     `json:"section_ids"`
	ProfessorIDs []int64     `json:"professor_ids"`
}

// SubjectRepository manages school.register.subject.
type SubjectRepository struct {
	client OdooClient
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(client OdooClient) *SubjectRepository {
	return &SubjectRepository{client: client}
}

// List returns all subjects ordered by name.
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	var rows []odooSubject
	opts := odoo.SearchOptions{Fields: subjectFields, Order: "name asc"}
	if err := r.client.SearchRead(ctx, subjectModel, odoo.Domain{}, opts, &rows); err != nil {
		return nil, fmt.Errorf("search subjects: %w", err)
	}
	out := make([]models.Subject, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Subject{
			ID:           row.ID,
			Name:         string(row.Name),
			SectionIDs:   ids(row.SectionIDs),
			ProfessorIDs: ids(row.ProfessorIDs),
		})
	}
	return out, nil
}

// Create inserts a subject with its section and professor links.
func (r *SubjectRepository) Create(ctx context.Context, in models.SubjectInput) (int64, error) {
	id, err := r.client.Create(ctx, subjectModel, subjectValues(in))
	if err != nil {
		return 0, fmt.Errorf("create subject: %w", err)
	}
	return id, nil
}

// Update rewrites a subject, replacing both many2many links.
func (r *SubjectRepository) Update(ctx context.Context, id int64, in models.SubjectInput) error {
	if err := r.client.Write(ctx, subjectModel, []int64{id}, subjectValues(in)); err != nil {
		return fmt.Errorf("update subject %d: %w", id, err)
	}
	return nil
}

// Delete removes a subject.
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Unlink(ctx, subjectModel, []int64{id}); err != nil {
		return fmt.Errorf("delete subject %d: %w", id, err)
	}
	return nil
}

func subjectValues(in models.SubjectInput) odoo.Values {
	return odoo.Values{
		"name":          in.Name,
		"section_ids":   odoo.ReplaceIDs(in.SectionIDs),
		"professor_ids": odoo.ReplaceIDs(in.ProfessorIDs),
	}
}

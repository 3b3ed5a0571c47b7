package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

const sectionModel = "school.register.section"

var sectionFields = []string{"id", "name", "type"}

type odooSection struct {
	ID   int64       `json:"id"`
	Name odoo.String `json:"name"`
	Type odoo.String `json:"type"`
}

// SectionRepository manages school.register.section.
type SectionRepository struct {
	client OdooClient
}

// NewSectionRepository constructs a SectionRepository.
func NewSectionRepository(client OdooClient) *SectionRepository {
	return &SectionRepository{client: client}
}

// List returns all registered sections ordered by name.
func (r *SectionRepository) List(ctx context.Context) ([]models.Section, error) {
	var rows []odooSection
	opts := odoo.SearchOptions{Fields: sectionFields, Order: "name asc"}
	if err := r.client.SearchRead(ctx, sectionModel, odoo.Domain{}, opts, &rows); err != nil {
		return nil, fmt.Errorf("search sections: %w", err)
	}
	out := make([]models.Section, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.Section{ID: row.ID, Name: string(row.Name), Type: string(row.Type)})
	}
	return out, nil
}

// CountByType counts sections of an education level.
func (r *SectionRepository) CountByType(ctx context.Context, sectionType string) (int, error) {
	count, err := r.client.SearchCount(ctx, sectionModel, odoo.Domain{odoo.Where("type", "=", sectionType)})
	if err != nil {
		return 0, fmt.Errorf("count %s sections: %w", sectionType, err)
	}
	return count, nil
}

// Create inserts a section.
func (r *SectionRepository) Create(ctx context.Context, in models.SectionInput) (int64, error) {
	id, err := r.client.Create(ctx, sectionModel, odoo.Values{"name": in.Name, "type": in.Type})
	if err != nil {
		return 0, fmt.Errorf("create section: %w", err)
	}
	return id, nil
}

// Update overwrites a section.
func (r *SectionRepository) Update(ctx context.Context, id int64, in models.SectionInput) error {
	if err := r.client.Write(ctx, sectionModel, []int64{id}, odoo.Values{"name": in.Name, "type": in.Type}); err != nil {
		return fmt.Errorf("update section %d: %w", id, err)
	}
	return nil
}

// Delete removes a section.
func (r *SectionRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Unlink(ctx, sectionModel, []int64{id}); err != nil {
		return fmt.Errorf("delete section %d: %w", id, err)
	}
	return nil
}

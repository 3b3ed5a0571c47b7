package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

const enrolledSectionModel = "school.section"

var enrolledSectionFields = []string{
	"id", "name", "year_id", "section_id", "type", "current",
	"professor_ids", "subject_ids", "student_ids",
}

type odooEnrolledSection struct {
	ID           int64         `json:"id"`
	Name         odoo.String   `json:"name"`
	Year         odoo.Many2One `json:"year_id"`
	Section      odoo.Many2One `json:"section_id"`
	Type         odoo.String   `json:"type"`
	Current      bool          `json:"current"`
	ProfessorIDs []int64       `json:"professor_ids"`
	SubjectIDs   []int64       `json:"subject_ids"`
	StudentIDs   []int64       `json:"student_ids"`
}

func normalizeEnrolledSection(r odooEnrolledSection) models.EnrolledSection {
	sectionType := string(r.Type)
	if sectionType == "" {
		sectionType = models.LevelPrimary
	}
	return models.EnrolledSection{
		ID:           r.ID,
		Name:         string(r.Name),
		YearID:       r.Year.ID,
		YearName:     r.Year.Name,
		SectionID:    r.Section.ID,
		SectionName:  r.Section.Name,
		Type:         sectionType,
		Current:      r.Current,
		ProfessorIDs: ids(r.ProfessorIDs),
		SubjectIDs:   ids(r.SubjectIDs),
		StudentIDs:   ids(r.StudentIDs),
	}
}

// EnrolledSectionRepository manages school.section, the sections opened per year.
type EnrolledSectionRepository struct {
	client OdooClient
}

// NewEnrolledSectionRepository constructs an EnrolledSectionRepository.
func NewEnrolledSectionRepository(client OdooClient) *EnrolledSectionRepository {
	return &EnrolledSectionRepository{client: client}
}

// ListCurrent returns the sections opened in the current year.
func (r *EnrolledSectionRepository) ListCurrent(ctx context.Context) ([]models.EnrolledSection, error) {
	var rows []odooEnrolledSection
	opts := odoo.SearchOptions{Fields: enrolledSectionFields, Limit: 1000, Order: "id asc"}
	if err := r.client.SearchRead(ctx, enrolledSectionModel, currentOnly, opts, &rows); err != nil {
		return nil, fmt.Errorf("search enrolled sections: %w", err)
	}
	out := make([]models.EnrolledSection, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeEnrolledSection(row))
	}
	return out, nil
}

// CountByType counts current enrolled sections of an education level.
func (r *EnrolledSectionRepository) CountByType(ctx context.Context, sectionType string) (int, error) {
	domain := currentOnly.And(odoo.Where("type", "=", sectionType))
	count, err := r.client.SearchCount(ctx, enrolledSectionModel, domain)
	if err != nil {
		return 0, fmt.Errorf("count %s enrolled sections: %w", sectionType, err)
	}
	return count, nil
}

// Create opens a section for a year.
func (r *EnrolledSectionRepository) Create(ctx context.Context, in models.EnrolledSectionInput) (int64, error) {
	values := odoo.Values{"year_id": in.YearID, "section_id": in.SectionID}
	if len(in.ProfessorIDs) > 0 {
		values["professor_ids"] = odoo.ReplaceIDs(in.ProfessorIDs)
	}
	id, err := r.client.Create(ctx, enrolledSectionModel, values)
	if err != nil {
		return 0, fmt.Errorf("create enrolled section: %w", err)
	}
	return id, nil
}

// Update replaces the professors of an enrolled section.
func (r *EnrolledSectionRepository) Update(ctx context.Context, id int64, in models.EnrolledSectionUpdate) error {
	values := odoo.Values{"professor_ids": odoo.ReplaceIDs(in.ProfessorIDs)}
	if err := r.client.Write(ctx, enrolledSectionModel, []int64{id}, values); err != nil {
		return fmt.Errorf("update enrolled section %d: %w", id, err)
	}
	return nil
}

// Delete removes an enrolled section.
func (r *EnrolledSectionRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Unlink(ctx, enrolledSectionModel, []int64{id}); err != nil {
		return fmt.Errorf("delete enrolled section %d: %w", id, err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

const (
	partnerModel = "res.partner"
	scoreModel   = "school.evaluation.score"
)

var studentSummaryFields = []string{"id", "name", "vat", "nationality", "image_1920", "is_active", "parents_ids", "inscription_ids"}

var studentsOnly = odoo.Domain{odoo.Where("type_enrollment", "=", "student")}

type odooStudent struct {
	ID             int64       `json:"id"`
	Name           odoo.String `json:"name"`
	Vat            odoo.String `json:"vat"`
	Nationality    odoo.String `json:"nationality"`
	Image          odoo.String `json:"image_1920"`
	IsActive       bool        `json:"is_active"`
	ParentIDs      []int64     `json:"parents_ids"`
	InscriptionIDs []int64     `json:"inscription_ids"`
}

func normalizeStudent(r odooStudent) models.Student {
	return models.Student{
		ID:             r.ID,
		Name:           string(r.Name),
		Vat:            string(r.Vat),
		Nationality:    string(r.Nationality),
		Image:          string(r.Image),
		IsActive:       r.IsActive,
		ParentIDs:      ids(r.ParentIDs),
		InscriptionIDs: ids(r.InscriptionIDs),
	}
}

// InscriptionState is the minimal view of an enrollment used by the delete guard.
type InscriptionState struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// StudentRepository reads students (res.partner with type_enrollment=student) and their dependants.
type StudentRepository struct {
	client OdooClient
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(client OdooClient) *StudentRepository {
	return &StudentRepository{client: client}
}

// Page returns one page of students ordered by name.
func (r *StudentRepository) Page(ctx context.Context, offset, limit int) ([]models.Student, error) {
	opts := odoo.SearchOptions{Fields: studentSummaryFields, Limit: limit, Offset: offset, Order: "name asc"}
	return r.search(ctx, studentsOnly, opts)
}

// Count returns the number of students, optionally only the active ones.
func (r *StudentRepository) Count(ctx context.Context, activeOnly bool) (int, error) {
	domain := studentsOnly
	if activeOnly {
		domain = domain.And(odoo.Where("is_active", "=", true))
	}
	count, err := r.client.SearchCount(ctx, partnerModel, domain)
	if err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

// Search matches name or identity document across all students.
func (r *StudentRepository) Search(ctx context.Context, query string, limit int) ([]models.Student, error) {
	domain := studentsOnly.And(
		odoo.OpOr,
		odoo.Where("name", "ilike", query),
		odoo.Where("vat", "ilike", query),
	)
	opts := odoo.SearchOptions{Fields: studentSummaryFields, Limit: limit, Order: "id desc"}
	return r.search(ctx, domain, opts)
}

// Relations returns the inscription and parent ids of a student.
func (r *StudentRepository) Relations(ctx context.Context, id int64) (inscriptionIDs, parentIDs []int64, err error) {
	var rows []odooStudent
	if err := r.client.Read(ctx, partnerModel, []int64{id}, []string{"inscription_ids", "parents_ids"}, &rows); err != nil {
		return nil, nil, fmt.Errorf("read student %d relations: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	return rows[0].InscriptionIDs, rows[0].ParentIDs, nil
}

// Inscriptions reads the name and state of the given school.student records.
func (r *StudentRepository) Inscriptions(ctx context.Context, inscriptionIDs []int64) ([]InscriptionState, error) {
	if len(inscriptionIDs) == 0 {
		return nil, nil
	}
	var rows []struct {
		ID    int64       `json:"id"`
		Name  odoo.String `json:"name"`
		State odoo.String `json:"state"`
	}
	if err := r.client.Read(ctx, enrollmentModel, inscriptionIDs, []string{"id", "name", "state"}, &rows); err != nil {
		return nil, fmt.Errorf("read inscriptions: %w", err)
	}
	out := make([]InscriptionState, 0, len(rows))
	for _, row := range rows {
		out = append(out, InscriptionState{ID: row.ID, Name: string(row.Name), State: string(row.State)})
	}
	return out, nil
}

// DeleteScores removes evaluation scores attached to the given inscriptions and returns how many were removed.
func (r *StudentRepository) DeleteScores(ctx context.Context, inscriptionIDs []int64) (int, error) {
	if len(inscriptionIDs) == 0 {
		return 0, nil
	}
	var rows []struct {
		ID int64 `json:"id"`
	}
	domain := odoo.Domain{odoo.Where("student_id", "in", inscriptionIDs)}
	if err := r.client.SearchRead(ctx, scoreModel, domain, odoo.SearchOptions{Fields: []string{"id"}}, &rows); err != nil {
		return 0, fmt.Errorf("search scores: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	scoreIDs := make([]int64, 0, len(rows))
	for _, row := range rows {
		scoreIDs = append(scoreIDs, row.ID)
	}
	if err := r.client.Unlink(ctx, scoreModel, scoreIDs); err != nil {
		return 0, fmt.Errorf("delete scores: %w", err)
	}
	return len(scoreIDs), nil
}

// DeleteInscriptions removes school.student records.
func (r *StudentRepository) DeleteInscriptions(ctx context.Context, inscriptionIDs []int64) error {
	if len(inscriptionIDs) == 0 {
		return nil
	}
	if err := r.client.Unlink(ctx, enrollmentModel, inscriptionIDs); err != nil {
		return fmt.Errorf("delete inscriptions: %w", err)
	}
	return nil
}

// OrphanParents returns the parents whose only linked student is studentID.
func (r *StudentRepository) OrphanParents(ctx context.Context, parentIDs []int64, studentID int64) ([]int64, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var rows []struct {
		ID          int64   `json:"id"`
		StudentsIDs []int64 `json:"students_ids"`
	}
	if err := r.client.Read(ctx, partnerModel, parentIDs, []string{"id", "students_ids"}, &rows); err != nil {
		return nil, fmt.Errorf("read parents: %w", err)
	}
	var orphans []int64
	for _, row := range rows {
		if len(row.StudentsIDs) == 1 && row.StudentsIDs[0] == studentID {
			orphans = append(orphans, row.ID)
		}
	}
	return orphans, nil
}

// DeletePartners removes res.partner records.
func (r *StudentRepository) DeletePartners(ctx context.Context, partnerIDs []int64) error {
	if len(partnerIDs) == 0 {
		return nil
	}
	if err := r.client.Unlink(ctx, partnerModel, partnerIDs); err != nil {
		return fmt.Errorf("delete partners: %w", err)
	}
	return nil
}

func (r *StudentRepository) search(ctx context.Context, domain odoo.Domain, opts odoo.SearchOptions) ([]models.Student, error) {
	var rows []odooStudent
	if err := r.client.SearchRead(ctx, partnerModel, domain, opts, &rows); err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	out := make([]models.Student, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeStudent(row))
	}
	return out, nil
}

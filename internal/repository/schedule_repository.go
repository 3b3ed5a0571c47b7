package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

const (
	scheduleModel = "school.schedule"
	timeSlotModel = "school.time.slot"
)

var scheduleFields = []string{
	"id", "display_name", "section_id", "subject_id", "professor_id", "professor_ids",
	"day_of_week", "start_time", "end_time", "duration", "classroom", "time_slot_id", "year_id", "education_level", "active",
}

var timeSlotFields = []string{
	"id", "name", "education_level", "start_time", "end_time", "sequence", "is_break", "duration", "duration_minutes", "time_range", "active",
}

type odooTimeSlot struct {
	ID              int64       `json:"id"`
	Name            odoo.String `json:"name"`
	EducationLevel  odoo.String `json:"education_level"`
	StartTime       odoo.Float  `json:"start_time"`
	EndTime         odoo.Float  `json:"end_time"`
	Sequence        odoo.Int    `json:"sequence"`
	IsBreak         bool        `json:"is_break"`
	Duration        odoo.Float  `json:"duration"`
	DurationMinutes odoo.Int    `json:"duration_minutes"`
	TimeRange       odoo.String `json:"time_range"`
	Active          bool        `json:"active"`
}

func normalizeTimeSlot(r odooTimeSlot) models.TimeSlot {
	start, end := float64(r.StartTime), float64(r.EndTime)
	slot := models.TimeSlot{
		ID:              r.ID,
		Name:            string(r.Name),
		EducationLevel:  string(r.EducationLevel),
		StartTime:       start,
		EndTime:         end,
		StartTimeStr:    odoo.FloatToTimeString(start),
		EndTimeStr:      odoo.FloatToTimeString(end),
		TimeRange:       string(r.TimeRange),
		Sequence:        int(r.Sequence),
		IsBreak:         r.IsBreak,
		Duration:        float64(r.Duration),
		DurationMinutes: int(r.DurationMinutes),
		Active:          r.Active,
	}
	if slot.TimeRange == "" {
		slot.TimeRange = odoo.FormatTimeRange(start, end)
	}
	if slot.DurationMinutes == 0 {
		slot.DurationMinutes = odoo.DurationMinutes(start, end)
	}
	return slot
}

type odooSchedule struct {
	ID             int64         `json:"id"`
	DisplayName    odoo.String   `json:"display_name"`
	Section        odoo.Many2One `json:"section_id"`
	Subject        odoo.Many2One `json:"subject_id"`
	Professor      odoo.Many2One `json:"professor_id"`
	ProfessorIDs   []int64       `json:"professor_ids"`
	DayOfWeek      odoo.String   `json:"day_of_week"`
	StartTime      odoo.Float    `json:"start_time"`
	EndTime        odoo.Float    `json:"end_time"`
	Duration       odoo.Float    `json:"duration"`
	Classroom      odoo.String   `json:"classroom"`
	TimeSlot       odoo.Many2One `json:"time_slot_id"`
	Year           odoo.Many2One `json:"year_id"`
	EducationLevel odoo.String   `json:"education_level"`
	Active         bool          `json:"active"`
}

func normalizeSchedule(r odooSchedule) models.Schedule {
	start, end := float64(r.StartTime), float64(r.EndTime)
	return models.Schedule{
		ID:             r.ID,
		DisplayName:    string(r.DisplayName),
		SectionID:      r.Section.ID,
		SectionName:    r.Section.Name,
		SubjectID:      r.Subject.ID,
		SubjectName:    r.Subject.Name,
		ProfessorID:    r.Professor.ID,
		ProfessorName:  r.Professor.Name,
		ProfessorIDs:   ids(r.ProfessorIDs),
		DayOfWeek:      string(r.DayOfWeek),
		StartTime:      start,
		EndTime:        end,
		StartTimeStr:   odoo.FloatToTimeString(start),
		EndTimeStr:     odoo.FloatToTimeString(end),
		Duration:       float64(r.Duration),
		Classroom:      string(r.Classroom),
		TimeSlotID:     r.TimeSlot.ID,
		TimeSlotName:   r.TimeSlot.Name,
		YearID:         r.Year.ID,
		EducationLevel: string(r.EducationLevel),
		Active:         r.Active,
	}
}

// ScheduleRepository manages school.schedule and school.time.slot.
type ScheduleRepository struct {
	client OdooClient
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(client OdooClient) *ScheduleRepository {
	return &ScheduleRepository{client: client}
}

// TimeSlots returns the active slots of an education level; an empty level returns all.
func (r *ScheduleRepository) TimeSlots(ctx context.Context, level string) ([]models.TimeSlot, error) {
	domain := odoo.Domain{odoo.Where("active", "=", true)}
	if level != "" {
		domain = domain.And(odoo.Where("education_level", "=", level))
	}
	var rows []odooTimeSlot
	opts := odoo.SearchOptions{Fields: timeSlotFields, Limit: 100, Order: "sequence, start_time"}
	if err := r.client.SearchRead(ctx, timeSlotModel, domain, opts, &rows); err != nil {
		return nil, fmt.Errorf("search time slots: %w", err)
	}
	out := make([]models.TimeSlot, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeTimeSlot(row))
	}
	return out, nil
}

// SectionSchedules returns the active weekly entries of a section.
func (r *ScheduleRepository) SectionSchedules(ctx context.Context, sectionID int64) ([]models.Schedule, error) {
	domain := odoo.Domain{
		odoo.Where("section_id", "=", sectionID),
		odoo.Where("active", "=", true),
	}
	var rows []odooSchedule
	opts := odoo.SearchOptions{Fields: scheduleFields, Limit: 200, Order: "section_id, day_of_week, start_time"}
	if err := r.client.SearchRead(ctx, scheduleModel, domain, opts, &rows); err != nil {
		return nil, fmt.Errorf("search schedules of section %d: %w", sectionID, err)
	}
	out := make([]models.Schedule, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeSchedule(row))
	}
	return out, nil
}

// CreateTimeSlot inserts a slot; times are given as "HH:MM".
func (r *ScheduleRepository) CreateTimeSlot(ctx context.Context, in models.TimeSlotInput) (int64, error) {
	id, err := r.client.Create(ctx, timeSlotModel, odoo.Values{
		"name":            in.Name,
		"education_level": in.EducationLevel,
		"start_time":      odoo.TimeStringToFloat(in.StartTime),
		"end_time":        odoo.TimeStringToFloat(in.EndTime),
		"sequence":        in.Sequence,
		"is_break":        in.IsBreak,
	})
	if err != nil {
		return 0, fmt.Errorf("create time slot: %w", err)
	}
	return id, nil
}

// DeleteTimeSlot removes a slot.
func (r *ScheduleRepository) DeleteTimeSlot(ctx context.Context, id int64) error {
	if err := r.client.Unlink(ctx, timeSlotModel, []int64{id}); err != nil {
		return fmt.Errorf("delete time slot %d: %w", id, err)
	}
	return nil
}

// ProfessorAvailability asks Odoo whether a professor is free in a time window.
func (r *ScheduleRepository) ProfessorAvailability(ctx context.Context, professorID int64, day string, start, end float64, excludeID int64) (*models.ProfessorAvailability, error) {
	var exclude interface{} = false
	if excludeID > 0 {
		exclude = excludeID
	}
	var raw struct {
		Available        *bool       `json:"available"`
		ConflictSchedule odoo.String `json:"conflict_schedule"`
		ConflictSection  odoo.String `json:"conflict_section"`
		ConflictTime     odoo.String `json:"conflict_time"`
	}
	args := []interface{}{professorID, day, start, end, exclude}
	if err := r.client.CallMethod(ctx, scheduleModel, "validate_professor_availability", args, nil, &raw); err != nil {
		return nil, fmt.Errorf("validate availability of professor %d: %w", professorID, err)
	}
	availability := &models.ProfessorAvailability{
		Available:        raw.Available == nil || *raw.Available,
		ConflictSchedule: string(raw.ConflictSchedule),
		ConflictSection:  string(raw.ConflictSection),
		ConflictTime:     string(raw.ConflictTime),
	}
	return availability, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

const attendanceModel = "school.attendance"

var attendanceFields = []string{
	"id", "display_name", "attendance_type", "date", "state", "student_id", "employee_id",
	"section_id", "schedule_id", "subject_id", "year_id", "check_in_time", "check_out_time", "observations",
}

type odooAttendance struct {
	ID             int64         `json:"id"`
	DisplayName    odoo.String   `json:"display_name"`
	AttendanceType odoo.String   `json:"attendance_type"`
	Date           odoo.String   `json:"date"`
	State          odoo.String   `json:"state"`
	Student        odoo.Many2One `json:"student_id"`
	Employee       odoo.Many2One `json:"employee_id"`
	Section        odoo.Many2One `json:"section_id"`
	Schedule       odoo.Many2One `json:"schedule_id"`
	Subject        odoo.Many2One `json:"subject_id"`
	Year           odoo.Many2One `json:"year_id"`
	CheckInTime    odoo.Float    `json:"check_in_time"`
	CheckOutTime   odoo.Float    `json:"check_out_time"`
	Observations   odoo.String   `json:"observations"`
}

func normalizeAttendance(r odooAttendance) models.AttendanceRecord {
	record := models.AttendanceRecord{
		ID:             r.ID,
		DisplayName:    string(r.DisplayName),
		AttendanceType: string(r.AttendanceType),
		Date:           string(r.Date),
		State:          string(r.State),
		StudentID:      r.Student.ID,
		StudentName:    r.Student.Name,
		EmployeeID:     r.Employee.ID,
		EmployeeName:   r.Employee.Name,
		SectionID:      r.Section.ID,
		SectionName:    r.Section.Name,
		ScheduleID:     r.Schedule.ID,
		ScheduleName:   r.Schedule.Name,
		SubjectID:      r.Subject.ID,
		SubjectName:    r.Subject.Name,
		YearID:         r.Year.ID,
		CheckInTime:    float64(r.CheckInTime),
		CheckOutTime:   float64(r.CheckOutTime),
		Observations:   string(r.Observations),
	}
	if record.CheckInTime > 0 {
		record.CheckIn = odoo.FloatToTimeString(record.CheckInTime)
	}
	if record.CheckOutTime > 0 {
		record.CheckOut = odoo.FloatToTimeString(record.CheckOutTime)
	}
	return record
}

// AttendanceRepository manages school.attendance.
type AttendanceRepository struct {
	client OdooClient
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(client OdooClient) *AttendanceRepository {
	return &AttendanceRepository{client: client}
}

// ListByDate returns the attendance of one day, latest check-in first.
func (r *AttendanceRepository) ListByDate(ctx context.Context, date string) ([]models.AttendanceRecord, error) {
	var rows []odooAttendance
	domain := odoo.Domain{odoo.Where("date", "=", date)}
	opts := odoo.SearchOptions{Fields: attendanceFields, Order: "date desc, check_in_time desc"}
	if err := r.client.SearchRead(ctx, attendanceModel, domain, opts, &rows); err != nil {
		return nil, fmt.Errorf("search attendance for %s: %w", date, err)
	}
	out := make([]models.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeAttendance(row))
	}
	return out, nil
}

// CreateForSchedule registers a class in one call and returns the created ids.
func (r *AttendanceRepository) CreateForSchedule(ctx context.Context, in models.BulkStudentAttendance) ([]int64, error) {
	rows := make([]map[string]interface{}, 0, len(in.Students))
	for _, s := range in.Students {
		row := map[string]interface{}{
			"student_id": s.StudentID,
			"state":      s.State,
		}
		if s.CheckInTime > 0 {
			row["check_in_time"] = s.CheckInTime
		}
		if s.CheckOutTime > 0 {
			row["check_out_time"] = s.CheckOutTime
		}
		if s.Observations != "" {
			row["observations"] = s.Observations
		}
		rows = append(rows, row)
	}

	var created []int64
	args := []interface{}{in.ScheduleID, in.Date, rows}
	if err := r.client.CallMethod(ctx, attendanceModel, "create_student_attendance_for_schedule", args, nil, &created); err != nil {
		return nil, fmt.Errorf("create attendance for schedule %d: %w", in.ScheduleID, err)
	}
	return created, nil
}

// Delete removes an attendance record.
func (r *AttendanceRepository) Delete(ctx context.Context, id int64) error {
	if err := r.client.Unlink(ctx, attendanceModel, []int64{id}); err != nil {
		return fmt.Errorf("delete attendance %d: %w", id, err)
	}
	return nil
}

package models

// Attendance states.
const (
	AttendancePresent    = "present"
	AttendanceAbsent     = "absent"
	AttendanceLate       = "late"
	AttendancePermission = "permission"
)

// AttendanceRecord is a normalised school.attendance record.
type AttendanceRecord struct {
	ID             int64   `json:"id"`
	DisplayName    string  `json:"display_name"`
	AttendanceType string  `json:"attendance_type"`
	Date           string  `json:"date"`
	State          string  `json:"state"`
	StudentID      int64   `json:"student_id,omitempty"`
	StudentName    string  `json:"student_name,omitempty"`
	EmployeeID     int64   `json:"employee_id,omitempty"`
	EmployeeName   string  `json:"employee_name,omitempty"`
	SectionID      int64   `json:"section_id,omitempty"`
	SectionName    string  `json:"section_name,omitempty"`
	ScheduleID     int64   `json:"schedule_id,omitempty"`
	ScheduleName   string  `json:"schedule_name,omitempty"`
	SubjectID      int64   `json:"subject_id,omitempty"`
	SubjectName    string  `json:"subject_name,omitempty"`
	YearID         int64   `json:"year_id,omitempty"`
	CheckInTime    float64 `json:"check_in_time"`
	CheckOutTime   float64 `json:"check_out_time"`
	CheckIn        string  `json:"check_in"`
	CheckOut       string  `json:"check_out"`
	Observations   string  `json:"observations,omitempty"`
}

// StudentAttendanceRow is one student entry of a bulk registration.
type StudentAttendanceRow struct {
	StudentID    int64   `json:"student_id" validate:"required,gt=0"`
	State        string  `json:"state" validate:"required,oneof=present absent late permission"`
	CheckInTime  float64 `json:"check_in_time" validate:"gte=0,lt=24"`
	CheckOutTime float64 `json:"check_out_time" validate:"gte=0,lt=24"`
	Observations string  `json:"observations"`
}

// BulkStudentAttendance registers a whole class for one schedule slot and date.
type BulkStudentAttendance struct {
	ScheduleID int64                  `json:"schedule_id" validate:"required,gt=0"`
	Date       string                 `json:"date" validate:"required,datetime=2006-01-02"`
	Students   []StudentAttendanceRow `json:"students" validate:"required,min=1,dive"`
}

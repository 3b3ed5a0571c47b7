package models

// TimeSlot is a normalised school.time.slot record.
type TimeSlot struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	EducationLevel  string  `json:"education_level"`
	StartTime       float64 `json:"start_time"`
	EndTime         float64 `json:"end_time"`
	StartTimeStr    string  `json:"start_time_str"`
	EndTimeStr      string  `json:"end_time_str"`
	TimeRange       string  `json:"time_range"`
	Sequence        int     `json:"sequence"`
	IsBreak         bool    `json:"is_break"`
	Duration        float64 `json:"duration"`
	DurationMinutes int     `json:"duration_minutes"`
	Active          bool    `json:"active"`
}

// Schedule is a normalised school.schedule entry.
type Schedule struct {
	ID             int64   `json:"id"`
	DisplayName    string  `json:"display_name"`
	SectionID      int64   `json:"section_id,omitempty"`
	SectionName    string  `json:"section_name,omitempty"`
	SubjectID      int64   `json:"subject_id,omitempty"`
	SubjectName    string  `json:"subject_name,omitempty"`
	ProfessorID    int64   `json:"professor_id,omitempty"`
	ProfessorName  string  `json:"professor_name,omitempty"`
	ProfessorIDs   []int64 `json:"professor_ids"`
	DayOfWeek      string  `json:"day_of_week"`
	StartTime      float64 `json:"start_time"`
	EndTime        float64 `json:"end_time"`
	StartTimeStr   string  `json:"start_time_str"`
	EndTimeStr     string  `json:"end_time_str"`
	Duration       float64 `json:"duration"`
	Classroom      string  `json:"classroom,omitempty"`
	TimeSlotID     int64   `json:"time_slot_id,omitempty"`
	TimeSlotName   string  `json:"time_slot_name,omitempty"`
	YearID         int64   `json:"year_id,omitempty"`
	EducationLevel string  `json:"education_level,omitempty"`
	Active         bool    `json:"active"`
}

// TimeSlotInput is the create/update payload; times are "HH:MM".
type TimeSlotInput struct {
	Name           string `json:"name" validate:"required"`
	EducationLevel string `json:"education_level" validate:"required,oneof=pre primary secundary"`
	StartTime      string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime        string `json:"end_time" validate:"required,datetime=15:04"`
	Sequence       int    `json:"sequence"`
	IsBreak        bool   `json:"is_break"`
}

// ProfessorAvailability is the answer of validate_professor_availability.
type ProfessorAvailability struct {
	Available        bool   `json:"available"`
	ConflictSchedule string `json:"conflict_schedule,omitempty"`
	ConflictSection  string `json:"conflict_section,omitempty"`
	ConflictTime     string `json:"conflict_time,omitempty"`
}

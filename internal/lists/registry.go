package lists

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/sma-odoo-sync/internal/service"
	"github.com/noah-isme/sma-odoo-sync/pkg/jobs"
)

// Services are the domain services the lists read from.
type Services struct {
	SchoolYears      *service.SchoolYearService
	Evaluations      *service.EvaluationService
	Professors       *service.ProfessorService
	Sections         *service.SectionService
	EnrolledSections *service.EnrolledSectionService
	Subjects         *service.SubjectService
	Students         *service.StudentService
	Enrollments      *service.EnrollmentService
	Attendance       *service.AttendanceService
	Schedules        *service.ScheduleService
	// Today returns the attendance date, YYYY-MM-DD. Defaults to the local date.
	Today func() string
}

// Build creates one list per entity.
func Build(s Services, d Deps) *Registry {
	today := s.Today
	if today == nil {
		today = func() string { return time.Now().Format("2006-01-02") }
	}
	return NewRegistry(
		writable(SchoolYears(s.SchoolYears, d), creates(s.SchoolYears.Create), updates(s.SchoolYears.Update)),
		writable(Evaluations(s.Evaluations, d), creates(s.Evaluations.Create), updates(s.Evaluations.Update)),
		writable(Professors(s.Professors, d), creates(s.Professors.Assign), updates(s.Professors.Update)),
		writable(Sections(s.Sections, d), creates(s.Sections.Create), updates(s.Sections.Update)),
		writable(EnrolledSections(s.EnrolledSections, d), creates(s.EnrolledSections.Create), updates(s.EnrolledSections.Update)),
		writable(Subjects(s.Subjects, d), creates(s.Subjects.Create), updates(s.Subjects.Update)),
		Students(s.Students, d),
		writable(Enrollments(s.Enrollments, d), creates(s.Enrollments.Create), nil),
		Attendance(s.Attendance, today, d),
		writable(TimeSlots(s.Schedules, d), creates(s.Schedules.CreateTimeSlot), nil),
	)
}

// JobHandler runs start and refresh jobs against the registry. A list left
// offline is not a failure: it keeps serving its cache until a user refresh.
func (r *Registry) JobHandler() jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		l, ok := r.Get(job.List)
		if !ok {
			return fmt.Errorf("unknown list %q", job.List)
		}
		switch job.Kind {
		case jobs.KindRefresh:
			l.Refresh(ctx)
		default:
			l.Start(ctx)
		}
		return nil
	}
}

// Warm enqueues a start job for every list.
func (r *Registry) Warm(q *jobs.Queue) error {
	for _, name := range r.names {
		if err := q.Enqueue(jobs.Job{Kind: jobs.KindStart, List: name}); err != nil {
			return err
		}
	}
	return nil
}

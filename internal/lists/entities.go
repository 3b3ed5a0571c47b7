package lists

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/noah-isme/sma-odoo-sync/internal/liststore"
	"github.com/noah-isme/sma-odoo-sync/internal/models"
	"github.com/noah-isme/sma-odoo-sync/internal/service"
	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
)

type evaluationService interface {
	listService[models.Evaluation]
	CountByState(ctx context.Context) (map[string]int, error)
}

type sectionService interface {
	listService[models.Section]
	CountByType(ctx context.Context) (map[string]int, error)
}

type enrolledSectionService interface {
	listService[models.EnrolledSection]
	CountByType(ctx context.Context) (map[string]int, error)
}

type enrollmentService interface {
	listService[models.StudentEnrollment]
	CountByState(ctx context.Context) (map[string]int, error)
	CanDelete(e models.StudentEnrollment) models.DeleteValidation
	Confirm(ctx context.Context, id int64) models.MutationResult
}

type studentService interface {
	LoadPage(ctx context.Context, page, pageSize int, force bool) (*models.StudentPage, error)
	CachedPage(ctx context.Context, page, pageSize int) (*models.StudentPage, bool)
	Counts(ctx context.Context) (models.StudentCounts, error)
	Search(ctx context.Context, query string) ([]models.Student, error)
	CanDelete(ctx context.Context, id int64) (models.DeleteValidation, error)
	Delete(ctx context.Context, id int64) models.MutationResult
}

type attendanceService interface {
	LoadByDate(ctx context.Context, date string, force bool) ([]models.AttendanceRecord, error)
	CachedByDate(ctx context.Context, date string) ([]models.AttendanceRecord, bool)
	Delete(ctx context.Context, id int64) models.MutationResult
}

type timeSlotService interface {
	TimeSlots(ctx context.Context, level string, force bool) ([]models.TimeSlot, error)
	CachedTimeSlots(ctx context.Context, level string) ([]models.TimeSlot, bool)
	DeleteTimeSlot(ctx context.Context, id int64) models.MutationResult
}

func id64(id int64) string { return strconv.FormatInt(id, 10) }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// SchoolYears lists every school year, the current one first, paged locally.
func SchoolYears(svc listService[models.SchoolYear], d Deps) List {
	currentFirst := func(items []models.SchoolYear) {
		sort.SliceStable(items, func(i, j int) bool { return items[i].Current && !items[j].Current })
	}
	cfg := liststore.Config[models.SchoolYear]{
		Name:   NameSchoolYears,
		Source: flatSource(d.Logger, svc.Load, svc.Cached, nil, currentFirst),
		ID:     func(y models.SchoolYear) int64 { return y.ID },
		Match: func(y models.SchoolYear, q string) bool {
			return contains(q, y.Name)
		},
		PageSize: d.Settings.YearPageSize,
		Delete:   svc.Delete,
		Describe: func(y models.SchoolYear) string { return "School year " + y.Name },
	}
	return newList(d, cfg, "School years", []Column[models.SchoolYear]{
		{"ID", func(y models.SchoolYear) string { return id64(y.ID) }},
		{"Name", func(y models.SchoolYear) string { return y.Name }},
		{"Current", func(y models.SchoolYear) string { return yesNo(y.Current) }},
		{"Students", func(y models.SchoolYear) string { return strconv.Itoa(y.TotalStudentsCount) }},
		{"Approval %", func(y models.SchoolYear) string { return strconv.Itoa(y.ApprovalRate()) }},
		{"Sections", func(y models.SchoolYear) string { return strconv.Itoa(y.TotalSectionsCount) }},
		{"Professors", func(y models.SchoolYear) string { return strconv.Itoa(y.TotalProfessorsCount) }},
	})
}

// Evaluations lists the evaluations of the current year with counts per state.
func Evaluations(svc evaluationService, d Deps) List {
	cfg := liststore.Config[models.Evaluation]{
		Name:   NameEvaluations,
		Source: flatSource(d.Logger, svc.Load, svc.Cached, svc.CountByState, nil),
		ID:     func(e models.Evaluation) int64 { return e.ID },
		Match: func(e models.Evaluation, q string) bool {
			return contains(q, e.Name, e.Description, e.ProfessorName, e.SectionName, e.SubjectName)
		},
		Classify:  func(e models.Evaluation) string { return e.State },
		CountKeys: service.EvaluationStates,
		Delete:    svc.Delete,
		Describe:  func(e models.Evaluation) string { return "Evaluation " + e.Name },
	}
	return newList(d, cfg, "Evaluations", []Column[models.Evaluation]{
		{"ID", func(e models.Evaluation) string { return id64(e.ID) }},
		{"Name", func(e models.Evaluation) string { return e.Name }},
		{"Date", func(e models.Evaluation) string { return e.EvaluationDate }},
		{"Section", func(e models.Evaluation) string { return e.SectionName }},
		{"Subject", func(e models.Evaluation) string { return e.SubjectName }},
		{"Professor", func(e models.Evaluation) string { return e.ProfessorName }},
		{"State", func(e models.Evaluation) string { return e.State }},
	})
}

// Professors lists the professors assigned to the current year.
func Professors(svc listService[models.Professor], d Deps) List {
	cfg := liststore.Config[models.Professor]{
		Name:   NameProfessors,
		Source: flatSource(d.Logger, svc.Load, svc.Cached, nil, nil),
		ID:     func(p models.Professor) int64 { return p.ID },
		Match: func(p models.Professor, q string) bool {
			return contains(q, p.Name, p.YearName)
		},
		Delete:   svc.Delete,
		Describe: func(p models.Professor) string { return "Professor " + p.Name },
	}
	return newList(d, cfg, "Professors", []Column[models.Professor]{
		{"ID", func(p models.Professor) string { return id64(p.ID) }},
		{"Name", func(p models.Professor) string { return p.Name }},
		{"Year", func(p models.Professor) string { return p.YearName }},
		{"Sections", func(p models.Professor) string { return strconv.Itoa(p.SectionsCount()) }},
		{"Subjects", func(p models.Professor) string { return strconv.Itoa(p.SubjectsCount()) }},
	})
}

// Sections lists section templates counted by education level.
func Sections(svc sectionService, d Deps) List {
	cfg := liststore.Config[models.Section]{
		Name:      NameSections,
		Source:    flatSource(d.Logger, svc.Load, svc.Cached, svc.CountByType, nil),
		ID:        func(s models.Section) int64 { return s.ID },
		Match:     func(s models.Section, q string) bool { return contains(q, s.Name) },
		Classify:  func(s models.Section) string { return s.Type },
		CountKeys: service.SectionTypes,
		Delete:    svc.Delete,
		Describe:  func(s models.Section) string { return "Section " + s.Name },
	}
	return newList(d, cfg, "Sections", []Column[models.Section]{
		{"ID", func(s models.Section) string { return id64(s.ID) }},
		{"Name", func(s models.Section) string { return s.Name }},
		{"Type", func(s models.Section) string { return s.Type }},
		{"Subjects", func(s models.Section) string { return strconv.Itoa(len(s.SubjectIDs)) }},
	})
}

// EnrolledSections lists the sections opened in the current year, counted by level.
func EnrolledSections(svc enrolledSectionService, d Deps) List {
	cfg := liststore.Config[models.EnrolledSection]{
		Name:   NameEnrolledSections,
		Source: flatSource(d.Logger, svc.Load, svc.Cached, svc.CountByType, nil),
		ID:     func(s models.EnrolledSection) int64 { return s.ID },
		Match: func(s models.EnrolledSection, q string) bool {
			return contains(q, s.Name, s.SectionName)
		},
		Classify:  func(s models.EnrolledSection) string { return s.Type },
		CountKeys: service.SectionTypes,
		Delete:    svc.Delete,
		Describe:  func(s models.EnrolledSection) string { return "Section " + s.Name },
	}
	return newList(d, cfg, "Enrolled sections", []Column[models.EnrolledSection]{
		{"ID", func(s models.EnrolledSection) string { return id64(s.ID) }},
		{"Name", func(s models.EnrolledSection) string { return s.Name }},
		{"Section", func(s models.EnrolledSection) string { return s.SectionName }},
		{"Type", func(s models.EnrolledSection) string { return s.Type }},
		{"Students", func(s models.EnrolledSection) string { return strconv.Itoa(len(s.StudentIDs)) }},
		{"Subjects", func(s models.EnrolledSection) string { return strconv.Itoa(len(s.SubjectIDs)) }},
		{"Professors", func(s models.EnrolledSection) string { return strconv.Itoa(len(s.ProfessorIDs)) }},
	})
}

// Subjects lists registered subjects.
func Subjects(svc listService[models.Subject], d Deps) List {
	cfg := liststore.Config[models.Subject]{
		Name:     NameSubjects,
		Source:   flatSource(d.Logger, svc.Load, svc.Cached, nil, nil),
		ID:       func(s models.Subject) int64 { return s.ID },
		Match:    func(s models.Subject, q string) bool { return contains(q, s.Name) },
		Delete:   svc.Delete,
		Describe: func(s models.Subject) string { return "Subject " + s.Name },
	}
	return newList(d, cfg, "Subjects", []Column[models.Subject]{
		{"ID", func(s models.Subject) string { return id64(s.ID) }},
		{"Name", func(s models.Subject) string { return s.Name }},
		{"Sections", func(s models.Subject) string { return strconv.Itoa(len(s.SectionIDs)) }},
		{"Professors", func(s models.Subject) string { return strconv.Itoa(len(s.ProfessorIDs)) }},
	})
}

// Students pages on the server and searches the whole directory remotely.
func Students(svc studentService, d Deps) List {
	source := liststore.SourceFunc[models.Student](func(ctx context.Context, req liststore.FetchRequest) (liststore.Batch[models.Student], error) {
		if req.Offline {
			page, ok := svc.CachedPage(ctx, req.Page, req.PageSize)
			if !ok {
				return liststore.Batch[models.Student]{}, appErrors.ErrCacheMiss
			}
			return liststore.Batch[models.Student]{Items: page.Students, Total: page.Total}, nil
		}
		page, err := svc.LoadPage(ctx, req.Page, req.PageSize, req.Force)
		if err != nil {
			return liststore.Batch[models.Student]{}, err
		}
		batch := liststore.Batch[models.Student]{Items: page.Students, Total: page.Total}
		if counts, err := svc.Counts(ctx); err == nil {
			batch.Counts = map[string]int{"total": counts.Total, "active": counts.Active}
		}
		return batch, nil
	})
	cfg := liststore.Config[models.Student]{
		Name:         NameStudents,
		Source:       source,
		ID:           func(s models.Student) int64 { return s.ID },
		Search:       svc.Search,
		PageSize:     d.Settings.StudentPageSize,
		RemotePaging: true,
		Delete:       svc.Delete,
		CanDelete: func(ctx context.Context, s models.Student) (models.DeleteValidation, error) {
			return svc.CanDelete(ctx, s.ID)
		},
		Describe: func(s models.Student) string { return "Student " + s.Name },
	}
	return newList(d, cfg, "Students", []Column[models.Student]{
		{"ID", func(s models.Student) string { return id64(s.ID) }},
		{"Name", func(s models.Student) string { return s.Name }},
		{"ID number", func(s models.Student) string { return s.Vat }},
		{"Nationality", func(s models.Student) string { return s.Nationality }},
		{"Active", func(s models.Student) string { return yesNo(s.IsActive) }},
	})
}

// Enrollments lists current-year inscriptions; drafts can be confirmed or deleted.
func Enrollments(svc enrollmentService, d Deps) List {
	cfg := liststore.Config[models.StudentEnrollment]{
		Name:   NameEnrollments,
		Source: flatSource(d.Logger, svc.Load, svc.Cached, svc.CountByState, nil),
		ID:     func(e models.StudentEnrollment) int64 { return e.ID },
		Match: func(e models.StudentEnrollment, q string) bool {
			return contains(q, e.Name, e.StudentName, e.SectionName, e.YearName)
		},
		Classify:  func(e models.StudentEnrollment) string { return e.State },
		CountKeys: service.EnrollmentStates,
		Delete:    svc.Delete,
		Confirm:   svc.Confirm,
		CanDelete: func(_ context.Context, e models.StudentEnrollment) (models.DeleteValidation, error) {
			return svc.CanDelete(e), nil
		},
		Describe: func(e models.StudentEnrollment) string {
			return fmt.Sprintf("The inscription of %s in %s", e.StudentName, e.SectionName)
		},
	}
	return newList(d, cfg, "Inscriptions", []Column[models.StudentEnrollment]{
		{"ID", func(e models.StudentEnrollment) string { return id64(e.ID) }},
		{"Student", func(e models.StudentEnrollment) string { return e.StudentName }},
		{"Section", func(e models.StudentEnrollment) string { return e.SectionName }},
		{"Year", func(e models.StudentEnrollment) string { return e.YearName }},
		{"State", func(e models.StudentEnrollment) string { return e.State }},
		{"Date", func(e models.StudentEnrollment) string { return e.InscriptionDate }},
	})
}

// Attendance lists the records of the day returned by today, paged locally.
func Attendance(svc attendanceService, today func() string, d Deps) List {
	load := func(ctx context.Context, force bool) ([]models.AttendanceRecord, error) {
		return svc.LoadByDate(ctx, today(), force)
	}
	cached := func(ctx context.Context) ([]models.AttendanceRecord, bool) {
		return svc.CachedByDate(ctx, today())
	}
	cfg := liststore.Config[models.AttendanceRecord]{
		Name:   NameAttendance,
		Source: flatSource(d.Logger, load, cached, nil, nil),
		ID:     func(a models.AttendanceRecord) int64 { return a.ID },
		Match: func(a models.AttendanceRecord, q string) bool {
			return contains(q, a.DisplayName, a.StudentName, a.EmployeeName, a.SectionName, a.SubjectName)
		},
		Classify: func(a models.AttendanceRecord) string { return a.State },
		PageSize: d.Settings.AttendancePageSize,
		Delete:   svc.Delete,
		Describe: func(a models.AttendanceRecord) string { return "Attendance " + a.DisplayName },
	}
	return newList(d, cfg, "Attendance", []Column[models.AttendanceRecord]{
		{"ID", func(a models.AttendanceRecord) string { return id64(a.ID) }},
		{"Date", func(a models.AttendanceRecord) string { return a.Date }},
		{"Student", func(a models.AttendanceRecord) string { return a.StudentName }},
		{"Section", func(a models.AttendanceRecord) string { return a.SectionName }},
		{"State", func(a models.AttendanceRecord) string { return a.State }},
		{"Check in", func(a models.AttendanceRecord) string { return a.CheckIn }},
		{"Check out", func(a models.AttendanceRecord) string { return a.CheckOut }},
	})
}

// TimeSlots lists the slots of every education level.
func TimeSlots(svc timeSlotService, d Deps) List {
	load := func(ctx context.Context, force bool) ([]models.TimeSlot, error) {
		return svc.TimeSlots(ctx, "", force)
	}
	cached := func(ctx context.Context) ([]models.TimeSlot, bool) {
		return svc.CachedTimeSlots(ctx, "")
	}
	cfg := liststore.Config[models.TimeSlot]{
		Name:     NameTimeSlots,
		Source:   flatSource(d.Logger, load, cached, nil, nil),
		ID:       func(t models.TimeSlot) int64 { return t.ID },
		Match:    func(t models.TimeSlot, q string) bool { return contains(q, t.Name, t.TimeRange) },
		Classify: func(t models.TimeSlot) string { return t.EducationLevel },
		Delete:   svc.DeleteTimeSlot,
		Describe: func(t models.TimeSlot) string { return fmt.Sprintf("Time slot %s (%s)", t.Name, t.TimeRange) },
	}
	return newList(d, cfg, "Time slots", []Column[models.TimeSlot]{
		{"ID", func(t models.TimeSlot) string { return id64(t.ID) }},
		{"Name", func(t models.TimeSlot) string { return t.Name }},
		{"Level", func(t models.TimeSlot) string { return t.EducationLevel }},
		{"Range", func(t models.TimeSlot) string { return t.TimeRange }},
		{"Break", func(t models.TimeSlot) string { return yesNo(t.IsBreak) }},
	})
}

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-odoo-sync/internal/models"
	appErrors "github.com/noah-isme/sma-odoo-sync/pkg/errors"
	"github.com/noah-isme/sma-odoo-sync/pkg/odoo"
)

func TestSchoolYearRepositoryNormalizesTuples(t *testing.T) {
	client := newFakeOdoo()
	client.results["school.year.search_read"] = `[
		{"id":2,"name":"2024-2025","current":true,"evalution_type_secundary":[5,"Por nota"],"evalution_type_primary":false,"evalution_type_pree":[7,"Literal"],
		 "total_students_count":40,"approved_students_count":30,"total_sections_count":4,"total_professors_count":false},
		{"id":1,"name":"2023-2024","current":false,"evalution_type_secundary":false,"evalution_type_primary":false,"evalution_type_pree":false,
		 "total_students_count":0,"approved_students_count":0,"total_sections_count":0,"total_professors_count":0}
	]`
	repo := NewSchoolYearRepository(client)

	years, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, years, 2)
	assert.Equal(t, int64(5), years[0].EvaluationTypeSecID)
	assert.Equal(t, "Por nota", years[0].EvaluationTypeSecName)
	assert.Zero(t, years[0].EvaluationTypePriID)
	assert.Equal(t, "Literal", years[0].EvaluationTypePreName)
	assert.Equal(t, 0, years[0].TotalProfessorsCount)
	assert.Equal(t, 75, years[0].ApprovalRate())

	calls := client.callsTo("school.year", "search_read")
	require.Len(t, calls, 1)
	assert.Equal(t, "id desc", calls[0].Opts.Order)
	assert.Empty(t, calls[0].Domain)
}

func TestSchoolYearRepositoryFindByIDNotFound(t *testing.T) {
	client := newFakeOdoo()
	client.results["school.year.read"] = `[]`
	repo := NewSchoolYearRepository(client)

	_, err := repo.FindByID(context.Background(), 9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestSchoolYearRepositoryCreateSendsFalseForMissingRelations(t *testing.T) {
	client := newFakeOdoo()
	repo := NewSchoolYearRepository(client)

	_, err := repo.Create(context.Background(), models.SchoolYearInput{Name: "2025-2026", EvaluationTypeSecID: 3})
	require.NoError(t, err)

	calls := client.callsTo("school.year", "create")
	require.Len(t, calls, 1)
	assert.Equal(t, int64(3), calls[0].Values["evalution_type_secundary"])
	assert.Equal(t, false, calls[0].Values["evalution_type_primary"])
}

func TestEvaluationRepositoryCountByStateFiltersCurrent(t *testing.T) {
	client := newFakeOdoo()
	domain := odoo.Domain{odoo.Where("current", "=", true), odoo.Where("state", "=", "partial")}
	client.counts[countKey("school.evaluation", domain)] = 4
	repo := NewEvaluationRepository(client)

	count, err := repo.CountByState(context.Background(), models.EvaluationStatePartial)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestEvaluationRepositoryListDecodesFalsyText(t *testing.T) {
	client := newFakeOdoo()
	client.results["school.evaluation.search_read"] = `[{"id":1,"name":"Quiz","description":false,"evaluation_date":"2024-10-01",
		"year_id":[2,"2024"],"professor_id":[3,"Ana"],"section_id":[4,"1A"],"subject_id":false,"type":"secundary","state":"draft",
		"state_score":false,"score_average":"15.5","current":true,"invisible_score":false,"invisible_observation":true,"invisible_literal":true,
		"evaluation_score_ids":[]}]`
	repo := NewEvaluationRepository(client)

	evaluations, err := repo.ListCurrent(context.Background())
	require.NoError(t, err)
	require.Len(t, evaluations, 1)
	assert.Equal(t, "", evaluations[0].Description)
	assert.Equal(t, "Ana", evaluations[0].ProfessorName)
	assert.Zero(t, evaluations[0].SubjectID)
	assert.Equal(t, "15.5", evaluations[0].ScoreAverage)
	assert.NotNil(t, evaluations[0].ScoreIDs)
	assert.Equal(t, "evaluation_date desc, name asc", client.calls[0].Opts.Order)
}

func TestEnrolledSectionRepositoryListCurrent(t *testing.T) {
	client := newFakeOdoo()
	client.results["school.section.search_read"] = `[
		{"id":3,"name":"1A","year_id":[2,"2024-2025"],"section_id":[8,"Primer grado"],"type":false,"current":true,
		 "professor_ids":[11],"subject_ids":[],"student_ids":[21,22,23]}
	]`
	repo := NewEnrolledSectionRepository(client)

	sections, err := repo.ListCurrent(context.Background())
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "Primer grado", sections[0].SectionName)
	assert.Equal(t, "2024-2025", sections[0].YearName)
	assert.Equal(t, models.LevelPrimary, sections[0].Type)
	assert.Len(t, sections[0].StudentIDs, 3)
	assert.NotNil(t, sections[0].SubjectIDs)

	calls := client.callsTo("school.section", "search_read")
	require.Len(t, calls, 1)
	assert.Equal(t, "id asc", calls[0].Opts.Order)
	assert.Equal(t, odoo.Domain{odoo.Where("current", "=", true)}, calls[0].Domain)
}

func TestEnrolledSectionRepositoryCountAndWrites(t *testing.T) {
	client := newFakeOdoo()
	domain := odoo.Domain{odoo.Where("current", "=", true), odoo.Where("type", "=", "pre")}
	client.counts[countKey("school.section", domain)] = 2
	repo := NewEnrolledSectionRepository(client)
	ctx := context.Background()

	count, err := repo.CountByType(ctx, models.LevelPre)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = repo.Create(ctx, models.EnrolledSectionInput{YearID: 2, SectionID: 8})
	require.NoError(t, err)
	created := client.callsTo("school.section", "create")
	require.Len(t, created, 1)
	assert.Equal(t, int64(8), created[0].Values["section_id"])
	assert.NotContains(t, created[0].Values, "professor_ids")

	require.NoError(t, repo.Update(ctx, 3, models.EnrolledSectionUpdate{ProfessorIDs: []int64{11, 12}}))
	written := client.callsTo("school.section", "write")
	require.Len(t, written, 1)
	assert.Equal(t, []int64{3}, written[0].IDs)
	assert.Equal(t, odoo.ReplaceIDs([]int64{11, 12}), written[0].Values["professor_ids"])
}

func TestStudentRepositorySearchBuildsOrDomain(t *testing.T) {
	client := newFakeOdoo()
	client.results["res.partner.search_read"] = `[{"id":9,"name":"Luis","vat":"V-1","nationality":"V","image_1920":false,"is_active":true,"parents_ids":[3],"inscription_ids":[]}]`
	repo := NewStudentRepository(client)

	students, err := repo.Search(context.Background(), "lu", 50)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Luis", students[0].Name)
	assert.Equal(t, "", students[0].Image)

	call := client.calls[0]
	assert.Equal(t, 50, call.Opts.Limit)
	assert.Equal(t, odoo.Domain{
		odoo.Where("type_enrollment", "=", "student"),
		odoo.OpOr,
		odoo.Where("name", "ilike", "lu"),
		odoo.Where("vat", "ilike", "lu"),
	}, call.Domain)
}

func TestStudentRepositoryPageUsesOffset(t *testing.T) {
	client := newFakeOdoo()
	client.results["res.partner.search_read"] = `[]`
	repo := NewStudentRepository(client)

	_, err := repo.Page(context.Background(), 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, client.calls[0].Opts.Offset)
	assert.Equal(t, 5, client.calls[0].Opts.Limit)
	assert.Equal(t, "name asc", client.calls[0].Opts.Order)
}

func TestStudentRepositoryOrphanParents(t *testing.T) {
	client := newFakeOdoo()
	client.results["res.partner.read"] = `[{"id":3,"students_ids":[9]},{"id":4,"students_ids":[9,10]},{"id":5,"students_ids":[]}]`
	repo := NewStudentRepository(client)

	orphans, err := repo.OrphanParents(context.Background(), []int64{3, 4, 5}, 9)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, orphans)
}

func TestStudentRepositoryDeleteScores(t *testing.T) {
	client := newFakeOdoo()
	client.results["school.evaluation.score.search_read"] = `[{"id":70},{"id":71}]`
	repo := NewStudentRepository(client)

	removed, err := repo.DeleteScores(context.Background(), []int64{11})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	unlinks := client.callsTo("school.evaluation.score", "unlink")
	require.Len(t, unlinks, 1)
	assert.Equal(t, []int64{70, 71}, unlinks[0].IDs)
}

func TestEnrollmentRepositoryConfirmCallsValidateInscription(t *testing.T) {
	client := newFakeOdoo()
	repo := NewEnrollmentRepository(client)

	require.NoError(t, repo.Confirm(context.Background(), 12))
	calls := client.callsTo("school.student", "validate_inscription")
	require.Len(t, calls, 1)
	assert.Equal(t, []interface{}{[]int64{12}}, calls[0].Args)
}

func TestAttendanceRepositoryCreateForSchedule(t *testing.T) {
	client := newFakeOdoo()
	client.results["school.attendance.create_student_attendance_for_schedule"] = `[501,502]`
	repo := NewAttendanceRepository(client)

	created, err := repo.CreateForSchedule(context.Background(), models.BulkStudentAttendance{
		ScheduleID: 8,
		Date:       "2024-10-01",
		Students: []models.StudentAttendanceRow{
			{StudentID: 1, State: models.AttendancePresent, CheckInTime: 7.5},
			{StudentID: 2, State: models.AttendanceAbsent, Observations: "sick"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{501, 502}, created)

	call := client.callsTo("school.attendance", "create_student_attendance_for_schedule")[0]
	require.Len(t, call.Args, 3)
	assert.Equal(t, int64(8), call.Args[0])
	assert.Equal(t, "2024-10-01", call.Args[1])
	rows := call.Args[2].([]map[string]interface{})
	assert.Equal(t, 7.5, rows[0]["check_in_time"])
	assert.NotContains(t, rows[1], "check_in_time")
	assert.Equal(t, "sick", rows[1]["observations"])
}

func TestAttendanceRepositoryFormatsTimes(t *testing.T) {
	client := newFakeOdoo()
	client.results["school.attendance.search_read"] = `[{"id":1,"display_name":"Luis","attendance_type":"student","date":"2024-10-01","state":"late",
		"student_id":[9,"Luis"],"employee_id":false,"section_id":false,"schedule_id":false,"subject_id":false,"year_id":false,
		"check_in_time":7.75,"check_out_time":false,"observations":false}]`
	repo := NewAttendanceRepository(client)

	records, err := repo.ListByDate(context.Background(), "2024-10-01")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "07:45", records[0].CheckIn)
	assert.Equal(t, "", records[0].CheckOut)
	assert.Equal(t, "Luis", records[0].StudentName)
}

func TestScheduleRepositoryTimeSlotsDerivesRange(t *testing.T) {
	client := newFakeOdoo()
	client.results["school.time.slot.search_read"] = `[{"id":1,"name":"Bloque 1","education_level":"primary","start_time":7,"end_time":7.75,
		"sequence":1,"is_break":false,"duration":0.75,"duration_minutes":false,"time_range":false,"active":true}]`
	repo := NewScheduleRepository(client)

	slots, err := repo.TimeSlots(context.Background(), models.LevelPrimary)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "07:00", slots[0].StartTimeStr)
	assert.Equal(t, "07:00 - 07:45", slots[0].TimeRange)
	assert.Equal(t, 45, slots[0].DurationMinutes)
	assert.Equal(t, odoo.Domain{odoo.Where("active", "=", true), odoo.Where("education_level", "=", "primary")}, client.calls[0].Domain)
}

func TestScheduleRepositoryProfessorAvailability(t *testing.T) {
	client := newFakeOdoo()
	client.results["school.schedule.validate_professor_availability"] = `{"available":false,"conflict_section":"2B","conflict_time":"08:00 - 09:00","conflict_schedule":false}`
	repo := NewScheduleRepository(client)

	availability, err := repo.ProfessorAvailability(context.Background(), 3, "1", 8, 9, 0)
	require.NoError(t, err)
	assert.False(t, availability.Available)
	assert.Equal(t, "2B", availability.ConflictSection)

	call := client.callsTo("school.schedule", "validate_professor_availability")[0]
	assert.Equal(t, false, call.Args[4])
}

func TestRepositoryWrapsClientErrors(t *testing.T) {
	client := newFakeOdoo()
	client.err = &odoo.Error{Message: "Odoo Server Error", SessionExpired: true}
	repo := NewSectionRepository(client)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.True(t, odoo.IsSessionExpired(err))
	assert.Contains(t, err.Error(), "search sections")
}

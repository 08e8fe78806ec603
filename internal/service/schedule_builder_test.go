package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadops/course-scheduler-api/internal/dto"
	"github.com/acadops/course-scheduler-api/internal/models"
	appErrors "github.com/acadops/course-scheduler-api/pkg/errors"
)

// --- Fixtures ---

type builderFixtureConfig struct {
	offerings     []models.Offering
	faculty       map[string][]models.Faculty
	rooms         []models.Classroom
	loads         map[int64]float64
	persisted     []models.TimeSlot
	persistedKind models.ConflictType
	listErr       error
}

type offeringListerStub struct {
	items []models.Offering
	err   error
}

func (s offeringListerStub) ListForGeneration(ctx context.Context, semesterID, departmentID int64, yearLevel int) ([]models.Offering, error) {
	if s.err != nil {
		return nil, s.err
	}
	if yearLevel > 0 {
		var filtered []models.Offering
		for _, o := range s.items {
			if o.YearLevel == yearLevel {
				filtered = append(filtered, o)
			}
		}
		return filtered, nil
	}
	return s.items, nil
}

type facultyListerStub struct {
	byCourse map[string][]models.Faculty
}

func (s facultyListerStub) ListQualified(ctx context.Context, courseCode string, departmentID int64) ([]models.Faculty, error) {
	return s.byCourse[courseCode], nil
}

type classroomListerStub struct {
	items []models.Classroom
}

func (s classroomListerStub) ListAvailable(ctx context.Context, departmentID int64) ([]models.Classroom, error) {
	return s.items, nil
}

type semesterReaderStub struct{}

func (semesterReaderStub) FindByID(ctx context.Context, id int64) (*models.Semester, error) {
	return &models.Semester{ID: id, AcademicYear: "2026/2027", Label: "ODD"}, nil
}

type sectionResolverStub struct {
	next int64
}

func (s *sectionResolverStub) FindOrCreate(ctx context.Context, courseID int64, academicYear, semesterLabel, courseCode string) (*models.Section, error) {
	s.next++
	return &models.Section{ID: s.next, CourseID: courseID, AcademicYear: academicYear, SemesterLabel: semesterLabel, Name: courseCode}, nil
}

func newBuilderFixture(t *testing.T, cfg builderFixtureConfig) *ScheduleBuilder {
	t.Helper()

	loads := cfg.loads
	if loads == nil {
		loads = map[int64]float64{}
	}
	rooms := cfg.rooms
	if rooms == nil {
		rooms = []models.Classroom{{ID: 1, Capacity: 60}, {ID: 2, Capacity: 40}}
	}

	rng := rand.New(rand.NewSource(1))
	planner := NewSlotPlanner(testSchedulerConfig(), rng, zap.NewNop())
	assigner := NewRoomAssigner(rng, zap.NewNop())
	tracker := NewLoadTracker(loadReaderStub{hours: loads}, zap.NewNop())

	return NewScheduleBuilder(
		offeringListerStub{items: cfg.offerings, err: cfg.listErr},
		facultyListerStub{byCourse: cfg.faculty},
		classroomListerStub{items: rooms},
		semesterReaderStub{},
		&sectionResolverStub{},
		tracker,
		planner,
		assigner,
		&availabilityStub{busy: cfg.persisted, kind: cfg.persistedKind},
		nil,
		validator.New(),
		zap.NewNop(),
	)
}

func offeringFixture(id int64, code string, hours int) models.Offering {
	return models.Offering{
		ID:           id,
		CourseID:     id,
		CourseCode:   code,
		DepartmentID: 1,
		SemesterID:   10,
		LectureHours: hours,
		Status:       models.OfferingStatusPending,
	}
}

func availableFaculty(id int64) models.Faculty {
	return models.Faculty{ID: id, DepartmentID: 1, MaxWeeklyHours: 18, HasAvailability: true}
}

func generateRequest() dto.GenerateScheduleRequest {
	return dto.GenerateScheduleRequest{
		SemesterID:   10,
		DepartmentID: 1,
		Constraints:  dto.GenerationConstraints{AvoidCourseConflicts: true},
	}
}

// --- Tests ---

func TestScheduleBuilderGeneratesEntries(t *testing.T) {
	builder := newBuilderFixture(t, builderFixtureConfig{
		offerings: []models.Offering{
			offeringFixture(1, "CS101", 3),
			offeringFixture(2, "CS102", 3),
		},
		faculty: map[string][]models.Faculty{
			"CS101": {availableFaculty(1)},
			"CS102": {availableFaculty(2)},
		},
	})

	resp, err := builder.Generate(context.Background(), generateRequest())
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)
	assert.Empty(t, resp.Skipped)
	assert.Equal(t, 2, resp.Summary.EntriesGenerated)
	assert.Equal(t, 0, resp.Summary.ForcedEntries)

	for _, entry := range resp.Entries {
		assert.NotZero(t, entry.FacultyID)
		assert.NotZero(t, entry.RoomID)
		assert.NotZero(t, entry.SectionID)
		assert.NotEmpty(t, entry.Slots)
		assert.False(t, entry.Forced)
	}
}

func TestScheduleBuilderBatchDoesNotDoubleBookItself(t *testing.T) {
	shared := availableFaculty(1)
	builder := newBuilderFixture(t, builderFixtureConfig{
		offerings: []models.Offering{
			offeringFixture(1, "CS101", 3),
			offeringFixture(2, "CS102", 3),
		},
		faculty: map[string][]models.Faculty{
			"CS101": {shared},
			"CS102": {shared},
		},
	})

	resp, err := builder.Generate(context.Background(), generateRequest())
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)

	first := resp.Entries[0]
	second := resp.Entries[1]
	require.Equal(t, first.FacultyID, second.FacultyID)
	for _, a := range first.Slots {
		for _, b := range second.Slots {
			assert.False(t, a.Overlaps(b), "entries sharing a faculty must not overlap within one run")
		}
	}
}

func TestScheduleBuilderBatchOverlapAllowedWhenConflictCheckOff(t *testing.T) {
	shared := availableFaculty(1)
	builder := newBuilderFixture(t, builderFixtureConfig{
		offerings: []models.Offering{
			offeringFixture(1, "CS101", 3),
			offeringFixture(2, "CS102", 3),
		},
		faculty: map[string][]models.Faculty{
			"CS101": {shared},
			"CS102": {shared},
		},
	})

	// With the conflict constraint off, entries of the same run no longer
	// block one another; both offerings land on the first free position of
	// the persisted index.
	req := generateRequest()
	req.Constraints.AvoidCourseConflicts = false
	resp, err := builder.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)

	overlapping := false
	for _, a := range resp.Entries[0].Slots {
		for _, b := range resp.Entries[1].Slots {
			if a.Overlaps(b) {
				overlapping = true
			}
		}
	}
	assert.True(t, overlapping, "with the check off both entries take the same earliest block")
}

func TestScheduleBuilderRebalancesLoadWithinRun(t *testing.T) {
	builder := newBuilderFixture(t, builderFixtureConfig{
		offerings: []models.Offering{
			offeringFixture(1, "CS101", 3),
			offeringFixture(2, "CS102", 3),
		},
		faculty: map[string][]models.Faculty{
			"CS101": {availableFaculty(1), availableFaculty(2)},
			"CS102": {availableFaculty(1), availableFaculty(2)},
		},
		loads: map[int64]float64{1: 0, 2: 2},
	})

	resp, err := builder.Generate(context.Background(), generateRequest())
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)

	// Faculty 1 starts lighter and takes the first offering, which raises its
	// effective load to 3; faculty 2 at 2 hours must lead for the second.
	assert.Equal(t, int64(1), resp.Entries[0].FacultyID)
	assert.Equal(t, int64(2), resp.Entries[1].FacultyID)
}

func TestScheduleBuilderSkipReasonNoFaculty(t *testing.T) {
	builder := newBuilderFixture(t, builderFixtureConfig{
		offerings: []models.Offering{offeringFixture(1, "CS101", 3)},
		faculty:   map[string][]models.Faculty{},
	})

	resp, err := builder.Generate(context.Background(), generateRequest())
	require.NoError(t, err)
	assert.Empty(t, resp.Entries)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, models.SkipReasonNoFaculty, resp.Skipped[0].Reason)
	assert.Equal(t, "CS101", resp.Skipped[0].CourseCode)
}

func TestScheduleBuilderAvailabilityConstraintFiltersCandidates(t *testing.T) {
	noRows := availableFaculty(1)
	noRows.HasAvailability = false
	cfg := builderFixtureConfig{
		offerings: []models.Offering{offeringFixture(1, "CS101", 3)},
		faculty:   map[string][]models.Faculty{"CS101": {noRows}},
	}

	// Constraint off: the candidate is still usable.
	resp, err := newBuilderFixture(t, cfg).Generate(context.Background(), generateRequest())
	require.NoError(t, err)
	assert.Len(t, resp.Entries, 1)

	// Constraint on: the candidate disappears and the offering is skipped.
	req := generateRequest()
	req.Constraints.RespectFacultyAvailability = true
	resp, err = newBuilderFixture(t, cfg).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, resp.Entries)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, models.SkipReasonNoFaculty, resp.Skipped[0].Reason)
}

func TestScheduleBuilderSkipReasonNoRoom(t *testing.T) {
	builder := newBuilderFixture(t, builderFixtureConfig{
		offerings: []models.Offering{func() models.Offering {
			o := offeringFixture(1, "CS101", 3)
			o.ExpectedStudents = 500
			return o
		}()},
		faculty: map[string][]models.Faculty{"CS101": {availableFaculty(1)}},
		rooms:   []models.Classroom{{ID: 1, Capacity: 30}},
	})

	req := generateRequest()
	req.Constraints.RespectRoomCapacity = true
	resp, err := builder.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, resp.Entries)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, models.SkipReasonNoRoom, resp.Skipped[0].Reason)
}

func TestScheduleBuilderSectionCap(t *testing.T) {
	// Two offerings of the same course; the default cap of one section per
	// course skips the second.
	second := offeringFixture(2, "CS101", 3)
	second.CourseID = 1
	builder := newBuilderFixture(t, builderFixtureConfig{
		offerings: []models.Offering{offeringFixture(1, "CS101", 3), second},
		faculty:   map[string][]models.Faculty{"CS101": {availableFaculty(1), availableFaculty(2)}},
	})

	resp, err := builder.Generate(context.Background(), generateRequest())
	require.NoError(t, err)
	assert.Len(t, resp.Entries, 1)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, models.SkipReasonSectionCap, resp.Skipped[0].Reason)
}

func TestScheduleBuilderForcedEntryWhenFullyBooked(t *testing.T) {
	var persisted []models.TimeSlot
	for day := models.DayMonday; day <= models.DaySaturday; day++ {
		persisted = append(persisted, models.TimeSlot{DayOfWeek: day, StartMinute: 0, EndMinute: 24 * models.MinutesPerHour})
	}
	builder := newBuilderFixture(t, builderFixtureConfig{
		offerings:     []models.Offering{offeringFixture(1, "CS101", 3)},
		faculty:       map[string][]models.Faculty{"CS101": {availableFaculty(1)}},
		persisted:     persisted,
		persistedKind: models.ConflictTypeFaculty,
	})

	resp, err := builder.Generate(context.Background(), generateRequest())
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1, "a fully booked faculty still gets a forced block")
	assert.True(t, resp.Entries[0].Forced)
	assert.Equal(t, 1, resp.Summary.ForcedEntries)
}

func TestScheduleBuilderSkipsWhenFacultyAtWeeklyCap(t *testing.T) {
	builder := newBuilderFixture(t, builderFixtureConfig{
		offerings: []models.Offering{offeringFixture(1, "CS101", 3)},
		faculty:   map[string][]models.Faculty{"CS101": {availableFaculty(1)}},
		loads:     map[int64]float64{1: 18},
	})

	// Capped-out faculty leaves nothing to force; the offering keeps its
	// pending status instead of getting a forced block.
	resp, err := builder.Generate(context.Background(), generateRequest())
	require.NoError(t, err)
	assert.Empty(t, resp.Entries)
	require.Len(t, resp.Skipped, 1)
	assert.Equal(t, models.SkipReasonNoSlots, resp.Skipped[0].Reason)
}

func TestScheduleBuilderValidatesRequest(t *testing.T) {
	builder := newBuilderFixture(t, builderFixtureConfig{})

	_, err := builder.Generate(context.Background(), dto.GenerateScheduleRequest{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestScheduleBuilderInfrastructureErrorAbortsRun(t *testing.T) {
	builder := newBuilderFixture(t, builderFixtureConfig{
		listErr: errors.New("connection refused"),
	})

	_, err := builder.Generate(context.Background(), generateRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}

func TestScheduleBuilderYearLevelFilter(t *testing.T) {
	first := offeringFixture(1, "CS101", 3)
	first.YearLevel = 1
	second := offeringFixture(2, "CS201", 3)
	second.YearLevel = 2
	builder := newBuilderFixture(t, builderFixtureConfig{
		offerings: []models.Offering{first, second},
		faculty: map[string][]models.Faculty{
			"CS101": {availableFaculty(1)},
			"CS201": {availableFaculty(2)},
		},
	})

	req := generateRequest()
	req.YearLevel = 2
	resp, err := builder.Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "CS201", resp.Entries[0].CourseCode)
}

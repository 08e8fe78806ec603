package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadops/course-scheduler-api/internal/dto"
	"github.com/acadops/course-scheduler-api/internal/models"
	appErrors "github.com/acadops/course-scheduler-api/pkg/errors"
)

type offeringLister interface {
	ListForGeneration(ctx context.Context, semesterID, departmentID int64, yearLevel int) ([]models.Offering, error)
}

type facultyLister interface {
	ListQualified(ctx context.Context, courseCode string, departmentID int64) ([]models.Faculty, error)
}

type classroomLister interface {
	ListAvailable(ctx context.Context, departmentID int64) ([]models.Classroom, error)
}

type semesterReader interface {
	FindByID(ctx context.Context, id int64) (*models.Semester, error)
}

type sectionResolver interface {
	FindOrCreate(ctx context.Context, courseID int64, academicYear, semesterLabel, courseCode string) (*models.Section, error)
}

type candidateLoader interface {
	Loads(ctx context.Context, candidates []models.Faculty, semesterID int64) ([]FacultyCandidate, error)
}

type generationObserver interface {
	ObserveGeneration(summary dto.GenerationSummary, skipped []models.SkippedOffering)
}

// ScheduleBuilder orchestrates the per-offering pipeline: load-sorted faculty
// selection, slot planning, room assignment and lazy section resolution. The
// semester id is threaded explicitly through every call; the builder holds no
// per-run state between requests.
//
// Failure semantics are two-tier: an unassignable offering is recorded as a
// skip and the batch continues, while any data-access error aborts the whole
// run with no partial result.
type ScheduleBuilder struct {
	offerings offeringLister
	faculty   facultyLister
	rooms     classroomLister
	semesters semesterReader
	sections  sectionResolver
	loads     candidateLoader
	planner   *SlotPlanner
	assigner  *RoomAssigner
	index     AvailabilityChecker
	metrics   generationObserver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleBuilder wires builder dependencies.
func NewScheduleBuilder(
	offerings offeringLister,
	faculty facultyLister,
	rooms classroomLister,
	semesters semesterReader,
	sections sectionResolver,
	loads candidateLoader,
	planner *SlotPlanner,
	assigner *RoomAssigner,
	index AvailabilityChecker,
	metrics generationObserver,
	validate *validator.Validate,
	logger *zap.Logger,
) *ScheduleBuilder {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleBuilder{
		offerings: offerings,
		faculty:   faculty,
		rooms:     rooms,
		semesters: semesters,
		sections:  sections,
		loads:     loads,
		planner:   planner,
		assigner:  assigner,
		index:     index,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Generate builds a proposed schedule for every offering of a department in a
// semester. The result is not persisted; callers hand it to the persister (or
// the conflict detector) next.
func (b *ScheduleBuilder) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := b.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}
	maxSections := req.MaxSectionsPerCourse
	if maxSections <= 0 {
		maxSections = 1
	}

	started := time.Now()

	semester, err := b.semesters.FindByID(ctx, req.SemesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	offerings, err := b.offerings.ListForGeneration(ctx, req.SemesterID, req.DepartmentID, req.YearLevel)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offerings")
	}

	pool, err := b.rooms.ListAvailable(ctx, req.DepartmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classrooms")
	}

	// Slots accepted earlier in this run are layered over the persisted
	// index, so the batch cannot double-book itself before it is saved.
	// AvoidCourseConflicts switches that self-check off; the persisted
	// schedule still constrains placement either way.
	run := newRunAvailability(b.index, req.Constraints.AvoidCourseConflicts)

	var (
		entries       []dto.ProposedEntry
		skipped       []models.SkippedOffering
		sectionCounts = make(map[int64]int)
		forced        int
	)

	for _, offering := range offerings {
		if sectionCounts[offering.CourseID] >= maxSections {
			skipped = append(skipped, b.skip(offering, models.SkipReasonSectionCap))
			continue
		}

		candidates, err := b.faculty.ListQualified(ctx, offering.CourseCode, req.DepartmentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list qualified faculty")
		}
		if req.Constraints.RespectFacultyAvailability {
			candidates = withAvailabilityRows(candidates)
		}
		if len(candidates) == 0 {
			skipped = append(skipped, b.skip(offering, models.SkipReasonNoFaculty))
			continue
		}

		sorted, err := b.loads.Loads(ctx, candidates, req.SemesterID)
		if err != nil {
			return nil, err
		}
		// Hours planned earlier in this run shift the effective load, so the
		// ascending order has to be restored after the overlay.
		for i := range sorted {
			sorted[i].Load += run.facultyHours[sorted[i].Faculty.ID]
		}
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].Load != sorted[j].Load {
				return sorted[i].Load < sorted[j].Load
			}
			return sorted[i].Faculty.ID < sorted[j].Faculty.ID
		})

		planned, err := b.planner.Plan(ctx, run, sorted, offering.RequiredHours(), req.SemesterID)
		if err != nil {
			return nil, err
		}
		if len(planned) == 0 {
			skipped = append(skipped, b.skip(offering, models.SkipReasonNoSlots))
			continue
		}

		slots := make([]models.TimeSlot, len(planned))
		entryForced := false
		for i, p := range planned {
			slots[i] = p.Slot
			if p.Forced {
				entryForced = true
			}
		}

		room, err := b.assigner.Assign(ctx, run, offering, slots, pool, req.SemesterID, req.Constraints)
		if err != nil {
			return nil, err
		}
		if room == nil {
			skipped = append(skipped, b.skip(offering, models.SkipReasonNoRoom))
			continue
		}

		section, err := b.sections.FindOrCreate(ctx, offering.CourseID, semester.AcademicYear, semester.Label, offering.CourseCode)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve section")
		}

		// The entry carries the faculty of the first accepted block.
		facultyID := planned[0].FacultyID
		entry := dto.ProposedEntry{
			OfferingID: offering.ID,
			CourseID:   offering.CourseID,
			CourseCode: offering.CourseCode,
			FacultyID:  facultyID,
			RoomID:     room.ID,
			SectionID:  section.ID,
			SemesterID: req.SemesterID,
			Slots:      slots,
			Forced:     entryForced,
		}
		entries = append(entries, entry)
		sectionCounts[offering.CourseID]++
		if entryForced {
			forced++
		}

		for _, p := range planned {
			run.reserveFaculty(p.FacultyID, p.Slot)
		}
		for _, slot := range slots {
			run.reserveRoom(room.ID, slot)
		}
	}

	summary := dto.GenerationSummary{
		OfferingsTotal:   len(offerings),
		EntriesGenerated: len(entries),
		OfferingsSkipped: len(skipped),
		ForcedEntries:    forced,
		DurationMillis:   time.Since(started).Milliseconds(),
	}
	if b.metrics != nil {
		b.metrics.ObserveGeneration(summary, skipped)
	}

	b.logger.Info("schedule generation complete",
		zap.Int64("semester_id", req.SemesterID),
		zap.Int64("department_id", req.DepartmentID),
		zap.Int("generated", len(entries)),
		zap.Int("skipped", len(skipped)),
		zap.Int("forced", forced),
	)

	return &dto.GenerateScheduleResponse{Entries: entries, Skipped: skipped, Summary: summary}, nil
}

func (b *ScheduleBuilder) skip(offering models.Offering, reason models.SkipReason) models.SkippedOffering {
	b.logger.Info("offering skipped",
		zap.Int64("offering_id", offering.ID),
		zap.String("course_code", offering.CourseCode),
		zap.String("reason", string(reason)),
	)
	return models.SkippedOffering{OfferingID: offering.ID, CourseCode: offering.CourseCode, Reason: reason}
}

func withAvailabilityRows(candidates []models.Faculty) []models.Faculty {
	filtered := candidates[:0]
	for _, f := range candidates {
		if f.HasAvailability {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// runAvailability overlays the slots reserved during the current generation
// run on top of the persisted availability index. With selfCheck off the
// in-run reservations still accumulate for load accounting but no longer
// count as conflicts.
type runAvailability struct {
	persisted    AvailabilityChecker
	selfCheck    bool
	facultySlots map[int64][]models.TimeSlot
	roomSlots    map[int64][]models.TimeSlot
	facultyHours map[int64]float64
}

func newRunAvailability(persisted AvailabilityChecker, selfCheck bool) *runAvailability {
	return &runAvailability{
		persisted:    persisted,
		selfCheck:    selfCheck,
		facultySlots: make(map[int64][]models.TimeSlot),
		roomSlots:    make(map[int64][]models.TimeSlot),
		facultyHours: make(map[int64]float64),
	}
}

func (r *runAvailability) HasConflict(ctx context.Context, kind models.ConflictType, ownerID, semesterID int64, day, startMinute, endMinute int) (bool, error) {
	if r.selfCheck {
		probe := models.TimeSlot{DayOfWeek: day, StartMinute: startMinute, EndMinute: endMinute}
		reserved := r.facultySlots[ownerID]
		if kind == models.ConflictTypeRoom {
			reserved = r.roomSlots[ownerID]
		}
		for _, slot := range reserved {
			if slot.Overlaps(probe) {
				return true, nil
			}
		}
	}
	if r.persisted == nil {
		return false, nil
	}
	return r.persisted.HasConflict(ctx, kind, ownerID, semesterID, day, startMinute, endMinute)
}

func (r *runAvailability) reserveFaculty(facultyID int64, slot models.TimeSlot) {
	r.facultySlots[facultyID] = append(r.facultySlots[facultyID], slot)
	r.facultyHours[facultyID] += slot.DurationHours()
}

func (r *runAvailability) reserveRoom(roomID int64, slot models.TimeSlot) {
	r.roomSlots[roomID] = append(r.roomSlots[roomID], slot)
}

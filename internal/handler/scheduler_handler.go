package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/acadops/course-scheduler-api/internal/dto"
	"github.com/acadops/course-scheduler-api/internal/models"
	appErrors "github.com/acadops/course-scheduler-api/pkg/errors"
	"github.com/acadops/course-scheduler-api/pkg/lock"
	"github.com/acadops/course-scheduler-api/pkg/response"
)

type scheduleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error)
}

type schedulePersister interface {
	Save(ctx context.Context, req dto.SaveScheduleRequest) (*dto.SaveScheduleResponse, error)
}

type conflictDetector interface {
	Detect(ctx context.Context, req dto.DetectConflictsRequest) ([]models.Conflict, error)
}

type scheduleReader interface {
	List(ctx context.Context, query dto.ScheduleQuery) ([]models.ScheduleEntry, *models.Pagination, error)
}

type schedulerObserver interface {
	ObserveConflicts(conflicts []models.Conflict)
	ObserveSave(saved int)
}

// SchedulerHandler exposes the schedule generation endpoints.
type SchedulerHandler struct {
	generator scheduleGenerator
	persister schedulePersister
	detector  conflictDetector
	reader    scheduleReader
	lock      *lock.SemesterLock
	metrics   schedulerObserver
	logger    *zap.Logger
}

// NewSchedulerHandler constructs the handler.
func NewSchedulerHandler(
	generator scheduleGenerator,
	persister schedulePersister,
	detector conflictDetector,
	reader scheduleReader,
	semesterLock *lock.SemesterLock,
	metrics schedulerObserver,
	logger *zap.Logger,
) *SchedulerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulerHandler{
		generator: generator,
		persister: persister,
		detector:  detector,
		reader:    reader,
		lock:      semesterLock,
		metrics:   metrics,
		logger:    logger,
	}
}

// Generate godoc
// @Summary Generate a schedule proposal for a semester and department
// @Description Runs the greedy scheduler and returns proposed entries without persisting them. Only one generation per semester runs at a time.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Generate schedule payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /schedules/generate [post]
func (h *SchedulerHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}

	ctx := c.Request.Context()
	acquired, err := h.lock.Acquire(ctx, req.SemesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !acquired {
		response.Error(c, appErrors.ErrGenerationLocked)
		return
	}
	defer func() {
		if err := h.lock.Release(ctx, req.SemesterID); err != nil {
			h.logger.Warn("failed to release generation lock",
				zap.Int64("semester_id", req.SemesterID), zap.Error(err))
		}
	}()

	result, err := h.generator.Generate(ctx, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Save godoc
// @Summary Persist a schedule proposal
// @Description Atomically replaces the semester's persisted schedule with the submitted batch. Malformed entries are skipped, not fatal.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.SaveScheduleRequest true "Save schedule payload"
// @Success 201 {object} response.Envelope
// @Router /schedules/save [post]
func (h *SchedulerHandler) Save(c *gin.Context) {
	var req dto.SaveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	result, err := h.persister.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveSave(result.Saved)
	}
	response.Created(c, result)
}

// DetectConflicts godoc
// @Summary Detect conflicts for a proposed batch
// @Description Compares the batch against the semester's persisted schedule and against itself, reporting every double-booked faculty member or room.
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.DetectConflictsRequest true "Detect conflicts payload"
// @Success 200 {object} response.Envelope
// @Router /schedules/conflicts [post]
func (h *SchedulerHandler) DetectConflicts(c *gin.Context) {
	var req dto.DetectConflictsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid conflict detection payload"))
		return
	}
	conflicts, err := h.detector.Detect(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveConflicts(conflicts)
	}
	response.JSON(c, http.StatusOK, dto.DetectConflictsResponse{Conflicts: conflicts}, nil)
}

// List godoc
// @Summary List the persisted schedule for a semester
// @Tags Scheduler
// @Produce json
// @Param semesterId query int true "Semester id"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *SchedulerHandler) List(c *gin.Context) {
	query := dto.ScheduleQuery{
		SemesterID: parseInt64Query(c, "semesterId"),
		Page:       parseIntQuery(c, "page"),
		PageSize:   parseIntQuery(c, "pageSize"),
	}
	entries, pagination, err := h.reader.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

func parseInt64Query(c *gin.Context, key string) int64 {
	value, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return value
}

func parseIntQuery(c *gin.Context, key string) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return value
}

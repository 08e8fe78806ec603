package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/acadops/course-scheduler-api/internal/dto"
	"github.com/acadops/course-scheduler-api/internal/models"
	appErrors "github.com/acadops/course-scheduler-api/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// ScheduleReader serves the persisted-schedule listing. A semester's schedule
// is small enough to page in memory after one load.
type ScheduleReader struct {
	entries entryLister
	logger  *zap.Logger
}

func NewScheduleReader(entries entryLister, logger *zap.Logger) *ScheduleReader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleReader{entries: entries, logger: logger}
}

// List returns one page of the semester's persisted schedule.
func (r *ScheduleReader) List(ctx context.Context, query dto.ScheduleQuery) ([]models.ScheduleEntry, *models.Pagination, error) {
	if query.SemesterID <= 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "semesterId is required")
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.PageSize <= 0 {
		query.PageSize = defaultPageSize
	}
	if query.PageSize > maxPageSize {
		query.PageSize = maxPageSize
	}

	entries, err := r.entries.ListBySemester(ctx, query.SemesterID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	total := len(entries)
	totalPages := (total + query.PageSize - 1) / query.PageSize
	start := (query.Page - 1) * query.PageSize
	if start > total {
		start = total
	}
	end := start + query.PageSize
	if end > total {
		end = total
	}

	pagination := &models.Pagination{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
	return entries[start:end], pagination, nil
}

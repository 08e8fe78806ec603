package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/acadops/course-scheduler-api/internal/models"
	appErrors "github.com/acadops/course-scheduler-api/pkg/errors"
)

type facultyLoadReader interface {
	CurrentLoad(ctx context.Context, facultyID, semesterID int64) (float64, error)
}

// FacultyCandidate pairs an instructor with the weekly hours already assigned
// to them this semester.
type FacultyCandidate struct {
	Faculty models.Faculty
	Load    float64
}

// LoadTracker computes committed teaching hours per candidate. Pure read; the
// builder layers in-run hours on top of these totals itself.
type LoadTracker struct {
	loads  facultyLoadReader
	logger *zap.Logger
}

// NewLoadTracker wires the tracker.
func NewLoadTracker(loads facultyLoadReader, logger *zap.Logger) *LoadTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoadTracker{loads: loads, logger: logger}
}

// Loads resolves the current semester load for every candidate and returns
// them sorted ascending by load, so underutilised faculty are tried first.
// Equal loads fall back to faculty id for a deterministic order.
func (t *LoadTracker) Loads(ctx context.Context, candidates []models.Faculty, semesterID int64) ([]FacultyCandidate, error) {
	result := make([]FacultyCandidate, 0, len(candidates))
	for _, faculty := range candidates {
		hours, err := t.loads.CurrentLoad(ctx, faculty.ID, semesterID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute faculty load")
		}
		result = append(result, FacultyCandidate{Faculty: faculty, Load: hours})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Load == result[j].Load {
			return result[i].Faculty.ID < result[j].Faculty.ID
		}
		return result[i].Load < result[j].Load
	})
	return result, nil
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/acadops/course-scheduler-api/internal/models"
)

type loadReaderStub struct {
	hours map[int64]float64
	err   error
}

func (s loadReaderStub) CurrentLoad(ctx context.Context, facultyID, semesterID int64) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.hours[facultyID], nil
}

func TestLoadTrackerSortsAscending(t *testing.T) {
	tracker := NewLoadTracker(loadReaderStub{hours: map[int64]float64{
		1: 12,
		2: 3,
		3: 7.5,
	}}, zap.NewNop())

	sorted, err := tracker.Loads(context.Background(), []models.Faculty{{ID: 1}, {ID: 2}, {ID: 3}}, 10)
	require.NoError(t, err)
	require.Len(t, sorted, 3)
	assert.Equal(t, int64(2), sorted[0].Faculty.ID)
	assert.Equal(t, int64(3), sorted[1].Faculty.ID)
	assert.Equal(t, int64(1), sorted[2].Faculty.ID)
	assert.Equal(t, 3.0, sorted[0].Load)
}

func TestLoadTrackerTieBreaksByID(t *testing.T) {
	tracker := NewLoadTracker(loadReaderStub{hours: map[int64]float64{
		5: 6,
		2: 6,
	}}, zap.NewNop())

	sorted, err := tracker.Loads(context.Background(), []models.Faculty{{ID: 5}, {ID: 2}}, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sorted[0].Faculty.ID)
	assert.Equal(t, int64(5), sorted[1].Faculty.ID)
}

func TestLoadTrackerPropagatesErrors(t *testing.T) {
	tracker := NewLoadTracker(loadReaderStub{err: errors.New("db down")}, zap.NewNop())

	_, err := tracker.Loads(context.Background(), []models.Faculty{{ID: 1}}, 10)
	require.Error(t, err)
}

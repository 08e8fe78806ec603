package service

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/acadops/course-scheduler-api/internal/dto"
	"github.com/acadops/course-scheduler-api/internal/models"
	appErrors "github.com/acadops/course-scheduler-api/pkg/errors"
)

// RoomAssigner selects a conflict-free classroom for an offering's slots. The
// pool is shuffled before scanning so repeated runs do not pile every course
// into the first room.
type RoomAssigner struct {
	rng    *rand.Rand
	logger *zap.Logger
}

// NewRoomAssigner wires the assigner. The *rand.Rand is injectable for
// reproducible shuffles in tests.
func NewRoomAssigner(rng *rand.Rand, logger *zap.Logger) *RoomAssigner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomAssigner{rng: rng, logger: logger}
}

// Assign returns the first room that fits the expected student count (when
// the capacity constraint is enabled) and is free across every slot. A nil
// result with a nil error means no room qualified; the caller skips the
// offering.
func (a *RoomAssigner) Assign(ctx context.Context, avail AvailabilityChecker, offering models.Offering, slots []models.TimeSlot, pool []models.Classroom, semesterID int64, constraints dto.GenerationConstraints) (*models.Classroom, error) {
	if len(slots) == 0 || len(pool) == 0 {
		return nil, nil
	}

	shuffled := make([]models.Classroom, len(pool))
	copy(shuffled, pool)
	a.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	for _, room := range shuffled {
		if constraints.RespectRoomCapacity && room.Capacity < offering.ExpectedStudents {
			continue
		}

		fits := true
		for _, slot := range slots {
			conflicting, err := avail.HasConflict(ctx, models.ConflictTypeRoom, room.ID, semesterID, slot.DayOfWeek, slot.StartMinute, slot.EndMinute)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room availability")
			}
			if conflicting {
				fits = false
				break
			}
		}
		if fits {
			selected := room
			return &selected, nil
		}
	}

	return nil, nil
}

package service

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/acadops/course-scheduler-api/internal/models"
	"github.com/acadops/course-scheduler-api/pkg/config"
	appErrors "github.com/acadops/course-scheduler-api/pkg/errors"
)

// AvailabilityChecker answers whether a faculty member or room already has a
// booking overlapping the given interval in a semester.
type AvailabilityChecker interface {
	HasConflict(ctx context.Context, kind models.ConflictType, ownerID, semesterID int64, day, startMinute, endMinute int) (bool, error)
}

// PlannedSlot is one accepted (faculty, time block) pair. Forced marks the
// fallback assignment made without a conflict-free option; it must be carried
// through to the persisted entry so conflict checks can flag it.
type PlannedSlot struct {
	FacultyID int64
	Slot      models.TimeSlot
	Forced    bool
}

// SlotPlanner places weekly time blocks for an offering across a fixed
// working window, preferring deterministic placement and falling back to a
// bounded random search. The availability source is passed per call so the
// builder can layer in-run assignments over the persisted index without any
// shared mutable state.
type SlotPlanner struct {
	cfg    config.SchedulerConfig
	rng    *rand.Rand
	logger *zap.Logger
}

// NewSlotPlanner wires the planner. The *rand.Rand is injectable so callers
// wanting reproducible schedules can seed it; production wiring seeds from
// the clock.
func NewSlotPlanner(cfg config.SchedulerConfig, rng *rand.Rand, logger *zap.Logger) *SlotPlanner {
	if cfg.WorkingDayStartHour <= 0 {
		cfg.WorkingDayStartHour = 7
	}
	if cfg.WorkingDayEndHour <= cfg.WorkingDayStartHour {
		cfg.WorkingDayEndHour = 22
	}
	if cfg.PreferredBlockHours <= 0 {
		cfg.PreferredBlockHours = 3
	}
	if cfg.MaxWeeklyLoadHours <= 0 {
		cfg.MaxWeeklyLoadHours = 18
	}
	if cfg.MaxRandomAttempts <= 0 {
		cfg.MaxRandomAttempts = 40
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotPlanner{cfg: cfg, rng: rng, logger: logger}
}

// Plan distributes requiredHours across candidates in ascending-load order.
// Candidates at or above the weekly cap are skipped. Returns an empty result
// when no candidate exists or every candidate is already at its weekly cap;
// the caller treats that as a skipped offering.
//
// Note on toggles: the planner always probes the AvailabilityChecker it is
// given; any gating of the batch self-check is the checker's concern, wired
// by the builder.
func (p *SlotPlanner) Plan(ctx context.Context, avail AvailabilityChecker, candidates []FacultyCandidate, requiredHours int, semesterID int64) ([]PlannedSlot, error) {
	if len(candidates) == 0 || requiredHours <= 0 {
		return nil, nil
	}

	var accepted []PlannedSlot
	seen := make(map[string]bool)
	remaining := requiredHours
	fallbackID := int64(0)

	for _, candidate := range candidates {
		if remaining <= 0 {
			break
		}

		capHours := p.weeklyCap(candidate.Faculty)
		headroom := int(math.Floor(float64(capHours) - candidate.Load))
		if headroom <= 0 {
			continue
		}
		if fallbackID == 0 {
			fallbackID = candidate.Faculty.ID
		}

		for remaining > 0 && headroom > 0 {
			blockHours := p.cfg.PreferredBlockHours
			if blockHours > remaining {
				blockHours = remaining
			}
			if blockHours > headroom {
				blockHours = headroom
			}
			if blockHours <= 0 {
				break
			}

			slot, found, err := p.findBlock(ctx, avail, candidate.Faculty.ID, semesterID, blockHours, seen, accepted)
			if err != nil {
				return nil, err
			}
			if !found {
				break
			}

			accepted = append(accepted, PlannedSlot{FacultyID: candidate.Faculty.ID, Slot: slot})
			seen[slot.Key()] = true
			remaining -= blockHours
			headroom -= blockHours
		}
	}

	// Forward-progress fallback: rather than leaving the offering entirely
	// unscheduled, force one block onto the least-loaded candidate with cap
	// headroom at a random position, skipping the conflict check. The Forced
	// flag keeps the assignment visible to the conflict detector and the UI.
	// With every candidate at its weekly cap there is nobody to force the
	// block onto and the plan stays empty.
	if len(accepted) == 0 && remaining > 0 && fallbackID != 0 {
		slot, err := p.randomBlock(p.blockFor(remaining))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build fallback slot")
		}
		p.logger.Warn("forced fallback slot assignment",
			zap.Int64("faculty_id", fallbackID),
			zap.String("slot", slot.String()),
		)
		accepted = append(accepted, PlannedSlot{FacultyID: fallbackID, Slot: slot, Forced: true})
	}

	return accepted, nil
}

func (p *SlotPlanner) weeklyCap(faculty models.Faculty) int {
	capHours := p.cfg.MaxWeeklyLoadHours
	if faculty.MaxWeeklyHours > 0 && faculty.MaxWeeklyHours < capHours {
		capHours = faculty.MaxWeeklyHours
	}
	return capHours
}

func (p *SlotPlanner) blockFor(remaining int) int {
	if remaining < p.cfg.PreferredBlockHours {
		return remaining
	}
	return p.cfg.PreferredBlockHours
}

// findBlock tries every (day, start hour) in order first; if nothing fits it
// samples random positions up to the attempt budget.
func (p *SlotPlanner) findBlock(ctx context.Context, avail AvailabilityChecker, facultyID, semesterID int64, blockHours int, seen map[string]bool, accepted []PlannedSlot) (models.TimeSlot, bool, error) {
	lastStart := p.cfg.WorkingDayEndHour - blockHours

	for day := models.DayMonday; day <= models.DaySaturday; day++ {
		for hour := p.cfg.WorkingDayStartHour; hour <= lastStart; hour++ {
			slot, ok, err := p.tryBlock(ctx, avail, facultyID, semesterID, day, hour, blockHours, seen, accepted)
			if err != nil {
				return models.TimeSlot{}, false, err
			}
			if ok {
				return slot, true, nil
			}
		}
	}

	for attempt := 0; attempt < p.cfg.MaxRandomAttempts; attempt++ {
		day := models.DayMonday + p.rng.Intn(models.DaySaturday-models.DayMonday+1)
		hour := p.cfg.WorkingDayStartHour + p.rng.Intn(lastStart-p.cfg.WorkingDayStartHour+1)
		slot, ok, err := p.tryBlock(ctx, avail, facultyID, semesterID, day, hour, blockHours, seen, accepted)
		if err != nil {
			return models.TimeSlot{}, false, err
		}
		if ok {
			return slot, true, nil
		}
	}

	return models.TimeSlot{}, false, nil
}

func (p *SlotPlanner) tryBlock(ctx context.Context, avail AvailabilityChecker, facultyID, semesterID int64, day, startHour, blockHours int, seen map[string]bool, accepted []PlannedSlot) (models.TimeSlot, bool, error) {
	slot, err := models.NewTimeSlot(day, startHour*models.MinutesPerHour, (startHour+blockHours)*models.MinutesPerHour)
	if err != nil {
		// Zero or negative computed duration; reject the block.
		return models.TimeSlot{}, false, nil
	}
	if seen[slot.Key()] {
		return models.TimeSlot{}, false, nil
	}
	for _, prior := range accepted {
		if prior.FacultyID == facultyID && prior.Slot.Overlaps(slot) {
			return models.TimeSlot{}, false, nil
		}
	}

	conflicting, err := avail.HasConflict(ctx, models.ConflictTypeFaculty, facultyID, semesterID, slot.DayOfWeek, slot.StartMinute, slot.EndMinute)
	if err != nil {
		return models.TimeSlot{}, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check faculty availability")
	}
	if conflicting {
		return models.TimeSlot{}, false, nil
	}
	return slot, true, nil
}

func (p *SlotPlanner) randomBlock(blockHours int) (models.TimeSlot, error) {
	if blockHours <= 0 {
		blockHours = 1
	}
	lastStart := p.cfg.WorkingDayEndHour - blockHours
	if lastStart < p.cfg.WorkingDayStartHour {
		lastStart = p.cfg.WorkingDayStartHour
		blockHours = p.cfg.WorkingDayEndHour - lastStart
	}
	day := models.DayMonday + p.rng.Intn(models.DaySaturday-models.DayMonday+1)
	hour := p.cfg.WorkingDayStartHour + p.rng.Intn(lastStart-p.cfg.WorkingDayStartHour+1)
	return models.NewTimeSlot(day, hour*models.MinutesPerHour, (hour+blockHours)*models.MinutesPerHour)
}

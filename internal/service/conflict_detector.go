package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadops/course-scheduler-api/internal/dto"
	"github.com/acadops/course-scheduler-api/internal/models"
	appErrors "github.com/acadops/course-scheduler-api/pkg/errors"
)

type entryLister interface {
	ListBySemester(ctx context.Context, semesterID int64) ([]models.ScheduleEntry, error)
}

type conflictCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ConflictDetector reports every faculty and room double-booking between a
// proposed batch and the semester's persisted schedule, and within the batch
// itself. It is advisory: detection never blocks a save. The pairwise scan is
// quadratic in slot count, which is fine for the interactive edit batches it
// is called with.
type ConflictDetector struct {
	entries   entryLister
	cache     conflictCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConflictDetector wires the detector. The cache is optional; with a nil
// cache every call recomputes.
func NewConflictDetector(entries entryLister, cache conflictCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ConflictDetector {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &ConflictDetector{entries: entries, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// Detect compares the proposed entries against the semester's persisted
// schedule and one another. Entry order in the request does not affect the
// reported pairs: results are normalised and sorted before returning.
func (d *ConflictDetector) Detect(ctx context.Context, req dto.DetectConflictsRequest) ([]models.Conflict, error) {
	if err := d.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict detection payload")
	}

	cacheKey, keyErr := d.cacheKey(req)
	if d.cache != nil && keyErr == nil {
		var cached []models.Conflict
		if err := d.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			d.logger.Warn("conflict cache read failed", zap.Error(err))
		}
	}

	existing, err := d.entries.ListBySemester(ctx, req.SemesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load persisted schedule")
	}

	proposed := normalizeProposed(req.Entries)

	var conflicts []models.Conflict

	// Entries being edited carry their persisted id; comparing an entry
	// against its own stored version would always conflict, so identical ids
	// are excluded.
	for _, a := range proposed {
		for _, b := range existing {
			if a.ID == b.ID {
				continue
			}
			conflicts = append(conflicts, comparePair(a, toComparable(b))...)
		}
	}

	for i := 0; i < len(proposed); i++ {
		for j := i + 1; j < len(proposed); j++ {
			conflicts = append(conflicts, comparePair(proposed[i], proposed[j])...)
		}
	}

	sortConflicts(conflicts)

	if d.cache != nil && keyErr == nil {
		if err := d.cache.Set(ctx, cacheKey, conflicts, d.cacheTTL); err != nil {
			d.logger.Warn("conflict cache write failed", zap.Error(err))
		}
	}

	return conflicts, nil
}

func (d *ConflictDetector) cacheKey(req dto.DetectConflictsRequest) (string, error) {
	payload, err := json.Marshal(struct {
		SemesterID   int64             `json:"semesterId"`
		DepartmentID int64             `json:"departmentId"`
		Entries      []comparableEntry `json:"entries"`
	}{req.SemesterID, req.DepartmentID, normalizeProposed(req.Entries)})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("scheduler:conflicts:%d:%s", req.SemesterID, hex.EncodeToString(sum[:])), nil
}

// comparableEntry is the slice of entry fields the pairwise check needs.
type comparableEntry struct {
	ID        string
	FacultyID int64
	RoomID    int64
	Slots     []models.TimeSlot
}

func toComparable(entry models.ScheduleEntry) comparableEntry {
	return comparableEntry{ID: entry.ID, FacultyID: entry.FacultyID, RoomID: entry.RoomID, Slots: entry.Slots}
}

// normalizeProposed sorts a copy of the batch by id so detection output is
// independent of request ordering, assigning synthetic ids to entries that
// have none yet.
func normalizeProposed(entries []dto.ProposedEntry) []comparableEntry {
	result := make([]comparableEntry, 0, len(entries))
	for i, entry := range entries {
		id := entry.ID
		if id == "" {
			id = fmt.Sprintf("proposed-%d-%d", entry.OfferingID, i)
		}
		result = append(result, comparableEntry{ID: id, FacultyID: entry.FacultyID, RoomID: entry.RoomID, Slots: entry.Slots})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func comparePair(a comparableEntry, b comparableEntry) []models.Conflict {
	var found []models.Conflict
	for _, slotA := range a.Slots {
		for _, slotB := range b.Slots {
			if !slotA.Overlaps(slotB) {
				continue
			}
			if a.FacultyID == b.FacultyID {
				found = append(found, models.Conflict{
					Type:    models.ConflictTypeFaculty,
					Message: fmt.Sprintf("faculty %d double-booked: %s overlaps %s", a.FacultyID, slotA, slotB),
					EntryA:  a.ID,
					EntryB:  b.ID,
					SlotA:   slotA,
					SlotB:   slotB,
				})
			}
			if a.RoomID == b.RoomID {
				found = append(found, models.Conflict{
					Type:    models.ConflictTypeRoom,
					Message: fmt.Sprintf("room %d double-booked: %s overlaps %s", a.RoomID, slotA, slotB),
					EntryA:  a.ID,
					EntryB:  b.ID,
					SlotA:   slotA,
					SlotB:   slotB,
				})
			}
		}
	}
	return found
}

func sortConflicts(conflicts []models.Conflict) {
	sort.Slice(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.EntryA != b.EntryA {
			return a.EntryA < b.EntryA
		}
		if a.EntryB != b.EntryB {
			return a.EntryB < b.EntryB
		}
		if a.SlotA.DayOfWeek != b.SlotA.DayOfWeek {
			return a.SlotA.DayOfWeek < b.SlotA.DayOfWeek
		}
		return a.SlotA.StartMinute < b.SlotA.StartMinute
	})
}

package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/acadops/course-scheduler-api/internal/dto"
	"github.com/acadops/course-scheduler-api/internal/models"
	appErrors "github.com/acadops/course-scheduler-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type entryWriter interface {
	DeleteBySemesterTx(ctx context.Context, exec sqlx.ExtContext, semesterID int64) error
	InsertTx(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error
}

type offeringStatusWriter interface {
	MarkScheduledTx(ctx context.Context, exec sqlx.ExtContext, offeringIDs []int64) error
}

type loadLedgerWriter interface {
	UpsertTx(ctx context.Context, exec sqlx.ExtContext, entry models.FacultyLoadEntry) error
}

type cacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// SchedulePersister replaces a semester's schedule as one transaction: the
// prior entries are deleted, the new batch inserted, offering statuses
// flipped and the teaching-load ledger upserted. Any error rolls the whole
// thing back, so regeneration either fully replaces the schedule or leaves it
// untouched.
type SchedulePersister struct {
	tx        txProvider
	entries   entryWriter
	offerings offeringStatusWriter
	ledger    loadLedgerWriter
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSchedulePersister wires persister dependencies.
func NewSchedulePersister(
	tx txProvider,
	entries entryWriter,
	offerings offeringStatusWriter,
	ledger loadLedgerWriter,
	cache cacheInvalidator,
	validate *validator.Validate,
	logger *zap.Logger,
) *SchedulePersister {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulePersister{
		tx:        tx,
		entries:   entries,
		offerings: offerings,
		ledger:    ledger,
		cache:     cache,
		validator: validate,
		logger:    logger,
	}
}

// Save persists a proposed batch for the semester. Malformed entries are
// skipped with a logged reason while the rest of the batch commits; this is
// deliberately more lenient than generation because callers validate
// structure upstream and the skip path is defence in depth.
func (p *SchedulePersister) Save(ctx context.Context, req dto.SaveScheduleRequest) (*dto.SaveScheduleResponse, error) {
	if err := p.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save schedule payload")
	}
	if p.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := p.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = p.entries.DeleteBySemesterTx(ctx, tx, req.SemesterID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear prior schedule")
		return nil, err
	}

	saved := 0
	skippedCount := 0
	scheduledOfferings := make([]int64, 0, len(req.Entries))

	for _, proposed := range req.Entries {
		if reason := malformedReason(proposed); reason != "" {
			skippedCount++
			p.logger.Warn("skipping malformed schedule entry",
				zap.Int64("offering_id", proposed.OfferingID),
				zap.String("reason", reason),
			)
			continue
		}

		entry := &models.ScheduleEntry{
			ID:         proposed.ID,
			OfferingID: proposed.OfferingID,
			FacultyID:  proposed.FacultyID,
			RoomID:     proposed.RoomID,
			SectionID:  proposed.SectionID,
			SemesterID: req.SemesterID,
			Status:     models.ScheduleEntryStatusPending,
			Forced:     proposed.Forced,
			Slots:      proposed.Slots,
		}
		if err = p.entries.InsertTx(ctx, tx, entry); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert schedule entry")
			return nil, err
		}

		if err = p.ledger.UpsertTx(ctx, tx, models.FacultyLoadEntry{
			FacultyID:     proposed.FacultyID,
			OfferingID:    proposed.OfferingID,
			SectionID:     proposed.SectionID,
			SemesterID:    req.SemesterID,
			AssignedHours: entry.TotalHours(),
			Status:        "ACTIVE",
		}); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert faculty load ledger")
			return nil, err
		}

		scheduledOfferings = append(scheduledOfferings, proposed.OfferingID)
		saved++
	}

	if err = p.offerings.MarkScheduledTx(ctx, tx, scheduledOfferings); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update offering status")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedule transaction")
		return nil, err
	}

	if p.cache != nil {
		pattern := fmt.Sprintf("scheduler:conflicts:%d:*", req.SemesterID)
		if cacheErr := p.cache.DeleteByPattern(ctx, pattern); cacheErr != nil {
			p.logger.Warn("failed to invalidate conflict cache", zap.Error(cacheErr))
		}
	}

	p.logger.Info("schedule saved",
		zap.Int64("semester_id", req.SemesterID),
		zap.Int("saved", saved),
		zap.Int("skipped", skippedCount),
	)

	return &dto.SaveScheduleResponse{Saved: saved, Skipped: skippedCount}, nil
}

// malformedReason returns a non-empty description when the entry is missing a
// required reference or carries an invalid slot.
func malformedReason(entry dto.ProposedEntry) string {
	switch {
	case entry.OfferingID <= 0:
		return "missing offering id"
	case entry.FacultyID <= 0:
		return "missing faculty id"
	case entry.RoomID <= 0:
		return "missing room id"
	case entry.SectionID <= 0:
		return "missing section id"
	case len(entry.Slots) == 0:
		return "no time slots"
	}
	for _, slot := range entry.Slots {
		if _, err := models.NewTimeSlot(slot.DayOfWeek, slot.StartMinute, slot.EndMinute); err != nil {
			return fmt.Sprintf("invalid time slot: %v", err)
		}
	}
	return ""
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acadops/course-scheduler-api/internal/models"
)

// ScheduleEntryRepository persists schedule entries and answers availability
// queries over the committed timetable. It is the backing store of the
// availability index the planner and room assigner consult.
type ScheduleEntryRepository struct {
	db *sqlx.DB
}

// NewScheduleEntryRepository creates a new schedule entry repository.
func NewScheduleEntryRepository(db *sqlx.DB) *ScheduleEntryRepository {
	return &ScheduleEntryRepository{db: db}
}

// HasConflict reports whether the faculty member or room identified by
// ownerID already has a persisted slot overlapping the half-open interval
// [startMinute, endMinute) on the given day in the semester.
func (r *ScheduleEntryRepository) HasConflict(ctx context.Context, kind models.ConflictType, ownerID, semesterID int64, day, startMinute, endMinute int) (bool, error) {
	column := "faculty_id"
	if kind == models.ConflictTypeRoom {
		column = "room_id"
	}

	query := fmt.Sprintf(`
SELECT EXISTS (
	SELECT 1
	FROM schedule_entries e
	JOIN schedule_entry_slots s ON s.schedule_entry_id = e.id
	WHERE e.%s = $1
	  AND e.semester_id = $2
	  AND s.day_of_week = $3
	  AND s.start_minute < $4
	  AND s.end_minute > $5
)`, column)

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, ownerID, semesterID, day, endMinute, startMinute); err != nil {
		return false, fmt.Errorf("check %s conflict: %w", column, err)
	}
	return exists, nil
}

// ListBySemester loads every persisted entry for the semester with its slots.
func (r *ScheduleEntryRepository) ListBySemester(ctx context.Context, semesterID int64) ([]models.ScheduleEntry, error) {
	const entryQuery = `
SELECT id, offering_id, faculty_id, room_id, section_id, semester_id, status, forced, created_at, updated_at
FROM schedule_entries
WHERE semester_id = $1
ORDER BY created_at, id`

	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, entryQuery, semesterID); err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}
	if len(entries) == 0 {
		return entries, nil
	}

	const slotQuery = `
SELECT s.schedule_entry_id, s.day_of_week, s.start_minute, s.end_minute
FROM schedule_entry_slots s
JOIN schedule_entries e ON e.id = s.schedule_entry_id
WHERE e.semester_id = $1
ORDER BY s.day_of_week, s.start_minute`

	type slotRow struct {
		ScheduleEntryID string `db:"schedule_entry_id"`
		DayOfWeek       int    `db:"day_of_week"`
		StartMinute     int    `db:"start_minute"`
		EndMinute       int    `db:"end_minute"`
	}
	var rows []slotRow
	if err := r.db.SelectContext(ctx, &rows, slotQuery, semesterID); err != nil {
		return nil, fmt.Errorf("list schedule entry slots: %w", err)
	}

	byEntry := make(map[string][]models.TimeSlot, len(entries))
	for _, row := range rows {
		byEntry[row.ScheduleEntryID] = append(byEntry[row.ScheduleEntryID], models.TimeSlot{
			DayOfWeek:   row.DayOfWeek,
			StartMinute: row.StartMinute,
			EndMinute:   row.EndMinute,
		})
	}
	for i := range entries {
		entries[i].Slots = byEntry[entries[i].ID]
	}
	return entries, nil
}

// DeleteBySemesterTx removes the semester's prior schedule inside the
// caller's transaction. Slots cascade via the foreign key.
func (r *ScheduleEntryRepository) DeleteBySemesterTx(ctx context.Context, exec sqlx.ExtContext, semesterID int64) error {
	const query = `DELETE FROM schedule_entries WHERE semester_id = $1`
	if _, err := exec.ExecContext(ctx, query, semesterID); err != nil {
		return fmt.Errorf("delete schedule entries for semester %d: %w", semesterID, err)
	}
	return nil
}

// InsertTx writes one entry and its slots inside the caller's transaction.
func (r *ScheduleEntryRepository) InsertTx(ctx context.Context, exec sqlx.ExtContext, entry *models.ScheduleEntry) error {
	if entry == nil {
		return fmt.Errorf("schedule entry payload is nil")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Status == "" {
		entry.Status = models.ScheduleEntryStatusPending
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	const entryQuery = `
INSERT INTO schedule_entries (id, offering_id, faculty_id, room_id, section_id, semester_id, status, forced, created_at, updated_at)
VALUES (:id, :offering_id, :faculty_id, :room_id, :section_id, :semester_id, :status, :forced, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, entryQuery, entry); err != nil {
		return fmt.Errorf("insert schedule entry: %w", err)
	}

	const slotQuery = `
INSERT INTO schedule_entry_slots (schedule_entry_id, day_of_week, start_minute, end_minute)
VALUES ($1, $2, $3, $4)`
	for _, slot := range entry.Slots {
		if _, err := exec.ExecContext(ctx, slotQuery, entry.ID, slot.DayOfWeek, slot.StartMinute, slot.EndMinute); err != nil {
			return fmt.Errorf("insert schedule entry slot: %w", err)
		}
	}
	return nil
}

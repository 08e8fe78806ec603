package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/acadops/course-scheduler-api/internal/models"
)

// FacultyLoadRepository computes committed teaching hours and maintains the
// teaching-load ledger written on save.
type FacultyLoadRepository struct {
	db *sqlx.DB
}

// NewFacultyLoadRepository creates a new faculty load repository.
func NewFacultyLoadRepository(db *sqlx.DB) *FacultyLoadRepository {
	return &FacultyLoadRepository{db: db}
}

// CurrentLoad sums the hours already committed to a faculty member this
// semester. Load is derived from persisted slots rather than the ledger, so
// it is always consistent with what the availability index sees.
func (r *FacultyLoadRepository) CurrentLoad(ctx context.Context, facultyID, semesterID int64) (float64, error) {
	const query = `
SELECT COALESCE(SUM(s.end_minute - s.start_minute), 0) / 60.0
FROM schedule_entries e
JOIN schedule_entry_slots s ON s.schedule_entry_id = e.id
WHERE e.faculty_id = $1 AND e.semester_id = $2`

	var hours float64
	if err := r.db.GetContext(ctx, &hours, query, facultyID, semesterID); err != nil {
		return 0, fmt.Errorf("current load for faculty %d: %w", facultyID, err)
	}
	return hours, nil
}

// UpsertTx inserts or overwrites the ledger row for a (faculty, offering,
// section) tuple inside the caller's transaction.
func (r *FacultyLoadRepository) UpsertTx(ctx context.Context, exec sqlx.ExtContext, entry models.FacultyLoadEntry) error {
	const query = `
INSERT INTO faculty_loads (faculty_id, offering_id, section_id, semester_id, assigned_hours, status, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (faculty_id, offering_id, section_id)
DO UPDATE SET assigned_hours = EXCLUDED.assigned_hours, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`

	if entry.Status == "" {
		entry.Status = "ACTIVE"
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now().UTC()
	}
	if _, err := exec.ExecContext(ctx, query,
		entry.FacultyID, entry.OfferingID, entry.SectionID, entry.SemesterID,
		entry.AssignedHours, entry.Status, entry.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert faculty load: %w", err)
	}
	return nil
}

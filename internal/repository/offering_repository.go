package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/acadops/course-scheduler-api/internal/models"
)

// OfferingRepository reads the department catalog and flips offering status
// after a successful schedule save. Catalog CRUD lives elsewhere.
type OfferingRepository struct {
	db *sqlx.DB
}

// NewOfferingRepository creates a new offering repository.
func NewOfferingRepository(db *sqlx.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

const offeringColumns = "id, course_id, course_code, title, department_id, semester_id, lecture_hours, lab_hours, expected_students, year_level, status, created_at, updated_at"

// ListForGeneration returns the offerings the builder iterates: everything in
// the semester and department that is not cancelled, optionally filtered by
// year level.
func (r *OfferingRepository) ListForGeneration(ctx context.Context, semesterID, departmentID int64, yearLevel int) ([]models.Offering, error) {
	query := fmt.Sprintf(`SELECT %s FROM offerings WHERE semester_id = $1 AND department_id = $2 AND status <> $3`, offeringColumns)
	args := []interface{}{semesterID, departmentID, models.OfferingStatusCancelled}
	if yearLevel > 0 {
		query += fmt.Sprintf(" AND year_level = $%d", len(args)+1)
		args = append(args, yearLevel)
	}
	query += " ORDER BY course_code, id"

	var offerings []models.Offering
	if err := r.db.SelectContext(ctx, &offerings, query, args...); err != nil {
		return nil, fmt.Errorf("list offerings for generation: %w", err)
	}
	return offerings, nil
}

// MarkScheduledTx transitions the given offerings to SCHEDULED inside the
// caller's transaction.
func (r *OfferingRepository) MarkScheduledTx(ctx context.Context, exec sqlx.ExtContext, offeringIDs []int64) error {
	if len(offeringIDs) == 0 {
		return nil
	}

	placeholders := make([]string, len(offeringIDs))
	args := make([]interface{}, 0, len(offeringIDs)+2)
	args = append(args, models.OfferingStatusScheduled, time.Now().UTC())
	for i, id := range offeringIDs {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, id)
	}

	query := fmt.Sprintf(`UPDATE offerings SET status = $1, updated_at = $2 WHERE id IN (%s)`, strings.Join(placeholders, ", "))
	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark offerings scheduled: %w", err)
	}
	return nil
}

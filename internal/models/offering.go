package models

import "time"

// OfferingStatus tracks where an offering sits in the scheduling lifecycle.
type OfferingStatus string

const (
	OfferingStatusPending   OfferingStatus = "PENDING"
	OfferingStatusScheduled OfferingStatus = "SCHEDULED"
	OfferingStatusCancelled OfferingStatus = "CANCELLED"
)

// Offering is a course put forward by a department for a semester, awaiting
// instructor, room and time assignment. The catalog process owns these rows;
// the scheduler only flips the status after a successful save.
type Offering struct {
	ID               int64          `db:"id" json:"id"`
	CourseID         int64          `db:"course_id" json:"courseId"`
	CourseCode       string         `db:"course_code" json:"courseCode"`
	Title            string         `db:"title" json:"title"`
	DepartmentID     int64          `db:"department_id" json:"departmentId"`
	SemesterID       int64          `db:"semester_id" json:"semesterId"`
	LectureHours     int            `db:"lecture_hours" json:"lectureHours"`
	LabHours         int            `db:"lab_hours" json:"labHours"`
	ExpectedStudents int            `db:"expected_students" json:"expectedStudents"`
	YearLevel        int            `db:"year_level" json:"yearLevel"`
	Status           OfferingStatus `db:"status" json:"status"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
}

// RequiredHours is the weekly hour total the planner must place.
func (o Offering) RequiredHours() int {
	return o.LectureHours + o.LabHours
}

// SkipReason explains why the builder could not schedule an offering.
type SkipReason string

const (
	SkipReasonNoFaculty  SkipReason = "NO_QUALIFIED_FACULTY"
	SkipReasonNoSlots    SkipReason = "NO_AVAILABLE_SLOTS"
	SkipReasonNoRoom     SkipReason = "NO_AVAILABLE_ROOM"
	SkipReasonSectionCap SkipReason = "SECTION_CAP_REACHED"
)

// SkippedOffering records a per-offering unassignability outcome. Skips are
// expected results, not errors; the batch always continues past them.
type SkippedOffering struct {
	OfferingID int64      `json:"offeringId"`
	CourseCode string     `json:"courseCode"`
	Reason     SkipReason `json:"reason"`
}

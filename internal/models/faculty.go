package models

import "time"

// Faculty is an instructor eligible for assignment. Rows are owned by the
// faculty-profile system and read-only here.
type Faculty struct {
	ID              int64     `db:"id" json:"id"`
	DepartmentID    int64     `db:"department_id" json:"departmentId"`
	FullName        string    `db:"full_name" json:"fullName"`
	Specialization  string    `db:"specialization" json:"specialization"`
	MaxWeeklyHours  int       `db:"max_weekly_hours" json:"maxWeeklyHours"`
	HasAvailability bool      `db:"has_availability" json:"hasAvailability"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// FacultyLoadEntry is a teaching-load ledger row written once per
// (faculty, offering, section) on save, upserted on regeneration.
type FacultyLoadEntry struct {
	ID            int64     `db:"id" json:"id"`
	FacultyID     int64     `db:"faculty_id" json:"facultyId"`
	OfferingID    int64     `db:"offering_id" json:"offeringId"`
	SectionID     int64     `db:"section_id" json:"sectionId"`
	SemesterID    int64     `db:"semester_id" json:"semesterId"`
	AssignedHours float64   `db:"assigned_hours" json:"assignedHours"`
	Status        string    `db:"status" json:"status"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

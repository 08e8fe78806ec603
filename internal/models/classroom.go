package models

import "time"

// RoomAvailability is the administrative state of a classroom.
type RoomAvailability string

const (
	RoomAvailable        RoomAvailability = "AVAILABLE"
	RoomUnavailable      RoomAvailability = "UNAVAILABLE"
	RoomUnderMaintenance RoomAvailability = "UNDER_MAINTENANCE"
)

// Classroom is a bookable room. Facilities administration owns these rows.
type Classroom struct {
	ID           int64            `db:"id" json:"id"`
	Code         string           `db:"code" json:"code"`
	DepartmentID *int64           `db:"department_id" json:"departmentId,omitempty"`
	Capacity     int              `db:"capacity" json:"capacity"`
	Shared       bool             `db:"shared" json:"shared"`
	Availability RoomAvailability `db:"availability" json:"availability"`
	CreatedAt    time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updatedAt"`
}

package models

import "fmt"

// Day boundaries for the scheduling week. Sunday is never scheduled.
const (
	DayMonday   = 1
	DaySaturday = 6
)

// MinutesPerHour keeps hour arithmetic explicit in the planner.
const MinutesPerHour = 60

// TimeSlot is a half-open weekly interval: [StartMinute, EndMinute) on a
// single day of week. Minutes count from midnight.
type TimeSlot struct {
	DayOfWeek   int `db:"day_of_week" json:"dayOfWeek"`
	StartMinute int `db:"start_minute" json:"startMinute"`
	EndMinute   int `db:"end_minute" json:"endMinute"`
}

// NewTimeSlot validates and builds a time slot. Zero or negative duration and
// days outside Monday-Saturday are rejected at construction.
func NewTimeSlot(day, startMinute, endMinute int) (TimeSlot, error) {
	if day < DayMonday || day > DaySaturday {
		return TimeSlot{}, fmt.Errorf("day of week %d outside Monday-Saturday range", day)
	}
	if startMinute < 0 || endMinute > 24*MinutesPerHour {
		return TimeSlot{}, fmt.Errorf("slot bounds [%d,%d) outside the day", startMinute, endMinute)
	}
	if endMinute-startMinute <= 0 {
		return TimeSlot{}, fmt.Errorf("slot duration must be positive, got [%d,%d)", startMinute, endMinute)
	}
	return TimeSlot{DayOfWeek: day, StartMinute: startMinute, EndMinute: endMinute}, nil
}

// DurationMinutes returns the slot length in minutes.
func (t TimeSlot) DurationMinutes() int {
	return t.EndMinute - t.StartMinute
}

// DurationHours returns the slot length in whole-hour units as a float.
func (t TimeSlot) DurationHours() float64 {
	return float64(t.DurationMinutes()) / MinutesPerHour
}

// Overlaps reports whether two slots intersect. Intervals are half-open, so
// slots that merely touch at an endpoint do not overlap.
func (t TimeSlot) Overlaps(other TimeSlot) bool {
	if t.DayOfWeek != other.DayOfWeek {
		return false
	}
	return t.StartMinute < other.EndMinute && t.EndMinute > other.StartMinute
}

// Key identifies a slot by day and interval, used for de-duplication.
func (t TimeSlot) Key() string {
	return fmt.Sprintf("%d:%d-%d", t.DayOfWeek, t.StartMinute, t.EndMinute)
}

func (t TimeSlot) String() string {
	return fmt.Sprintf("%s %02d:%02d-%02d:%02d",
		DayName(t.DayOfWeek),
		t.StartMinute/MinutesPerHour, t.StartMinute%MinutesPerHour,
		t.EndMinute/MinutesPerHour, t.EndMinute%MinutesPerHour,
	)
}

var dayNames = map[int]string{
	1: "MONDAY",
	2: "TUESDAY",
	3: "WEDNESDAY",
	4: "THURSDAY",
	5: "FRIDAY",
	6: "SATURDAY",
}

// DayName maps a day index to its canonical name.
func DayName(day int) string {
	if name, ok := dayNames[day]; ok {
		return name
	}
	return "MONDAY"
}

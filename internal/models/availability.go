package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Weekdays lists the schedule days in grid order.
var Weekdays = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ErrInvalidAvailability is wrapped by every DoctorAvailability.Validate failure.
var ErrInvalidAvailability = errors.New("invalid availability")

// WeekdayName returns the schedule day name for t in t's location.
func WeekdayName(t time.Time) string {
	// time.Weekday starts at Sunday.
	return Weekdays[(int(t.Weekday())+6)%7]
}

// WeekdayIndex returns the grid position of a day name, ignoring case.
func WeekdayIndex(day string) (int, bool) {
	for i, name := range Weekdays {
		if strings.EqualFold(strings.TrimSpace(day), name) {
			return i, true
		}
	}
	return -1, false
}

// ValidSlotTime reports whether s is a zero-padded 24h "HH:MM" time.
func ValidSlotTime(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// TimeSlot is one bookable time of day within a doctor's weekly schedule.
type TimeSlot struct {
	Time     string `json:"time"`
	IsBooked bool   `json:"isBooked"`
}

// DayAvailability holds the slots a doctor offers on one weekday, sorted by time.
type DayAvailability struct {
	Day   string     `json:"day"`
	Slots []TimeSlot `json:"slots"`
}

// Find returns the position of the slot at time, or -1.
func (d DayAvailability) Find(slotTime string) int {
	for i, s := range d.Slots {
		if s.Time == slotTime {
			return i
		}
	}
	return -1
}

// DoctorAvailability is the weekly slot grid owned by one doctor: exactly one
// entry per weekday in Monday..Sunday order.
type DoctorAvailability []DayAvailability

// NewWeeklyAvailability returns seven days with no slots.
func NewWeeklyAvailability() DoctorAvailability {
	av := make(DoctorAvailability, len(Weekdays))
	for i, day := range Weekdays {
		av[i] = DayAvailability{Day: day, Slots: []TimeSlot{}}
	}
	return av
}

// Clone returns a deep copy.
func (a DoctorAvailability) Clone() DoctorAvailability {
	if a == nil {
		return nil
	}
	out := make(DoctorAvailability, len(a))
	for i, day := range a {
		slots := make([]TimeSlot, len(day.Slots))
		copy(slots, day.Slots)
		out[i] = DayAvailability{Day: day.Day, Slots: slots}
	}
	return out
}

// Normalize coerces a backend payload into the weekly invariant: canonical day
// order and names, missing days present and empty, unknown days dropped, one
// slot per time (booked wins) and slots sorted ascending.
func (a DoctorAvailability) Normalize() DoctorAvailability {
	out := NewWeeklyAvailability()
	for _, day := range a {
		idx, ok := WeekdayIndex(day.Day)
		if !ok {
			continue
		}
		for _, slot := range day.Slots {
			if pos := out[idx].Find(slot.Time); pos >= 0 {
				out[idx].Slots[pos].IsBooked = out[idx].Slots[pos].IsBooked || slot.IsBooked
				continue
			}
			out[idx].Slots = append(out[idx].Slots, slot)
		}
	}
	for i := range out {
		SortSlots(out[i].Slots)
	}
	return out
}

// Validate checks the weekly invariant without repairing anything.
func (a DoctorAvailability) Validate() error {
	if len(a) != len(Weekdays) {
		return fmt.Errorf("%w: expected %d days, got %d", ErrInvalidAvailability, len(Weekdays), len(a))
	}
	seen := make(map[int]bool, len(Weekdays))
	for _, day := range a {
		idx, ok := WeekdayIndex(day.Day)
		if !ok {
			return fmt.Errorf("%w: unknown day %q", ErrInvalidAvailability, day.Day)
		}
		if seen[idx] {
			return fmt.Errorf("%w: duplicate day %s", ErrInvalidAvailability, Weekdays[idx])
		}
		seen[idx] = true

		times := make(map[string]bool, len(day.Slots))
		for _, slot := range day.Slots {
			if !ValidSlotTime(slot.Time) {
				return fmt.Errorf("%w: %s has malformed time %q", ErrInvalidAvailability, Weekdays[idx], slot.Time)
			}
			if times[slot.Time] {
				return fmt.Errorf("%w: %s lists %s twice", ErrInvalidAvailability, Weekdays[idx], slot.Time)
			}
			times[slot.Time] = true
		}
	}
	return nil
}

// SortSlots orders slots ascending by time. Zero-padded HH:MM sorts lexically.
func SortSlots(slots []TimeSlot) {
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Time < slots[j].Time })
}

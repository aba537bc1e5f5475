// Package booking holds the doctor availability and appointment booking rules.
// Everything here is pure: callers fetch availability from the backend, run
// these checks locally, and treat the backend as the final arbiter.
package booking

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"hospital-portal/internal/models"
)

// DefaultReason is used when a patient books without giving a reason.
const DefaultReason = "Regular checkup"

// Validation and referential errors returned by the booking rules.
var (
	ErrNoSuchSlot          = errors.New("time slot is not offered on that day")
	ErrSlotAlreadyBooked   = errors.New("time slot is already booked")
	ErrPastDate            = errors.New("appointment date is in the past")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrDepartmentNotFound  = errors.New("doctor's department not found")
	ErrSlotBooked          = errors.New("cannot withdraw a booked time slot")
	ErrInvalidDay          = errors.New("day index must be between 0 (Monday) and 6 (Sunday)")
	ErrInvalidTime         = errors.New("time must be HH:MM in 24h format")
	ErrInvalidTransition   = errors.New("appointment status transition not allowed")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// ResolveDaySlots returns the slots offered on the weekday of date. A weekday
// missing from the grid yields an empty list.
func ResolveDaySlots(av models.DoctorAvailability, date time.Time) []models.TimeSlot {
	day := models.WeekdayName(date)
	for _, d := range av {
		if strings.EqualFold(strings.TrimSpace(d.Day), day) {
			out := make([]models.TimeSlot, len(d.Slots))
			copy(out, d.Slots)
			return out
		}
	}
	return []models.TimeSlot{}
}

// ListBookable returns the free slot times on date, ascending.
func ListBookable(av models.DoctorAvailability, date time.Time) []string {
	times := []string{}
	for _, slot := range ResolveDaySlots(av, date) {
		if !slot.IsBooked {
			times = append(times, slot.Time)
		}
	}
	sort.Strings(times)
	return times
}

// ToggleSlot withdraws the slot at (dayIndex, slotTime) when it exists and adds
// a free one otherwise. The input is left untouched.
func ToggleSlot(av models.DoctorAvailability, dayIndex int, slotTime string) (models.DoctorAvailability, error) {
	if dayIndex < 0 || dayIndex >= len(models.Weekdays) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDay, dayIndex)
	}
	if !models.ValidSlotTime(slotTime) {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidTime, slotTime)
	}

	out := av.Clone()
	for len(out) <= dayIndex {
		out = append(out, models.DayAvailability{Day: models.Weekdays[len(out)], Slots: []models.TimeSlot{}})
	}

	day := &out[dayIndex]
	if pos := day.Find(slotTime); pos >= 0 {
		if day.Slots[pos].IsBooked {
			return nil, fmt.Errorf("%w: %s %s", ErrSlotBooked, day.Day, slotTime)
		}
		day.Slots = append(day.Slots[:pos], day.Slots[pos+1:]...)
		return out, nil
	}

	day.Slots = append(day.Slots, models.TimeSlot{Time: slotTime, IsBooked: false})
	models.SortSlots(day.Slots)
	return out, nil
}

// Book validates a booking of slotTime on date and returns the pending
// appointment together with the availability in which that slot is booked.
// The past-date check runs first so it wins over slot errors.
func Book(av models.DoctorAvailability, date time.Time, slotTime, reason string, now time.Time) (models.Appointment, models.DoctorAvailability, error) {
	if isBeforeToday(date, now) {
		return models.Appointment{}, nil, fmt.Errorf("%w: %s", ErrPastDate, date.Format(time.DateOnly))
	}
	if !models.ValidSlotTime(slotTime) {
		return models.Appointment{}, nil, fmt.Errorf("%w: got %q", ErrInvalidTime, slotTime)
	}

	dayName := models.WeekdayName(date)
	out := av.Clone()
	for i := range out {
		if !strings.EqualFold(strings.TrimSpace(out[i].Day), dayName) {
			continue
		}
		pos := out[i].Find(slotTime)
		if pos < 0 {
			break
		}
		if out[i].Slots[pos].IsBooked {
			return models.Appointment{}, nil, fmt.Errorf("%w: %s %s", ErrSlotAlreadyBooked, dayName, slotTime)
		}
		out[i].Slots[pos].IsBooked = true

		if strings.TrimSpace(reason) == "" {
			reason = DefaultReason
		}
		appt := models.Appointment{
			AppointmentDate: combine(date, slotTime),
			Time:            slotTime,
			Status:          models.StatusPending,
			Reason:          reason,
		}
		return appt, out, nil
	}
	return models.Appointment{}, nil, fmt.Errorf("%w: %s %s", ErrNoSuchSlot, dayName, slotTime)
}

// isBeforeToday compares civil dates in date's location.
func isBeforeToday(date, now time.Time) bool {
	now = now.In(date.Location())
	y1, m1, d1 := date.Date()
	y2, m2, d2 := now.Date()
	day := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	today := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return day.Before(today)
}

// combine returns date's calendar day at slotTime, which must be valid.
func combine(date time.Time, slotTime string) time.Time {
	t, _ := time.Parse("15:04", slotTime)
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, date.Location())
}

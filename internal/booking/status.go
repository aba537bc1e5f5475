package booking

import (
	"fmt"
	"sort"
	"time"

	"hospital-portal/internal/models"
)

// transitions lists the allowed outbound moves per status. Completed and
// Cancelled have none.
var transitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCompleted, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCompleted, models.StatusCancelled},
}

// CanTransition reports whether an appointment may move from one status to another.
func CanTransition(from, to models.AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition returns a copy of a with the new status.
func Transition(a models.Appointment, to models.AppointmentStatus) (models.Appointment, error) {
	if !CanTransition(a.Status, to) {
		return a, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, to)
	}
	a.Status = to
	return a, nil
}

// Cancel moves a Pending or Confirmed appointment to Cancelled. The booked slot
// is freed by the backend, not here.
func Cancel(a models.Appointment) (models.Appointment, error) {
	return Transition(a, models.StatusCancelled)
}

// IsUpcoming is the derived "Upcoming" label: the appointment has not started yet.
func IsUpcoming(a models.Appointment, now time.Time) bool {
	return !a.AppointmentDate.Before(now)
}

// Partition splits appointments into upcoming (soonest first) and past (most
// recent first).
func Partition(appts []models.Appointment, now time.Time) (upcoming, past []models.Appointment) {
	upcoming = []models.Appointment{}
	past = []models.Appointment{}
	for _, a := range appts {
		if IsUpcoming(a, now) {
			upcoming = append(upcoming, a)
		} else {
			past = append(past, a)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].AppointmentDate.Before(upcoming[j].AppointmentDate)
	})
	sort.SliceStable(past, func(i, j int) bool {
		return past[i].AppointmentDate.After(past[j].AppointmentDate)
	})
	return upcoming, past
}

// FilterByStatus keeps appointments with the given status; an empty status keeps all.
func FilterByStatus(appts []models.Appointment, status models.AppointmentStatus) []models.Appointment {
	if status == "" {
		return appts
	}
	out := []models.Appointment{}
	for _, a := range appts {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out
}

// TimeGrid returns the half-hour times a doctor can offer, 08:00 through 17:30.
func TimeGrid() []string {
	grid := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		grid = append(grid, fmt.Sprintf("%02d:%02d", 8+i/2, (i%2)*30))
	}
	return grid
}

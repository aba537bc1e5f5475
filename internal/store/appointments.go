package store

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"hospital-portal/internal/booking"
	"hospital-portal/internal/models"
)

// Booking outcomes reported to metrics.
const (
	OutcomeBooked        = "booked"
	OutcomePastDate      = "past_date"
	OutcomeNoSuchSlot    = "no_such_slot"
	OutcomeAlreadyBooked = "slot_already_booked"
	OutcomeNotFound      = "not_found"
	OutcomeRejected      = "rejected"
)

// Appointments caches the appointments visible to the signed-in role.
type Appointments struct {
	s     *Store
	items []models.Appointment
}

// List returns the cached appointments.
func (a *Appointments) List() []models.Appointment {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	out := make([]models.Appointment, len(a.items))
	copy(out, a.items)
	return out
}

// Find returns a cached appointment by id.
func (a *Appointments) Find(id string) (models.Appointment, bool) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	for _, appt := range a.items {
		if appt.ID == id {
			return appt, true
		}
	}
	return models.Appointment{}, false
}

func (a *Appointments) endpoint() (string, error) {
	user := a.s.User()
	switch user.Role {
	case models.RoleAdmin:
		return epAppointments, nil
	case models.RoleDoctor:
		if user.ID == "" {
			return "", ErrNoUser
		}
		return doctorAppointmentsPath(user.ID), nil
	case models.RolePatient:
		return epMyAppointments, nil
	}
	return "", ErrNoUser
}

// Fetch reloads the appointments for the signed-in role.
func (a *Appointments) Fetch(ctx context.Context) error {
	return a.s.run(ctx, "appointments.fetch", a.fetch)
}

func (a *Appointments) fetch(ctx context.Context) error {
	ep, err := a.endpoint()
	if err != nil {
		return err
	}
	items := []models.Appointment{}
	if err := a.s.api.Get(ctx, ep, &items); err != nil {
		return err
	}
	a.s.mu.Lock()
	a.items = items
	a.s.mu.Unlock()
	return nil
}

// LoadBookingContext fetches doctors and departments in parallel.
func (a *Appointments) LoadBookingContext(ctx context.Context) error {
	return a.s.run(ctx, "appointments.booking_context", a.loadBookingContext)
}

func (a *Appointments) loadBookingContext(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.s.Doctors.fetch(gctx) })
	g.Go(func() error { return a.s.Departments.fetch(gctx) })
	return g.Wait()
}

// Book validates the request against the doctor's current grid, asks the
// backend to book it and then refetches appointments and the doctor's grid.
// The local check is advisory: a backend rejection is returned as the failure.
func (a *Appointments) Book(ctx context.Context, req booking.Request) (models.Appointment, error) {
	var booked models.Appointment
	err := a.s.run(ctx, "appointments.book", func(ctx context.Context) error {
		var err error
		booked, err = a.book(ctx, req)
		return err
	})
	return booked, err
}

func (a *Appointments) book(ctx context.Context, req booking.Request) (models.Appointment, error) {
	if len(a.s.Doctors.List()) == 0 || len(a.s.Departments.List()) == 0 {
		if err := a.loadBookingContext(ctx); err != nil {
			return models.Appointment{}, err
		}
	}
	if _, ok := a.s.Doctors.Find(req.DoctorID); ok {
		if _, err := a.s.Doctors.fetchAvailability(ctx, req.DoctorID); err != nil {
			return models.Appointment{}, err
		}
	}

	res, err := booking.Reserve(a.s.Doctors.List(), a.s.Departments.List(), req, a.s.now())
	if err != nil {
		a.s.metrics.ObserveBooking(outcomeOf(err))
		return models.Appointment{}, err
	}

	var created models.Appointment
	postErr := a.s.api.Post(ctx, epBookAppointment, res.Body(), &created)

	if err := a.fetch(ctx); err != nil {
		a.s.logger.Warn().Str("error", err.Error()).Msg("refetch appointments after booking")
	}
	if _, err := a.s.Doctors.fetchAvailability(ctx, req.DoctorID); err != nil {
		a.s.logger.Warn().Str("error", err.Error()).Str("doctor_id", req.DoctorID).Msg("refetch availability after booking")
	}

	if postErr != nil {
		a.s.metrics.ObserveBooking(OutcomeRejected)
		return models.Appointment{}, postErr
	}
	a.s.metrics.ObserveBooking(OutcomeBooked)

	if created.ID == "" {
		return res.Appointment, nil
	}
	if created.Status == "" {
		created.Status = models.StatusPending
	}
	return created, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, booking.ErrPastDate):
		return OutcomePastDate
	case errors.Is(err, booking.ErrNoSuchSlot), errors.Is(err, booking.ErrInvalidTime):
		return OutcomeNoSuchSlot
	case errors.Is(err, booking.ErrSlotAlreadyBooked):
		return OutcomeAlreadyBooked
	case errors.Is(err, booking.ErrDoctorNotFound), errors.Is(err, booking.ErrDepartmentNotFound):
		return OutcomeNotFound
	}
	return OutcomeRejected
}

// UpdateStatus moves an appointment to a new status and returns it as cached
// afterwards. The transition is checked against the cached appointment, which
// is refetched first when missing; the cache is patched only after the backend
// confirms.
func (a *Appointments) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (models.Appointment, error) {
	var updated models.Appointment
	err := a.s.run(ctx, "appointments.status", func(ctx context.Context) error {
		st, err := models.ParseStatus(string(status))
		if err != nil {
			return fmt.Errorf("%w: %s", booking.ErrInvalidTransition, err)
		}
		current, ok := a.Find(id)
		if !ok {
			if err := a.fetch(ctx); err != nil {
				return err
			}
			if current, ok = a.Find(id); !ok {
				return fmt.Errorf("%w: %s", booking.ErrAppointmentNotFound, id)
			}
		}
		if updated, err = booking.Transition(current, st); err != nil {
			return err
		}
		if err := a.s.api.Put(ctx, appointmentStatusPath(id), models.StatusUpdate{Status: st}, nil); err != nil {
			return err
		}

		a.s.mu.Lock()
		defer a.s.mu.Unlock()
		for i := range a.items {
			if a.items[i].ID == id {
				a.items[i].Status = st
			}
		}
		return nil
	})
	if err != nil {
		return models.Appointment{}, err
	}
	return updated, nil
}

// Cancel cancels a Pending or Confirmed appointment.
func (a *Appointments) Cancel(ctx context.Context, id string) (models.Appointment, error) {
	return a.UpdateStatus(ctx, id, models.StatusCancelled)
}

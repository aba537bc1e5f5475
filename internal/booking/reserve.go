package booking

import (
	"fmt"
	"time"

	"hospital-portal/internal/models"
)

// Request is a patient's booking request as entered in the booking form.
type Request struct {
	DoctorID string
	Date     time.Time
	Time     string
	Reason   string
}

// Reservation is a locally validated booking, ready to be sent to the backend.
type Reservation struct {
	Doctor       models.Doctor
	DepartmentID string
	Appointment  models.Appointment
	// Availability is the doctor's grid with the requested slot marked booked.
	Availability models.DoctorAvailability
}

// Body returns the payload for the backend's book-appointment endpoint.
func (r Reservation) Body() models.BookAppointmentRequest {
	return models.BookAppointmentRequest{
		DoctorID:        r.Doctor.ID,
		DepartmentID:    r.DepartmentID,
		AppointmentDate: r.Appointment.AppointmentDate,
		Time:            r.Appointment.Time,
		Reason:          r.Appointment.Reason,
	}
}

// Reserve resolves the doctor and the department that lists them, then runs
// Book against the doctor's availability.
func Reserve(doctors []models.Doctor, departments []models.Department, req Request, now time.Time) (Reservation, error) {
	doctor, ok := FindDoctor(doctors, req.DoctorID)
	if !ok {
		return Reservation{}, fmt.Errorf("%w: %s", ErrDoctorNotFound, req.DoctorID)
	}
	dept, ok := DepartmentOf(departments, doctor.ID)
	if !ok {
		return Reservation{}, fmt.Errorf("%w: doctor %s", ErrDepartmentNotFound, doctor.ID)
	}

	appt, av, err := Book(doctor.Availability, req.Date, req.Time, req.Reason, now)
	if err != nil {
		return Reservation{}, err
	}
	appt.Doctor = models.Ref{ID: doctor.ID, Name: doctor.Name, Specialization: doctor.Specialization}
	appt.Department = models.Ref{ID: dept.ID, Name: dept.Name}

	return Reservation{
		Doctor:       doctor,
		DepartmentID: dept.ID,
		Appointment:  appt,
		Availability: av,
	}, nil
}

// FindDoctor looks a doctor up by id.
func FindDoctor(doctors []models.Doctor, id string) (models.Doctor, bool) {
	if id == "" {
		return models.Doctor{}, false
	}
	for _, d := range doctors {
		if d.ID == id {
			return d, true
		}
	}
	return models.Doctor{}, false
}

// DepartmentOf returns the first department whose doctor list includes doctorID.
func DepartmentOf(departments []models.Department, doctorID string) (models.Department, bool) {
	for _, dept := range departments {
		if dept.ID != "" && dept.HasDoctor(doctorID) {
			return dept, true
		}
	}
	return models.Department{}, false
}

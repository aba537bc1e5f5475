package booking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-portal/internal/models"
)

func fixtures() ([]models.Doctor, []models.Department) {
	doctors := []models.Doctor{
		{ID: "d1", Name: "Dr. Haddad", Specialization: "Cardiology", Availability: weekWith(0, free("09:00"), free("09:30"))},
		{ID: "d2", Name: "Dr. Orphan", Availability: weekWith(0, free("09:00"))},
	}
	departments := []models.Department{
		{ID: "dep-neuro", Name: "Neurology", Doctors: []models.Ref{{ID: "d9"}}},
		{ID: "dep-cardio", Name: "Cardiology", Doctors: []models.Ref{{ID: "d1"}}},
	}
	return doctors, departments
}

func TestReserveResolvesDepartment(t *testing.T) {
	doctors, departments := fixtures()

	res, err := Reserve(doctors, departments, Request{DoctorID: "d1", Date: nextMonday, Time: "09:00"}, now)
	require.NoError(t, err)

	assert.Equal(t, "dep-cardio", res.DepartmentID)
	assert.Equal(t, "d1", res.Appointment.Doctor.ID)
	assert.Equal(t, "Cardiology", res.Appointment.Department.Name)
	assert.Equal(t, []models.TimeSlot{booked("09:00"), free("09:30")}, res.Availability[0].Slots)

	body := res.Body()
	assert.Equal(t, "d1", body.DoctorID)
	assert.Equal(t, "dep-cardio", body.DepartmentID)
	assert.Equal(t, "09:00", body.Time)
	assert.Equal(t, DefaultReason, body.Reason)
	assert.Equal(t, res.Appointment.AppointmentDate, body.AppointmentDate)

	assert.False(t, doctors[0].Availability[0].Slots[0].IsBooked, "cached doctor untouched")
}

func TestReserveReferentialFailures(t *testing.T) {
	doctors, departments := fixtures()

	_, err := Reserve(doctors, departments, Request{DoctorID: "nobody", Date: nextMonday, Time: "09:00"}, now)
	assert.True(t, errors.Is(err, ErrDoctorNotFound))

	_, err = Reserve(doctors, departments, Request{DoctorID: "d2", Date: nextMonday, Time: "09:00"}, now)
	assert.True(t, errors.Is(err, ErrDepartmentNotFound))

	_, err = Reserve(doctors, nil, Request{DoctorID: "d1", Date: nextMonday, Time: "09:00"}, now)
	assert.True(t, errors.Is(err, ErrDepartmentNotFound))
}

func TestReservePropagatesSlotErrors(t *testing.T) {
	doctors, departments := fixtures()

	_, err := Reserve(doctors, departments, Request{DoctorID: "d1", Date: nextMonday, Time: "15:00"}, now)
	assert.True(t, errors.Is(err, ErrNoSuchSlot))
}

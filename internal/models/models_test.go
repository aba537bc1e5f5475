package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdayName(t *testing.T) {
	// 2026-10-12 is a Monday.
	monday := time.Date(2026, 10, 12, 15, 0, 0, 0, time.UTC)
	for i, want := range Weekdays {
		assert.Equal(t, want, WeekdayName(monday.AddDate(0, 0, i)))
	}
}

func TestWeekdayIndex(t *testing.T) {
	idx, ok := WeekdayIndex(" sunday")
	require.True(t, ok)
	assert.Equal(t, 6, idx)

	_, ok = WeekdayIndex("Funday")
	assert.False(t, ok)
}

func TestValidSlotTime(t *testing.T) {
	for _, good := range []string{"00:00", "08:30", "23:59"} {
		assert.True(t, ValidSlotTime(good), good)
	}
	for _, bad := range []string{"8:30", "24:00", "12:60", "12-30", "", "12:3"} {
		assert.False(t, ValidSlotTime(bad), bad)
	}
}

func TestNormalizeRepairsBackendPayload(t *testing.T) {
	raw := DoctorAvailability{
		{Day: "wednesday", Slots: []TimeSlot{{Time: "10:00"}, {Time: "09:00", IsBooked: true}}},
		{Day: "Monday", Slots: []TimeSlot{{Time: "09:00"}, {Time: "09:00", IsBooked: true}}},
		{Day: "Holiday", Slots: []TimeSlot{{Time: "12:00"}}},
	}

	got := raw.Normalize()

	require.Len(t, got, 7)
	require.NoError(t, got.Validate())
	assert.Equal(t, "Monday", got[0].Day)
	assert.Equal(t, []TimeSlot{{Time: "09:00", IsBooked: true}}, got[0].Slots)
	assert.Equal(t, "Wednesday", got[2].Day)
	assert.Equal(t, []TimeSlot{{Time: "09:00", IsBooked: true}, {Time: "10:00"}}, got[2].Slots)
	assert.NotNil(t, got[6].Slots, "empty days keep an empty list")
	assert.Empty(t, got[6].Slots)
}

func TestValidateRejectsBrokenGrids(t *testing.T) {
	dup := NewWeeklyAvailability()
	dup[1].Day = "Monday"

	badTime := NewWeeklyAvailability()
	badTime[0].Slots = []TimeSlot{{Time: "9:00"}}

	twice := NewWeeklyAvailability()
	twice[0].Slots = []TimeSlot{{Time: "09:00"}, {Time: "09:00"}}

	tests := map[string]DoctorAvailability{
		"missing days":   NewWeeklyAvailability()[:6],
		"duplicate day":  dup,
		"malformed time": badTime,
		"duplicate time": twice,
	}
	for name, av := range tests {
		t.Run(name, func(t *testing.T) {
			err := av.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidAvailability))
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	av := NewWeeklyAvailability()
	av[0].Slots = append(av[0].Slots, TimeSlot{Time: "09:00"})

	cp := av.Clone()
	cp[0].Slots[0].IsBooked = true

	assert.False(t, av[0].Slots[0].IsBooked)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, st)

	st, err = ParseStatus("Upcoming")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, st)

	_, err = ParseStatus("Rescheduled")
	assert.Error(t, err)

	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
}

func TestAppointmentDecodesPopulatedAndBareRefs(t *testing.T) {
	payload := `{
		"_id": "a1",
		"patient": {"_id": "p1", "name": "Sara", "email": "sara@example.com"},
		"doctor": "d1",
		"department": null,
		"appointmentDate": "2026-10-19T09:00:00Z",
		"status": "upcoming",
		"reason": "Regular checkup"
	}`

	var a Appointment
	require.NoError(t, json.Unmarshal([]byte(payload), &a))

	assert.Equal(t, "p1", a.Patient.ID)
	assert.Equal(t, "Sara", a.Patient.Name)
	assert.Equal(t, Ref{ID: "d1"}, a.Doctor)
	assert.Empty(t, a.Department.ID)
	assert.Equal(t, StatusPending, a.Status)
}

func TestUserAcceptsEitherIDKey(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":"u1","name":"Amal","role":"doctor"}`), &u))
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, RoleDoctor, u.Role)
	assert.Equal(t, "/doctor", u.Role.HomePath())

	var d Doctor
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"d1","id":"ignored"}`), &d))
	assert.Equal(t, "d1", d.ID)
}

func TestDepartmentHasDoctor(t *testing.T) {
	dept := Department{ID: "dep", Doctors: []Ref{{ID: "d1"}, {ID: "d2"}}}
	assert.True(t, dept.HasDoctor("d2"))
	assert.False(t, dept.HasDoctor("d3"))
}

package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "Pending"
	StatusConfirmed AppointmentStatus = "Confirmed"
	StatusCompleted AppointmentStatus = "Completed"
	StatusCancelled AppointmentStatus = "Cancelled"
)

// legacyUpcoming is a display label some backend versions store as a status.
const legacyUpcoming = "upcoming"

// ParseStatus matches a status case-insensitively. The legacy "Upcoming" label
// maps to Pending.
func ParseStatus(s string) (AppointmentStatus, error) {
	v := strings.TrimSpace(s)
	for _, st := range []AppointmentStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled} {
		if strings.EqualFold(v, string(st)) {
			return st, nil
		}
	}
	if strings.EqualFold(v, legacyUpcoming) {
		return StatusPending, nil
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

// IsTerminal reports whether no further transition is possible.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// UnmarshalJSON normalizes the status through ParseStatus.
func (s *AppointmentStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Appointment represents a scheduled medical appointment
type Appointment struct {
	ID              string            `json:"_id"`
	Patient         Ref               `json:"patient"`
	Doctor          Ref               `json:"doctor"`
	Department      Ref               `json:"department"`
	AppointmentDate time.Time         `json:"appointmentDate"`
	Time            string            `json:"time,omitempty"`
	Status          AppointmentStatus `json:"status"`
	Reason          string            `json:"reason"`
	CreatedAt       *time.Time        `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time        `json:"updatedAt,omitempty"`
}

// BookAppointmentRequest is the body the backend expects when booking.
type BookAppointmentRequest struct {
	DoctorID        string    `json:"doctorId"`
	DepartmentID    string    `json:"departmentId"`
	AppointmentDate time.Time `json:"appointmentDate"`
	Time            string    `json:"time"`
	Reason          string    `json:"reason"`
}

// StatusUpdate is the body of a status change.
type StatusUpdate struct {
	Status AppointmentStatus `json:"status"`
}

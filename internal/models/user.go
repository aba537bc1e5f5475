package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleDoctor  Role = "Doctor"
	RolePatient Role = "Patient"
)

// ParseRole matches a role name case-insensitively.
func ParseRole(s string) (Role, bool) {
	for _, r := range []Role{RoleAdmin, RoleDoctor, RolePatient} {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, true
		}
	}
	return "", false
}

// HomePath is the portal landing page for the role, e.g. "/doctor".
func (r Role) HomePath() string {
	return "/" + strings.ToLower(string(r))
}

// User is the authenticated identity returned by the backend on login.
type User struct {
	ID             string             `json:"_id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	Role           Role               `json:"role"`
	PhoneNumber    string             `json:"phoneNumber,omitempty"`
	CIN            string             `json:"CIN,omitempty"`
	Specialization string             `json:"specialization,omitempty"`
	DepartmentID   string             `json:"departmentId,omitempty"`
	IsValidated    bool               `json:"isValidated"`
	MedicalHistory string             `json:"medicalHistory,omitempty"`
	ProfileImage   string             `json:"profileImage,omitempty"`
	DiplomaImage   string             `json:"diplomaImage,omitempty"`
	Availability   DoctorAvailability `json:"availability,omitempty"`
}

// UnmarshalJSON accepts both "_id" and "id", and a role in any letter case.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*u = User(aux.plain)
	if u.ID == "" {
		u.ID = aux.AltID
	}
	if role, ok := ParseRole(string(u.Role)); ok {
		u.Role = role
	}
	return nil
}

// Doctor is a practitioner as listed by the backend.
type Doctor struct {
	ID             string             `json:"_id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	PhoneNumber    string             `json:"phoneNumber,omitempty"`
	Specialization string             `json:"specialization"`
	DepartmentID   string             `json:"departmentId,omitempty"`
	IsValidated    bool               `json:"isValidated"`
	ProfileImage   string             `json:"profileImage,omitempty"`
	DiplomaImage   string             `json:"diplomaImage,omitempty"`
	Availability   DoctorAvailability `json:"availability"`
}

// UnmarshalJSON accepts both "_id" and "id".
func (d *Doctor) UnmarshalJSON(data []byte) error {
	type plain Doctor
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = Doctor(aux.plain)
	if d.ID == "" {
		d.ID = aux.AltID
	}
	return nil
}

// VitalSigns are the latest vitals recorded for a patient.
type VitalSigns struct {
	BloodPressure string `json:"bloodPressure,omitempty"`
	HeartRate     string `json:"heartRate,omitempty"`
	Temperature   string `json:"temperature,omitempty"`
}

// Patient is a patient as listed by the backend.
type Patient struct {
	ID             string      `json:"_id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	PhoneNumber    string      `json:"phoneNumber"`
	CIN            string      `json:"CIN"`
	MedicalHistory string      `json:"medicalHistory,omitempty"`
	ProfileImage   string      `json:"profileImage,omitempty"`
	IsValidated    bool        `json:"isValidated"`
	Vitals         *VitalSigns `json:"vitals,omitempty"`
	LastVisit      *time.Time  `json:"lastVisit,omitempty"`
	CreatedAt      *time.Time  `json:"createdAt,omitempty"`

	// Chart entries kept by the treating doctor.
	LastAppointment *LastAppointment `json:"lastAppointment,omitempty"`
	Diagnoses       []Diagnosis      `json:"diagnoses,omitempty"`
	Treatments      []Treatment      `json:"treatments,omitempty"`
}

type LastAppointment struct {
	ID     string            `json:"_id"`
	Date   *time.Time        `json:"date,omitempty"`
	Status AppointmentStatus `json:"status"`
}

type Diagnosis struct {
	Condition string     `json:"condition"`
	Date      *time.Time `json:"date,omitempty"`
}

type Treatment struct {
	Treatment string     `json:"treatment"`
	Date      *time.Time `json:"date,omitempty"`
}

// Kinds of note a doctor can add to a patient's chart.
const (
	NoteDiagnosis = "diagnosis"
	NoteTreatment = "treatment"
)

// PatientNote is a diagnosis or treatment line added to a patient's chart.
type PatientNote struct {
	Type    string `json:"type" validate:"required,oneof=diagnosis treatment"`
	Content string `json:"content" validate:"required,min=2"`
}

// UnmarshalJSON accepts both "_id" and "id".
func (p *Patient) UnmarshalJSON(data []byte) error {
	type plain Patient
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Patient(aux.plain)
	if p.ID == "" {
		p.ID = aux.AltID
	}
	return nil
}

package models

import (
	"time"
)

// Medication is one line of a prescription.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

// Prescription groups the medications prescribed during a visit.
type Prescription struct {
	Medications []Medication `json:"medications"`
}

// Attachment describes a file stored with a medical record.
type Attachment struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// MedicalRecord is one entry of a patient's medical history.
type MedicalRecord struct {
	ID           string       `json:"_id"`
	Patient      Ref          `json:"patient"`
	Doctor       Ref          `json:"doctor"`
	Appointment  *Ref         `json:"appointment,omitempty"`
	Diagnosis    string       `json:"diagnosis"`
	Prescription Prescription `json:"prescription"`
	Notes        string       `json:"notes,omitempty"`
	VitalSigns   *VitalSigns  `json:"vitalSigns,omitempty"`
	Attachments  []Attachment `json:"attachments,omitempty"`
	FollowUpDate *time.Time   `json:"followUpDate,omitempty"`
	CreatedAt    *time.Time   `json:"createdAt,omitempty"`
}

// MedicalRecordInput is the form a doctor submits for a history entry.
type MedicalRecordInput struct {
	PatientID     string       `json:"patientId" validate:"required"`
	AppointmentID string       `json:"appointmentId,omitempty"`
	Diagnosis     string       `json:"diagnosis" validate:"required"`
	Medications   []Medication `json:"medications" validate:"dive"`
	Notes         string       `json:"notes,omitempty"`
	VitalSigns    *VitalSigns  `json:"vitalSigns,omitempty"`
	FollowUpDate  *time.Time   `json:"followUpDate,omitempty"`
}

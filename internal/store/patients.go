package store

import (
	"context"
	"encoding/json"
	"time"

	"hospital-portal/internal/apiclient"
	"hospital-portal/internal/models"
	"hospital-portal/internal/utils"
)

// ProfileInput is the patient's editable profile.
type ProfileInput struct {
	Name           string `form:"name" validate:"omitempty,min=2"`
	PhoneNumber    string `form:"phoneNumber" validate:"omitempty,min=8"`
	MedicalHistory string `form:"medicalHistory"`

	ProfileImage *apiclient.File `form:"-"`
}

func (in ProfileInput) form() apiclient.Form {
	var f apiclient.Form
	f.Set("name", in.Name)
	f.Set("phoneNumber", in.PhoneNumber)
	f.Set("medicalHistory", in.MedicalHistory)
	if in.ProfileImage != nil {
		f.Files = append(f.Files, *in.ProfileImage)
	}
	return f
}

// recordForm encodes a medical record as the backend's multipart form.
// Nested values travel as JSON strings.
func recordForm(in models.MedicalRecordInput, attachments []apiclient.File) (apiclient.Form, error) {
	var f apiclient.Form
	f.Set("patientId", in.PatientID)
	f.Set("appointmentId", in.AppointmentID)
	f.Set("diagnosis", in.Diagnosis)
	f.Set("notes", in.Notes)
	if in.FollowUpDate != nil {
		f.Set("followUpDate", in.FollowUpDate.Format(time.RFC3339))
	}

	prescription, err := json.Marshal(models.Prescription{Medications: in.Medications})
	if err != nil {
		return f, err
	}
	f.Set("prescription", string(prescription))

	if in.VitalSigns != nil {
		vitals, err := json.Marshal(in.VitalSigns)
		if err != nil {
			return f, err
		}
		f.Set("vitalSigns", string(vitals))
	}
	f.Files = append(f.Files, attachments...)
	return f, nil
}

// Patients caches the admin patient list and the signed-in patient's own data.
type Patients struct {
	s       *Store
	items   []models.Patient
	profile *models.Patient
	history []models.MedicalRecord
}

// List returns the cached patients.
func (p *Patients) List() []models.Patient {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	out := make([]models.Patient, len(p.items))
	copy(out, p.items)
	return out
}

// Profile returns the signed-in patient's profile, if fetched.
func (p *Patients) Profile() (models.Patient, bool) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	if p.profile == nil {
		return models.Patient{}, false
	}
	return *p.profile, true
}

// History returns the signed-in patient's medical records as last fetched.
func (p *Patients) History() []models.MedicalRecord {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	out := make([]models.MedicalRecord, len(p.history))
	copy(out, p.history)
	return out
}

// Fetch reloads every patient (admin).
func (p *Patients) Fetch(ctx context.Context) error {
	return p.s.run(ctx, "patients.fetch", func(ctx context.Context) error {
		items := []models.Patient{}
		if err := p.s.api.Get(ctx, epPatients, &items); err != nil {
			return err
		}
		p.s.mu.Lock()
		p.items = items
		p.s.mu.Unlock()
		return nil
	})
}

// Delete removes a patient once the backend confirms.
func (p *Patients) Delete(ctx context.Context, id string) error {
	return p.s.run(ctx, "patients.delete", func(ctx context.Context) error {
		if err := p.s.api.Delete(ctx, patientPath(id), nil); err != nil {
			return err
		}
		p.s.mu.Lock()
		defer p.s.mu.Unlock()
		kept := p.items[:0:0]
		for _, pt := range p.items {
			if pt.ID != id {
				kept = append(kept, pt)
			}
		}
		p.items = kept
		return nil
	})
}

// FetchProfile reloads the signed-in patient's profile.
func (p *Patients) FetchProfile(ctx context.Context) error {
	return p.s.run(ctx, "patients.profile", p.fetchProfile)
}

func (p *Patients) fetchProfile(ctx context.Context) error {
	var profile models.Patient
	if err := p.s.api.Get(ctx, epPatientProfile, &profile); err != nil {
		return err
	}
	p.s.mu.Lock()
	p.profile = &profile
	p.s.mu.Unlock()
	return nil
}

// UpdateProfile saves the patient's profile, then refetches it.
func (p *Patients) UpdateProfile(ctx context.Context, in ProfileInput) error {
	return p.s.run(ctx, "patients.update_profile", func(ctx context.Context) error {
		if err := utils.Validate(in); err != nil {
			return err
		}
		if err := p.s.api.UploadPut(ctx, epPatientProfile, in.form(), nil); err != nil {
			return err
		}
		return p.fetchProfile(ctx)
	})
}

// FetchMedicalHistory reloads the signed-in patient's records.
func (p *Patients) FetchMedicalHistory(ctx context.Context) error {
	return p.s.run(ctx, "patients.history", p.fetchHistory)
}

func (p *Patients) fetchHistory(ctx context.Context) error {
	records := []models.MedicalRecord{}
	if err := p.s.api.Get(ctx, epMyMedicalHistory, &records); err != nil {
		return err
	}
	p.s.mu.Lock()
	p.history = records
	p.s.mu.Unlock()
	return nil
}

// refreshRecords reloads whatever view of medical records the signed-in role has.
func (p *Patients) refreshRecords(ctx context.Context) error {
	switch p.s.User().Role {
	case models.RolePatient:
		return p.fetchHistory(ctx)
	case models.RoleDoctor:
		return p.s.Doctors.fetchPatients(ctx)
	}
	return nil
}

// CreateMedicalRecord stores a new record with optional attachments, then refetches.
func (p *Patients) CreateMedicalRecord(ctx context.Context, in models.MedicalRecordInput, attachments ...apiclient.File) error {
	return p.s.run(ctx, "records.create", func(ctx context.Context) error {
		if err := utils.Validate(in); err != nil {
			return err
		}
		form, err := recordForm(in, attachments)
		if err != nil {
			return err
		}
		if err := p.s.api.Upload(ctx, epMedicalHistory, form, nil); err != nil {
			return err
		}
		return p.refreshRecords(ctx)
	})
}

// UpdateMedicalRecord replaces a record, then refetches.
func (p *Patients) UpdateMedicalRecord(ctx context.Context, id string, in models.MedicalRecordInput, attachments ...apiclient.File) error {
	return p.s.run(ctx, "records.update", func(ctx context.Context) error {
		if err := utils.Validate(in); err != nil {
			return err
		}
		form, err := recordForm(in, attachments)
		if err != nil {
			return err
		}
		if err := p.s.api.UploadPut(ctx, medicalRecordPath(id), form, nil); err != nil {
			return err
		}
		return p.refreshRecords(ctx)
	})
}

// DeleteMedicalRecord removes a record, then refetches.
func (p *Patients) DeleteMedicalRecord(ctx context.Context, id string) error {
	return p.s.run(ctx, "records.delete", func(ctx context.Context) error {
		if err := p.s.api.Delete(ctx, medicalRecordPath(id), nil); err != nil {
			return err
		}
		return p.refreshRecords(ctx)
	})
}

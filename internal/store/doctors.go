package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"hospital-portal/internal/apiclient"
	"hospital-portal/internal/booking"
	"hospital-portal/internal/models"
	"hospital-portal/internal/utils"
)

// DoctorInput is the admin form for creating a doctor account.
type DoctorInput struct {
	Name           string `form:"name" validate:"required,min=2"`
	Email          string `form:"email" validate:"required,email"`
	Password       string `form:"password" validate:"strongpassword"`
	PhoneNumber    string `form:"phoneNumber" validate:"min=8"`
	CIN            string `form:"CIN" validate:"min=6"`
	Specialization string `form:"specialization" validate:"required"`
	DepartmentID   string `form:"departmentId"`

	ProfileImage *apiclient.File `form:"-"`
	DiplomaImage *apiclient.File `form:"-"`
}

func (in DoctorInput) form() apiclient.Form {
	var f apiclient.Form
	f.Set("name", in.Name)
	f.Set("email", in.Email)
	f.Set("password", in.Password)
	f.Set("role", string(models.RoleDoctor))
	f.Set("phoneNumber", in.PhoneNumber)
	f.Set("CIN", in.CIN)
	f.Set("specialization", in.Specialization)
	f.Set("departmentId", in.DepartmentID)
	if in.ProfileImage != nil {
		f.Files = append(f.Files, *in.ProfileImage)
	}
	if in.DiplomaImage != nil {
		f.Files = append(f.Files, *in.DiplomaImage)
	}
	return f
}

// DoctorProfileInput is the signed-in doctor's editable profile.
type DoctorProfileInput struct {
	Name           string `form:"name" validate:"omitempty,min=2"`
	PhoneNumber    string `form:"phoneNumber" validate:"omitempty,min=8"`
	Specialization string `form:"specialization"`

	ProfileImage *apiclient.File `form:"-"`
}

func (in DoctorProfileInput) form() apiclient.Form {
	var f apiclient.Form
	f.Set("name", in.Name)
	f.Set("phoneNumber", in.PhoneNumber)
	f.Set("specialization", in.Specialization)
	if in.ProfileImage != nil {
		f.Files = append(f.Files, *in.ProfileImage)
	}
	return f
}

// PatientChartInput creates or amends a patient in the doctor's own list.
// Empty fields are left out, so an update only touches what is set.
type PatientChartInput struct {
	Name        string             `json:"name,omitempty" validate:"omitempty,min=2"`
	Email       string             `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber string             `json:"phoneNumber,omitempty" validate:"omitempty,min=8"`
	CIN         string             `json:"CIN,omitempty" validate:"omitempty,min=6"`
	Vitals      *models.VitalSigns `json:"vitals,omitempty"`
}

type availabilityBody struct {
	Availability models.DoctorAvailability `json:"availability"`
}

type verifyBody struct {
	IsValidated bool `json:"isValidated"`
}

// Doctors caches the doctor directory and the signed-in doctor's own data.
type Doctors struct {
	s        *Store
	items    []models.Doctor
	stats    models.DoctorStats
	patients []models.Patient
}

// List returns the cached doctors.
func (d *Doctors) List() []models.Doctor {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	out := make([]models.Doctor, len(d.items))
	copy(out, d.items)
	return out
}

// Find returns a cached doctor by id.
func (d *Doctors) Find(id string) (models.Doctor, bool) {
	return booking.FindDoctor(d.List(), id)
}

// Stats returns the last fetched dashboard statistics.
func (d *Doctors) Stats() models.DoctorStats {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	return d.stats
}

// Patients returns the signed-in doctor's patients as last fetched.
func (d *Doctors) Patients() []models.Patient {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	out := make([]models.Patient, len(d.patients))
	copy(out, d.patients)
	return out
}

// Fetch reloads all doctors. Availability grids are normalized on the way in.
func (d *Doctors) Fetch(ctx context.Context) error {
	return d.s.run(ctx, "doctors.fetch", d.fetch)
}

func (d *Doctors) fetch(ctx context.Context) error {
	items := []models.Doctor{}
	if err := d.s.api.Get(ctx, epDoctors, &items); err != nil {
		return err
	}
	for i := range items {
		items[i].Availability = items[i].Availability.Normalize()
	}
	d.s.mu.Lock()
	d.items = items
	d.s.mu.Unlock()
	return nil
}

// Create registers a doctor account, then refetches the directory.
func (d *Doctors) Create(ctx context.Context, in DoctorInput) error {
	return d.s.run(ctx, "doctors.create", func(ctx context.Context) error {
		if err := utils.Validate(in); err != nil {
			return err
		}
		if err := d.s.api.Upload(ctx, epDoctors, in.form(), nil); err != nil {
			return err
		}
		return d.fetch(ctx)
	})
}

// Delete removes a doctor. The cache drops the entry once the backend confirms.
func (d *Doctors) Delete(ctx context.Context, id string) error {
	return d.s.run(ctx, "doctors.delete", func(ctx context.Context) error {
		if err := d.s.api.Delete(ctx, doctorPath(id), nil); err != nil {
			return err
		}
		d.s.mu.Lock()
		defer d.s.mu.Unlock()
		kept := d.items[:0:0]
		for _, doc := range d.items {
			if doc.ID != id {
				kept = append(kept, doc)
			}
		}
		d.items = kept
		return nil
	})
}

// Verify sets a doctor's validation flag. The cached flag changes only after
// the backend accepts the update.
func (d *Doctors) Verify(ctx context.Context, id string, validated bool) error {
	return d.s.run(ctx, "doctors.verify", func(ctx context.Context) error {
		if err := d.s.api.Put(ctx, verifyDoctorPath(id), verifyBody{IsValidated: validated}, nil); err != nil {
			return err
		}
		d.s.mu.Lock()
		defer d.s.mu.Unlock()
		for i := range d.items {
			if d.items[i].ID == id {
				d.items[i].IsValidated = validated
			}
		}
		return nil
	})
}

// FetchAvailability loads one doctor's weekly grid and refreshes the cached copy.
func (d *Doctors) FetchAvailability(ctx context.Context, id string) (models.DoctorAvailability, error) {
	var av models.DoctorAvailability
	err := d.s.run(ctx, "doctors.availability", func(ctx context.Context) error {
		var err error
		av, err = d.fetchAvailability(ctx, id)
		return err
	})
	return av, err
}

func (d *Doctors) fetchAvailability(ctx context.Context, id string) (models.DoctorAvailability, error) {
	var raw json.RawMessage
	if err := d.s.api.Get(ctx, doctorAvailabilityPath(id), &raw); err != nil {
		return nil, err
	}
	av, err := decodeAvailability(raw)
	if err != nil {
		return nil, err
	}
	d.patchAvailability(id, av)
	return av, nil
}

// decodeAvailability accepts a bare day list or an object wrapping it.
func decodeAvailability(raw json.RawMessage) (models.DoctorAvailability, error) {
	var av models.DoctorAvailability
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var body availabilityBody
		if err := json.Unmarshal(trimmed, &body); err != nil {
			return nil, fmt.Errorf("decode availability: %w", err)
		}
		av = body.Availability
	} else if len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, &av); err != nil {
			return nil, fmt.Errorf("decode availability: %w", err)
		}
	}
	return av.Normalize(), nil
}

func (d *Doctors) patchAvailability(id string, av models.DoctorAvailability) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	for i := range d.items {
		if d.items[i].ID == id {
			d.items[i].Availability = av.Clone()
		}
	}
	if d.s.user.ID == id {
		d.s.user.Availability = av.Clone()
	}
}

// FetchProfile reloads the signed-in doctor's own profile.
func (d *Doctors) FetchProfile(ctx context.Context) error {
	return d.s.run(ctx, "doctors.profile", d.fetchProfile)
}

func (d *Doctors) fetchProfile(ctx context.Context) error {
	id, err := d.s.userID()
	if err != nil {
		return err
	}
	var user models.User
	if err := d.s.api.Get(ctx, doctorProfilePath(id), &user); err != nil {
		return err
	}
	if user.ID == "" {
		user.ID = id
	}
	if user.Role == "" {
		user.Role = models.RoleDoctor
	}
	user.Availability = user.Availability.Normalize()
	d.s.setUser(user)
	d.patchAvailability(id, user.Availability)
	return nil
}

// UpdateAvailability replaces the signed-in doctor's weekly grid, then
// refetches the profile so the cached grid is the backend's.
func (d *Doctors) UpdateAvailability(ctx context.Context, av models.DoctorAvailability) error {
	return d.s.run(ctx, "doctors.update_availability", func(ctx context.Context) error {
		return d.updateAvailability(ctx, av)
	})
}

func (d *Doctors) updateAvailability(ctx context.Context, av models.DoctorAvailability) error {
	id, err := d.s.userID()
	if err != nil {
		return err
	}
	if err := av.Validate(); err != nil {
		return err
	}
	if err := d.s.api.Put(ctx, doctorAvailabilityPath(id), availabilityBody{Availability: av}, nil); err != nil {
		return err
	}
	return d.fetchProfile(ctx)
}

// ToggleSlot offers or withdraws one weekly slot of the signed-in doctor and
// saves the resulting grid. The grid is reloaded first so bookings made since
// the last fetch are not overwritten.
func (d *Doctors) ToggleSlot(ctx context.Context, dayIndex int, slotTime string) (models.DoctorAvailability, error) {
	err := d.s.run(ctx, "doctors.toggle_slot", func(ctx context.Context) error {
		id, err := d.s.userID()
		if err != nil {
			return err
		}
		current, err := d.fetchAvailability(ctx, id)
		if err != nil {
			return err
		}
		next, err := booking.ToggleSlot(current, dayIndex, slotTime)
		if err != nil {
			return err
		}
		return d.updateAvailability(ctx, next)
	})
	if err != nil {
		return nil, err
	}
	return d.s.User().Availability.Clone(), nil
}

// FetchStats loads the signed-in doctor's dashboard statistics.
func (d *Doctors) FetchStats(ctx context.Context) (models.DoctorStats, error) {
	var stats models.DoctorStats
	err := d.s.run(ctx, "doctors.stats", func(ctx context.Context) error {
		id, err := d.s.userID()
		if err != nil {
			return err
		}
		if err := d.s.api.Get(ctx, doctorStatsPath(id), &stats); err != nil {
			return err
		}
		d.s.mu.Lock()
		d.stats = stats
		d.s.mu.Unlock()
		return nil
	})
	return stats, err
}

// FetchPatients loads the patients the signed-in doctor has seen.
func (d *Doctors) FetchPatients(ctx context.Context) ([]models.Patient, error) {
	err := d.s.run(ctx, "doctors.patients", d.fetchPatients)
	if err != nil {
		return nil, err
	}
	return d.Patients(), nil
}

func (d *Doctors) fetchPatients(ctx context.Context) error {
	id, err := d.s.userID()
	if err != nil {
		return err
	}
	patients := []models.Patient{}
	if err := d.s.api.Get(ctx, doctorPatientsPath(id), &patients); err != nil {
		return err
	}
	d.s.mu.Lock()
	d.patients = patients
	d.s.mu.Unlock()
	return nil
}

// FetchDoctor loads one doctor's profile for display. It does not touch the
// signed-in user.
func (d *Doctors) FetchDoctor(ctx context.Context, id string) (models.Doctor, error) {
	var doc models.Doctor
	err := d.s.run(ctx, "doctors.get", func(ctx context.Context) error {
		if err := d.s.api.Get(ctx, doctorProfilePath(id), &doc); err != nil {
			return err
		}
		if doc.ID == "" {
			doc.ID = id
		}
		doc.Availability = doc.Availability.Normalize()
		d.patchAvailability(id, doc.Availability)
		return nil
	})
	return doc, err
}

// UpdateProfile saves the signed-in doctor's profile form, then refetches it.
func (d *Doctors) UpdateProfile(ctx context.Context, in DoctorProfileInput) error {
	return d.s.run(ctx, "doctors.update_profile", func(ctx context.Context) error {
		if _, err := d.s.userID(); err != nil {
			return err
		}
		if err := utils.Validate(in); err != nil {
			return err
		}
		if err := d.s.api.UploadPut(ctx, epDoctorProfile, in.form(), nil); err != nil {
			return err
		}
		return d.fetchProfile(ctx)
	})
}

// AddPatient adds a patient to the signed-in doctor's list.
func (d *Doctors) AddPatient(ctx context.Context, in PatientChartInput) error {
	return d.writePatients(ctx, "doctors.add_patient", func(ctx context.Context) error {
		if in.Name == "" {
			return &utils.ValidationError{Message: "name is required"}
		}
		if err := utils.Validate(in); err != nil {
			return err
		}
		return d.s.api.Post(ctx, epDoctorPatients, in, nil)
	})
}

// UpdatePatient amends a patient in the signed-in doctor's list.
func (d *Doctors) UpdatePatient(ctx context.Context, id string, in PatientChartInput) error {
	return d.writePatients(ctx, "doctors.update_patient", func(ctx context.Context) error {
		if err := utils.Validate(in); err != nil {
			return err
		}
		return d.s.api.Put(ctx, doctorPatientPath(id), in, nil)
	})
}

// UpdatePatientVitals replaces a patient's recorded vital signs.
func (d *Doctors) UpdatePatientVitals(ctx context.Context, id string, vitals models.VitalSigns) error {
	return d.writePatients(ctx, "doctors.patient_vitals", func(ctx context.Context) error {
		return d.s.api.Put(ctx, doctorPatientPath(id)+"/vitals", vitals, nil)
	})
}

// AddPatientNote appends a diagnosis or treatment to a patient's chart.
func (d *Doctors) AddPatientNote(ctx context.Context, id string, note models.PatientNote) error {
	return d.writePatients(ctx, "doctors.patient_note", func(ctx context.Context) error {
		if err := utils.Validate(note); err != nil {
			return err
		}
		return d.s.api.Post(ctx, doctorPatientPath(id)+"/notes", note, nil)
	})
}

// writePatients runs a write against the doctor's patient list and refetches
// the list once it succeeds.
func (d *Doctors) writePatients(ctx context.Context, op string, write func(context.Context) error) error {
	return d.s.run(ctx, op, func(ctx context.Context) error {
		if _, err := d.s.userID(); err != nil {
			return err
		}
		if err := write(ctx); err != nil {
			return err
		}
		return d.fetchPatients(ctx)
	})
}

package store

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"hospital-portal/internal/apiclient"
	"hospital-portal/internal/models"
)

// Thursday 2026-10-15, mid-morning.
var now = time.Date(2026, 10, 15, 10, 30, 0, 0, time.UTC)

var nextMonday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

// fakeBackend is an in-memory stand-in for the REST backend.
type fakeBackend struct {
	mu           sync.Mutex
	doctors      []models.Doctor
	departments  []models.Department
	appointments []models.Appointment
	profile      models.Patient
	chart        []models.Patient
	calls        map[string]int
	bodies       map[string][]byte
	rejectBook   string
	failFetch    bool
	failVerify   bool
	seq          int
}

func newFakeBackend() *fakeBackend {
	monday := models.NewWeeklyAvailability()
	monday[0].Slots = []models.TimeSlot{{Time: "09:00"}, {Time: "09:30"}}
	return &fakeBackend{
		doctors: []models.Doctor{
			{ID: "d1", Name: "Dr. Haddad", Specialization: "Cardiology", Availability: monday},
			{ID: "d2", Name: "Dr. Orphan", Specialization: "Dermatology", Availability: models.NewWeeklyAvailability()},
		},
		departments: []models.Department{
			{ID: "dep1", Name: "Cardiology", Description: "Heart and vessels", Doctors: []models.Ref{{ID: "d1"}}},
		},
		profile: models.Patient{ID: "p1", Name: "Amira", Email: "amira@example.com"},
		chart:   []models.Patient{{ID: "p1", Name: "Amira", Email: "amira@example.com"}},
		calls:   map[string]int{},
		bodies:  map[string][]byte{},
	}
}

func (b *fakeBackend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key]
}

func (b *fakeBackend) body(key string) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[key]
}

func (b *fakeBackend) doctor(id string) *models.Doctor {
	for i := range b.doctors {
		if b.doctors[i].ID == id {
			return &b.doctors[i]
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	track := func(pattern string, h func(w http.ResponseWriter, r *http.Request)) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.calls[pattern]++
			if r.Body != nil && r.Header.Get("Content-Type") == "application/json" {
				var raw json.RawMessage
				if json.NewDecoder(r.Body).Decode(&raw) == nil {
					b.bodies[pattern] = raw
				}
			}
			h(w, r)
		})
	}

	track("GET /doctors", func(w http.ResponseWriter, r *http.Request) {
		if b.failFetch {
			fail(w, http.StatusInternalServerError, "database unavailable")
			return
		}
		writeJSON(w, http.StatusOK, b.doctors)
	})
	track("GET /departments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": b.departments})
	})
	track("POST /departments", func(w http.ResponseWriter, r *http.Request) {
		var in models.DepartmentInput
		_ = json.Unmarshal(b.bodies["POST /departments"], &in)
		b.seq++
		dept := models.Department{ID: fmt.Sprintf("dep-new-%d", b.seq), Name: in.Name, Description: in.Description}
		b.departments = append(b.departments, dept)
		writeJSON(w, http.StatusCreated, dept)
	})
	track("DELETE /departments/{id}", func(w http.ResponseWriter, r *http.Request) {
		kept := b.departments[:0:0]
		for _, d := range b.departments {
			if d.ID != r.PathValue("id") {
				kept = append(kept, d)
			}
		}
		b.departments = kept
		w.WriteHeader(http.StatusNoContent)
	})
	track("GET /doctors/{id}/availability", func(w http.ResponseWriter, r *http.Request) {
		doc := b.doctor(r.PathValue("id"))
		if doc == nil {
			fail(w, http.StatusNotFound, "Doctor not found")
			return
		}
		writeJSON(w, http.StatusOK, doc.Availability)
	})
	track("PUT /doctors/{id}/availability", func(w http.ResponseWriter, r *http.Request) {
		var body availabilityBody
		_ = json.Unmarshal(b.bodies["PUT /doctors/{id}/availability"], &body)
		b.doctor(r.PathValue("id")).Availability = body.Availability
		writeJSON(w, http.StatusOK, body)
	})
	track("GET /doctors/{id}/profile", func(w http.ResponseWriter, r *http.Request) {
		doc := b.doctor(r.PathValue("id"))
		writeJSON(w, http.StatusOK, models.User{ID: doc.ID, Name: doc.Name, Role: models.RoleDoctor, Availability: doc.Availability})
	})
	track("GET /doctors/{id}/appointments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, b.appointments)
	})
	track("DELETE /doctors/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	track("PUT /admin/verify-doctor/{id}", func(w http.ResponseWriter, r *http.Request) {
		if b.failVerify {
			fail(w, http.StatusForbidden, "Not allowed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	track("POST /patients/book-appointment", func(w http.ResponseWriter, r *http.Request) {
		if b.rejectBook != "" {
			fail(w, http.StatusConflict, b.rejectBook)
			return
		}
		var req models.BookAppointmentRequest
		_ = json.Unmarshal(b.bodies["POST /patients/book-appointment"], &req)
		doc := b.doctor(req.DoctorID)
		idx, _ := models.WeekdayIndex(models.WeekdayName(req.AppointmentDate))
		pos := doc.Availability[idx].Find(req.Time)
		if pos < 0 || doc.Availability[idx].Slots[pos].IsBooked {
			fail(w, http.StatusBadRequest, "This time slot is not available")
			return
		}
		doc.Availability[idx].Slots[pos].IsBooked = true
		b.seq++
		appt := models.Appointment{
			ID:              fmt.Sprintf("a%d", b.seq),
			Patient:         models.Ref{ID: "p1"},
			Doctor:          models.Ref{ID: doc.ID, Name: doc.Name},
			Department:      models.Ref{ID: req.DepartmentID},
			AppointmentDate: req.AppointmentDate,
			Time:            req.Time,
			Status:          models.StatusPending,
			Reason:          req.Reason,
		}
		b.appointments = append(b.appointments, appt)
		writeJSON(w, http.StatusCreated, map[string]any{"data": appt})
	})
	track("GET /patients/my-appointments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, b.appointments)
	})
	track("GET /appointments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, b.appointments)
	})
	track("PUT /appointments/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var body models.StatusUpdate
		_ = json.Unmarshal(b.bodies["PUT /appointments/{id}/status"], &body)
		for i := range b.appointments {
			if b.appointments[i].ID == r.PathValue("id") {
				b.appointments[i].Status = body.Status
				writeJSON(w, http.StatusOK, b.appointments[i])
				return
			}
		}
		fail(w, http.StatusNotFound, "Appointment not found")
	})
	track("GET /patients/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, b.profile)
	})
	track("PUT /patients/profile", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			if name := r.FormValue("name"); name != "" {
				b.profile.Name = name
			}
		}
		writeJSON(w, http.StatusOK, b.profile)
	})
	track("GET /patients/my-medical-history", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.MedicalRecord{{ID: "m1", Diagnosis: "Flu"}})
	})
	track("POST /medical-history", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil || r.FormValue("diagnosis") == "" {
			fail(w, http.StatusBadRequest, "diagnosis missing")
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	track("GET /doctors/{id}/patients", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, b.chart)
	})
	track("PUT /doctors/profile", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			fail(w, http.StatusBadRequest, "multipart form expected")
			return
		}
		if name := r.FormValue("name"); name != "" {
			b.doctors[0].Name = name
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	track("POST /doctor/patients", func(w http.ResponseWriter, r *http.Request) {
		var in PatientChartInput
		_ = json.Unmarshal(b.bodies["POST /doctor/patients"], &in)
		b.seq++
		b.chart = append(b.chart, models.Patient{ID: fmt.Sprintf("p-new-%d", b.seq), Name: in.Name, Email: in.Email})
		writeJSON(w, http.StatusCreated, map[string]string{"message": "ok"})
	})
	chartEntry := func(w http.ResponseWriter, id string) *models.Patient {
		for i := range b.chart {
			if b.chart[i].ID == id {
				return &b.chart[i]
			}
		}
		fail(w, http.StatusNotFound, "Patient not found")
		return nil
	}
	track("PUT /doctor/patients/{id}", func(w http.ResponseWriter, r *http.Request) {
		pt := chartEntry(w, r.PathValue("id"))
		if pt == nil {
			return
		}
		var in PatientChartInput
		_ = json.Unmarshal(b.bodies["PUT /doctor/patients/{id}"], &in)
		if in.PhoneNumber != "" {
			pt.PhoneNumber = in.PhoneNumber
		}
		writeJSON(w, http.StatusOK, pt)
	})
	track("PUT /doctor/patients/{id}/vitals", func(w http.ResponseWriter, r *http.Request) {
		pt := chartEntry(w, r.PathValue("id"))
		if pt == nil {
			return
		}
		var vitals models.VitalSigns
		_ = json.Unmarshal(b.bodies["PUT /doctor/patients/{id}/vitals"], &vitals)
		pt.Vitals = &vitals
		writeJSON(w, http.StatusOK, pt)
	})
	track("POST /doctor/patients/{id}/notes", func(w http.ResponseWriter, r *http.Request) {
		pt := chartEntry(w, r.PathValue("id"))
		if pt == nil {
			return
		}
		var note models.PatientNote
		_ = json.Unmarshal(b.bodies["POST /doctor/patients/{id}/notes"], &note)
		if note.Type == models.NoteDiagnosis {
			pt.Diagnoses = append(pt.Diagnoses, models.Diagnosis{Condition: note.Content})
		} else {
			pt.Treatments = append(pt.Treatments, models.Treatment{Treatment: note.Content})
		}
		writeJSON(w, http.StatusCreated, pt)
	})
	return mux
}

// newTestStore wires a Store for user to a fresh fake backend.
func newTestStore(t *testing.T, user models.User) (*Store, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	api := apiclient.New(srv.URL).WithToken("token-" + user.ID)
	st := New(api, user, Options{Logger: zerolog.Nop(), Now: func() time.Time { return now }})
	return st, backend
}

var (
	patientUser = models.User{ID: "p1", Name: "Amira", Role: models.RolePatient}
	doctorUser  = models.User{ID: "d1", Name: "Dr. Haddad", Role: models.RoleDoctor}
	adminUser   = models.User{ID: "admin", Name: "Admin", Role: models.RoleAdmin}
)

package store

import (
	"net/url"
)

// Backend endpoints, relative to the API base URL.
const (
	epDepartments       = "/departments"
	epDoctors           = "/doctors"
	epPatients          = "/patients"
	epAppointments      = "/appointments"
	epPatientProfile    = "/patients/profile"
	epMyAppointments    = "/patients/my-appointments"
	epMyMedicalHistory  = "/patients/my-medical-history"
	epBookAppointment   = "/patients/book-appointment"
	epMedicalHistory    = "/medical-history"
	epVerifyDoctorRoute = "/admin/verify-doctor/"
	epDoctorProfile     = "/doctors/profile"
	epDoctorPatients    = "/doctor/patients"
)

func esc(id string) string {
	return url.PathEscape(id)
}

func departmentPath(id string) string { return epDepartments + "/" + esc(id) }
func doctorPath(id string) string { return epDoctors + "/" + esc(id) }
func patientPath(id string) string { return epPatients + "/" + esc(id) }
func verifyDoctorPath(id string) string { return epVerifyDoctorRoute + esc(id) }
func medicalRecordPath(id string) string { return epMedicalHistory + "/" + esc(id) }

func doctorAvailabilityPath(id string) string { return doctorPath(id) + "/availability" }
func doctorProfilePath(id string) string { return doctorPath(id) + "/profile" }
func doctorAppointmentsPath(id string) string { return doctorPath(id) + "/appointments" }
func doctorStatsPath(id string) string { return doctorPath(id) + "/stats" }
func doctorPatientsPath(id string) string { return doctorPath(id) + "/patients" }

func doctorPatientPath(id string) string { return epDoctorPatients + "/" + esc(id) }

func appointmentStatusPath(id string) string {
	return epAppointments + "/" + esc(id) + "/status"
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"hospital-portal/internal/models"
	"hospital-portal/internal/store"
	"hospital-portal/internal/utils"
)

// UserHandler manages the doctor and patient directories.
type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// VerifyRequest approves or suspends a doctor account.
type VerifyRequest struct {
	IsValidated *bool `json:"isValidated" validate:"required"`
}

// GetDoctors lists every doctor with their weekly availability.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	if err := st.Doctors.Fetch(c.Request.Context()); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctors retrieved successfully", st.Doctors.List())
}

// CreateDoctor registers a doctor account from the admin's multipart form.
func (h *UserHandler) CreateDoctor(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	var in store.DoctorInput
	if err := c.ShouldBindWith(&in, binding.Form); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	var err error
	if in.ProfileImage, err = formFile(c, "profileImage"); err != nil {
		utils.RespondError(c, err)
		return
	}
	if in.DiplomaImage, err = formFile(c, "diplomaImage"); err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := st.Doctors.Create(c.Request.Context(), in); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Doctor created successfully", st.Doctors.List())
}

// VerifyDoctor sets a doctor's validation flag.
func (h *UserHandler) VerifyDoctor(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	var req VerifyRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	id := c.Param("id")
	if err := st.Doctors.Verify(c.Request.Context(), id, *req.IsValidated); err != nil {
		utils.RespondError(c, err)
		return
	}
	doc, _ := st.Doctors.Find(id)
	utils.Success(c, "Doctor verification updated", doc)
}

func (h *UserHandler) DeleteDoctor(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	if err := st.Doctors.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctor deleted successfully", st.Doctors.List())
}

// GetPatients lists every patient.
func (h *UserHandler) GetPatients(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	if err := st.Patients.Fetch(c.Request.Context()); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Patients retrieved successfully", st.Patients.List())
}

func (h *UserHandler) DeletePatient(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	if err := st.Patients.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Patient deleted successfully", st.Patients.List())
}

// GetDoctorPatients lists the patients the signed-in doctor has seen.
func (h *UserHandler) GetDoctorPatients(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	patients, err := st.Doctors.FetchPatients(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Patients retrieved successfully", patients)
}

// GetProfile returns the signed-in patient's profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	if err := st.Patients.FetchProfile(c.Request.Context()); err != nil {
		utils.RespondError(c, err)
		return
	}
	profile, _ := st.Patients.Profile()
	utils.Success(c, "Profile retrieved successfully", profile)
}

// UpdateProfile saves the patient's profile form, image included.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	var in store.ProfileInput
	if err := c.ShouldBindWith(&in, binding.Form); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	var err error
	if in.ProfileImage, err = formFile(c, "profileImage"); err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := st.Patients.UpdateProfile(c.Request.Context(), in); err != nil {
		utils.RespondError(c, err)
		return
	}
	profile, _ := st.Patients.Profile()
	utils.Success(c, "Profile updated successfully", profile)
}

// GetDoctorProfile shows one doctor's public profile and weekly grid.
func (h *UserHandler) GetDoctorProfile(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	doc, err := st.Doctors.FetchDoctor(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Doctor retrieved successfully", doc)
}

// GetMyDoctorProfile returns the signed-in doctor's own profile.
func (h *UserHandler) GetMyDoctorProfile(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	if err := st.Doctors.FetchProfile(c.Request.Context()); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Profile retrieved successfully", st.User())
}

// UpdateMyDoctorProfile saves the signed-in doctor's profile form.
func (h *UserHandler) UpdateMyDoctorProfile(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	var in store.DoctorProfileInput
	if err := c.ShouldBindWith(&in, binding.Form); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	var err error
	if in.ProfileImage, err = formFile(c, "profileImage"); err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := st.Doctors.UpdateProfile(c.Request.Context(), in); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Profile updated successfully", st.User())
}

// AddDoctorPatient adds a patient to the signed-in doctor's list.
func (h *UserHandler) AddDoctorPatient(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	var in store.PatientChartInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	if err := st.Doctors.AddPatient(c.Request.Context(), in); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Patient added successfully", st.Doctors.Patients())
}

// UpdateDoctorPatient amends a patient in the signed-in doctor's list.
func (h *UserHandler) UpdateDoctorPatient(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	var in store.PatientChartInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	if err := st.Doctors.UpdatePatient(c.Request.Context(), c.Param("id"), in); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Patient updated successfully", st.Doctors.Patients())
}

// UpdatePatientVitals records a patient's latest vital signs.
func (h *UserHandler) UpdatePatientVitals(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	var vitals models.VitalSigns
	if !utils.BindAndValidate(c, &vitals) {
		return
	}
	if err := st.Doctors.UpdatePatientVitals(c.Request.Context(), c.Param("id"), vitals); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Vitals updated successfully", st.Doctors.Patients())
}

// AddPatientNote appends a diagnosis or treatment to a patient's chart.
func (h *UserHandler) AddPatientNote(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	var note models.PatientNote
	if !utils.BindAndValidate(c, &note) {
		return
	}
	if err := st.Doctors.AddPatientNote(c.Request.Context(), c.Param("id"), note); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Note added successfully", st.Doctors.Patients())
}

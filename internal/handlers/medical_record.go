package handlers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hospital-portal/internal/apiclient"
	"hospital-portal/internal/models"
	"hospital-portal/internal/utils"
)

// MedicalRecordHandler handles medical history entries.
type MedicalRecordHandler struct{}

// NewMedicalRecordHandler creates a new MedicalRecordHandler.
func NewMedicalRecordHandler() *MedicalRecordHandler {
	return &MedicalRecordHandler{}
}

// GetMyMedicalHistory returns the signed-in patient's records.
func (h *MedicalRecordHandler) GetMyMedicalHistory(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	if err := st.Patients.FetchMedicalHistory(c.Request.Context()); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Medical history retrieved successfully", st.Patients.History())
}

// CreateMedicalRecord stores a record written by the signed-in doctor.
func (h *MedicalRecordHandler) CreateMedicalRecord(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	in, files, err := bindRecord(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := st.Patients.CreateMedicalRecord(c.Request.Context(), in, files...); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Medical record created successfully", st.Doctors.Patients())
}

// UpdateMedicalRecord replaces a record.
func (h *MedicalRecordHandler) UpdateMedicalRecord(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	in, files, err := bindRecord(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := st.Patients.UpdateMedicalRecord(c.Request.Context(), c.Param("id"), in, files...); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Medical record updated successfully", st.Doctors.Patients())
}

func (h *MedicalRecordHandler) DeleteMedicalRecord(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	if err := st.Patients.DeleteMedicalRecord(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Medical record deleted successfully", st.Doctors.Patients())
}

// bindRecord reads a record from JSON, or from a multipart form whose nested
// values (medications, vitalSigns) are JSON strings and whose files arrive
// under "attachments".
func bindRecord(c *gin.Context) (models.MedicalRecordInput, []apiclient.File, error) {
	var in models.MedicalRecordInput
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBindJSON(&in); err != nil {
			return in, nil, &utils.ValidationError{Message: "Invalid request payload: " + err.Error()}
		}
		return in, nil, nil
	}

	in.PatientID = c.PostForm("patientId")
	in.AppointmentID = c.PostForm("appointmentId")
	in.Diagnosis = c.PostForm("diagnosis")
	in.Notes = c.PostForm("notes")

	if raw := c.PostForm("medications"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Medications); err != nil {
			return in, nil, &utils.ValidationError{Message: fmt.Sprintf("medications must be a JSON list: %v", err)}
		}
	}
	if raw := c.PostForm("vitalSigns"); raw != "" {
		in.VitalSigns = &models.VitalSigns{}
		if err := json.Unmarshal([]byte(raw), in.VitalSigns); err != nil {
			return in, nil, &utils.ValidationError{Message: fmt.Sprintf("vitalSigns must be a JSON object: %v", err)}
		}
	}
	if raw := c.PostForm("followUpDate"); raw != "" {
		t, err := parseFollowUp(raw)
		if err != nil {
			return in, nil, err
		}
		in.FollowUpDate = &t
	}

	files, err := formFiles(c, "attachments")
	if err != nil {
		return in, nil, err
	}
	return in, files, nil
}

func parseFollowUp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return time.Time{}, &utils.ValidationError{Message: "followUpDate must be a date"}
	}
	return t, nil
}

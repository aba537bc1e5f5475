package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"hospital-portal/internal/booking"
	"hospital-portal/internal/models"
	"hospital-portal/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct{}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler() *AppointmentHandler {
	return &AppointmentHandler{}
}

// BookAppointmentRequest is the patient's booking form.
type BookAppointmentRequest struct {
	DoctorID string `json:"doctorId" validate:"required"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Time     string `json:"time" validate:"required,hhmm"`
	Reason   string `json:"reason"`
}

// UpdateStatusRequest represents the request body for changing an appointment's status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AppointmentList is the caller's appointments, split around now.
type AppointmentList struct {
	Appointments []models.Appointment `json:"appointments"`
	Upcoming     []models.Appointment `json:"upcoming"`
	Past         []models.Appointment `json:"past"`
}

// BookingContext is what the booking form needs up front.
type BookingContext struct {
	Doctors     []models.Doctor     `json:"doctors"`
	Departments []models.Department `json:"departments"`
}

// GetAppointments lists the caller's appointments: all of them for admins,
// their own for doctors and patients. ?status= narrows the list.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	if err := st.Appointments.Fetch(c.Request.Context()); err != nil {
		utils.RespondError(c, err)
		return
	}

	appts := st.Appointments.List()
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
		appts = booking.FilterByStatus(appts, status)
	}

	upcoming, past := booking.Partition(appts, st.Now())
	utils.Success(c, "Appointments retrieved successfully", AppointmentList{
		Appointments: appts,
		Upcoming:     upcoming,
		Past:         past,
	})
}

// GetAppointmentByID returns one appointment from the caller's list.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	appt, found := st.Appointments.Find(c.Param("id"))
	if !found {
		if err := st.Appointments.Fetch(c.Request.Context()); err != nil {
			utils.RespondError(c, err)
			return
		}
		appt, found = st.Appointments.Find(c.Param("id"))
	}
	if !found {
		utils.NotFound(c, "Appointment not found")
		return
	}
	utils.Success(c, "Appointment retrieved successfully", appt)
}

// GetBookingContext loads doctors and departments for the booking form.
func (h *AppointmentHandler) GetBookingContext(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	if err := st.Appointments.LoadBookingContext(c.Request.Context()); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Booking context retrieved successfully", BookingContext{
		Doctors:     st.Doctors.List(),
		Departments: st.Departments.List(),
	})
}

// BookAppointment books a slot for the signed-in patient.
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	date, err := time.ParseInLocation(time.DateOnly, req.Date, time.Local)
	if err != nil {
		utils.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}

	appt, err := st.Appointments.Book(c.Request.Context(), booking.Request{
		DoctorID: req.DoctorID,
		Date:     date,
		Time:     req.Time,
		Reason:   req.Reason,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Appointment booked successfully", appt)
}

// UpdateAppointmentStatus moves an appointment along its lifecycle.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	appt, err := st.Appointments.UpdateStatus(c.Request.Context(), c.Param("id"), models.AppointmentStatus(req.Status))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment status updated successfully", appt)
}

// CancelAppointment cancels one of the patient's Pending or Confirmed appointments.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	appt, err := st.Appointments.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Appointment cancelled successfully", appt)
}

package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"hospital-portal/internal/booking"
	"hospital-portal/internal/models"
	"hospital-portal/internal/utils"
)

// AvailabilityHandler serves doctors' weekly grids.
type AvailabilityHandler struct{}

func NewAvailabilityHandler() *AvailabilityHandler {
	return &AvailabilityHandler{}
}

// AvailabilityResponse is a doctor's grid plus the times the editor offers.
type AvailabilityResponse struct {
	Availability models.DoctorAvailability `json:"availability"`
	TimeGrid     []string                  `json:"timeGrid"`
}

// UpdateAvailabilityRequest replaces the whole weekly grid.
type UpdateAvailabilityRequest struct {
	Availability models.DoctorAvailability `json:"availability" validate:"required"`
}

// ToggleSlotRequest offers or withdraws one weekly slot.
type ToggleSlotRequest struct {
	Day  string `json:"day" validate:"required,weekday"`
	Time string `json:"time" validate:"required,hhmm"`
}

// SlotsResponse lists what a patient can book on one date.
type SlotsResponse struct {
	DoctorID string            `json:"doctorId"`
	Date     string            `json:"date"`
	Day      string            `json:"day"`
	Slots    []models.TimeSlot `json:"slots"`
	Bookable []string          `json:"bookable"`
}

// GetMyAvailability returns the signed-in doctor's grid.
func (h *AvailabilityHandler) GetMyAvailability(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	av, err := st.Doctors.FetchAvailability(c.Request.Context(), st.User().ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Availability retrieved successfully", AvailabilityResponse{Availability: av, TimeGrid: booking.TimeGrid()})
}

// UpdateMyAvailability saves a full grid for the signed-in doctor.
func (h *AvailabilityHandler) UpdateMyAvailability(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	var req UpdateAvailabilityRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if err := st.Doctors.UpdateAvailability(c.Request.Context(), req.Availability); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Availability updated successfully", AvailabilityResponse{
		Availability: st.User().Availability.Clone(),
		TimeGrid:     booking.TimeGrid(),
	})
}

// ToggleSlot flips one slot of the signed-in doctor's grid.
func (h *AvailabilityHandler) ToggleSlot(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	var req ToggleSlotRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	dayIndex, _ := models.WeekdayIndex(req.Day)

	av, err := st.Doctors.ToggleSlot(c.Request.Context(), dayIndex, req.Time)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Availability updated successfully", AvailabilityResponse{Availability: av, TimeGrid: booking.TimeGrid()})
}

// GetBookableSlots lists a doctor's slots on ?date=YYYY-MM-DD and which are free.
func (h *AvailabilityHandler) GetBookableSlots(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	date, err := time.ParseInLocation(time.DateOnly, c.Query("date"), time.Local)
	if err != nil {
		utils.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}

	doctorID := c.Param("id")
	av, err := st.Doctors.FetchAvailability(c.Request.Context(), doctorID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Slots retrieved successfully", SlotsResponse{
		DoctorID: doctorID,
		Date:     date.Format(time.DateOnly),
		Day:      models.WeekdayName(date),
		Slots:    booking.ResolveDaySlots(av, date),
		Bookable: booking.ListBookable(av, date),
	})
}

package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hospital-portal/internal/apiclient"
	"hospital-portal/internal/booking"
	"hospital-portal/internal/models"
)

// ResponseData represents the structure of a standard API response.
type ResponseData struct {
	Status   int         `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data,omitempty"`
	Error    string      `json:"error,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

// Success sends a standard success response.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, ResponseData{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Created sends a standard resource created response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, ResponseData{
		Status:  http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// Error sends a standard error response.
func Error(c *gin.Context, statusCode int, errorMessage string) {
	c.JSON(statusCode, ResponseData{
		Status:  statusCode,
		Message: "An error occurred",
		Error:   errorMessage,
	})
}

// Redirect aborts with an error response telling the browser where to go next.
func Redirect(c *gin.Context, statusCode int, errorMessage, location string) {
	c.AbortWithStatusJSON(statusCode, ResponseData{
		Status:   statusCode,
		Message:  "An error occurred",
		Error:    errorMessage,
		Redirect: location,
	})
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, errorMessage string) {
	Error(c, http.StatusBadRequest, errorMessage)
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, errorMessage string) {
	Error(c, http.StatusUnauthorized, errorMessage)
}

// Forbidden sends a 403 Forbidden error response.
func Forbidden(c *gin.Context, errorMessage string) {
	Error(c, http.StatusForbidden, errorMessage)
}

// NotFound sends a 404 Not Found error response.
func NotFound(c *gin.Context, errorMessage string) {
	Error(c, http.StatusNotFound, errorMessage)
}

// InternalServerError sends a 500 Internal Server Error response.
func InternalServerError(c *gin.Context, errorMessage string) {
	Error(c, http.StatusInternalServerError, errorMessage)
}

// StatusFor maps a domain or backend error to the HTTP status the portal answers with.
func StatusFor(err error) int {
	var apiErr *apiclient.APIError
	var valErr *ValidationError
	switch {
	case errors.As(err, &valErr),
		errors.Is(err, booking.ErrPastDate),
		errors.Is(err, booking.ErrNoSuchSlot),
		errors.Is(err, booking.ErrInvalidDay),
		errors.Is(err, booking.ErrInvalidTime),
		errors.Is(err, models.ErrInvalidAvailability):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrSlotAlreadyBooked),
		errors.Is(err, booking.ErrSlotBooked),
		errors.Is(err, booking.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, booking.ErrDoctorNotFound),
		errors.Is(err, booking.ErrDepartmentNotFound),
		errors.Is(err, booking.ErrAppointmentNotFound):
		return http.StatusNotFound
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// RespondError writes err with the status chosen by StatusFor.
func RespondError(c *gin.Context, err error) {
	Error(c, StatusFor(err), err.Error())
}

package utils

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"hospital-portal/internal/models"
)

// ValidationError is an input the portal rejects before calling the backend.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return models.ValidSlotTime(fl.Field().String())
		})
		_ = validate.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			_, ok := models.WeekdayIndex(fl.Field().String())
			return ok
		})
		_ = validate.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
			return StrongPassword(fl.Field().String())
		})
	})
	return validate
}

const passwordSymbols = "!@#$%^&*"

// StrongPassword requires at least 8 characters including an upper-case
// letter, a lower-case letter, a digit and one of !@#$%^&*.
func StrongPassword(p string) bool {
	if len(p) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// Validate performs validation on a struct. Failures are *ValidationError.
func Validate(s interface{}) error {
	if err := validatorInstance().Struct(s); err != nil {
		return &ValidationError{Message: FormatValidationError(err)}
	}
	return nil
}

// FormatValidationError formats validation errors into a readable string.
func FormatValidationError(err error) string {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		var errorMessages []string
		for _, e := range errs {
			errorMessages = append(errorMessages, fieldMessage(e))
		}
		return strings.Join(errorMessages, ", ")
	}
	return err.Error()
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
	case "hhmm":
		return fmt.Sprintf("%s must be a time in HH:MM format", e.Field())
	case "weekday":
		return fmt.Sprintf("%s must be a day of the week", e.Field())
	case "strongpassword":
		return fmt.Sprintf("%s must be at least 8 characters with upper-case, lower-case, a digit and a special character", e.Field())
	}
	return fmt.Sprintf("%s failed on %s", e.Field(), e.Tag())
}

// BindAndValidate binds the request body to a struct and validates it.
// If validation fails, it sends a BadRequest response and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		BadRequest(c, "Invalid request payload: "+err.Error())
		return false
	}
	if err := Validate(obj); err != nil {
		BadRequest(c, "Validation failed: "+err.Error())
		return false
	}
	return true
}

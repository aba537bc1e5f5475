package models

import (
	"time"
)

// Department groups doctors. Doctors are referenced, not owned.
type Department struct {
	ID          string     `json:"_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Doctors     []Ref      `json:"doctors"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// HasDoctor reports whether the doctor is listed under this department.
func (d Department) HasDoctor(doctorID string) bool {
	for _, doc := range d.Doctors {
		if doc.ID == doctorID {
			return true
		}
	}
	return false
}

// DepartmentInput is the writable part of a department.
type DepartmentInput struct {
	Name        string `json:"name" validate:"required,min=2"`
	Description string `json:"description" validate:"required,min=10"`
}

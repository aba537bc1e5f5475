package handlers

import (
	"github.com/gin-gonic/gin"

	"hospital-portal/internal/models"
	"hospital-portal/internal/utils"
)

// DepartmentHandler manages departments from the admin portal.
type DepartmentHandler struct{}

func NewDepartmentHandler() *DepartmentHandler {
	return &DepartmentHandler{}
}

// GetDepartments lists every department.
func (h *DepartmentHandler) GetDepartments(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	if err := st.Departments.Fetch(c.Request.Context()); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Departments retrieved successfully", st.Departments.List())
}

// CreateDepartment adds a department and returns the refreshed list.
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	var in models.DepartmentInput
	if !utils.BindAndValidate(c, &in) {
		return
	}
	if err := st.Departments.Add(c.Request.Context(), in); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Created(c, "Department created successfully", st.Departments.List())
}

// UpdateDepartment renames or redescribes a department.
func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	var in models.DepartmentInput
	if !utils.BindAndValidate(c, &in) {
		return
	}
	if err := st.Departments.Update(c.Request.Context(), c.Param("id"), in); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Department updated successfully", st.Departments.List())
}

func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	st, ok := currentStore(c)
	if !ok {
		return
	}
	if err := st.Departments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Success(c, "Department deleted successfully", st.Departments.List())
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/agrishop-billing/internal/application/service"
	"github.com/sangkips/agrishop-billing/internal/presentation/http/dto/request"
	"github.com/sangkips/agrishop-billing/internal/presentation/http/dto/response"
)

// EmployeeHandler handles employee-related HTTP requests
type EmployeeHandler struct {
	employeeService *service.EmployeeService
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(employeeService *service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

// List handles listing employees. Deactivated employees are included with
// ?include_inactive=true.
func (h *EmployeeHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	employees, err := h.employeeService.ListEmployees(c.Request.Context(), includeInactive)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Employees retrieved successfully", employees)
}

// Create handles creating an employee. Re-adding a deactivated employee
// reactivates the existing record.
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req request.EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	employee, reactivated, err := h.employeeService.CreateEmployee(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	if reactivated {
		response.Success(c, http.StatusOK, "Employee reactivated successfully", employee)
		return
	}
	response.Created(c, "Employee created successfully", employee)
}

// Get handles getting a single employee
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, ok := GetUUIDParam(c, "id", "employee")
	if !ok {
		return
	}

	employee, err := h.employeeService.GetEmployee(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Employee retrieved successfully", employee)
}

// Update handles renaming an employee
func (h *EmployeeHandler) Update(c *gin.Context) {
	id, ok := GetUUIDParam(c, "id", "employee")
	if !ok {
		return
	}

	var req request.EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	employee, err := h.employeeService.RenameEmployee(c.Request.Context(), id, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Employee updated successfully", employee)
}

// Delete deactivates an employee. Bills keep their employee reference.
func (h *EmployeeHandler) Delete(c *gin.Context) {
	id, ok := GetUUIDParam(c, "id", "employee")
	if !ok {
		return
	}

	if err := h.employeeService.DeactivateEmployee(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Employee deactivated successfully", nil)
}

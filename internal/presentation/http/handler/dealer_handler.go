package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/application/service"
	"github.com/sangkips/agrishop-billing/internal/presentation/http/dto/request"
	"github.com/sangkips/agrishop-billing/internal/presentation/http/dto/response"
)

// DealerHandler handles dealer-related HTTP requests
type DealerHandler struct {
	dealerService *service.DealerService
}

// NewDealerHandler creates a new dealer handler
func NewDealerHandler(dealerService *service.DealerService) *DealerHandler {
	return &DealerHandler{dealerService: dealerService}
}

// List handles listing dealers, optionally for one employee
func (h *DealerHandler) List(c *gin.Context) {
	var employeeID *uuid.UUID
	if v := c.Query("employee_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(c, "Invalid employee ID")
			return
		}
		employeeID = &id
	}

	dealers, err := h.dealerService.ListDealers(c.Request.Context(), employeeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dealers retrieved successfully", dealers)
}

// Create handles creating a dealer
func (h *DealerHandler) Create(c *gin.Context) {
	var req request.DealerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	dealer, err := h.dealerService.CreateDealer(c.Request.Context(), &service.DealerInput{
		Name:       req.Name,
		EmployeeID: req.EmployeeID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Dealer created successfully", dealer)
}

// Get handles getting a single dealer
func (h *DealerHandler) Get(c *gin.Context) {
	id, ok := GetUUIDParam(c, "id", "dealer")
	if !ok {
		return
	}

	dealer, err := h.dealerService.GetDealer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dealer retrieved successfully", dealer)
}

// Update handles updating a dealer
func (h *DealerHandler) Update(c *gin.Context) {
	id, ok := GetUUIDParam(c, "id", "dealer")
	if !ok {
		return
	}

	var req request.DealerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	dealer, err := h.dealerService.UpdateDealer(c.Request.Context(), id, &service.DealerInput{
		Name:       req.Name,
		EmployeeID: req.EmployeeID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dealer updated successfully", dealer)
}

// Delete handles deleting a dealer
func (h *DealerHandler) Delete(c *gin.Context) {
	id, ok := GetUUIDParam(c, "id", "dealer")
	if !ok {
		return
	}

	if err := h.dealerService.DeleteDealer(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dealer deleted successfully", nil)
}

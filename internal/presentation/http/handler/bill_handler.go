package handler

import (
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/application/service"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	"github.com/sangkips/agrishop-billing/internal/domain/enum"
	"github.com/sangkips/agrishop-billing/internal/presentation/http/dto/request"
	"github.com/sangkips/agrishop-billing/internal/presentation/http/dto/response"
	"github.com/sangkips/agrishop-billing/pkg/invoice"
	"github.com/sangkips/agrishop-billing/pkg/pagination"
)

// BillHandler handles bill-related HTTP requests
type BillHandler struct {
	billService *service.BillService
	baseURL     string
	disposition invoice.Disposition
	location    *time.Location
}

// NewBillHandler creates a new bill handler. An empty baseURL makes PDF links
// follow the host of each request.
func NewBillHandler(billService *service.BillService, baseURL string, disposition invoice.Disposition, location *time.Location) *BillHandler {
	if location == nil {
		location = time.UTC
	}
	return &BillHandler{
		billService: billService,
		baseURL:     baseURL,
		disposition: disposition,
		location:    location,
	}
}

// Create handles creating a bill
func (h *BillHandler) Create(c *gin.Context) {
	var req request.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BindError(c, err)
		return
	}

	status, err := enum.ParseBillStatus(req.Status)
	if err != nil {
		invalidField(c, "status", err.Error())
		return
	}

	customers := make([]service.BillCustomerInput, len(req.Customers))
	for i, cust := range req.Customers {
		items := make([]service.BillItemInput, len(cust.Items))
		for j, item := range cust.Items {
			items[j] = service.BillItemInput{
				ProductID:         item.ProductID,
				Quantity:          item.Quantity,
				CommissionPercent: item.CommissionPercent,
				DealerName:        item.DealerName,
			}
		}
		customers[i] = service.BillCustomerInput{
			CustomerName: cust.CustomerName,
			Items:        items,
		}
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), &service.CreateBillInput{
		EmployeeID:      req.EmployeeID,
		Customers:       customers,
		DiscountPercent: req.DiscountPercent,
		Notes:           req.Notes,
		Status:          status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Bill created successfully", h.withLink(c, bill))
}

// List handles listing bills
func (h *BillHandler) List(c *gin.Context) {
	var filter request.BillFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		BindError(c, err)
		return
	}

	input := &service.ListBillsInput{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.Limit,
		},
		Customer: filter.Customer,
		Dealer:   filter.Dealer,
		Search:   filter.Search,
	}

	if filter.EmployeeID != "" {
		employeeID, err := uuid.Parse(filter.EmployeeID)
		if err != nil {
			response.BadRequest(c, "Invalid employee ID")
			return
		}
		input.EmployeeID = &employeeID
	}

	var err error
	if input.StartDate, err = ParseDate(filter.Start(), h.location); err != nil {
		invalidField(c, "start_date", err.Error())
		return
	}
	if input.EndDate, err = ParseDate(filter.End(), h.location); err != nil {
		invalidField(c, "end_date", err.Error())
		return
	}

	result, err := h.billService.ListBills(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Bills retrieved successfully", result)
}

// Get handles getting a single bill
func (h *BillHandler) Get(c *gin.Context) {
	id, ok := GetUUIDParam(c, "id", "bill")
	if !ok {
		return
	}

	bill, err := h.billService.GetBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", h.withLink(c, bill))
}

// PDF streams the invoice for a bill
func (h *BillHandler) PDF(c *gin.Context) {
	id, ok := GetUUIDParam(c, "id", "bill")
	if !ok {
		return
	}

	out, err := h.billService.RenderInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	disposition := invoice.ParseDisposition(c.Query("disposition"), h.disposition)
	c.Header("Content-Disposition", disposition.Header(out.Filename))
	c.Header("Content-Length", strconv.Itoa(len(out.Content)))
	c.Data(http.StatusOK, "application/pdf", out.Content)
}

// Delete handles deleting a bill. With ?restock=true the sold quantities are
// returned to stock.
func (h *BillHandler) Delete(c *gin.Context) {
	id, ok := GetUUIDParam(c, "id", "bill")
	if !ok {
		return
	}

	restock := false
	if v := c.Query("restock"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			invalidField(c, "restock", "must be true or false")
			return
		}
		restock = parsed
	}

	if err := h.billService.DeleteBill(c.Request.Context(), id, restock); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill deleted successfully", nil)
}

// Dealers lists the distinct dealer names used on bills
func (h *BillHandler) Dealers(c *gin.Context) {
	dealers, err := h.billService.UniqueDealers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dealers retrieved successfully", dealers)
}

var forwardedProto = regexp.MustCompile(`^https?$`)

func (h *BillHandler) withLink(c *gin.Context, bill *entity.Bill) response.BillResponse {
	return response.BillResponse{
		Bill:            bill,
		PDFDownloadLink: h.origin(c) + "/api/v1/bills/" + bill.ID.String() + "/pdf",
	}
}

func (h *BillHandler) origin(c *gin.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); forwardedProto.MatchString(proto) {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}

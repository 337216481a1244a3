package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/config"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	"github.com/sangkips/agrishop-billing/internal/domain/enum"
	"github.com/sangkips/agrishop-billing/internal/domain/repository"
	"github.com/sangkips/agrishop-billing/pkg/apperror"
	"github.com/sangkips/agrishop-billing/pkg/invoice"
	"github.com/sangkips/agrishop-billing/pkg/logger"
	"github.com/sangkips/agrishop-billing/pkg/money"
	"github.com/sangkips/agrishop-billing/pkg/pagination"
	"github.com/shopspring/decimal"
)

// MaxNotesLength bounds bill notes
const MaxNotesLength = 500

// BillService creates, lists and renders bills
type BillService struct {
	pricing      *PricingEngine
	billRepo     repository.BillRepository
	productRepo  repository.ProductRepository
	employeeRepo repository.EmployeeRepository
	sequenceRepo repository.SequenceRepository
	txManager    repository.TxManager
	renderer     *invoice.Renderer
	cfg          config.BillingConfig
	log          *logger.Logger
	now          func() time.Time
}

// NewBillService creates a new bill service
func NewBillService(
	pricing *PricingEngine,
	billRepo repository.BillRepository,
	productRepo repository.ProductRepository,
	employeeRepo repository.EmployeeRepository,
	sequenceRepo repository.SequenceRepository,
	txManager repository.TxManager,
	renderer *invoice.Renderer,
	cfg config.BillingConfig,
	log *logger.Logger,
) *BillService {
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = "AGR"
	}
	if cfg.NumberWidth <= 0 {
		cfg.NumberWidth = 6
	}
	if cfg.MaxCustomers <= 0 {
		cfg.MaxCustomers = 10
	}
	if cfg.CreateAttempts <= 0 {
		cfg.CreateAttempts = 1
	}
	return &BillService{
		pricing:      pricing,
		billRepo:     billRepo,
		productRepo:  productRepo,
		employeeRepo: employeeRepo,
		sequenceRepo: sequenceRepo,
		txManager:    txManager,
		renderer:     renderer,
		cfg:          cfg,
		log:          log.WithComponent("bill_service"),
		now:          time.Now,
	}
}

// CreateBillInput represents the create bill input
type CreateBillInput struct {
	EmployeeID      uuid.UUID
	Customers       []BillCustomerInput
	DiscountPercent decimal.Decimal
	Notes           string
	Status          enum.BillStatus
}

// CreateBill prices every customer section, then in one transaction takes the
// stock, allocates the next bill number and stores the bill. Nothing is
// written unless every step succeeds.
func (s *BillService) CreateBill(ctx context.Context, input *CreateBillInput) (*entity.Bill, error) {
	if err := s.validateCreate(input); err != nil {
		return nil, err
	}

	employee, err := s.employeeRepo.GetByID(ctx, input.EmployeeID)
	if err != nil {
		return nil, apperror.NewPersistenceError("load employee", err)
	}
	if employee == nil || !employee.IsActive {
		return nil, apperror.NewNotFoundError("Employee").WithReason(apperror.ReasonEmployeeNotFound)
	}

	sections := make([]entity.BillCustomer, 0, len(input.Customers))
	for i, customer := range input.Customers {
		section, err := s.pricing.PriceCustomer(ctx, customer)
		if err != nil {
			return nil, err
		}
		section.Position = i
		sections = append(sections, *section)
	}

	bill := AggregateBill(employee, sections, input.DiscountPercent, strings.TrimSpace(input.Notes), input.Status)

	for attempt := 1; ; attempt++ {
		err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.persist(ctx, bill)
		})
		if err == nil || !errors.Is(err, repository.ErrDuplicate) || attempt >= s.cfg.CreateAttempts {
			break
		}
		s.log.WithContext(ctx).Warnw("bill number taken, retrying", "bill_number", bill.BillNumber, "attempt", attempt)
		// The rollback also undid the counter; move it past the taken number.
		if _, err := s.sequenceRepo.Next(ctx, s.cfg.NumberPrefix); err != nil {
			return nil, apperror.NewPersistenceError("allocate bill number", err)
		}
	}

	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.NewConflictError("Could not allocate a unique bill number").
				WithReason(apperror.ReasonBillNumberTaken)
		}
		if !apperror.IsAppError(err) {
			err = apperror.NewPersistenceError("create bill", err)
		}
		if apperror.IsKind(err, apperror.KindPersistence) {
			s.log.WithContext(ctx).Errorw("bill creation failed", "employee_id", employee.ID, "error", err)
		}
		return nil, err
	}

	s.log.WithContext(ctx).Infow("bill created",
		"bill_id", bill.ID,
		"bill_number", bill.BillNumber,
		"customers", len(bill.Customers),
		"final_amount", bill.FinalAmount.StringFixed(money.Places),
	)
	return bill, nil
}

func (s *BillService) validateCreate(input *CreateBillInput) error {
	if len(input.Customers) == 0 || len(input.Customers) > s.cfg.MaxCustomers {
		return apperror.NewRuleError(apperror.ReasonNoCustomers, "customers",
			fmt.Sprintf("A bill needs between 1 and %d customers", s.cfg.MaxCustomers))
	}

	var fieldErrors []apperror.FieldError
	if !money.IsPercent(input.DiscountPercent) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "discount_percent", Message: money.PercentMessage})
	}
	if utf8.RuneCountInString(strings.TrimSpace(input.Notes)) > MaxNotesLength {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "notes", Message: fmt.Sprintf("must be at most %d characters", MaxNotesLength)})
	}
	if !input.Status.IsValid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "status", Message: "must be draft, completed or cancelled"})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// persist runs inside the creation transaction.
func (s *BillService) persist(ctx context.Context, bill *entity.Bill) error {
	decrements := StockDecrements(bill)

	failedIDs, err := s.productRepo.AtomicDecrementBatch(ctx, decrements)
	if err != nil {
		return apperror.NewPersistenceError("update stock", err)
	}
	if len(failedIDs) > 0 {
		return s.insufficientStock(ctx, failedIDs, decrements)
	}

	next, err := s.sequenceRepo.Next(ctx, s.cfg.NumberPrefix)
	if err != nil {
		return apperror.NewPersistenceError("allocate bill number", err)
	}
	bill.BillNumber = FormatBillNumber(s.cfg.NumberPrefix, s.cfg.NumberWidth, next)
	bill.CreatedAt = s.now()

	if err := s.billRepo.Create(ctx, bill); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return err
		}
		return apperror.NewPersistenceError("save bill", err)
	}
	return nil
}

// insufficientStock reports the products another bill took first.
func (s *BillService) insufficientStock(ctx context.Context, failedIDs []uuid.UUID, requested map[uuid.UUID]int) error {
	products, err := s.productRepo.GetByIDs(ctx, failedIDs)
	if err != nil {
		return apperror.NewPersistenceError("load products", err)
	}
	if len(products) == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Product %s", failedIDs[0])).
			WithReason(apperror.ReasonProductNotFound)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })

	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.Name
	}
	first := products[0]
	return apperror.NewInsufficientStockError(first.Name, requested[first.ID], first.Quantity).
		WithDetail("products", names)
}

// AggregateBill assembles a bill from priced sections. Every total is derived
// from the line items.
func AggregateBill(employee *entity.Employee, sections []entity.BillCustomer, discountPercent decimal.Decimal, notes string, status enum.BillStatus) *entity.Bill {
	bill := &entity.Bill{
		EmployeeID:      employee.ID,
		EmployeeName:    employee.Name,
		Customers:       sections,
		DiscountPercent: discountPercent,
		Notes:           notes,
		Status:          status,
	}

	total, commission := decimal.Zero, decimal.Zero
	for i := range bill.Customers {
		c := &bill.Customers[i]
		c.Subtotal = SectionSubtotal(c.Items)
		total = total.Add(c.Subtotal)
		for _, it := range c.Items {
			commission = commission.Add(it.CommissionAmount)
			bill.TotalItems += it.Quantity
		}
	}

	bill.TotalAmount = total
	bill.TotalCommission = commission
	bill.DiscountAmount = money.Round2(money.Percent(total, discountPercent))
	bill.FinalAmount = total.Sub(bill.DiscountAmount)
	return bill
}

// StockDecrements sums requested quantities per product across all sections
func StockDecrements(bill *entity.Bill) map[uuid.UUID]int {
	decrements := make(map[uuid.UUID]int)
	for _, c := range bill.Customers {
		for _, it := range c.Items {
			decrements[it.ProductID] += it.Quantity
		}
	}
	return decrements
}

// FormatBillNumber renders e.g. AGR-000042
func FormatBillNumber(prefix string, width int, n int64) string {
	return fmt.Sprintf("%s-%0*d", prefix, width, n)
}

// GetBill returns a bill by id
func (s *BillService) GetBill(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewPersistenceError("load bill", err)
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return bill, nil
}

// DeleteBill permanently removes a bill. With restock the quantities on its
// lines are returned to the products that still exist.
func (s *BillService) DeleteBill(ctx context.Context, id uuid.UUID, restock bool) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var increments map[uuid.UUID]int
		if restock {
			bill, err := s.GetBill(ctx, id)
			if err != nil {
				return err
			}
			increments = StockDecrements(bill)
		}

		deleted, err := s.billRepo.Delete(ctx, id)
		if err != nil {
			return apperror.NewPersistenceError("delete bill", err)
		}
		if !deleted {
			return apperror.NewNotFoundError("Bill")
		}

		if len(increments) > 0 {
			if err := s.productRepo.AtomicIncrementBatch(ctx, increments); err != nil {
				return apperror.NewPersistenceError("restock products", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.WithContext(ctx).Infow("bill deleted", "bill_id", id, "restock", restock)
	return nil
}

// ListBillsInput represents bill listing filters
type ListBillsInput struct {
	Pagination *pagination.PaginationParams
	Customer   string
	Dealer     string
	Search     string
	EmployeeID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
}

// ListBills returns bills newest first
func (s *BillService) ListBills(ctx context.Context, input *ListBillsInput) (*pagination.PaginatedResult[entity.Bill], error) {
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}
	input.Pagination.Validate()

	for field, pattern := range map[string]string{"customer": input.Customer, "dealer": input.Dealer} {
		if pattern == "" {
			continue
		}
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			return nil, apperror.NewBadRequestError(fmt.Sprintf("Invalid %s pattern: %v", field, err))
		}
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, apperror.NewBadRequestError("end_date must not be before start_date")
	}

	bills, total, err := s.billRepo.List(ctx, &repository.BillFilterParams{
		Pagination: input.Pagination,
		Customer:   input.Customer,
		Dealer:     input.Dealer,
		Search:     strings.TrimSpace(input.Search),
		EmployeeID: input.EmployeeID,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
	})
	if err != nil {
		return nil, apperror.NewPersistenceError("list bills", err)
	}

	page := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(bills, page), nil
}

// UniqueDealers lists every dealer named on a bill line
func (s *BillService) UniqueDealers(ctx context.Context) ([]string, error) {
	dealers, err := s.billRepo.DistinctDealers(ctx)
	if err != nil {
		return nil, apperror.NewPersistenceError("list dealers", err)
	}
	if dealers == nil {
		dealers = []string{}
	}
	return dealers, nil
}

// RenderInvoice renders a stored bill as PDF
func (s *BillService) RenderInvoice(ctx context.Context, id uuid.UUID) (*invoice.Output, error) {
	bill, err := s.GetBill(ctx, id)
	if err != nil {
		return nil, err
	}

	out, err := s.renderer.RenderPDF(InvoiceSource(bill))
	if err != nil {
		s.log.WithContext(ctx).Errorw("invoice encoding failed", "bill_id", id, "error", err)
		return nil, apperror.NewAppError(http.StatusInternalServerError, "Failed to generate invoice")
	}
	if out.Fallback != nil {
		s.log.WithContext(ctx).Warnw("invoice rendered with fallback", "bill_id", id, "error", out.Fallback)
	}
	return out, nil
}

// InvoiceSource converts a stored bill to the renderer's input shape
func InvoiceSource(bill *entity.Bill) invoice.MultiCustomerBill {
	ptr := func(d decimal.Decimal) *decimal.Decimal { return &d }

	src := invoice.MultiCustomerBill{
		ID:              bill.ID.String(),
		BillNumber:      bill.BillNumber,
		EmployeeName:    bill.EmployeeName,
		TotalAmount:     ptr(bill.TotalAmount),
		TotalCommission: ptr(bill.TotalCommission),
		DiscountPercent: ptr(bill.DiscountPercent),
		DiscountAmount:  ptr(bill.DiscountAmount),
		FinalAmount:     ptr(bill.FinalAmount),
		Notes:           bill.Notes,
		Status:          bill.Status.String(),
		CreatedAt:       invoice.Timestamp{Time: bill.CreatedAt},
	}
	for _, c := range bill.Customers {
		sc := invoice.SourceCustomer{CustomerName: c.CustomerName, Subtotal: ptr(c.Subtotal)}
		for _, it := range c.Items {
			sc.Items = append(sc.Items, invoice.SourceItem{
				ProductName:       it.ProductName,
				DealerName:        it.DealerName,
				Quantity:          ptr(decimal.NewFromInt(int64(it.Quantity))),
				Rate:              ptr(it.Rate),
				ItemAmount:        ptr(it.ItemAmount),
				CommissionPercent: ptr(it.CommissionPercent),
				CommissionAmount:  ptr(it.CommissionAmount),
				LineTotal:         ptr(it.LineTotal),
			})
		}
		src.Customers = append(src.Customers, sc)
	}
	return src
}

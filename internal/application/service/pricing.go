package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	"github.com/sangkips/agrishop-billing/internal/domain/repository"
	"github.com/sangkips/agrishop-billing/pkg/apperror"
	"github.com/sangkips/agrishop-billing/pkg/money"
	"github.com/shopspring/decimal"
)

// MaxCustomerNameLength bounds customer names on bills
const MaxCustomerNameLength = 100

// BillItemInput is one requested line
type BillItemInput struct {
	ProductID         uuid.UUID
	Quantity          int
	CommissionPercent *decimal.Decimal // overrides the product's default when set
	DealerName        string
}

// BillCustomerInput is one customer's requested lines
type BillCustomerInput struct {
	CustomerName string
	Items        []BillItemInput
}

// PricingEngine prices customer sections against the product catalogue.
// It reads stock but never changes it.
type PricingEngine struct {
	productRepo repository.ProductRepository
}

// NewPricingEngine creates a new pricing engine
func NewPricingEngine(productRepo repository.ProductRepository) *PricingEngine {
	return &PricingEngine{productRepo: productRepo}
}

// PriceCustomer validates a customer's lines and prices each one.
// Stock is checked against the combined quantity of lines for the same product.
func (e *PricingEngine) PriceCustomer(ctx context.Context, input BillCustomerInput) (*entity.BillCustomer, error) {
	name := strings.TrimSpace(input.CustomerName)
	if name == "" || len(input.Items) == 0 {
		return nil, apperror.NewRuleError(apperror.ReasonEmptyCustomer, "customer_name",
			"Each customer needs a name and at least one item")
	}
	if utf8.RuneCountInString(name) > MaxCustomerNameLength {
		return nil, apperror.NewValidationError([]apperror.FieldError{{
			Field:   "customer_name",
			Message: fmt.Sprintf("must be at most %d characters", MaxCustomerNameLength),
		}})
	}

	productIDs := make([]uuid.UUID, 0, len(input.Items))
	for i, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, apperror.NewRuleError(apperror.ReasonInvalidQuantity,
				fmt.Sprintf("items[%d].quantity", i), "Quantity must be greater than zero")
		}
		if item.CommissionPercent != nil && !money.IsPercent(*item.CommissionPercent) {
			return nil, apperror.NewValidationError([]apperror.FieldError{{
				Field:   fmt.Sprintf("items[%d].commission_percent", i),
				Message: money.PercentMessage,
			}})
		}
		productIDs = append(productIDs, item.ProductID)
	}

	// Batch fetch all products in one query (prevents N+1)
	products, err := e.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, apperror.NewPersistenceError("load products", err)
	}
	productMap := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	section := &entity.BillCustomer{
		CustomerName: name,
		Items:        make([]entity.BillItem, 0, len(input.Items)),
	}
	requested := make(map[uuid.UUID]int, len(input.Items))

	for i, item := range input.Items {
		product, ok := productMap[item.ProductID]
		if !ok {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Product %s", item.ProductID)).
				WithReason(apperror.ReasonProductNotFound)
		}

		requested[product.ID] += item.Quantity
		if requested[product.ID] > product.Quantity {
			return nil, apperror.NewInsufficientStockError(product.Name, requested[product.ID], product.Quantity)
		}

		line := PriceLine(product, item.Quantity, item.CommissionPercent, item.DealerName)
		line.Position = i
		section.Items = append(section.Items, line)
	}

	section.Subtotal = SectionSubtotal(section.Items)
	return section, nil
}

// PriceLine prices quantity units of product.
// The commission percent is the override if given, else the product's default.
func PriceLine(product *entity.Product, quantity int, override *decimal.Decimal, dealerName string) entity.BillItem {
	percent := product.DefaultCommission()
	if override != nil {
		percent = *override
	}
	dealer := strings.TrimSpace(dealerName)
	if dealer == "" {
		dealer = entity.DefaultDealerName
	}

	itemAmount := money.Round2(product.Rate.Mul(decimal.NewFromInt(int64(quantity))))
	commission := money.Round2(money.Percent(itemAmount, percent))

	return entity.BillItem{
		ProductID:         product.ID,
		ProductName:       product.Name,
		DealerName:        dealer,
		Quantity:          quantity,
		Rate:              product.Rate,
		ItemAmount:        itemAmount,
		CommissionPercent: percent,
		CommissionAmount:  commission,
		LineTotal:         itemAmount.Add(commission),
	}
}

// SectionSubtotal sums the line totals of a customer section
func SectionSubtotal(items []entity.BillItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal)
	}
	return subtotal
}

package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/agrishop-billing/internal/domain/entity"
	"github.com/sangkips/agrishop-billing/internal/domain/repository"
	"github.com/sangkips/agrishop-billing/pkg/apperror"
	"github.com/sangkips/agrishop-billing/pkg/money"
	"github.com/sangkips/agrishop-billing/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ProductService handles product-related operations
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Name              string
	Quantity          int
	Rate              decimal.Decimal
	CommissionPercent *decimal.Decimal
}

// UpdateProductInput represents the update product input. Nil fields are left unchanged.
type UpdateProductInput struct {
	Name              *string
	Quantity          *int
	Rate              *decimal.Decimal
	CommissionPercent *decimal.Decimal
}

// CreateProduct creates a new product. The commission defaults to 3%.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	commission := entity.DefaultCommissionPercent
	if input.CommissionPercent != nil {
		commission = *input.CommissionPercent
	}

	product := &entity.Product{
		Name:              strings.TrimSpace(input.Name),
		Quantity:          input.Quantity,
		Rate:              money.Round2(input.Rate),
		CommissionPercent: decimal.NewNullDecimal(commission),
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, apperror.NewPersistenceError("create product", err)
	}
	return product, nil
}

// GetProduct returns a product by id
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewPersistenceError("load product", err)
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// UpdateProduct applies the non-nil fields of input
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input *UpdateProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Quantity != nil {
		product.Quantity = *input.Quantity
	}
	if input.Rate != nil {
		product.Rate = money.Round2(*input.Rate)
	}
	if input.CommissionPercent != nil {
		product.CommissionPercent = decimal.NewNullDecimal(*input.CommissionPercent)
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, apperror.NewPersistenceError("update product", err)
	}
	return product, nil
}

// DeleteProduct removes a product. Existing bills keep their line snapshot.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return apperror.NewPersistenceError("delete product", err)
	}
	if !deleted {
		return apperror.NewNotFoundError("Product")
	}
	return nil
}

// ListProductsInput represents product listing filters
type ListProductsInput struct {
	Pagination *pagination.PaginationParams
	Search     string
	LowStock   int
	SortBy     string
	SortOrder  string
}

var productSortColumns = map[string]string{
	"name":       "name",
	"quantity":   "quantity",
	"rate":       "rate",
	"created_at": "created_at",
}

// ListProducts returns a page of products
func (s *ProductService) ListProducts(ctx context.Context, input *ListProductsInput) (*pagination.PaginatedResult[entity.Product], error) {
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}
	input.Pagination.Validate()

	sortBy, ok := productSortColumns[input.SortBy]
	if !ok {
		sortBy = "created_at"
	}

	products, total, err := s.productRepo.List(ctx, &repository.ProductFilterParams{
		Pagination: input.Pagination,
		Search:     strings.TrimSpace(input.Search),
		LowStock:   input.LowStock,
		SortBy:     sortBy,
		SortOrder:  input.SortOrder,
	})
	if err != nil {
		return nil, apperror.NewPersistenceError("list products", err)
	}

	page := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, page), nil
}

func validateProduct(p *entity.Product) error {
	var fieldErrors []apperror.FieldError
	if p.Name == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "is required"})
	}
	if p.Quantity < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "quantity", Message: "must not be negative"})
	}
	if p.Rate.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "rate", Message: "must not be negative"})
	}
	if !money.IsPercent(p.DefaultCommission()) {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "commission_percent", Message: money.PercentMessage})
	}
	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/floramayor/floramayor-backend/pkg/db"
	"github.com/floramayor/floramayor-backend/pkg/db/models"
	"github.com/floramayor/floramayor-backend/pkg/enums"
	pkgerrors "github.com/floramayor/floramayor-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type productsRepository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, supplierID *uuid.UUID) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	ReplaceTiers(ctx context.Context, productID uuid.UUID, tiers []models.PricingTier) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountOrderReferences(ctx context.Context, productID uuid.UUID) (int64, error)
}

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exposes catalog management for supplier-owned products.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, supplierID *uuid.UUID) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	SetPricingTiers(ctx context.Context, productID uuid.UUID, tiers []TierInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// TierInput is one volume discount threshold.
type TierInput struct {
	MinQty     int
	PercentOff decimal.Decimal
}

// CreateProductInput carries the fields required to list a product.
type CreateProductInput struct {
	SKU        string
	Name       string
	BasePrice  decimal.Decimal
	Stock      int
	SupplierID uuid.UUID
	Tiers      []TierInput
}

// UpdateProductInput holds optional replacements for mutable columns.
type UpdateProductInput struct {
	SKU       *string
	Name      *string
	BasePrice *decimal.Decimal
	Stock     *int
}

type service struct {
	repo  productsRepository
	users usersRepository
}

// NewService builds a product service backed by the provided repositories.
func NewService(repo productsRepository, users usersRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, users: users}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.BasePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must not be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}
	tiers, err := buildTiers(input.Tiers)
	if err != nil {
		return nil, err
	}

	supplier, err := s.users.FindByID(ctx, input.SupplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load supplier")
	}
	if supplier.Role != enums.UserRoleSupplier {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "products can only belong to suppliers")
	}

	product := &models.Product{
		SKU:          sku,
		Name:         strings.TrimSpace(input.Name),
		BasePrice:    input.BasePrice,
		Stock:        input.Stock,
		SupplierID:   supplier.ID,
		PricingTiers: tiers,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_products_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("sku %s is already in use", sku))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return created, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, supplierID *uuid.UUID) ([]models.Product, error) {
	out, err := s.repo.List(ctx, supplierID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return out, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.SKU != nil {
		sku := strings.TrimSpace(*input.SKU)
		if sku == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku must not be empty")
		}
		product.SKU = sku
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		product.Name = name
	}
	if input.BasePrice != nil {
		if input.BasePrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "base price must not be negative")
		}
		product.BasePrice = *input.BasePrice
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
		}
		product.Stock = *input.Stock
	}

	if err := s.repo.Update(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "idx_products_sku") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("sku %s is already in use", product.SKU))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	return product, nil
}

func (s *service) SetPricingTiers(ctx context.Context, productID uuid.UUID, inputs []TierInput) (*models.Product, error) {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	tiers, err := buildTiers(inputs)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceTiers(ctx, productID, tiers); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace pricing tiers")
	}
	return s.GetProduct(ctx, productID)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	refs, err := s.repo.CountOrderReferences(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count order references")
	}
	if refs > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "product is referenced by existing orders")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

var hundred = decimal.NewFromInt(100)

func buildTiers(inputs []TierInput) ([]models.PricingTier, error) {
	tiers := make([]models.PricingTier, 0, len(inputs))
	for _, in := range inputs {
		if in.MinQty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tier min_qty must be at least 1")
		}
		if in.PercentOff.IsNegative() || in.PercentOff.GreaterThan(hundred) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tier percent_off must be between 0 and 100")
		}
		tiers = append(tiers, models.PricingTier{MinQty: in.MinQty, PercentOff: in.PercentOff})
	}
	return tiers, nil
}

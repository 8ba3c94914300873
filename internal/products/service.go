package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davegutierrez/shoplite-backend/pkg/db"
	"github.com/davegutierrez/shoplite-backend/pkg/db/models"
	apperrors "github.com/davegutierrez/shoplite-backend/pkg/errors"
)

// Service defines catalog operations for products. Stock is intentionally
// absent from the write surface here; balances only move through the
// movements service.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// CreateProductInput carries the fields for a new product.
type CreateProductInput struct {
	SKU         string     `json:"sku" validate:"required,min=1,max=64"`
	Name        string     `json:"name" validate:"required,min=1,max=200"`
	Description *string    `json:"description,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	PriceCents  int        `json:"price_cents" validate:"gte=0"`
	CostCents   int        `json:"cost_cents" validate:"gte=0"`
	MinStock    int        `json:"min_stock" validate:"gte=0"`
}

// UpdateProductInput applies partial updates; nil fields are left untouched.
type UpdateProductInput struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	PriceCents  *int       `json:"price_cents,omitempty" validate:"omitempty,gte=0"`
	CostCents   *int       `json:"cost_cents,omitempty" validate:"omitempty,gte=0"`
	MinStock    *int       `json:"min_stock,omitempty" validate:"omitempty,gte=0"`
	IsActive    *bool      `json:"is_active,omitempty"`
}

type service struct {
	repo Repository
}

// NewService wires a product service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	sku := strings.TrimSpace(input.SKU)
	name := strings.TrimSpace(input.Name)
	if sku == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "product sku is required")
	}
	if name == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "product name is required")
	}
	if input.PriceCents < 0 || input.CostCents < 0 || input.MinStock < 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "price, cost and min stock must be non-negative")
	}

	product := &models.Product{
		SKU:         sku,
		Name:        name,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		PriceCents:  input.PriceCents,
		CostCents:   input.CostCents,
		MinStock:    input.MinStock,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		if db.IsUniqueViolation(err, "idx_products_sku") {
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, "sku already in use")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "creating product")
	}
	return product, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing products")
	}
	return items, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.New(apperrors.CodeValidation, "product name cannot be blank")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "price must be non-negative")
		}
		product.PriceCents = *input.PriceCents
	}
	if input.CostCents != nil {
		if *input.CostCents < 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "cost must be non-negative")
		}
		product.CostCents = *input.CostCents
	}
	if input.MinStock != nil {
		if *input.MinStock < 0 {
			return nil, apperrors.New(apperrors.CodeValidation, "min stock must be non-negative")
		}
		product.MinStock = *input.MinStock
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating product")
	}
	return product, nil
}

// Deactivate hides the product from sale without touching its ledger history.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	inactive := false
	return s.Update(ctx, id, UpdateProductInput{IsActive: &inactive})
}

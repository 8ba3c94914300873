package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davegutierrez/shoplite-backend/pkg/db/models"
)

// Repository manages persistence for products. StockCached is never written
// through Save; it only changes via ApplyStockDelta and SetStock so every
// balance mutation stays tied to the movement ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	ApplyStockDelta(ctx context.Context, id uuid.UUID, delta int) (int64, error)
	SetStock(ctx context.Context, id uuid.UUID, value int) error
}

// ListFilter narrows the product listing.
type ListFilter struct {
	CategoryID      *uuid.UUID
	Search          string
	IncludeInactive bool
	LowStockOnly    bool
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a product repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", pattern, pattern)
	}
	if filter.LowStockOnly {
		query = query.Where("stock_cached <= min_stock")
	}

	var items []models.Product
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Omit("stock_cached").
		Save(product).Error
}

// ApplyStockDelta atomically moves the cached balance by delta, guarded so the
// result can never go negative. Returns the affected row count: 0 means the
// product does not exist or the guard rejected the write, which the caller
// disambiguates with a read inside the same transaction.
func (r *repository) ApplyStockDelta(ctx context.Context, id uuid.UUID, delta int) (int64, error) {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE products
		 SET stock_cached = stock_cached + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND stock_cached + ? >= 0`,
		delta, id, delta,
	)
	return res.RowsAffected, res.Error
}

// SetStock rewrites the cached balance outright. Only consistency repair uses it.
func (r *repository) SetStock(ctx context.Context, id uuid.UUID, value int) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE products SET stock_cached = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		value, id,
	).Error
}

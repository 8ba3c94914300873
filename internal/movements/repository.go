package movements

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/davegutierrez/shoplite-backend/pkg/db/models"
	"github.com/davegutierrez/shoplite-backend/pkg/enums"
	"github.com/davegutierrez/shoplite-backend/pkg/pagination"
)

// Repository manages persistence for the append-only movement ledger. There
// is deliberately no update or delete: corrections happen as new rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, movement *models.InventoryMovement) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.InventoryMovement, error)
	List(ctx context.Context, filter ListFilter) ([]models.InventoryMovement, error)
	SumByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
	LedgerBalances(ctx context.Context) ([]LedgerBalance, error)
}

// ListFilter narrows the ledger listing; Cursor paginates by
// (created_at, id) descending. Start and End bound created_at as a half-open
// interval, either side optional.
type ListFilter struct {
	ProductID *uuid.UUID
	UserID    *uuid.UUID
	Type      *enums.MovementType
	Start     time.Time
	End       time.Time
	Cursor    *pagination.Cursor
	Limit     int
}

// LedgerBalance pairs a product with the sum of its ledger quantities.
type LedgerBalance struct {
	ProductID   uuid.UUID
	ProductName string
	StockCached int
	LedgerSum   int64
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a movement repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, movement *models.InventoryMovement) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(movement).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.InventoryMovement, error) {
	var movement models.InventoryMovement
	if err := r.db.WithContext(ctx).
		Preload("Product").Preload("User").
		First(&movement, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.InventoryMovement, error) {
	query := r.db.WithContext(ctx).
		Preload("Product").Preload("User").
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit))

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if !filter.Start.IsZero() {
		query = query.Where("created_at >= ?", filter.Start)
	}
	if !filter.End.IsZero() {
		query = query.Where("created_at < ?", filter.End)
	}
	if filter.Cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}

	var rows []models.InventoryMovement
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) SumByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var sum *int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryMovement{}).
		Where("product_id = ?", productID).
		Select("SUM(qty)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}

// LedgerBalances joins every product with the sum of its movements, including
// products with no movements at all.
func (r *repository) LedgerBalances(ctx context.Context) ([]LedgerBalance, error) {
	var balances []LedgerBalance
	if err := r.db.WithContext(ctx).Raw(
		`SELECT p.id AS product_id,
		        p.name AS product_name,
		        p.stock_cached AS stock_cached,
		        COALESCE(SUM(m.qty), 0) AS ledger_sum
		 FROM products p
		 LEFT JOIN inventory_movements m ON m.product_id = p.id
		 GROUP BY p.id, p.name, p.stock_cached`,
	).Scan(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailySalesRow is one day of outbound sales aggregated from the ledger.
// Units counts items leaving stock through offline sales net of
// cancellations; revenue is priced at each row's unit price snapshot.
type DailySalesRow struct {
	Day          time.Time `gorm:"column:day"`
	Units        int64     `gorm:"column:units"`
	RevenueCents int64     `gorm:"column:revenue_cents"`
}

// ProductTotalsRow aggregates sales per product over a range.
type ProductTotalsRow struct {
	ProductID    uuid.UUID `gorm:"column:product_id"`
	ProductName  string    `gorm:"column:product_name"`
	SKU          string    `gorm:"column:sku"`
	Units        int64     `gorm:"column:units"`
	RevenueCents int64     `gorm:"column:revenue_cents"`
}

// LowStockRow is a product whose cached balance sits at or below its
// configured minimum.
type LowStockRow struct {
	ProductID   uuid.UUID `gorm:"column:product_id"`
	ProductName string    `gorm:"column:product_name"`
	SKU         string    `gorm:"column:sku"`
	StockCached int       `gorm:"column:stock_cached"`
	MinStock    int       `gorm:"column:min_stock"`
}

// Repository runs read-only aggregation queries over the movement ledger.
type Repository interface {
	SalesByDay(ctx context.Context, start, end time.Time) ([]DailySalesRow, error)
	ProductTotals(ctx context.Context, start, end time.Time, limit int) ([]ProductTotalsRow, error)
	LowStock(ctx context.Context) ([]LowStockRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an analytics repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Each row is priced at its own unit price snapshot, so catalog price edits
// never rewrite history; the product's current price only backfills rows
// written without a snapshot. cancel_sale rows net out the sales they
// reverse, so a cancelled sale contributes zero units and zero revenue.
const revenueExpr = `SUM(-m.qty * COALESCE(m.unit_price_cents, p.price_cents))`

// dayBucket returns the day-truncation expression for the connected dialect;
// sqlite has no DATE_TRUNC.
func (r *repository) dayBucket() string {
	if r.db.Dialector.Name() == "sqlite" {
		return "DATE(m.created_at)"
	}
	return "DATE_TRUNC('day', m.created_at)"
}

const salesByDaySQL = `
SELECT %s AS day,
       SUM(-m.qty) AS units,
       %s AS revenue_cents
FROM inventory_movements m
JOIN products p ON p.id = m.product_id
WHERE m.type IN ('sale_offline', 'cancel_sale')
  AND m.created_at >= ? AND m.created_at < ?
GROUP BY day
ORDER BY day ASC`

func (r *repository) SalesByDay(ctx context.Context, start, end time.Time) ([]DailySalesRow, error) {
	var rows []DailySalesRow
	query := fmt.Sprintf(salesByDaySQL, r.dayBucket(), revenueExpr)
	if err := r.db.WithContext(ctx).Raw(query, start, end).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

const productTotalsSQL = `
SELECT p.id AS product_id,
       p.name AS product_name,
       p.sku AS sku,
       SUM(-m.qty) AS units,
       %s AS revenue_cents
FROM inventory_movements m
JOIN products p ON p.id = m.product_id
WHERE m.type IN ('sale_offline', 'cancel_sale')
  AND m.created_at >= ? AND m.created_at < ?
GROUP BY p.id, p.name, p.sku
HAVING SUM(-m.qty) > 0
ORDER BY units DESC, p.name ASC
LIMIT ?`

func (r *repository) ProductTotals(ctx context.Context, start, end time.Time, limit int) ([]ProductTotalsRow, error) {
	var rows []ProductTotalsRow
	query := fmt.Sprintf(productTotalsSQL, revenueExpr)
	if err := r.db.WithContext(ctx).Raw(query, start, end, limit).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

const lowStockSQL = `
SELECT p.id AS product_id,
       p.name AS product_name,
       p.sku AS sku,
       p.stock_cached AS stock_cached,
       p.min_stock AS min_stock
FROM products p
WHERE p.is_active = TRUE
  AND p.stock_cached <= p.min_stock
ORDER BY p.stock_cached - p.min_stock ASC, p.name ASC`

func (r *repository) LowStock(ctx context.Context) ([]LowStockRow, error) {
	var rows []LowStockRow
	if err := r.db.WithContext(ctx).Raw(lowStockSQL).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

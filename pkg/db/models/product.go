package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a sellable item. StockCached mirrors the sum of its movement
// quantities and is only mutated inside the same transaction as a movement
// insert; a CHECK constraint keeps it non-negative under concurrency.
type Product struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID  *uuid.UUID `gorm:"column:category_id;type:uuid;index"`
	SKU         string     `gorm:"column:sku;type:text;not null;uniqueIndex"`
	Name        string     `gorm:"column:name;type:text;not null"`
	Description *string    `gorm:"column:description"`
	PriceCents  int        `gorm:"column:price_cents;not null;default:0"`
	CostCents   int        `gorm:"column:cost_cents;not null;default:0"`
	StockCached int        `gorm:"column:stock_cached;not null;default:0"`
	MinStock    int        `gorm:"column:min_stock;not null;default:0"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true"`
	Category    *Category  `gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

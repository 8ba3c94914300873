package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/davegutierrez/shoplite-backend/pkg/enums"
)

// InventoryMovement is an immutable row in the stock ledger. Qty carries the
// sign derived from Type at insert time; rows are never updated or deleted.
// UnitPriceCents snapshots the price at write time so later reports do not
// shift when the catalog price changes. ReversesMovementID links a
// cancel_sale back to the sale it compensates, and its unique index is what
// makes double cancellation impossible.
type InventoryMovement struct {
	ID                 uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID          uuid.UUID          `gorm:"column:product_id;type:uuid;not null;index:idx_movements_product_created"`
	UserID             uuid.UUID          `gorm:"column:user_id;type:uuid;not null"`
	Type               enums.MovementType `gorm:"column:type;type:text;not null"`
	Qty                int                `gorm:"column:qty;not null"`
	UnitPriceCents     *int               `gorm:"column:unit_price_cents"`
	Note               *string            `gorm:"column:note"`
	Reason             *string            `gorm:"column:reason"`
	ReversesMovementID *uuid.UUID         `gorm:"column:reverses_movement_id;type:uuid;uniqueIndex"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime;index:idx_movements_product_created,sort:desc"`

	Product *Product `gorm:"foreignKey:ProductID"`
	User    *User    `gorm:"foreignKey:UserID"`
}

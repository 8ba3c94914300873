package movements

import (
	"time"

	"github.com/google/uuid"

	"github.com/davegutierrez/shoplite-backend/pkg/db/models"
	"github.com/davegutierrez/shoplite-backend/pkg/enums"
	"github.com/davegutierrez/shoplite-backend/pkg/pagination"
)

// Actor identifies who is performing an operation; it comes from the access
// token, never from the request body.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// CreateMovementInput records a regular ledger entry. Qty is the absolute
// quantity moved; the sign is derived from Type, not from the caller.
// UnitPriceCents overrides the price snapshot; when absent the product's
// current price is captured at write time.
type CreateMovementInput struct {
	ProductID      uuid.UUID `json:"product_id" validate:"required"`
	Type           string    `json:"type" validate:"required"`
	Qty            int       `json:"qty" validate:"required,gt=0"`
	UnitPriceCents *int      `json:"unit_price_cents,omitempty" validate:"omitempty,gte=0"`
	Note           *string   `json:"note,omitempty" validate:"omitempty,max=500"`
}

// AdjustmentInput records a manual correction. QtyDelta is signed and applied
// as-is; Reason is mandatory.
type AdjustmentInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	QtyDelta  int       `json:"qty_delta" validate:"required"`
	Reason    string    `json:"reason" validate:"required,min=1,max=500"`
}

// ListInput narrows and paginates the ledger listing. Start and End bound
// created_at as a half-open interval; zero values leave the side unbounded.
type ListInput struct {
	ProductID  *uuid.UUID
	UserID     *uuid.UUID
	Type       *string
	Start      time.Time
	End        time.Time
	Pagination pagination.Params
}

// MovementResponse is the API shape for a ledger row. The product and actor
// summaries are filled from the loaded associations when available.
type MovementResponse struct {
	ID                 uuid.UUID          `json:"id"`
	ProductID          uuid.UUID          `json:"product_id"`
	ProductName        string             `json:"product_name,omitempty"`
	ProductSKU         string             `json:"product_sku,omitempty"`
	UserID             uuid.UUID          `json:"user_id"`
	ActorName          string             `json:"actor_name,omitempty"`
	Type               enums.MovementType `json:"type"`
	Qty                int                `json:"qty"`
	UnitPriceCents     *int               `json:"unit_price_cents,omitempty"`
	Note               *string            `json:"note,omitempty"`
	Reason             *string            `json:"reason,omitempty"`
	ReversesMovementID *uuid.UUID         `json:"reverses_movement_id,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
}

// MovementPage is one page of ledger rows plus the cursor for the next page.
type MovementPage struct {
	Items      []MovementResponse `json:"items"`
	HasMore    bool               `json:"has_more"`
	NextCursor *string            `json:"next_cursor,omitempty"`
}

// CreateResult pairs the persisted movement with the product balance after
// the write committed.
type CreateResult struct {
	Movement   MovementResponse `json:"movement"`
	StockAfter int              `json:"stock_after"`
}

// ToResponse maps a persisted movement onto the API shape.
func ToResponse(m *models.InventoryMovement) MovementResponse {
	resp := MovementResponse{
		ID:                 m.ID,
		ProductID:          m.ProductID,
		UserID:             m.UserID,
		Type:               m.Type,
		Qty:                m.Qty,
		UnitPriceCents:     m.UnitPriceCents,
		Note:               m.Note,
		Reason:             m.Reason,
		ReversesMovementID: m.ReversesMovementID,
		CreatedAt:          m.CreatedAt,
	}
	if m.Product != nil {
		resp.ProductName = m.Product.Name
		resp.ProductSKU = m.Product.SKU
	}
	if m.User != nil {
		resp.ActorName = m.User.FullName
	}
	return resp
}

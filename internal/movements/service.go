package movements

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/davegutierrez/shoplite-backend/internal/audit"
	"github.com/davegutierrez/shoplite-backend/internal/products"
	"github.com/davegutierrez/shoplite-backend/pkg/db"
	"github.com/davegutierrez/shoplite-backend/pkg/db/models"
	"github.com/davegutierrez/shoplite-backend/pkg/enums"
	apperrors "github.com/davegutierrez/shoplite-backend/pkg/errors"
	"github.com/davegutierrez/shoplite-backend/pkg/logger"
	"github.com/davegutierrez/shoplite-backend/pkg/metrics"
	"github.com/davegutierrez/shoplite-backend/pkg/pagination"
)

// Service is the write and read surface of the stock ledger. Every stock
// change flows through here: the movement row and the cached balance update
// commit in one transaction, so the ledger and the cache cannot drift apart
// under normal operation.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateMovementInput) (*CreateResult, error)
	CancelSale(ctx context.Context, actor Actor, movementID uuid.UUID, note *string) (*CreateResult, error)
	CreateAdjustment(ctx context.Context, actor Actor, input AdjustmentInput) (*CreateResult, error)
	Get(ctx context.Context, id uuid.UUID) (*MovementResponse, error)
	List(ctx context.Context, input ListInput) (*MovementPage, error)
	VerifyConsistency(ctx context.Context, actor Actor, repair bool) (*VerifyReport, error)
	AllowedTypes(role enums.UserRole) []enums.MovementType
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	products products.Repository
	tx       txRunner
	policy   Policy
	audit    audit.Recorder
	metrics  *metrics.MovementMetrics
	logg     *logger.Logger
}

// NewService wires the movements service. The audit recorder and metrics may
// be nil-valued no-ops in tests.
func NewService(
	repo Repository,
	productRepo products.Repository,
	tx txRunner,
	recorder audit.Recorder,
	movementMetrics *metrics.MovementMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("movements repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		products: productRepo,
		tx:       tx,
		audit:    recorder,
		metrics:  movementMetrics,
		logg:     logg,
	}, nil
}

// AllowedTypes exposes the role policy for the API layer.
func (s *service) AllowedTypes(role enums.UserRole) []enums.MovementType {
	return s.policy.AllowedTypes(role)
}

// Create records a sale, return or loss. The permission check runs before any
// database access so a forbidden request costs nothing.
func (s *service) Create(ctx context.Context, actor Actor, input CreateMovementInput) (*CreateResult, error) {
	movementType, err := enums.ParseMovementType(strings.TrimSpace(input.Type))
	if err != nil {
		return nil, errInvalidMovementType(input.Type)
	}
	if !s.policy.Allows(actor.Role, movementType) {
		return nil, errPermissionDenied(actor.Role.String(), movementType.String())
	}
	if movementType == enums.MovementTypeCancelSale || movementType == enums.MovementTypeAdjustment {
		// These have dedicated entry points with extra requirements.
		return nil, errInvalidMovementType(input.Type)
	}
	if input.Qty <= 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "qty must be positive")
	}

	signedQty := input.Qty
	if movementType.Sign() == enums.SignOutbound {
		signedQty = -input.Qty
	}

	movement := &models.InventoryMovement{
		ProductID:      input.ProductID,
		UserID:         actor.UserID,
		Type:           movementType,
		Qty:            signedQty,
		UnitPriceCents: input.UnitPriceCents,
		Note:           trimmedOrNil(input.Note),
	}

	start := time.Now()
	result, err := s.write(ctx, movement)
	s.observe(movementType.String(), start, err)
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, enums.AuditActionMovementCreated, movement, result.StockAfter)
	return result, nil
}

// CancelSale compensates a prior offline sale with an equal inbound movement.
// The link column carries a unique index, so a second cancellation of the
// same sale fails in the database no matter how the requests race.
func (s *service) CancelSale(ctx context.Context, actor Actor, movementID uuid.UUID, note *string) (*CreateResult, error) {
	if !s.policy.Allows(actor.Role, enums.MovementTypeCancelSale) {
		return nil, errPermissionDenied(actor.Role.String(), enums.MovementTypeCancelSale.String())
	}

	var result *CreateResult
	start := time.Now()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		original, err := repo.GetByID(ctx, movementID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errMovementNotFound()
			}
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading movement")
		}
		if original.Type != enums.MovementTypeSaleOffline {
			return apperrors.New(apperrors.CodeStateConflict, "only offline sales can be cancelled")
		}

		// The compensation carries the sale's price snapshot, not the
		// product's current price.
		compensation := &models.InventoryMovement{
			ProductID:          original.ProductID,
			UserID:             actor.UserID,
			Type:               enums.MovementTypeCancelSale,
			Qty:                -original.Qty,
			UnitPriceCents:     original.UnitPriceCents,
			Note:               trimmedOrNil(note),
			ReversesMovementID: &original.ID,
		}

		res, err := s.writeInTx(ctx, tx, compensation)
		if err != nil {
			if db.IsUniqueViolation(err, "idx_movements_reverses") {
				return errAlreadyCancelled()
			}
			return err
		}
		result = res
		return nil
	})
	s.observe(enums.MovementTypeCancelSale.String(), start, err)
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, enums.AuditActionSaleCancelled, &models.InventoryMovement{
		ID:                 result.Movement.ID,
		ProductID:          result.Movement.ProductID,
		Type:               enums.MovementTypeCancelSale,
		Qty:                result.Movement.Qty,
		ReversesMovementID: result.Movement.ReversesMovementID,
	}, result.StockAfter)
	return result, nil
}

// CreateAdjustment records a signed manual correction. Unlike Create, the
// caller supplies the sign, and a reason is mandatory.
func (s *service) CreateAdjustment(ctx context.Context, actor Actor, input AdjustmentInput) (*CreateResult, error) {
	if !s.policy.Allows(actor.Role, enums.MovementTypeAdjustment) {
		return nil, errPermissionDenied(actor.Role.String(), enums.MovementTypeAdjustment.String())
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, errReasonRequired()
	}
	if input.QtyDelta == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "qty delta must be non-zero")
	}

	movement := &models.InventoryMovement{
		ProductID: input.ProductID,
		UserID:    actor.UserID,
		Type:      enums.MovementTypeAdjustment,
		Qty:       input.QtyDelta,
		Reason:    &reason,
	}

	start := time.Now()
	result, err := s.write(ctx, movement)
	s.observe(enums.MovementTypeAdjustment.String(), start, err)
	if err != nil {
		return nil, err
	}

	s.record(ctx, actor, enums.AuditActionStockAdjusted, movement, result.StockAfter)
	return result, nil
}

// Get loads one ledger row.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*MovementResponse, error) {
	movement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errMovementNotFound()
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading movement")
	}
	resp := ToResponse(movement)
	return &resp, nil
}

// List pages through the ledger newest-first.
func (s *service) List(ctx context.Context, input ListInput) (*MovementPage, error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, "invalid cursor")
	}
	if !input.Start.IsZero() && !input.End.IsZero() && !input.Start.Before(input.End) {
		return nil, apperrors.New(apperrors.CodeValidation, "start date must not be after end date")
	}

	filter := ListFilter{
		ProductID: input.ProductID,
		UserID:    input.UserID,
		Start:     input.Start,
		End:       input.End,
		Cursor:    cursor,
		Limit:     input.Pagination.Limit,
	}
	if input.Type != nil {
		movementType, err := enums.ParseMovementType(*input.Type)
		if err != nil {
			return nil, errInvalidMovementType(*input.Type)
		}
		filter.Type = &movementType
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing movements")
	}

	page, hasMore := pagination.TrimPage(rows, input.Pagination.Limit)
	items := make([]MovementResponse, 0, len(page))
	for i := range page {
		items = append(items, ToResponse(&page[i]))
	}

	out := &MovementPage{Items: items, HasMore: hasMore && len(page) > 0}
	if out.HasMore {
		last := page[len(page)-1]
		next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		out.NextCursor = &next
	}
	return out, nil
}

// write runs the transactional insert-plus-balance-update for a movement.
func (s *service) write(ctx context.Context, movement *models.InventoryMovement) (*CreateResult, error) {
	var result *CreateResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		res, err := s.writeInTx(ctx, tx, movement)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// writeInTx inserts the ledger row and applies the guarded balance update
// inside the caller's transaction. The row goes first so integrity checks on
// the ledger, the double-cancel unique index in particular, reject the write
// before any balance mutation.
func (s *service) writeInTx(ctx context.Context, tx *gorm.DB, movement *models.InventoryMovement) (*CreateResult, error) {
	productRepo := s.products.WithTx(tx)

	product, err := productRepo.GetByID(ctx, movement.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errProductNotFound()
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading product")
	}
	if !product.IsActive {
		return nil, errProductInactive()
	}
	if movement.UnitPriceCents == nil {
		snapshot := product.PriceCents
		movement.UnitPriceCents = &snapshot
	}

	if err := s.repo.WithTx(tx).Create(ctx, movement); err != nil {
		return nil, err
	}

	affected, err := productRepo.ApplyStockDelta(ctx, movement.ProductID, movement.Qty)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating stock balance")
	}
	if affected == 0 {
		// Existence was confirmed above, so the guard rejected the write.
		return nil, errInsufficientStock(product.StockCached, -movement.Qty)
	}

	movement.Product = product
	return &CreateResult{
		Movement:   ToResponse(movement),
		StockAfter: product.StockCached + movement.Qty,
	}, nil
}

func (s *service) observe(movementType string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = outcomeLabel(err)
	}
	s.metrics.IncMovement(movementType, outcome)
	if err == nil {
		s.metrics.ObserveDuration(movementType, time.Since(start))
	}
}

func outcomeLabel(err error) string {
	typed := apperrors.As(err)
	if typed == nil {
		return "error"
	}
	switch typed.Code() {
	case apperrors.CodeForbidden:
		return "forbidden"
	case apperrors.CodeNotFound:
		return "not_found"
	case apperrors.CodeStateConflict:
		return "rejected"
	case apperrors.CodeValidation:
		return "invalid"
	default:
		return "error"
	}
}

func (s *service) record(ctx context.Context, actor Actor, action enums.AuditAction, movement *models.InventoryMovement, stockAfter int) {
	if s.audit == nil {
		return
	}
	detail := map[string]any{
		"product_id":  movement.ProductID.String(),
		"type":        movement.Type.String(),
		"qty":         movement.Qty,
		"stock_after": stockAfter,
	}
	if movement.ReversesMovementID != nil {
		detail["reverses_movement_id"] = movement.ReversesMovementID.String()
	}
	if movement.Reason != nil {
		detail["reason"] = *movement.Reason
	}
	s.audit.Record(ctx, audit.Entry{
		ActorUserID: actor.UserID,
		Action:      action,
		EntityType:  "inventory_movement",
		EntityID:    movement.ID,
		Detail:      detail,
	})
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

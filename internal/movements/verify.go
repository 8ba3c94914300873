package movements

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/davegutierrez/shoplite-backend/internal/audit"
	"github.com/davegutierrez/shoplite-backend/pkg/enums"
	apperrors "github.com/davegutierrez/shoplite-backend/pkg/errors"
)

// Mismatch is one product whose cached balance disagrees with its ledger.
type Mismatch struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	StockCached int       `json:"stock_cached"`
	LedgerSum   int64     `json:"ledger_sum"`
	Repaired    bool      `json:"repaired"`
}

// VerifyReport summarizes a consistency run over all products.
type VerifyReport struct {
	Checked    int        `json:"checked"`
	Mismatches []Mismatch `json:"mismatches"`
	Repaired   int        `json:"repaired"`
}

// VerifyConsistency compares every product's cached balance against the sum
// of its ledger rows. With repair set, each cached balance is rewritten to the
// ledger sum; repair failures are collected so one bad product does not stop
// the sweep.
func (s *service) VerifyConsistency(ctx context.Context, actor Actor, repair bool) (*VerifyReport, error) {
	if actor.Role != enums.UserRoleOwner {
		return nil, apperrors.New(apperrors.CodeForbidden, "only owners may verify stock consistency")
	}

	balances, err := s.repo.LedgerBalances(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "reading ledger balances")
	}

	report := &VerifyReport{Checked: len(balances)}
	var repairErrs error

	for _, balance := range balances {
		if int64(balance.StockCached) == balance.LedgerSum {
			continue
		}

		mismatch := Mismatch{
			ProductID:   balance.ProductID,
			ProductName: balance.ProductName,
			StockCached: balance.StockCached,
			LedgerSum:   balance.LedgerSum,
		}

		if repair {
			if err := s.products.SetStock(ctx, balance.ProductID, int(balance.LedgerSum)); err != nil {
				repairErrs = multierr.Append(repairErrs,
					fmt.Errorf("repair product %s: %w", balance.ProductID, err))
			} else {
				mismatch.Repaired = true
				report.Repaired++
				s.metrics.IncRepair()
				s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
					"product_id":   balance.ProductID.String(),
					"stock_cached": balance.StockCached,
					"ledger_sum":   balance.LedgerSum,
				}), "stock cache repaired from ledger")
				s.recordRepair(ctx, actor, balance)
			}
		}

		report.Mismatches = append(report.Mismatches, mismatch)
	}

	s.metrics.SetDrift(len(report.Mismatches))

	if repairErrs != nil {
		return report, apperrors.Wrap(apperrors.CodeInternal, repairErrs, "repairing cached balances")
	}
	return report, nil
}

func (s *service) recordRepair(ctx context.Context, actor Actor, balance LedgerBalance) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, audit.Entry{
		ActorUserID: actor.UserID,
		Action:      enums.AuditActionStockRepaired,
		EntityType:  "product",
		EntityID:    balance.ProductID,
		Detail: map[string]any{
			"stock_cached": balance.StockCached,
			"ledger_sum":   balance.LedgerSum,
		},
	})
}

package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/davegutierrez/shoplite-backend/pkg/errors"
)

const (
	defaultRangeDays = 30
	maxRangeDays     = 366
	defaultTopLimit  = 10
	maxTopLimit      = 100
)

// DateRange bounds a report. Zero values fall back to the trailing
// thirty days ending today.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DailySales is one day in the sales report.
type DailySales struct {
	Date         string `json:"date"`
	Units        int64  `json:"units"`
	RevenueCents int64  `json:"revenue_cents"`
}

// SalesReport covers a date range day by day with range-wide totals.
type SalesReport struct {
	Start                string       `json:"start"`
	End                  string       `json:"end"`
	Days                 []DailySales `json:"days"`
	TotalUnits           int64        `json:"total_units"`
	TotalRevenueCents    int64        `json:"total_revenue_cents"`
	AvgDailyRevenueCents string       `json:"avg_daily_revenue_cents"`
	AvgUnitPriceCents    string       `json:"avg_unit_price_cents"`
}

// ProductTotal is a per-product rollup for the range.
type ProductTotal struct {
	ProductID         uuid.UUID `json:"product_id"`
	ProductName       string    `json:"product_name"`
	SKU               string    `json:"sku"`
	Units             int64     `json:"units"`
	RevenueCents      int64     `json:"revenue_cents"`
	AvgUnitPriceCents string    `json:"avg_unit_price_cents"`
}

// LowStockItem flags a product at or below its minimum stock level.
type LowStockItem struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	SKU         string    `json:"sku"`
	StockCached int       `json:"stock_cached"`
	MinStock    int       `json:"min_stock"`
	Deficit     int       `json:"deficit"`
}

// Service exposes read-only reports over the movement ledger. It consumes
// the ledger and the cached balances; it never writes either.
type Service interface {
	Sales(ctx context.Context, rng DateRange) (*SalesReport, error)
	TopProducts(ctx context.Context, rng DateRange, limit int) ([]ProductTotal, error)
	LowStock(ctx context.Context) ([]LowStockItem, error)
}

type service struct {
	repo Repository
}

// NewService builds the analytics service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	return &service{repo: repo}, nil
}

// normalizeRange applies defaults and validates ordering and span. The end
// bound is exclusive and extends to the start of the following day so that
// the end date includes its own movements.
func normalizeRange(rng DateRange) (time.Time, time.Time, error) {
	end := rng.End
	if end.IsZero() {
		end = time.Now()
	}
	start := rng.Start
	if start.IsZero() {
		start = end.AddDate(0, 0, -defaultRangeDays)
	}

	start = startOfDay(start)
	end = startOfDay(end).AddDate(0, 0, 1)

	if !start.Before(end) {
		return time.Time{}, time.Time{}, apperrors.New(apperrors.CodeValidation, "start must not be after end")
	}
	if end.Sub(start) > maxRangeDays*24*time.Hour {
		return time.Time{}, time.Time{}, apperrors.New(apperrors.CodeValidation, "date range too wide").
			WithDetails(map[string]int{"max_days": maxRangeDays})
	}
	return start, end, nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (s *service) Sales(ctx context.Context, rng DateRange) (*SalesReport, error) {
	start, end, err := normalizeRange(rng)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.SalesByDay(ctx, start, end)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "aggregating sales")
	}

	report := &SalesReport{
		Start: start.Format("2006-01-02"),
		End:   end.AddDate(0, 0, -1).Format("2006-01-02"),
		Days:  make([]DailySales, 0, len(rows)),
	}
	for _, row := range rows {
		report.Days = append(report.Days, DailySales{
			Date:         row.Day.Format("2006-01-02"),
			Units:        row.Units,
			RevenueCents: row.RevenueCents,
		})
		report.TotalUnits += row.Units
		report.TotalRevenueCents += row.RevenueCents
	}

	days := decimal.NewFromInt(int64(end.Sub(start) / (24 * time.Hour)))
	revenue := decimal.NewFromInt(report.TotalRevenueCents)
	report.AvgDailyRevenueCents = revenue.Div(days).Round(2).String()
	if report.TotalUnits > 0 {
		report.AvgUnitPriceCents = revenue.Div(decimal.NewFromInt(report.TotalUnits)).Round(2).String()
	} else {
		report.AvgUnitPriceCents = "0"
	}
	return report, nil
}

func (s *service) TopProducts(ctx context.Context, rng DateRange, limit int) ([]ProductTotal, error) {
	start, end, err := normalizeRange(rng)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}

	rows, err := s.repo.ProductTotals(ctx, start, end, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "aggregating product totals")
	}

	totals := make([]ProductTotal, 0, len(rows))
	for _, row := range rows {
		avg := "0"
		if row.Units > 0 {
			avg = decimal.NewFromInt(row.RevenueCents).
				Div(decimal.NewFromInt(row.Units)).
				Round(2).String()
		}
		totals = append(totals, ProductTotal{
			ProductID:         row.ProductID,
			ProductName:       row.ProductName,
			SKU:               row.SKU,
			Units:             row.Units,
			RevenueCents:      row.RevenueCents,
			AvgUnitPriceCents: avg,
		})
	}
	return totals, nil
}

func (s *service) LowStock(ctx context.Context) ([]LowStockItem, error) {
	rows, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing low stock products")
	}

	items := make([]LowStockItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, LowStockItem{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			SKU:         row.SKU,
			StockCached: row.StockCached,
			MinStock:    row.MinStock,
			Deficit:     row.MinStock - row.StockCached,
		})
	}
	return items, nil
}

package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/davegutierrez/shoplite-backend/pkg/errors"
)

type fakeRepository struct {
	salesRows    []DailySalesRow
	productRows  []ProductTotalsRow
	lowStockRows []LowStockRow

	salesStart time.Time
	salesEnd   time.Time
	topLimit   int
}

func (f *fakeRepository) SalesByDay(ctx context.Context, start, end time.Time) ([]DailySalesRow, error) {
	f.salesStart, f.salesEnd = start, end
	return f.salesRows, nil
}

func (f *fakeRepository) ProductTotals(ctx context.Context, start, end time.Time, limit int) ([]ProductTotalsRow, error) {
	f.topLimit = limit
	return f.productRows, nil
}

func (f *fakeRepository) LowStock(ctx context.Context) ([]LowStockRow, error) {
	return f.lowStockRows, nil
}

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSalesReportTotalsAndAverages(t *testing.T) {
	repo := &fakeRepository{
		salesRows: []DailySalesRow{
			{Day: day("2026-08-01"), Units: 10, RevenueCents: 15000},
			{Day: day("2026-08-02"), Units: 5, RevenueCents: 7000},
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	report, err := svc.Sales(context.Background(), DateRange{
		Start: day("2026-08-01"),
		End:   day("2026-08-04"),
	})
	if err != nil {
		t.Fatalf("Sales: %v", err)
	}

	if report.Start != "2026-08-01" || report.End != "2026-08-04" {
		t.Errorf("range = %s..%s, want 2026-08-01..2026-08-04", report.Start, report.End)
	}
	if report.TotalUnits != 15 || report.TotalRevenueCents != 22000 {
		t.Errorf("totals = %d units / %d cents, want 15 / 22000", report.TotalUnits, report.TotalRevenueCents)
	}
	// Four calendar days in range: 22000 / 4 = 5500.
	if report.AvgDailyRevenueCents != "5500" {
		t.Errorf("avg daily revenue = %s, want 5500", report.AvgDailyRevenueCents)
	}
	// 22000 / 15 units rounds to 1466.67.
	if report.AvgUnitPriceCents != "1466.67" {
		t.Errorf("avg unit price = %s, want 1466.67", report.AvgUnitPriceCents)
	}
	if len(report.Days) != 2 || report.Days[0].Date != "2026-08-01" {
		t.Errorf("days = %+v", report.Days)
	}

	// End bound is exclusive and one day past the requested end date.
	if !repo.salesEnd.Equal(day("2026-08-05")) {
		t.Errorf("query end = %v, want 2026-08-05", repo.salesEnd)
	}
}

func TestSalesReportEmptyRange(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	report, err := svc.Sales(context.Background(), DateRange{
		Start: day("2026-08-01"),
		End:   day("2026-08-01"),
	})
	if err != nil {
		t.Fatalf("Sales: %v", err)
	}
	if report.TotalUnits != 0 || report.AvgUnitPriceCents != "0" || report.AvgDailyRevenueCents != "0" {
		t.Errorf("empty report = %+v", report)
	}
}

func TestSalesRangeValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Sales(context.Background(), DateRange{
		Start: day("2026-08-10"),
		End:   day("2026-08-01"),
	})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("inverted range error = %v, want validation", err)
	}

	_, err = svc.Sales(context.Background(), DateRange{
		Start: day("2020-01-01"),
		End:   day("2026-08-01"),
	})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("oversized range error = %v, want validation", err)
	}
}

func TestTopProductsDerivesUnitPrice(t *testing.T) {
	repo := &fakeRepository{
		productRows: []ProductTotalsRow{
			{ProductID: uuid.New(), ProductName: "Espresso Beans", SKU: "BEAN-1", Units: 3, RevenueCents: 1000},
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	totals, err := svc.TopProducts(context.Background(), DateRange{}, 0)
	if err != nil {
		t.Fatalf("TopProducts: %v", err)
	}
	if repo.topLimit != defaultTopLimit {
		t.Errorf("limit = %d, want default %d", repo.topLimit, defaultTopLimit)
	}
	if len(totals) != 1 {
		t.Fatalf("got %d totals, want 1", len(totals))
	}
	if totals[0].AvgUnitPriceCents != "333.33" {
		t.Errorf("avg unit price = %s, want 333.33", totals[0].AvgUnitPriceCents)
	}

	if _, err := svc.TopProducts(context.Background(), DateRange{}, 10_000); err != nil {
		t.Fatalf("TopProducts with oversized limit: %v", err)
	}
	if repo.topLimit != maxTopLimit {
		t.Errorf("limit = %d, want clamped to %d", repo.topLimit, maxTopLimit)
	}
}

func TestLowStockComputesDeficit(t *testing.T) {
	repo := &fakeRepository{
		lowStockRows: []LowStockRow{
			{ProductID: uuid.New(), ProductName: "Filters", SKU: "FLT-1", StockCached: 1, MinStock: 5},
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	items, err := svc.LowStock(context.Background())
	if err != nil {
		t.Fatalf("LowStock: %v", err)
	}
	if len(items) != 1 || items[0].Deficit != 4 {
		t.Errorf("items = %+v, want one item with deficit 4", items)
	}
}

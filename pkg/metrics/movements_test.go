package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMovementMetricsExports(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMovementMetrics(reg)

	metrics.IncMovement("sale_offline", "ok")
	metrics.IncMovement("sale_offline", "insufficient_stock")
	metrics.ObserveDuration("sale_offline", 40*time.Millisecond)
	metrics.IncRepair()
	metrics.SetDrift(3)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "inventory_movements_total", "outcome", "ok"); err != nil {
		t.Fatalf("fetch ok counter: %v", err)
	} else if got != 1 {
		t.Fatalf("expected ok=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "inventory_movements_total", "outcome", "insufficient_stock"); err != nil {
		t.Fatalf("fetch rejected counter: %v", err)
	} else if got != 1 {
		t.Fatalf("expected insufficient_stock=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "inventory_movement_duration_seconds", "type", "sale_offline"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	repairs := findMetricFamily(mfs, "stock_repairs_total")
	if repairs == nil || repairs.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("expected stock_repairs_total=1, got %v", repairs)
	}

	drift := findMetricFamily(mfs, "stock_drift_products")
	if drift == nil || drift.GetMetric()[0].GetGauge().GetValue() != 3 {
		t.Fatalf("expected stock_drift_products=3, got %v", drift)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	metrics := NewMovementMetrics(nil)
	metrics.IncMovement("return", "ok")
	metrics.ObserveDuration("return", time.Millisecond)
	metrics.IncRepair()
	metrics.SetDrift(1)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

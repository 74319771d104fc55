package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestDomainMetricsCountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewDomainMetrics(reg)
	metrics.IncHistory("Register", 2)
	metrics.IncHistory("Unregister", 1)
	metrics.IncHistory("Register", 0)
	metrics.IncRegistration("approved")
	metrics.IncLogin("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "site_equipment_history_events_total", "action", "Register"); err != nil {
		t.Fatalf("fetch register: %v", err)
	} else if got != 2 {
		t.Fatalf("expected register=2, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "site_equipment_history_events_total", "action", "Unregister"); err != nil {
		t.Fatalf("fetch unregister: %v", err)
	} else if got != 1 {
		t.Fatalf("expected unregister=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "registration_requests_total", "outcome", "approved"); err != nil {
		t.Fatalf("fetch registration: %v", err)
	} else if got != 1 {
		t.Fatalf("expected approved=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "login_attempts_total", "outcome", "unknown"); err != nil {
		t.Fatalf("fetch login: %v", err)
	} else if got != 1 {
		t.Fatalf("expected unknown=1, got %f", got)
	}
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewHTTPMetrics(reg)
	metrics.Observe("GET", "/api/v1/sites/{id}", 200, 250*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "http_requests_total", "status", "200"); err != nil {
		t.Fatalf("fetch requests: %v", err)
	} else if got != 1 {
		t.Fatalf("expected requests=1, got %f", got)
	}
	if got, err := fetchHistogramSum(mfs, "http_request_duration_seconds", "route", "/api/v1/sites/{id}"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var d *DomainMetrics
	d.IncHistory("Register", 1)
	d.IncLogin("success")
	NewDomainMetrics(nil).IncRegistration("denied")

	var h *HTTPMetrics
	h.Observe("GET", "/", 200, time.Millisecond)
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

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "")

	if m.CallsTotal == nil {
		t.Error("CallsTotal not initialized")
	}
	if m.CallDuration == nil {
		t.Error("CallDuration not initialized")
	}
	if m.DispatchesTotal == nil {
		t.Error("DispatchesTotal not initialized")
	}

	m.RecordCall("demo.Account.Owner", nil, time.Millisecond)
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	if findFamily(families, "introgate_calls_total") == nil {
		t.Error("default namespace not applied to calls_total")
	}
}

func TestRecordCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "test")

	m.RecordCall("demo.Account.Deposit", nil, 2*time.Millisecond)
	m.RecordCall("demo.Account.Deposit", errors.New("locked"), time.Millisecond)
	m.RecordCall("demo.Account.Deposit", nil, time.Millisecond)

	if got := testutil.ToFloat64(m.CallsTotal.WithLabelValues("demo.Account.Deposit", "ok")); got != 2 {
		t.Errorf("calls ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.CallsTotal.WithLabelValues("demo.Account.Deposit", "error")); got != 1 {
		t.Errorf("calls error = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	hist := findFamily(families, "test_call_duration_seconds")
	if hist == nil {
		t.Fatal("call_duration_seconds histogram not found in gathered metrics")
	}
	if got := hist.GetMetric()[0].GetHistogram().GetSampleCount(); got != 3 {
		t.Errorf("histogram sample count = %d, want 3", got)
	}
}

func TestRecordDispatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "test")

	m.RecordDispatch("introduced", "demo.Lockable.Lock", nil)
	m.RecordDispatch("introduced", "demo.Lockable.Unlock", nil)
	m.RecordDispatch("forwarded", "demo.Account.Deposit", errors.New("locked"))

	if got := testutil.ToFloat64(m.DispatchesTotal.WithLabelValues("introduced", "ok")); got != 2 {
		t.Errorf("introduced ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.DispatchesTotal.WithLabelValues("forwarded", "error")); got != 1 {
		t.Errorf("forwarded error = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.DispatchesTotal); got != 2 {
		t.Errorf("dispatch series = %d, want 2", got)
	}
}

func findFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusObserverRecordsCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := NewPrometheusObserver("test", reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	o.RecordCall("avatar", "create_persona", 10*time.Millisecond, nil)
	o.RecordCall("avatar", "create_persona", 10*time.Millisecond, errors.New("boom"))
	o.RecordFallback("feedback")
	o.RecordInterview("completed")

	if got := testutil.ToFloat64(o.callErrors.WithLabelValues("avatar", "create_persona")); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}

	if got := testutil.ToFloat64(o.fallbacks.WithLabelValues("feedback")); got != 1 {
		t.Fatalf("expected 1 fallback, got %v", got)
	}

	if got := testutil.ToFloat64(o.interviews.WithLabelValues("completed")); got != 1 {
		t.Fatalf("expected 1 interview, got %v", got)
	}
}

func TestNilObserverIsSafe(t *testing.T) {
	var o *PrometheusObserver
	o.RecordCall("avatar", "delete_persona", time.Second, nil)
	o.RecordFallback("questions")

	OrNop(nil).RecordInterview("error")
}

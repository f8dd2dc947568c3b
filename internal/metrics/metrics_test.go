package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRoundTrip(t *testing.T) {
	before := testutil.ToFloat64(RoundTripsTotal.WithLabelValues("metrics_test", "page", "error"))
	ObserveRoundTrip("metrics_test", "page", time.Now(), errors.New("boom"))
	ObserveRoundTrip("metrics_test", "page", time.Now(), nil)

	if got := testutil.ToFloat64(RoundTripsTotal.WithLabelValues("metrics_test", "page", "error")); got != before+1 {
		t.Fatalf("error counter = %v, want %v", got, before+1)
	}
	if got := testutil.ToFloat64(RoundTripsTotal.WithLabelValues("metrics_test", "page", "ok")); got < 1 {
		t.Fatalf("ok counter = %v, want >= 1", got)
	}
}

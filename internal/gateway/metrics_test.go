package gateway

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetrics_SecondInstanceAdoptsSeries(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()

	first := newHTTPMetrics()
	if err := first.register(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	second := newHTTPMetrics()
	if err := second.register(reg); err != nil {
		t.Fatalf("second register: %v", err)
	}
	if second.requests != first.requests || second.duration != first.duration {
		t.Fatal("second instance should reuse the registered vectors")
	}

	second.requests.WithLabelValues(http.MethodGet, "/health", "200").Inc()
	if got := testutil.ToFloat64(first.requests.WithLabelValues(http.MethodGet, "/health", "200")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(first.requests); n != 1 {
		t.Errorf("series = %d, want 1", n)
	}
}

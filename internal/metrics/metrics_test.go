package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordEnrichment(t *testing.T) {
	before := testutil.ToFloat64(EnrichmentRequests.WithLabelValues("omdb", "error"))
	RecordEnrichment("omdb", "error")
	RecordEnrichment("omdb", "ok")
	if got := testutil.ToFloat64(EnrichmentRequests.WithLabelValues("omdb", "error")); got != before+1 {
		t.Fatalf("error counter = %v, want %v", got, before+1)
	}
}

func TestObserveHTTP(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/similar", "200"))
	ObserveHTTP("GET", "/similar", "200", 12*time.Millisecond)
	if got := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/similar", "200")); got != before+1 {
		t.Fatalf("request counter = %v", got)
	}
}

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequests.WithLabelValues("POST", "/api/v1/filter", "200"))
	RecordAPIRequest("POST", "/api/v1/filter", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequests.WithLabelValues("POST", "/api/v1/filter", "200"))
	if after-before != 1 {
		t.Errorf("request counter increased by %v; want 1", after-before)
	}
}

func TestRecordEngine(t *testing.T) {
	before := testutil.ToFloat64(EnginePoints.WithLabelValues("cluster"))
	RecordEngine("cluster", 42)
	if got := testutil.ToFloat64(EnginePoints.WithLabelValues("cluster")) - before; got != 42 {
		t.Errorf("engine counter increased by %v; want 42", got)
	}
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInitIsIdempotent(t *testing.T) {
	Init()
	first := syncRunsTotal
	Init()

	if syncRunsTotal == nil || syncTitlesTotal == nil || catalogRows == nil ||
		httpRequestsTotal == nil || httpRequestDurationSeconds == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
	if first != syncRunsTotal {
		t.Fatal("Init() re-registered collectors")
	}
}

func TestSyncObservers(t *testing.T) {
	before := testutil.ToFloat64(syncRunsCounter("ok"))
	ObserveSyncRun("ok")
	if got := testutil.ToFloat64(syncRunsCounter("ok")); got != before+1 {
		t.Errorf("expected sync run counter to grow by 1, got %f -> %f", before, got)
	}

	before = testutil.ToFloat64(titlesCounter(OutcomeUnresolved))
	ObserveTitle(OutcomeUnresolved)
	ObserveTitle(OutcomeUnresolved)
	if got := testutil.ToFloat64(titlesCounter(OutcomeUnresolved)); got != before+2 {
		t.Errorf("expected unresolved counter to grow by 2, got %f -> %f", before, got)
	}

	SetCatalogRows(42)
	if got := testutil.ToFloat64(catalogRows); got != 42 {
		t.Errorf("expected catalog rows gauge 42, got %f", got)
	}
}

func syncRunsCounter(status string) prometheus.Counter {
	Init()
	return syncRunsTotal.WithLabelValues(status)
}

func titlesCounter(outcome string) prometheus.Counter {
	Init()
	return syncTitlesTotal.WithLabelValues(outcome)
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordLookup(t *testing.T) {
	hits := testutil.ToFloat64(LookupsTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(LookupsTotal.WithLabelValues("miss"))

	RecordLookup(true)
	RecordLookup(false)
	RecordLookup(false)

	if got := testutil.ToFloat64(LookupsTotal.WithLabelValues("hit")) - hits; got != 1 {
		t.Errorf("hits increased by %v, want 1", got)
	}
	if got := testutil.ToFloat64(LookupsTotal.WithLabelValues("miss")) - misses; got != 2 {
		t.Errorf("misses increased by %v, want 2", got)
	}
}

func TestRecordSkippedAndFailures(t *testing.T) {
	before := testutil.ToFloat64(ActionsSkippedTotal.WithLabelValues("encode"))
	RecordSkipped("encode")
	if got := testutil.ToFloat64(ActionsSkippedTotal.WithLabelValues("encode")) - before; got != 1 {
		t.Errorf("skipped increased by %v, want 1", got)
	}

	before = testutil.ToFloat64(PersistenceFailuresTotal.WithLabelValues("append"))
	RecordPersistenceFailure("append")
	if got := testutil.ToFloat64(PersistenceFailuresTotal.WithLabelValues("append")) - before; got != 1 {
		t.Errorf("failures increased by %v, want 1", got)
	}
}

func TestRecordStoreDuration(t *testing.T) {
	RecordStoreDuration("load", 0.002)

	if n := testutil.CollectAndCount(StoreDuration, "encryptor_store_duration_seconds"); n == 0 {
		t.Error("expected a store duration series")
	}
}

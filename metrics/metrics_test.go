package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSync(t *testing.T) {
	SyncCycles.Reset()
	SyncDuration.Reset()

	RecordSync("physical", ResultRendered, 20*time.Millisecond)
	RecordSync("physical", ResultSkipped, time.Millisecond)
	RecordSync("physical", ResultSkipped, time.Millisecond)

	if got := testutil.ToFloat64(SyncCycles.WithLabelValues("physical", ResultSkipped)); got != 2 {
		t.Errorf("skipped = %v, want 2", got)
	}
	if got := testutil.ToFloat64(SyncCycles.WithLabelValues("physical", ResultRendered)); got != 1 {
		t.Errorf("rendered = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(SyncDuration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestRecordAction(t *testing.T) {
	Actions.Reset()

	RecordAction("linkup", nil)
	RecordAction("linkup", errors.New("boom"))
	RecordAction("linkup", nil)

	if got := testutil.ToFloat64(Actions.WithLabelValues("linkup", "success")); got != 2 {
		t.Errorf("success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(Actions.WithLabelValues("linkup", "failure")); got != 1 {
		t.Errorf("failure = %v, want 1", got)
	}
}

func TestSetPending(t *testing.T) {
	SetPending(3)
	if got := testutil.ToFloat64(PendingActions); got != 3 {
		t.Errorf("pending = %v, want 3", got)
	}
	SetPending(0)
	if got := testutil.ToFloat64(PendingActions); got != 0 {
		t.Errorf("pending = %v, want 0", got)
	}
}

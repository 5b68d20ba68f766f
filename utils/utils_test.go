package utils

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// --- MergeSets ---

func TestMergeSets(t *testing.T) {
	got := MergeSets(SetOf("a", "b"), SetOf("b", "c"), nil)
	if len(got) != 3 {
		t.Fatalf("expected 3 keys, got %v", got)
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, ok := got[k]; !ok {
			t.Errorf("missing %q", k)
		}
	}
}

// --- SortedKeys ---

func TestSortedKeys(t *testing.T) {
	got := SortedKeys(map[string]int{"b": 1, "a": 2, "c": 3})
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("unexpected order: %v", got)
	}
}

// --- WaitFor ---

func TestWaitFor_DoneAfterPolls(t *testing.T) {
	calls := 0
	err := WaitFor(context.Background(), time.Second, time.Millisecond, func() (bool, error) {
		calls++
		return calls == 3, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestWaitFor_Timeout(t *testing.T) {
	err := WaitFor(context.Background(), 20*time.Millisecond, 5*time.Millisecond, func() (bool, error) {
		return false, nil
	})
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestWaitFor_CheckError(t *testing.T) {
	boom := errors.New("boom")
	err := WaitFor(context.Background(), time.Second, time.Millisecond, func() (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestWaitFor_NoTimeout_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WaitFor(ctx, 0, time.Millisecond, func() (bool, error) { return false, nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// --- UUID ---

func TestUUIDv5_Deterministic(t *testing.T) {
	if UUIDv5("http://localhost:5000/") != UUIDv5("http://localhost:5000/") {
		t.Error("expected deterministic UUID")
	}
	if NewID() == NewID() {
		t.Error("expected distinct random ids")
	}
}

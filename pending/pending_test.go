package pending

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecteru2/ovxview/types"
)

func link(a, b string) types.Link {
	return types.Link{Src: types.Endpoint{DPID: a}, Dst: types.Endpoint{DPID: b}}
}

// --- Registration ---

func TestRegisterIfAbsent_Idempotent(t *testing.T) {
	tr := NewTracker()
	assert.True(t, tr.RegisterIfAbsent(types.ScopePhysical, LinkKey("x", "y"), LinkDown("x", "y", "physical_link-1")))
	assert.False(t, tr.RegisterIfAbsent(types.ScopePhysical, LinkKey("x", "y"), LinkDown("x", "y", "physical_link-1")))
	assert.True(t, tr.RegisterIfAbsent("1", LinkKey("x", "y"), LinkDown("x", "y", "physical_link-1")))
	assert.Equal(t, 2, tr.Count())
}

func TestRegisterIfAbsent_Concurrent(t *testing.T) {
	tr := NewTracker()
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tr.RegisterIfAbsent("3", StopPingKey, PingStop()) {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, won)
	assert.Equal(t, []string{StopPingKey}, tr.Pending("3"))
}

// --- Link checkers ---

func TestLinkDown_SelfClears(t *testing.T) {
	tr := NewTracker()
	tr.RegisterIfAbsent(types.ScopePhysical, LinkKey("X", "Y"), LinkDown("X", "Y", "physical_link-7"))

	ids := tr.Reconcile(types.ScopePhysical, Subject{Links: []types.Link{link("Y", "X")}})
	assert.Equal(t, []string{"physical_link-7"}, ids)

	ids = tr.Reconcile(types.ScopePhysical, Subject{Links: []types.Link{link("X", "Z")}})
	assert.Empty(t, ids)
	assert.Empty(t, tr.Pending(types.ScopePhysical))

	ids = tr.Reconcile(types.ScopePhysical, Subject{Links: []types.Link{link("X", "Y")}})
	assert.Empty(t, ids, "resolved action must not come back")
}

func TestLinkUp_PendingUntilPresent(t *testing.T) {
	tr := NewTracker()
	tr.RegisterIfAbsent(types.ScopePhysical, LinkKey("X", "Y"), LinkUp("X", "Y", "physical_link-7"))
	assert.Equal(t, []string{"physical_link-7"}, tr.Reconcile(types.ScopePhysical, Subject{}))
	assert.Empty(t, tr.Reconcile(types.ScopePhysical, Subject{Links: []types.Link{link("X", "Y")}}))
	assert.Zero(t, tr.Count())
}

// --- Ping checkers ---

func TestPingStart_PlaceholderThenConfirmed(t *testing.T) {
	tr := NewTracker()
	key := types.FlowPathKey("AA:01", "AA:02")
	tr.RegisterIfAbsent("1", key, PingStart("AA:01", "AA:02", 0))

	fp := types.FlowPaths{}
	ids := tr.Reconcile("1", Subject{FlowPaths: fp})
	assert.Equal(t, []string{"virtual_aa_01-aa_02"}, ids)
	require.Contains(t, fp, key)
	assert.Empty(t, fp[key])

	ids = tr.Reconcile("1", Subject{FlowPaths: types.FlowPaths{key: {"s1"}}})
	assert.Empty(t, ids)
	assert.Zero(t, tr.Count())
}

func TestPingStart_ForceExpires(t *testing.T) {
	tr := NewTracker()
	tr.RegisterIfAbsent("1", "k", PingStart("a", "b", 3))
	for i := range 3 {
		ids := tr.Reconcile("1", Subject{FlowPaths: types.FlowPaths{}})
		assert.Len(t, ids, 1, "cycle %d", i)
	}
	assert.Empty(t, tr.Reconcile("1", Subject{FlowPaths: types.FlowPaths{}}))
	assert.Zero(t, tr.Count())
}

func TestPingStop_MarksAllUntilEmpty(t *testing.T) {
	tr := NewTracker()
	tr.RegisterIfAbsent("2", StopPingKey, PingStop())
	ids := tr.Reconcile("2", Subject{FlowPaths: types.FlowPaths{"b:1-b:2": nil, "a:1-a:2": nil}})
	assert.Equal(t, []string{"virtual_a_1-a_2", "virtual_b_1-b_2"}, ids)
	assert.Empty(t, tr.Reconcile("2", Subject{FlowPaths: types.FlowPaths{}}))
	assert.Zero(t, tr.Count())
}

// --- Scopes ---

func TestDrop(t *testing.T) {
	tr := NewTracker()
	tr.RegisterIfAbsent("1", StopPingKey, PingStop())
	tr.RegisterIfAbsent(types.ScopePhysical, "a-b", LinkUp("a", "b", "x"))
	tr.Drop("1")
	assert.Empty(t, tr.Pending("1"))
	assert.Equal(t, 1, tr.Count())
}

func TestDropIf(t *testing.T) {
	tr := NewTracker()
	tr.RegisterIfAbsent("1", types.FlowPathKey("a:1", "a:2"), PingStart("a:1", "a:2", 0))
	tr.RegisterIfAbsent("1", types.FlowPathKey("b:1", "b:2"), PingStart("b:1", "b:2", 0))
	tr.RegisterIfAbsent("1", StopPingKey, PingStop())

	n := tr.DropIf("1", func(k string) bool { return k != StopPingKey })
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{StopPingKey}, tr.Pending("1"))

	assert.Equal(t, 1, tr.DropIf("1", func(string) bool { return true }))
	assert.Zero(t, tr.Count())
	assert.Zero(t, tr.DropIf("missing", func(string) bool { return true }))
}

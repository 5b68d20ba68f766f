// Package pending tracks operator actions the controller has not confirmed
// yet. Each action re-checks itself against every new snapshot of its scope
// and marks the affected elements pending until the snapshot shows the
// expected end state.
package pending

import (
	"sort"
	"sync"

	"github.com/projecteru2/ovxview/types"
)

// DefaultPingCycles is how many reconciliations a ping start stays pending
// when the controller never reports its flow path.
const DefaultPingCycles = 9

// Subject is what a checker inspects. FlowPaths may be modified: a ping
// start places an empty path so the pending flow is drawn.
type Subject struct {
	Links     []types.Link
	FlowPaths types.FlowPaths
}

func (s Subject) hasLink(a, b string) bool {
	for _, l := range s.Links {
		if l.Joins(a, b) {
			return true
		}
	}
	return false
}

// Checker inspects a subject and returns the element ids still pending.
// done reports that the action is resolved and should be dropped.
type Checker interface {
	Check(Subject) (ids []string, done bool)
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(Subject) ([]string, bool)

// Check implements Checker.
func (f CheckFunc) Check(s Subject) ([]string, bool) { return f(s) }

// Tracker holds pending actions per scope. A scope is "physical" or a
// tenant id. It is safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	actions map[string]map[string]Checker
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{actions: make(map[string]map[string]Checker)}
}

// RegisterIfAbsent installs checker under key unless an action with the same
// key is already pending in scope. It reports whether checker was installed.
func (t *Tracker) RegisterIfAbsent(scope, key string, checker Checker) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := t.actions[scope]
	if m == nil {
		m = make(map[string]Checker)
		t.actions[scope] = m
	}
	if _, ok := m[key]; ok {
		return false
	}
	m[key] = checker
	return true
}

// Reconcile runs every checker of scope against subj, drops the resolved
// ones and returns the pending element ids in a stable order.
func (t *Tracker) Reconcile(scope string, subj Subject) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := t.actions[scope]
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var ids []string
	for _, k := range keys {
		pending, done := m[k].Check(subj)
		if done {
			delete(m, k)
			continue
		}
		ids = append(ids, pending...)
	}
	if len(m) == 0 {
		delete(t.actions, scope)
	}
	return ids
}

// Pending lists the action keys pending in scope.
func (t *Tracker) Pending(scope string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	keys := make([]string, 0, len(t.actions[scope]))
	for k := range t.actions[scope] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Count returns the number of pending actions across all scopes.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, m := range t.actions {
		n += len(m)
	}
	return n
}

// Drop forgets every action of scope.
func (t *Tracker) Drop(scope string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.actions, scope)
}

// DropIf forgets the actions of scope whose key matches and returns how
// many were dropped.
func (t *Tracker) DropIf(scope string, match func(key string) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	m := t.actions[scope]
	n := 0
	for k := range m {
		if match(k) {
			delete(m, k)
			n++
		}
	}
	if len(m) == 0 {
		delete(t.actions, scope)
	}
	return n
}

package pipeline

import (
	"sync"
	"time"

	"github.com/projecteru2/ovxview/render"
	"github.com/projecteru2/ovxview/types"
)

// FlowtableView is the flowtable of the selected switch.
type FlowtableView struct {
	Target    types.FlowtableTarget `json:"target"`
	ElementID string                `json:"elementId"`
	Rows      []types.FlowRow       `json:"rows"`
	FetchedAt time.Time             `json:"fetchedAt"`
}

// Stats summarises the sync loop.
type Stats struct {
	Cycles     int       `json:"cycles"`
	Renders    int       `json:"renders"`
	Skipped    int       `json:"skipped"`
	Errors     int       `json:"errors"`
	Restarts   int       `json:"restarts"`
	Paused     bool      `json:"paused"`
	LastCycle  time.Time `json:"lastCycle"`
	LastError  string    `json:"lastError,omitempty"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// State is everything the sync loop publishes. Readers get copies.
type State struct {
	mu sync.RWMutex

	// last rendered snapshots, normalized for diffing
	lastPhysical  any
	lastVirtual   any
	lastFlowtable any

	physicalModel *types.PhysicalModel
	virtualModel  *types.VirtualModel
	physical      *render.Rendered
	virtual       *render.Rendered

	links    []types.Link
	networks []int
	selected int
	hasSel   bool

	flowtableTarget *types.FlowtableTarget
	flowtableID     string
	flowtable       *FlowtableView

	stats Stats
}

// Physical returns the current physical view or nil.
func (s *State) Physical() *render.Rendered {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRendered(s.physical)
}

// Virtual returns the current virtual view or nil.
func (s *State) Virtual() *render.Rendered {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyRendered(s.virtual)
}

func copyRendered(r *render.Rendered) *render.Rendered {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// PhysicalModel returns the last rendered physical model or nil.
func (s *State) PhysicalModel() *types.PhysicalModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.physicalModel
}

// VirtualModel returns the last rendered virtual model or nil.
func (s *State) VirtualModel() *types.VirtualModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.virtualModel
}

// Links returns the cached physical links with their active flags.
func (s *State) Links() []types.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Link(nil), s.links...)
}

// VirtualNetworks returns the tenant ids last listed by the controller.
func (s *State) VirtualNetworks() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.networks...)
}

// Selected returns the selected tenant.
func (s *State) Selected() (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected, s.hasSel
}

// Flowtable returns the flowtable of the selected switch or nil.
func (s *State) Flowtable() *FlowtableView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.flowtable == nil {
		return nil
	}
	c := *s.flowtable
	return &c
}

// Stats returns the loop statistics.
func (s *State) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *State) recordCycle(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Cycles++
	s.stats.LastCycle = time.Now()
	if err != nil {
		s.stats.Errors++
		s.stats.LastError = err.Error()
		return
	}
	s.stats.LastError = ""
}

func (s *State) recordSkip() {
	s.mu.Lock()
	s.stats.Skipped++
	s.mu.Unlock()
}

func (s *State) recordRestart() {
	s.mu.Lock()
	s.stats.Restarts++
	s.mu.Unlock()
}

func (s *State) setPaused(paused bool) {
	s.mu.Lock()
	s.stats.Paused = paused
	s.mu.Unlock()
}

func (s *State) paused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats.Paused
}

// reselect switches the selection to tenantID, or clears it when has is
// false, and forgets everything derived from the previous network. The
// caller holds s.mu.
func (s *State) reselect(tenantID int, has bool) (old int, had bool) {
	old, had = s.selected, s.hasSel
	s.selected, s.hasSel = tenantID, has
	s.lastVirtual = nil
	s.virtual = nil
	s.virtualModel = nil
	if s.flowtableTarget != nil && s.flowtableTarget.View == types.ViewVirtual {
		s.flowtableTarget, s.flowtableID, s.flowtable, s.lastFlowtable = nil, "", nil, nil
	}
	if s.physical != nil {
		phys := *s.physical
		phys.UsedElements = nil
		s.physical = &phys
	}
	return old, had
}

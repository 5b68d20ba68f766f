// Package mapping keeps the virtual to physical mapping of the selected
// network and answers which physical elements a virtual element stands on.
package mapping

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/projecteru2/ovxview/types"
	"github.com/projecteru2/ovxview/utils"
)

type set = map[string]struct{}

// State is the current mapping. Updates replace it wholesale.
type State struct {
	mu        sync.RWMutex
	mappings  types.Mappings
	virtual   types.Topology
	flowPaths types.FlowPaths
	physLinks map[int]types.Link
}

// New creates an empty State.
func New() *State {
	return &State{physLinks: map[int]types.Link{}}
}

// SetPhysicalLinks indexes the physical links by id.
func (s *State) SetPhysicalLinks(links []types.Link) {
	idx := make(map[int]types.Link, len(links))
	for _, l := range links {
		idx[l.LinkID] = l
	}
	s.mu.Lock()
	s.physLinks = idx
	s.mu.Unlock()
}

// Update stores the mapping of a freshly rendered virtual model.
func (s *State) Update(vm *types.VirtualModel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings = types.Mappings{SwitchMapping: vm.SwitchMapping, LinkMapping: vm.LinkMapping}
	s.virtual = vm.Topology
	s.flowPaths = vm.FlowPaths
}

// Clear forgets the virtual side, e.g. after another network is selected.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings = types.Mappings{}
	s.virtual = types.Topology{}
	s.flowPaths = nil
}

// Mappings returns the current mapping.
func (s *State) Mappings() types.Mappings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mappings
}

// UsedElements lists the physical element ids the selected virtual network
// uses, sorted.
func (s *State) UsedElements() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flows := set{}
	for key := range s.flowPaths {
		flows[types.FlowPathElementID(types.ViewPhysical, key)] = struct{}{}
	}
	hosts := set{}
	for _, h := range s.virtual.Hosts {
		hosts[types.HostElementID(types.ViewPhysical, h.MAC)] = struct{}{}
		hosts[types.HostLinkElementID(types.ViewPhysical, h.MAC)] = struct{}{}
	}
	switches := set{}
	for _, dpid := range s.virtual.Switches {
		for id := range s.switchesMappedFrom(dpid) {
			switches[id] = struct{}{}
		}
	}
	links := set{}
	for _, l := range s.virtual.Links {
		for id := range s.linksMappedFrom(strconv.Itoa(l.LinkID)) {
			links[id] = struct{}{}
		}
	}
	internal := set{}
	for dpid := range s.mappings.SwitchMapping {
		for id := range s.internalLinksOf(dpid) {
			internal[id] = struct{}{}
		}
	}
	referenced := set{}
	for vlink := range s.mappings.LinkMapping {
		for id := range s.switchesReferencedBy(vlink) {
			referenced[id] = struct{}{}
		}
	}
	return utils.SortedKeys(utils.MergeSets(flows, hosts, switches, links, internal, referenced))
}

// Highlight lists the physical element ids to highlight while the operator
// points at the virtual element id.
func (s *State) Highlight(id string) ([]string, error) {
	e, err := types.ParseElementID(id)
	if err != nil {
		return nil, err
	}
	if e.View != types.ViewVirtual {
		return nil, fmt.Errorf("%q is not a virtual element: %w", id, types.ErrBadElementID)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out set
	switch e.Kind {
	case types.ElementHost, types.ElementHostLink, types.ElementFlowPath:
		out = set{e.Swap().ID(): {}}
	case types.ElementSwitch:
		out = utils.MergeSets(s.internalLinksOf(e.Ref), s.switchesMappedFrom(e.Ref))
	case types.ElementLink:
		out = utils.MergeSets(s.switchesReferencedBy(e.Ref), s.linksMappedFrom(e.Ref))
	}
	return utils.SortedKeys(out), nil
}

func (s *State) switchesMappedFrom(vdpid string) set {
	out := set{}
	for _, dpid := range s.mappings.SwitchMapping[vdpid].Switches {
		out[types.SwitchElementID(types.ViewPhysical, dpid)] = struct{}{}
	}
	return out
}

func (s *State) internalLinksOf(vdpid string) set {
	out := set{}
	for _, id := range s.mappings.SwitchMapping[vdpid].Links {
		out[types.LinkElementID(types.ViewPhysical, id)] = struct{}{}
	}
	return out
}

func (s *State) physicalLinkIDs(vlink string) []int {
	var ids []int
	for _, path := range s.mappings.LinkMapping[vlink] {
		ids = append(ids, path...)
	}
	return ids
}

func (s *State) linksMappedFrom(vlink string) set {
	out := set{}
	for _, id := range s.physicalLinkIDs(vlink) {
		out[types.LinkElementID(types.ViewPhysical, id)] = struct{}{}
	}
	return out
}

func (s *State) switchesReferencedBy(vlink string) set {
	out := set{}
	for _, id := range s.physicalLinkIDs(vlink) {
		l, ok := s.physLinks[id]
		if !ok {
			continue
		}
		out[types.SwitchElementID(types.ViewPhysical, l.Src.DPID)] = struct{}{}
		out[types.SwitchElementID(types.ViewPhysical, l.Dst.DPID)] = struct{}{}
	}
	return out
}

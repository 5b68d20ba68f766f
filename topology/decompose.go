// Package topology splits the physical topology into a core skeleton and
// per-core subgraphs and computes the position hints handed to the layout
// service.
package topology

import "github.com/projecteru2/ovxview/types"

// Decompose partitions topo into the core topology (switches listed in core
// and the links between them) and one subgraph per core switch holding the
// non-core switches and links reachable from it.
//
// Ownership is first claim wins: core switches are walked in topology order
// and a switch or link taken by one subgraph is never revisited by another.
// A walk stops at foreign core switches. Switches not reachable from any core
// switch are left out, as are links naming unknown switches.
func Decompose(topo *types.Topology, core types.CoreSwitches) types.Decomposed {
	out := types.Decomposed{SubGraphs: map[string]*types.Topology{}}
	if topo == nil {
		return out
	}

	known := make(map[string]struct{}, len(topo.Switches))
	for _, dpid := range topo.Switches {
		known[dpid] = struct{}{}
	}
	isCore := func(dpid string) bool {
		_, ok := out.SubGraphs[dpid]
		return ok
	}

	for _, dpid := range topo.Switches {
		if _, ok := core[dpid]; !ok || isCore(dpid) {
			continue
		}
		out.Core.Switches = append(out.Core.Switches, dpid)
		out.SubGraphs[dpid] = &types.Topology{}
		out.Roots = append(out.Roots, dpid)
	}

	adjacent := map[string][]int{}
	for i, l := range topo.Links {
		_, srcOK := known[l.Src.DPID]
		_, dstOK := known[l.Dst.DPID]
		if !srcOK || !dstOK {
			continue
		}
		if isCore(l.Src.DPID) && isCore(l.Dst.DPID) {
			out.Core.Links = append(out.Core.Links, l)
			continue
		}
		adjacent[l.Src.DPID] = append(adjacent[l.Src.DPID], i)
		adjacent[l.Dst.DPID] = append(adjacent[l.Dst.DPID], i)
	}

	visitedSwitch := map[string]bool{}
	visitedLink := map[int]bool{}
	for _, root := range out.Roots {
		sub := out.SubGraphs[root]
		var walk func(dpid string)
		walk = func(dpid string) {
			if visitedSwitch[dpid] {
				return
			}
			visitedSwitch[dpid] = true
			sub.Switches = append(sub.Switches, dpid)
			for _, i := range adjacent[dpid] {
				if visitedLink[i] {
					continue
				}
				visitedLink[i] = true
				l := topo.Links[i]
				sub.Links = append(sub.Links, l)
				for _, next := range [2]string{l.Src.DPID, l.Dst.DPID} {
					if next != root && isCore(next) {
						continue
					}
					walk(next)
				}
			}
		}
		walk(root)
	}
	return out
}

// RootOf maps every switch of every subgraph to its core switch.
func RootOf(d types.Decomposed) map[string]string {
	out := map[string]string{}
	for _, root := range d.Roots {
		for _, dpid := range d.SubGraphs[root].Switches {
			out[dpid] = root
		}
	}
	return out
}

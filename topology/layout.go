package topology

import (
	"math"
	"strconv"

	"github.com/projecteru2/ovxview/types"
)

// PointsPerInch converts SVG points to the inches the layout engine takes.
const PointsPerInch = 72

// Projection is the Mercator projection of the backbone map. The map is
// Width x Height pixels; the scale and translation follow the map the
// dashboard draws under the physical view.
type Projection struct {
	Width  float64
	Height float64
}

// Project maps [lng, lat] to map pixels.
func (p Projection) Project(lng, lat float64) types.Point {
	scale := (p.Width + 1) / (math.Pi / 12) / (2 * math.Pi)
	lambda := lng * math.Pi / 180
	phi := lat * math.Pi / 180
	return types.Point{
		X: p.Width*1.5 + scale*lambda,
		Y: p.Height - scale*math.Log(math.Tan(math.Pi/4+phi/2)),
	}
}

// Inches projects [lng, lat] and recenters it on the map in inches.
func (p Projection) Inches(pos [2]float64) types.Point {
	pt := p.Project(pos[0], pos[1])
	return types.Point{
		X: (pt.X - p.Width/2) / PointsPerInch,
		Y: (pt.Y - p.Height/2) / PointsPerInch,
	}
}

// FormatPos renders a position hint. Pinned positions end in "!" and are
// kept by the layout engine; the others are only a starting point.
func FormatPos(pt types.Point, pinned bool) string {
	s := strconv.FormatFloat(pt.X, 'f', -1, 64) + "," + strconv.FormatFloat(pt.Y, 'f', -1, 64)
	if pinned {
		s += "!"
	}
	return s
}

// SwitchPositions builds the layout hints of the physical view: core
// switches pinned at their geographic position, subgraph switches starting
// at their root's position. Other switches get no hint.
func SwitchPositions(topo *types.Topology, d types.Decomposed, core types.CoreSwitches, proj Projection) map[string]string {
	roots := RootOf(d)
	out := make(map[string]string, len(topo.Switches))
	for _, dpid := range topo.Switches {
		if cs, ok := core[dpid]; ok {
			out[dpid] = FormatPos(proj.Inches(cs.Pos), true)
			continue
		}
		if root, ok := roots[dpid]; ok {
			out[dpid] = FormatPos(proj.Inches(core[root].Pos), false)
		}
	}
	return out
}

// VirtualPositions pins the virtual view onto the physical one. Each host
// is pinned where its physical twin was drawn. Each switch starts at the
// centroid of the physical switches it maps to and is pinned only when it
// maps to exactly one. phys holds physical element centers by element id.
func VirtualPositions(vm *types.VirtualModel, phys map[string]types.Point) {
	toInches := func(pt types.Point) types.Point {
		return types.Point{X: pt.X / PointsPerInch, Y: -pt.Y / PointsPerInch}
	}

	for i := range vm.Topology.Hosts {
		h := &vm.Topology.Hosts[i]
		if pt, ok := phys[types.HostElementID(types.ViewPhysical, h.MAC)]; ok {
			h.Pos = FormatPos(toInches(pt), true)
		}
	}

	vm.Topology.Layout = map[string]string{}
	for _, dpid := range vm.Topology.Switches {
		mapped := vm.SwitchMapping[dpid].Switches
		var sum types.Point
		found := 0
		for _, p := range mapped {
			if pt, ok := phys[types.SwitchElementID(types.ViewPhysical, p)]; ok {
				sum.X += pt.X
				sum.Y += pt.Y
				found++
			}
		}
		if found == 0 {
			continue
		}
		centroid := types.Point{X: sum.X / float64(found), Y: sum.Y / float64(found)}
		vm.Topology.Layout[dpid] = FormatPos(toInches(centroid), len(mapped) == 1)
	}
}

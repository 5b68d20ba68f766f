package types

import "strings"

// View names the two rendered views. They are also the element id prefixes
// shared with the layout service.
type View string

const (
	ViewPhysical View = "physical"
	ViewVirtual  View = "virtual"
)

// Endpoint is one side of a link.
type Endpoint struct {
	DPID string `json:"dpid"`
	Port int    `json:"port,omitempty"`
}

// Link connects two switches. Src and Dst are stored in the order the
// controller reports them but links are compared as unordered pairs.
type Link struct {
	Src    Endpoint `json:"src"`
	Dst    Endpoint `json:"dst"`
	LinkID int      `json:"linkId"`

	// Active is only set on the cached physical link set: true when the link
	// was present in the latest fetch.
	Active bool `json:"active,omitempty"`
}

// Joins reports whether the link connects a and b in either direction.
func (l Link) Joins(a, b string) bool {
	return (l.Src.DPID == a && l.Dst.DPID == b) || (l.Src.DPID == b && l.Dst.DPID == a)
}

// Key is the directional src-dst key.
func (l Link) Key() string { return l.Src.DPID + "-" + l.Dst.DPID }

// Host is an end host attached to a switch port.
type Host struct {
	MAC       string `json:"mac"`
	IPAddress string `json:"ipAddress,omitempty"`
	DPID      string `json:"dpid,omitempty"`
	Port      int    `json:"port,omitempty"`
	HostID    int    `json:"hostId,omitempty"`

	// Pos is the layout position hint ("x,y" or pinned "x,y!").
	Pos string `json:"pos,omitempty"`
}

// Topology is the flat switch/link/host graph the controller reports.
type Topology struct {
	Switches []string `json:"switches"`
	Links    []Link   `json:"links"`
	Hosts    []Host   `json:"hosts"`

	// Layout maps dpid to a position hint for the layout service.
	Layout map[string]string `json:"layout,omitempty"`
	// PendingIDs lists element ids of operations not yet confirmed.
	PendingIDs []string `json:"pendingIds,omitempty"`
}

// HasLink reports whether any link joins a and b.
func (t *Topology) HasLink(a, b string) bool {
	for _, l := range t.Links {
		if l.Joins(a, b) {
			return true
		}
	}
	return false
}

// LinkByID returns the link with the given id.
func (t *Topology) LinkByID(id int) (Link, bool) {
	for _, l := range t.Links {
		if l.LinkID == id {
			return l, true
		}
	}
	return Link{}, false
}

// FlowPaths maps a "srcMAC-dstMAC" key to the dpids the flow traverses.
type FlowPaths map[string][]string

// FlowPathKey builds the flow path key for a MAC pair. The controller
// reports flow paths with lowercased MACs.
func FlowPathKey(src, dst string) string {
	return strings.ToLower(src) + "-" + strings.ToLower(dst)
}

// CoreSwitch is the static placement of one backbone switch.
type CoreSwitch struct {
	Name string `json:"name" mapstructure:"name"`
	// Pos is [longitude, latitude].
	Pos [2]float64 `json:"pos" mapstructure:"pos"`
}

// CoreSwitches maps dpid to its placement. Membership makes a switch "core".
type CoreSwitches map[string]CoreSwitch

// Decomposed is a physical topology split into the core skeleton and one
// subgraph per core switch.
type Decomposed struct {
	Core      Topology             `json:"coreTopology"`
	SubGraphs map[string]*Topology `json:"subGraphs"`
	// Roots keeps core switch order; map iteration order is random.
	Roots []string `json:"-"`
}

// Point is an element center in rendered SVG coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

package types

import "strconv"

// PhysicalModel is one physical poll result.
type PhysicalModel struct {
	Topology        Topology  `json:"physicalTopology"`
	VirtualNetworks []int     `json:"virtualNetworks"`
	Hosts           []Host    `json:"hosts"`
	FlowPaths       FlowPaths `json:"flowPaths"`
}

// SwitchMap lists the physical switches a virtual switch is built from and
// the physical links internal to it (big switches span several).
type SwitchMap struct {
	Switches []string `json:"switches"`
	Links    []int    `json:"links"`
}

// SwitchMapping maps a virtual dpid to its physical footprint.
type SwitchMapping map[string]SwitchMap

// LinkMapping maps a virtual link id to the physical paths realising it.
// Each path is a list of physical link ids.
type LinkMapping map[string][][]int

// Mappings is the virtual to physical mapping of the selected network.
type Mappings struct {
	SwitchMapping SwitchMapping `json:"switchMapping"`
	LinkMapping   LinkMapping   `json:"linkMapping"`
}

// VirtualModel is one virtual poll result for a tenant.
type VirtualModel struct {
	TenantID      int           `json:"tenantId"`
	Topology      Topology      `json:"topology"`
	SwitchMapping SwitchMapping `json:"switchMapping"`
	LinkMapping   LinkMapping   `json:"linkMapping"`
	Hosts         []Host        `json:"hosts"`
	FlowPaths     FlowPaths     `json:"flowPaths"`
	PendingIDs    []string      `json:"pendingIds,omitempty"`
}

// Scope is the pending-action scope of the tenant.
func (m *VirtualModel) Scope() string { return TenantScope(m.TenantID) }

// ScopePhysical is the pending-action scope of the physical view.
const ScopePhysical = "physical"

// TenantScope is the pending-action scope of a tenant.
func TenantScope(tenantID int) string { return strconv.Itoa(tenantID) }

// Network is a virtual network as listed to operators.
type Network struct {
	TenantID int    `json:"tenantId"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

package types

import (
	"fmt"
	"sort"
)

// FlowEntry is one flow as the controller reports it. The match and action
// fields vary by OpenFlow version so they stay generic.
type FlowEntry map[string]any

// Flowtable is the flow list of one switch.
type Flowtable []FlowEntry

// FlowRow is a flattened flow for display: sorted match fields and one
// rendered entry per action.
type FlowRow struct {
	Match   []string `json:"match"`
	Actions []string `json:"actions"`
}

// Rows flattens the table.
func (t Flowtable) Rows() []FlowRow {
	rows := make([]FlowRow, 0, len(t))
	for _, e := range t {
		var row FlowRow
		if m, ok := e["match"].(map[string]any); ok {
			for k, v := range m {
				row.Match = append(row.Match, fmt.Sprintf("%s=%v", k, v))
			}
			sort.Strings(row.Match)
		}
		if acts, ok := e["actionsList"].([]any); ok {
			for _, a := range acts {
				row.Actions = append(row.Actions, actionString(a))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func actionString(a any) string {
	m, ok := a.(map[string]any)
	if !ok {
		return fmt.Sprint(a)
	}
	typ, _ := m["type"].(string)
	keys := make([]string, 0, len(m))
	for k := range m {
		if k != "type" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	s := typ
	for _, k := range keys {
		s += fmt.Sprintf(" %s=%v", k, m[k])
	}
	return s
}

// FlowtableTarget names the switch whose flowtable is shown.
type FlowtableTarget struct {
	View     View   `json:"view"`
	DPID     string `json:"dpid"`
	TenantID int    `json:"tenantId,omitempty"`
}

package types

import (
	"errors"
	"testing"
)

// --- Element ids ---

func TestElementIDs(t *testing.T) {
	cases := []struct {
		id   string
		want Element
	}{
		{SwitchElementID(ViewPhysical, "00:00:00:00:00:00:01:00"), Element{ViewPhysical, ElementSwitch, "00:00:00:00:00:00:01:00"}},
		{LinkElementID(ViewVirtual, 12), Element{ViewVirtual, ElementLink, "12"}},
		{HostElementID(ViewVirtual, "00:00:00:00:01:01"), Element{ViewVirtual, ElementHost, "00:00:00:00:01:01"}},
		{HostLinkElementID(ViewPhysical, "00:00:00:00:01:01"), Element{ViewPhysical, ElementHostLink, "00:00:00:00:01:01"}},
		{FlowPathElementID(ViewVirtual, "00:00:00:00:01:01-00:00:00:00:02:01"), Element{ViewVirtual, ElementFlowPath, "00:00:00:00:01:01-00:00:00:00:02:01"}},
	}
	for _, c := range cases {
		got, err := ParseElementID(c.id)
		if err != nil {
			t.Fatalf("parse %q: %v", c.id, err)
		}
		if got != c.want {
			t.Errorf("parse %q: got %+v, want %+v", c.id, got, c.want)
		}
		if got.ID() != c.id {
			t.Errorf("round trip %q: got %q", c.id, got.ID())
		}
	}
}

func TestElementIDs_Format(t *testing.T) {
	if got := SwitchElementID(ViewPhysical, "00:01"); got != "physical_switch-00_01" {
		t.Errorf("unexpected switch id %q", got)
	}
	if got := FlowPathElementID(ViewVirtual, "aa:bb-cc:dd"); got != "virtual_aa_bb-cc_dd" {
		t.Errorf("unexpected flow path id %q", got)
	}
}

func TestParseElementID_Bad(t *testing.T) {
	for _, id := range []string{"", "physical_", "other_switch-1", "virtual_nothing", "physical_switch-"} {
		if _, err := ParseElementID(id); !errors.Is(err, ErrBadElementID) {
			t.Errorf("%q: expected ErrBadElementID, got %v", id, err)
		}
	}
}

func TestElement_Swap(t *testing.T) {
	e := Element{ViewVirtual, ElementHost, "aa"}
	if e.Swap().ID() != "physical_hostaa" {
		t.Errorf("unexpected swap %q", e.Swap().ID())
	}
}

// --- Topology ---

func TestLink_JoinsUndirected(t *testing.T) {
	l := Link{Src: Endpoint{DPID: "a"}, Dst: Endpoint{DPID: "b"}}
	if !l.Joins("a", "b") || !l.Joins("b", "a") {
		t.Error("expected link to join a and b both ways")
	}
	if l.Joins("a", "c") {
		t.Error("unexpected join a-c")
	}
	topo := Topology{Links: []Link{l}}
	if !topo.HasLink("b", "a") {
		t.Error("expected HasLink")
	}
}

func TestFlowPathKey_Lowercases(t *testing.T) {
	if got := FlowPathKey("AA:BB", "Cc:dD"); got != "aa:bb-cc:dd" {
		t.Errorf("unexpected key %q", got)
	}
}

// --- Flowtable ---

func TestFlowtable_Rows(t *testing.T) {
	ft := Flowtable{{
		"match":       map[string]any{"in_port": 1.0, "dl_dst": "aa"},
		"actionsList": []any{map[string]any{"type": "OUTPUT", "port": 2.0}, map[string]any{"type": "DROP"}},
	}}
	rows := ft.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Match[0] != "dl_dst=aa" || rows[0].Match[1] != "in_port=1" {
		t.Errorf("unexpected match %v", rows[0].Match)
	}
	if len(rows[0].Actions) != 2 || rows[0].Actions[0] != "OUTPUT port=2" || rows[0].Actions[1] != "DROP" {
		t.Errorf("unexpected actions %v", rows[0].Actions)
	}
}

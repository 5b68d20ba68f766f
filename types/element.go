package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ElementKind is the kind of a rendered element.
type ElementKind string

const (
	ElementSwitch   ElementKind = "switch"
	ElementLink     ElementKind = "link"
	ElementHost     ElementKind = "host"
	ElementHostLink ElementKind = "host_link"
	ElementFlowPath ElementKind = "flowpath"
)

// ErrBadElementID is returned for ids not produced by the helpers below.
var ErrBadElementID = errors.New("bad element id")

func safe(s string) string   { return strings.ReplaceAll(s, ":", "_") }
func unsafe(s string) string { return strings.ReplaceAll(s, "_", ":") }

// SwitchElementID is "<view>_switch-<dpid>" with colons as underscores.
func SwitchElementID(v View, dpid string) string {
	return string(v) + "_switch-" + safe(dpid)
}

// LinkElementID is "<view>_link-<linkId>".
func LinkElementID(v View, linkID int) string {
	return string(v) + "_link-" + strconv.Itoa(linkID)
}

// HostElementID is "<view>_host<mac>" with colons as underscores.
func HostElementID(v View, mac string) string {
	return string(v) + "_host" + safe(mac)
}

// HostLinkElementID is "<view>_host_link<mac>" with colons as underscores.
func HostLinkElementID(v View, mac string) string {
	return string(v) + "_host_link" + safe(mac)
}

// FlowPathElementID is "<view>_<src-dst>" with colons as underscores.
func FlowPathElementID(v View, key string) string {
	return string(v) + "_" + safe(key)
}

// Element is a parsed element id. Ref is the dpid, MAC, flow path key or
// link id in its natural form.
type Element struct {
	View View
	Kind ElementKind
	Ref  string
}

// ID rebuilds the element id.
func (e Element) ID() string {
	switch e.Kind {
	case ElementSwitch:
		return SwitchElementID(e.View, e.Ref)
	case ElementLink:
		return string(e.View) + "_link-" + e.Ref
	case ElementHost:
		return HostElementID(e.View, e.Ref)
	case ElementHostLink:
		return HostLinkElementID(e.View, e.Ref)
	default:
		return FlowPathElementID(e.View, e.Ref)
	}
}

// Swap returns the same element in the other view.
func (e Element) Swap() Element {
	if e.View == ViewPhysical {
		e.View = ViewVirtual
	} else {
		e.View = ViewPhysical
	}
	return e
}

// ParseElementID reverses the element id helpers.
func ParseElementID(id string) (Element, error) {
	var e Element
	rest, ok := "", false
	for _, v := range []View{ViewPhysical, ViewVirtual} {
		if rest, ok = strings.CutPrefix(id, string(v)+"_"); ok {
			e.View = v
			break
		}
	}
	if !ok || rest == "" {
		return e, fmt.Errorf("%q: %w", id, ErrBadElementID)
	}
	switch {
	case strings.HasPrefix(rest, "switch-"):
		e.Kind, e.Ref = ElementSwitch, unsafe(strings.TrimPrefix(rest, "switch-"))
	case strings.HasPrefix(rest, "link-"):
		e.Kind, e.Ref = ElementLink, strings.TrimPrefix(rest, "link-")
	case strings.HasPrefix(rest, "host_link"):
		e.Kind, e.Ref = ElementHostLink, unsafe(strings.TrimPrefix(rest, "host_link"))
	case strings.HasPrefix(rest, "host"):
		e.Kind, e.Ref = ElementHost, unsafe(strings.TrimPrefix(rest, "host"))
	case strings.Contains(rest, "-"):
		e.Kind, e.Ref = ElementFlowPath, unsafe(rest)
	default:
		return e, fmt.Errorf("%q: %w", id, ErrBadElementID)
	}
	if e.Ref == "" {
		return e, fmt.Errorf("%q: %w", id, ErrBadElementID)
	}
	return e, nil
}

package topology

import "github.com/projecteru2/ovxview/types"

// MarkActiveLinks returns a copy of cached with Active set on every link the
// controller still reports. Active links take the current link id. Links
// are matched by directional src-dst key.
func MarkActiveLinks(active, cached []types.Link) []types.Link {
	current := make(map[string]types.Link, len(active))
	for _, l := range active {
		current[l.Key()] = l
	}
	out := make([]types.Link, len(cached))
	for i, l := range cached {
		l.Active = false
		if cur, ok := current[l.Key()]; ok {
			l.LinkID = cur.LinkID
			l.Active = true
		}
		out[i] = l
	}
	return out
}

// InactiveLinks lists the element ids of cached links that are down.
func InactiveLinks(links []types.Link) []string {
	var ids []string
	for _, l := range links {
		if !l.Active {
			ids = append(ids, types.LinkElementID(types.ViewPhysical, l.LinkID))
		}
	}
	return ids
}

// MergeLinks adds to cached every link of active it does not know yet, so
// links that appear after the cache was seeded are shown too.
func MergeLinks(cached, active []types.Link) ([]types.Link, bool) {
	seen := make(map[string]struct{}, len(cached))
	for _, l := range cached {
		seen[l.Key()] = struct{}{}
	}
	changed := false
	for _, l := range active {
		if _, ok := seen[l.Key()]; ok {
			continue
		}
		l.Active = false
		cached = append(cached, l)
		seen[l.Key()] = struct{}{}
		changed = true
	}
	return cached, changed
}

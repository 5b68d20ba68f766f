package pending

import (
	"sort"

	"github.com/projecteru2/ovxview/types"
)

// StopPingKey is the action key of a ping stop.
const StopPingKey = "stopPing"

// LinkKey is the action key of a link toggle.
func LinkKey(src, dst string) string { return src + "-" + dst }

// LinkUp stays pending on elementID until a link joins src and dst.
func LinkUp(src, dst, elementID string) Checker {
	return CheckFunc(func(s Subject) ([]string, bool) {
		if s.hasLink(src, dst) {
			return nil, true
		}
		return []string{elementID}, false
	})
}

// LinkDown stays pending on elementID while a link joins src and dst.
func LinkDown(src, dst, elementID string) Checker {
	return CheckFunc(func(s Subject) ([]string, bool) {
		if !s.hasLink(src, dst) {
			return nil, true
		}
		return []string{elementID}, false
	})
}

// PingStart waits for the flow path of src and dst. Until it shows up an
// empty placeholder path is inserted so the flow is drawn pending. The
// action gives up after maxCycles reconciliations; maxCycles <= 0 means
// DefaultPingCycles.
func PingStart(src, dst string, maxCycles int) Checker {
	if maxCycles <= 0 {
		maxCycles = DefaultPingCycles
	}
	key := types.FlowPathKey(src, dst)
	cycles := 0
	return CheckFunc(func(s Subject) ([]string, bool) {
		if _, ok := s.FlowPaths[key]; ok {
			return nil, true
		}
		cycles++
		if cycles > maxCycles {
			return nil, true
		}
		if s.FlowPaths != nil {
			s.FlowPaths[key] = []string{}
		}
		return []string{types.FlowPathElementID(types.ViewVirtual, key)}, false
	})
}

// PingStop marks every remaining flow path pending until none is left.
func PingStop() Checker {
	return CheckFunc(func(s Subject) ([]string, bool) {
		if len(s.FlowPaths) == 0 {
			return nil, true
		}
		ids := make([]string, 0, len(s.FlowPaths))
		for key := range s.FlowPaths {
			ids = append(ids, types.FlowPathElementID(types.ViewVirtual, key))
		}
		sort.Strings(ids)
		return ids, false
	})
}

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/projecteru2/core/log"
	"github.com/projecteru2/ovxview/diff"
	"github.com/projecteru2/ovxview/types"
)

// SelectFlowtable shows the flowtable of a switch element. Virtual switches
// belong to the selected network. An empty id clears the selection.
func (p *Pipeline) SelectFlowtable(elementID string) error {
	var target *types.FlowtableTarget
	if elementID != "" {
		e, err := types.ParseElementID(elementID)
		if err != nil {
			return err
		}
		if e.Kind != types.ElementSwitch {
			return fmt.Errorf("%q is not a switch: %w", elementID, types.ErrBadElementID)
		}
		target = &types.FlowtableTarget{View: e.View, DPID: e.Ref}
		if e.View == types.ViewVirtual {
			tenantID, ok := p.state.Selected()
			if !ok {
				return ErrNoNetwork
			}
			target.TenantID = tenantID
		}
	}

	s := p.state
	s.mu.Lock()
	s.flowtableTarget, s.flowtableID = target, elementID
	s.flowtable, s.lastFlowtable = nil, nil
	s.mu.Unlock()
	p.Trigger()
	return nil
}

// syncFlowtable refreshes the selected flowtable. Its rows are rebuilt only
// when the table changed. Failures are logged and do not fail the cycle.
func (p *Pipeline) syncFlowtable(ctx context.Context, token uint64) {
	logger := log.WithFunc("pipeline.syncFlowtable")

	p.state.mu.RLock()
	target, id, last := p.state.flowtableTarget, p.state.flowtableID, p.state.lastFlowtable
	p.state.mu.RUnlock()
	if target == nil {
		return
	}

	ft, err := p.backend.Flowtable(ctx, *target)
	if err != nil {
		logger.Warnf(ctx, "fetch flowtable of %s: %v", id, err)
		return
	}
	if ft == nil {
		ft = types.Flowtable{}
	}
	snap, err := diff.Normalize(ft)
	if err != nil {
		logger.Warnf(ctx, "snapshot flowtable of %s: %v", id, err)
		return
	}
	changed, err := diff.Changed(last, snap)
	if err != nil || !changed {
		return
	}

	view := &FlowtableView{Target: *target, ElementID: id, Rows: ft.Rows(), FetchedAt: time.Now()}
	var applied bool
	p.commit(token, func(s *State) {
		if s.flowtableID != id {
			return
		}
		s.lastFlowtable = snap
		s.flowtable = view
		applied = true
	})
	if applied {
		p.pub.Publish(EventFlowtable, id)
	}
}

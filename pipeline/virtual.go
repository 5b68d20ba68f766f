package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/projecteru2/core/log"
	"github.com/projecteru2/ovxview/diff"
	"github.com/projecteru2/ovxview/metrics"
	"github.com/projecteru2/ovxview/pending"
	"github.com/projecteru2/ovxview/render"
	"github.com/projecteru2/ovxview/topology"
	"github.com/projecteru2/ovxview/types"
)

func (p *Pipeline) fetchVirtual(ctx context.Context, tenantID int) (*types.VirtualModel, error) {
	m := &types.VirtualModel{TenantID: tenantID}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		m.Topology, err = p.backend.VirtualTopology(gctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		m.SwitchMapping, err = p.backend.VirtualSwitchMapping(gctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		m.LinkMapping, err = p.backend.VirtualLinkMapping(gctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		m.Hosts, err = p.backend.VirtualHosts(gctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		m.FlowPaths, err = p.backend.VirtualFlowPaths(gctx, tenantID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch virtual model of tenant %d: %w", tenantID, err)
	}
	if m.FlowPaths == nil {
		m.FlowPaths = types.FlowPaths{}
	}
	m.Topology.Hosts = m.Hosts
	return m, nil
}

// syncVirtual fetches the model of the selected network and re-renders it
// on top of the physical layout when it changed.
func (p *Pipeline) syncVirtual(ctx context.Context, token uint64, tenantID int) error {
	logger := log.WithFunc("pipeline.syncVirtual")
	view := string(types.ViewVirtual)
	start := time.Now()

	m, err := p.fetchVirtual(ctx, tenantID)
	if err != nil {
		metrics.RecordSync(view, metrics.ResultError, time.Since(start))
		return err
	}
	m.PendingIDs = p.tracker.Reconcile(m.Scope(), pending.Subject{Links: m.Topology.Links, FlowPaths: m.FlowPaths})
	m.Topology.PendingIDs = m.PendingIDs

	p.state.mu.RLock()
	last := p.state.lastVirtual
	phys := p.state.physical
	p.state.mu.RUnlock()
	if phys == nil {
		// nothing to pin the virtual view onto yet
		return nil
	}
	topology.VirtualPositions(m, phys.Positions)

	snap, err := diff.Normalize(m)
	if err != nil {
		return fmt.Errorf("snapshot virtual model: %w", err)
	}
	report, err := diff.Diff(last, snap)
	if err != nil {
		return fmt.Errorf("diff virtual model: %w", err)
	}
	if report.Empty() {
		p.state.recordSkip()
		metrics.RecordSync(view, metrics.ResultSkipped, time.Since(start))
		return nil
	}
	logger.Debugf(ctx, "virtual model of tenant %d changed:\n%s", tenantID, report)

	out, err := p.renderer.Render(ctx, render.Request{
		View:      types.ViewVirtual,
		TenantID:  tenantID,
		Topology:  &m.Topology,
		FlowPaths: m.FlowPaths,
	})
	if err != nil {
		metrics.RecordSync(view, metrics.ResultError, time.Since(start))
		return fmt.Errorf("render virtual view: %w", err)
	}

	if !p.commit(token, func(s *State) {
		p.mapping.Update(m)
		s.lastVirtual = snap
		s.virtualModel = m
		s.virtual = out
		s.stats.Renders++
		if s.physical != nil {
			phys := *s.physical
			phys.UsedElements = p.mapping.UsedElements()
			s.physical = &phys
		}
	}) {
		metrics.RecordSync(view, metrics.ResultStale, time.Since(start))
		return nil
	}
	metrics.RecordSync(view, metrics.ResultRendered, time.Since(start))
	p.pub.Publish(EventRender, types.ViewVirtual)
	p.pub.Publish(EventRender, types.ViewPhysical)
	logger.Infof(ctx, "virtual view of tenant %d rendered: %d switches, %d pending", tenantID, len(m.Topology.Switches), len(m.PendingIDs))
	return nil
}

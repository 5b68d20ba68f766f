package pipeline

import (
	"context"
	"fmt"
	"slices"
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

func (p *Pipeline) fetchPhysical(ctx context.Context) (*types.PhysicalModel, error) {
	m := &types.PhysicalModel{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		m.Topology, err = p.backend.PhysicalTopology(gctx)
		return err
	})
	g.Go(func() (err error) {
		m.VirtualNetworks, err = p.backend.VirtualNetworks(gctx)
		return err
	})
	g.Go(func() (err error) {
		m.Hosts, err = p.backend.PhysicalHosts(gctx)
		return err
	})
	g.Go(func() (err error) {
		m.FlowPaths, err = p.backend.PhysicalFlowPaths(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch physical model: %w", err)
	}
	if m.FlowPaths == nil {
		m.FlowPaths = types.FlowPaths{}
	}
	m.Topology.Hosts = m.Hosts
	return m, nil
}

// syncPhysical fetches the physical model and re-renders it when it
// changed.
func (p *Pipeline) syncPhysical(ctx context.Context, token uint64) error {
	logger := log.WithFunc("pipeline.syncPhysical")
	view := string(types.ViewPhysical)
	start := time.Now()

	m, err := p.fetchPhysical(ctx)
	if err != nil {
		metrics.RecordSync(view, metrics.ResultError, time.Since(start))
		return err
	}
	p.autoSelect(ctx, token, m.VirtualNetworks)

	topo := &m.Topology
	topo.PendingIDs = p.tracker.Reconcile(types.ScopePhysical, pending.Subject{Links: topo.Links, FlowPaths: m.FlowPaths})

	cached, err := p.cachedLinks(ctx, topo.Links)
	if err != nil {
		metrics.RecordSync(view, metrics.ResultError, time.Since(start))
		return err
	}
	topo.Links = topology.MarkActiveLinks(topo.Links, cached)

	geo := p.Geo()
	d := topology.Decompose(topo, geo.CoreSwitches)
	topo.Layout = topology.SwitchPositions(topo, d, geo.CoreSwitches, topology.Projection{Width: p.conf.MapWidth, Height: p.conf.MapHeight})

	snap, err := diff.Normalize(m)
	if err != nil {
		return fmt.Errorf("snapshot physical model: %w", err)
	}
	p.state.mu.RLock()
	last := p.state.lastPhysical
	p.state.mu.RUnlock()
	report, err := diff.Diff(last, snap)
	if err != nil {
		return fmt.Errorf("diff physical model: %w", err)
	}
	if report.Empty() {
		p.state.recordSkip()
		metrics.RecordSync(view, metrics.ResultSkipped, time.Since(start))
		return nil
	}
	logger.Debugf(ctx, "physical model changed:\n%s", report)

	labels := map[string]string{}
	for _, dpid := range d.Roots {
		labels[dpid] = geo.CoreSwitches[dpid].Name
	}
	out, err := p.renderer.Render(ctx, render.Request{
		View:      types.ViewPhysical,
		Topology:  topo,
		FlowPaths: m.FlowPaths,
		Labels:    labels,
		Inactive:  topology.InactiveLinks(topo.Links),
	})
	if err != nil {
		metrics.RecordSync(view, metrics.ResultError, time.Since(start))
		return fmt.Errorf("render physical view: %w", err)
	}

	links := topo.Links
	if !p.commit(token, func(s *State) {
		out.UsedElements = p.mapping.UsedElements()
		s.lastPhysical = snap
		s.physicalModel = m
		s.physical = out
		s.links = links
		s.networks = m.VirtualNetworks
		s.stats.Renders++
	}) {
		metrics.RecordSync(view, metrics.ResultStale, time.Since(start))
		return nil
	}
	p.mapping.SetPhysicalLinks(links)
	metrics.RecordSync(view, metrics.ResultRendered, time.Since(start))
	p.pub.Publish(EventRender, types.ViewPhysical)
	logger.Infof(ctx, "physical view rendered: %d switches, %d links, %d pending", len(topo.Switches), len(links), len(topo.PendingIDs))
	return nil
}

// autoSelect picks the first listed network when none is selected or the
// selected one is no longer listed. An empty list clears the selection.
func (p *Pipeline) autoSelect(ctx context.Context, token uint64, networks []int) {
	var (
		changed, had bool
		old          int
	)
	p.commit(token, func(s *State) {
		if s.hasSel && slices.Contains(networks, s.selected) {
			return
		}
		if len(networks) == 0 {
			if !s.hasSel {
				return
			}
			old, had = s.reselect(0, false)
		} else {
			old, had = s.reselect(networks[0], true)
		}
		changed = true
	})
	if !changed {
		return
	}
	if len(networks) == 0 {
		p.dropSelection(old, had, 0, false)
		p.pub.Publish(EventSelected, nil)
		return
	}
	if had && old != networks[0] {
		log.WithFunc("pipeline.autoSelect").Warnf(ctx, "network %d is gone, selecting %d", old, networks[0])
	}
	p.dropSelection(old, had, networks[0], true)
	p.pub.Publish(EventSelected, networks[0])
}

// cachedLinks returns the persisted link set after seeding it or adding
// links it has not seen yet.
func (p *Pipeline) cachedLinks(ctx context.Context, active []types.Link) ([]types.Link, error) {
	var cached []types.Link
	err := p.links.With(ctx, func(c *LinkCache) error {
		cached = c.Links
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load link cache: %w", err)
	}
	merged, changed := topology.MergeLinks(cached, active)
	if !changed {
		return merged, nil
	}
	err = p.links.Update(ctx, func(c *LinkCache) error {
		c.Links, _ = topology.MergeLinks(c.Links, active)
		merged = c.Links
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save link cache: %w", err)
	}
	return merged, nil
}

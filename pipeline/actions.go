package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/projecteru2/core/log"
	"github.com/projecteru2/ovxview/metrics"
	"github.com/projecteru2/ovxview/pending"
	"github.com/projecteru2/ovxview/types"
)

var (
	// ErrNoNetwork is returned for virtual actions while no network is selected.
	ErrNoNetwork = errors.New("no virtual network selected")
	// ErrUnknownLink is returned for link actions on switches no known link joins.
	ErrUnknownLink = errors.New("unknown link")
)

func (p *Pipeline) linkElementID(src, dst string) (string, error) {
	for _, l := range p.state.Links() {
		if l.Joins(src, dst) {
			return types.LinkElementID(types.ViewPhysical, l.LinkID), nil
		}
	}
	return "", fmt.Errorf("%s-%s: %w", src, dst, ErrUnknownLink)
}

// LinkUp asks the controller to bring the link between src and dst up. The
// link is drawn pending until the controller reports it.
func (p *Pipeline) LinkUp(ctx context.Context, src, dst string) error {
	return p.linkAction(ctx, "linkup", src, dst, p.backend.LinkUp, pending.LinkUp)
}

// LinkDown asks the controller to take the link between src and dst down.
func (p *Pipeline) LinkDown(ctx context.Context, src, dst string) error {
	return p.linkAction(ctx, "linkdown", src, dst, p.backend.LinkDown, pending.LinkDown)
}

func (p *Pipeline) linkAction(
	ctx context.Context, name, src, dst string,
	call func(context.Context, string, string) error,
	checker func(src, dst, elementID string) pending.Checker,
) error {
	logger := log.WithFunc("pipeline." + name)
	id, err := p.linkElementID(src, dst)
	if err != nil {
		return err
	}
	err = call(ctx, src, dst)
	metrics.RecordAction(name, err)
	if err != nil {
		return fmt.Errorf("%s %s-%s: %w", name, src, dst, err)
	}
	if !p.tracker.RegisterIfAbsent(types.ScopePhysical, pending.LinkKey(src, dst), checker(src, dst, id)) {
		logger.Debugf(ctx, "%s %s-%s already pending", name, src, dst)
	}
	metrics.SetPending(p.tracker.Count())
	p.Trigger()
	return nil
}

// StartPing starts a ping between two hosts of the selected network.
func (p *Pipeline) StartPing(ctx context.Context, tenantID int, srcMAC, dstMAC string) error {
	err := p.backend.StartPing(ctx, srcMAC, dstMAC)
	metrics.RecordAction("startPing", err)
	if err != nil {
		return fmt.Errorf("start ping %s-%s: %w", srcMAC, dstMAC, err)
	}
	p.tracker.RegisterIfAbsent(types.TenantScope(tenantID), types.FlowPathKey(srcMAC, dstMAC),
		pending.PingStart(srcMAC, dstMAC, p.conf.PingPendingCycles))
	metrics.SetPending(p.tracker.Count())
	p.Trigger()
	return nil
}

// StopPing stops every ping of tenantID. Ping starts still pending in the
// tenant are dropped.
func (p *Pipeline) StopPing(ctx context.Context, tenantID int) error {
	err := p.backend.StopPing(ctx, tenantID)
	metrics.RecordAction("stopPing", err)
	if err != nil {
		return fmt.Errorf("stop ping of tenant %d: %w", tenantID, err)
	}
	scope := types.TenantScope(tenantID)
	// a ping start would keep re-adding its placeholder path, and with it
	// keep the stop pending until the start expires
	p.tracker.DropIf(scope, func(key string) bool { return key != pending.StopPingKey })
	p.tracker.RegisterIfAbsent(scope, pending.StopPingKey, pending.PingStop())
	metrics.SetPending(p.tracker.Count())
	p.Trigger()
	return nil
}

// Networks lists the virtual networks with display names.
func (p *Pipeline) Networks() []types.Network {
	geo := p.Geo()
	selected, ok := p.state.Selected()
	ids := p.state.VirtualNetworks()
	out := make([]types.Network, 0, len(ids))
	for _, id := range ids {
		out = append(out, types.Network{TenantID: id, Name: geo.NetworkName(id), Selected: ok && id == selected})
	}
	return out
}

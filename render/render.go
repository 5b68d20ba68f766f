package render

import (
	"context"
	"fmt"
	"time"

	"github.com/projecteru2/ovxview/types"
)

// Request is one view to draw.
type Request struct {
	View     types.View
	TenantID int
	Topology *types.Topology
	// FlowPaths are drawn as polylines over the laid out elements.
	FlowPaths types.FlowPaths
	// Labels names switches by dpid; the physical view labels core switches.
	Labels map[string]string
	// Inactive lists link element ids drawn as down.
	Inactive []string
}

// Rendered is a drawn view as served to viewers.
type Rendered struct {
	View       types.View               `json:"view"`
	TenantID   int                      `json:"tenantId,omitempty"`
	SVG        string                   `json:"svg"`
	Positions  map[string]types.Point   `json:"positions"`
	FlowPaths  map[string][]types.Point `json:"flowPaths"`
	Labels     map[string]string        `json:"labels,omitempty"`
	PendingIDs []string                 `json:"pendingIds"`
	Inactive   []string                 `json:"inactiveLinks,omitempty"`
	// UsedElements is only set on the physical view: the elements the
	// selected virtual network stands on.
	UsedElements []string  `json:"usedElements,omitempty"`
	RenderedAt   time.Time `json:"renderedAt"`
}

// Renderer draws requests through a Layouter.
type Renderer struct {
	layouter Layouter
	now      func() time.Time
}

// New creates a Renderer.
func New(l Layouter) *Renderer {
	return &Renderer{layouter: l, now: time.Now}
}

// Render lays the topology out and annotates the result.
func (r *Renderer) Render(ctx context.Context, req Request) (*Rendered, error) {
	svg, err := r.layouter.Layout(ctx, req.View, req.Topology)
	if err != nil {
		return nil, err
	}
	pos, err := ParseSVG(svg)
	if err != nil {
		return nil, fmt.Errorf("%s view: %w", req.View, err)
	}

	var labels map[string]string
	if len(req.Labels) > 0 {
		labels = make(map[string]string, len(req.Labels))
		for dpid, name := range req.Labels {
			labels[types.SwitchElementID(req.View, dpid)] = name
		}
	}
	pending := append([]string{}, req.Topology.PendingIDs...)

	return &Rendered{
		View:       req.View,
		TenantID:   req.TenantID,
		SVG:        string(svg),
		Positions:  pos,
		FlowPaths:  FlowPathLines(req.View, req.FlowPaths, pos),
		Labels:     labels,
		PendingIDs: pending,
		Inactive:   append([]string(nil), req.Inactive...),
		RenderedAt: r.now(),
	}, nil
}

// Package ovx is the client of the controller's REST proxy.
package ovx

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/projecteru2/ovxview/config"
	"github.com/projecteru2/ovxview/types"
	"github.com/projecteru2/ovxview/utils"
)

// Client talks to the REST proxy. Every call takes the context of the sync
// cycle it belongs to, so aborting a cycle cancels its requests.
type Client struct {
	base  *url.URL
	hc    *http.Client
	retry bool

	flowtables singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithRetry retries transient failures with backoff. The CLI uses it; the
// sync loop does not, it restarts whole cycles instead.
func WithRetry() Option { return func(c *Client) { c.retry = true } }

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

// New creates a client for the proxy at conf.Backend.
func New(conf *config.Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(conf.Backend)
	if err != nil {
		return nil, fmt.Errorf("parse backend %q: %w", conf.Backend, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	c := &Client{base: base, hc: utils.NewHTTPClient(conf.HTTPTimeout)}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) endpoint(name string, query url.Values) string {
	u := *c.base
	u.Path += name
	u.RawQuery = query.Encode()
	return u.String()
}

func get[T any](ctx context.Context, c *Client, name string, query url.Values) (T, error) {
	u := c.endpoint(name, query)
	if !c.retry {
		return utils.GetJSON[T](ctx, c.hc, u)
	}
	return utils.DoWithRetry(ctx, func() (T, error) {
		return utils.GetJSON[T](ctx, c.hc, u)
	})
}

func tenant(id int) url.Values {
	return url.Values{"tenantId": {strconv.Itoa(id)}}
}

// PhysicalTopology calls getPhysicalTopology.
func (c *Client) PhysicalTopology(ctx context.Context) (types.Topology, error) {
	return get[types.Topology](ctx, c, "getPhysicalTopology", nil)
}

// VirtualNetworks calls listVirtualNetworks.
func (c *Client) VirtualNetworks(ctx context.Context) ([]int, error) {
	return get[[]int](ctx, c, "listVirtualNetworks", nil)
}

// PhysicalHosts calls listPhysicalHosts.
func (c *Client) PhysicalHosts(ctx context.Context) ([]types.Host, error) {
	return get[[]types.Host](ctx, c, "listPhysicalHosts", nil)
}

// PhysicalFlowPaths calls getPhysicalFlowpaths.
func (c *Client) PhysicalFlowPaths(ctx context.Context) (types.FlowPaths, error) {
	return get[types.FlowPaths](ctx, c, "getPhysicalFlowpaths", nil)
}

// VirtualTopology calls getVirtualTopology.
func (c *Client) VirtualTopology(ctx context.Context, tenantID int) (types.Topology, error) {
	return get[types.Topology](ctx, c, "getVirtualTopology", tenant(tenantID))
}

// VirtualSwitchMapping calls getVirtualSwitchMapping.
func (c *Client) VirtualSwitchMapping(ctx context.Context, tenantID int) (types.SwitchMapping, error) {
	return get[types.SwitchMapping](ctx, c, "getVirtualSwitchMapping", tenant(tenantID))
}

// VirtualLinkMapping calls getVirtualLinkMapping.
func (c *Client) VirtualLinkMapping(ctx context.Context, tenantID int) (types.LinkMapping, error) {
	return get[types.LinkMapping](ctx, c, "getVirtualLinkMapping", tenant(tenantID))
}

// VirtualHosts calls listVirtualHosts.
func (c *Client) VirtualHosts(ctx context.Context, tenantID int) ([]types.Host, error) {
	return get[[]types.Host](ctx, c, "listVirtualHosts", tenant(tenantID))
}

// VirtualFlowPaths calls getVirtualFlowpaths.
func (c *Client) VirtualFlowPaths(ctx context.Context, tenantID int) (types.FlowPaths, error) {
	return get[types.FlowPaths](ctx, c, "getVirtualFlowpaths", tenant(tenantID))
}

// flowtableDPID is the form the flowtable endpoints take: hex digits only.
func flowtableDPID(dpid string) string { return strings.ReplaceAll(dpid, ":", "") }

// PhysicalFlowtable calls getPhysicalFlowtable. Concurrent calls for the
// same switch share one request.
func (c *Client) PhysicalFlowtable(ctx context.Context, dpid string) (types.Flowtable, error) {
	q := url.Values{"dpid": {flowtableDPID(dpid)}}
	v, err, _ := c.flowtables.Do("p/"+q.Encode(), func() (any, error) {
		return get[types.Flowtable](ctx, c, "getPhysicalFlowtable", q)
	})
	if err != nil {
		return nil, err
	}
	return v.(types.Flowtable), nil
}

// VirtualFlowtable calls getVirtualFlowtable.
func (c *Client) VirtualFlowtable(ctx context.Context, tenantID int, vdpid string) (types.Flowtable, error) {
	q := tenant(tenantID)
	q.Set("vdpid", flowtableDPID(vdpid))
	v, err, _ := c.flowtables.Do("v/"+q.Encode(), func() (any, error) {
		return get[types.Flowtable](ctx, c, "getVirtualFlowtable", q)
	})
	if err != nil {
		return nil, err
	}
	return v.(types.Flowtable), nil
}

// Flowtable fetches the flowtable of a target.
func (c *Client) Flowtable(ctx context.Context, target types.FlowtableTarget) (types.Flowtable, error) {
	if target.View == types.ViewVirtual {
		return c.VirtualFlowtable(ctx, target.TenantID, target.DPID)
	}
	return c.PhysicalFlowtable(ctx, target.DPID)
}

// Ping reports whether the proxy answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := utils.DoAPI(ctx, c.hc, http.MethodGet, c.endpoint("listVirtualNetworks", nil), nil, http.StatusOK)
	return err
}

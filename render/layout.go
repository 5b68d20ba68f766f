// Package render turns a topology into a drawn view: the layout service
// lays it out as SVG and the element centers are read back from it.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/projecteru2/core/log"
	"github.com/projecteru2/ovxview/config"
	"github.com/projecteru2/ovxview/types"
	"github.com/projecteru2/ovxview/utils"
)

// Layouter lays a topology out and returns the SVG document.
type Layouter interface {
	Layout(ctx context.Context, view types.View, topo *types.Topology) ([]byte, error)
}

// LayoutClient calls layoutTopology on the proxy. Identical requests within
// the cache TTL are answered from memory.
type LayoutClient struct {
	base   *url.URL
	hc     *http.Client
	params map[types.View]config.LayoutParams
	cache  *gocache.Cache
}

// NewLayoutClient creates a client for the proxy at conf.Backend.
func NewLayoutClient(conf *config.Config) (*LayoutClient, error) {
	base, err := url.Parse(conf.Backend)
	if err != nil {
		return nil, fmt.Errorf("parse backend %q: %w", conf.Backend, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	base.Path += "layoutTopology"
	l := &LayoutClient{
		base: base,
		hc:   utils.NewHTTPClient(conf.HTTPTimeout),
		params: map[types.View]config.LayoutParams{
			types.ViewPhysical: conf.PhysicalLayout,
			types.ViewVirtual:  conf.VirtualLayout,
		},
	}
	if conf.LayoutCacheTTL > 0 {
		l.cache = gocache.New(conf.LayoutCacheTTL, 2*conf.LayoutCacheTTL)
	}
	return l, nil
}

func (l *LayoutClient) url(view types.View) string {
	p := l.params[view]
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	u := *l.base
	u.RawQuery = url.Values{
		"prefix":                    {string(view)},
		"fixedSwitchWidth":          {f(p.FixedSwitchWidth)},
		"repositionableSwitchWidth": {f(p.RepositionableSwitchWidth)},
		"hostWidth":                 {f(p.HostWidth)},
	}.Encode()
	return u.String()
}

// Layout implements Layouter.
func (l *LayoutClient) Layout(ctx context.Context, view types.View, topo *types.Topology) ([]byte, error) {
	logger := log.WithFunc("render.Layout")

	body, err := json.Marshal(topo)
	if err != nil {
		return nil, fmt.Errorf("encode %s topology: %w", view, err)
	}
	u := l.url(view)
	key := utils.UUIDv5(u + "\n" + string(body))

	if l.cache != nil {
		if svg, ok := l.cache.Get(key); ok {
			logger.Debugf(ctx, "%s layout served from cache", view)
			return svg.([]byte), nil
		}
	}

	start := time.Now()
	svg, err := utils.DoAPI(ctx, l.hc, http.MethodPost, u, body, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("layout %s topology: %w", view, err)
	}
	logger.Debugf(ctx, "%s layout took %s (%d bytes)", view, time.Since(start), len(svg))
	if l.cache != nil {
		l.cache.SetDefault(key, svg)
	}
	return svg, nil
}

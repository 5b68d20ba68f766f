// Package pipeline is the sync loop: it polls the controller, detects
// changes, tracks pending operator actions and re-renders changed views.
package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/projecteru2/core/log"
	"github.com/projecteru2/ovxview/config"
	"github.com/projecteru2/ovxview/diff"
	"github.com/projecteru2/ovxview/lock/flock"
	"github.com/projecteru2/ovxview/mapping"
	"github.com/projecteru2/ovxview/metrics"
	"github.com/projecteru2/ovxview/pending"
	"github.com/projecteru2/ovxview/render"
	"github.com/projecteru2/ovxview/storage"
	storejson "github.com/projecteru2/ovxview/storage/json"
	"github.com/projecteru2/ovxview/types"
)

// Event names handed to the Publisher.
const (
	EventRender    = "render"
	EventFlowtable = "flowtable"
	EventSelected  = "selected"
)

// Backend is the controller API the loop reads and acts on.
type Backend interface {
	PhysicalTopology(ctx context.Context) (types.Topology, error)
	VirtualNetworks(ctx context.Context) ([]int, error)
	PhysicalHosts(ctx context.Context) ([]types.Host, error)
	PhysicalFlowPaths(ctx context.Context) (types.FlowPaths, error)

	VirtualTopology(ctx context.Context, tenantID int) (types.Topology, error)
	VirtualSwitchMapping(ctx context.Context, tenantID int) (types.SwitchMapping, error)
	VirtualLinkMapping(ctx context.Context, tenantID int) (types.LinkMapping, error)
	VirtualHosts(ctx context.Context, tenantID int) ([]types.Host, error)
	VirtualFlowPaths(ctx context.Context, tenantID int) (types.FlowPaths, error)

	Flowtable(ctx context.Context, target types.FlowtableTarget) (types.Flowtable, error)

	LinkUp(ctx context.Context, src, dst string) error
	LinkDown(ctx context.Context, src, dst string) error
	StartPing(ctx context.Context, srcMAC, dstMAC string) error
	StopPing(ctx context.Context, tenantID int) error
}

// Renderer draws a view.
type Renderer interface {
	Render(ctx context.Context, req render.Request) (*render.Rendered, error)
}

// Publisher receives state change events.
type Publisher interface {
	Publish(event string, data any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

// LinkCache is the persisted physical link set. Links that go down stay in
// it so they can be drawn inactive.
type LinkCache struct {
	Links []types.Link `json:"links"`
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPublisher sends state change events to pub.
func WithPublisher(pub Publisher) Option { return func(p *Pipeline) { p.pub = pub } }

// WithLinkStore replaces the link cache store.
func WithLinkStore(s storage.Store[LinkCache]) Option { return func(p *Pipeline) { p.links = s } }

// WithGeo sets the initial core switch placement.
func WithGeo(g *config.Geo) Option { return func(p *Pipeline) { p.geo.Store(g) } }

// Pipeline owns the sync loop and the state it publishes.
type Pipeline struct {
	conf     *config.Config
	backend  Backend
	renderer Renderer
	pub      Publisher
	links    storage.Store[LinkCache]

	tracker *pending.Tracker
	mapping *mapping.State
	state   *State
	gen     Generation
	geo     atomic.Pointer[config.Geo]

	wake chan struct{}
}

// New creates a Pipeline. The link cache defaults to a JSON file under
// conf.RootDir; the caller creates the directory.
func New(conf *config.Config, backend Backend, renderer Renderer, opts ...Option) *Pipeline {
	p := &Pipeline{
		conf:     conf,
		backend:  backend,
		renderer: renderer,
		pub:      nopPublisher{},
		tracker:  pending.NewTracker(),
		mapping:  mapping.New(),
		state:    &State{},
		wake:     make(chan struct{}, 1),
	}
	p.geo.Store(config.DefaultGeo())
	for _, opt := range opts {
		opt(p)
	}
	if p.links == nil {
		p.links = storejson.New[LinkCache](conf.LinkCacheFile(), flock.New(conf.LinkCacheLock()))
	}
	return p
}

// State returns the published state.
func (p *Pipeline) State() *State { return p.state }

// Mapping returns the mapping of the selected network.
func (p *Pipeline) Mapping() *mapping.State { return p.mapping }

// Tracker returns the pending action tracker.
func (p *Pipeline) Tracker() *pending.Tracker { return p.tracker }

// Geo returns the current core switch placement.
func (p *Pipeline) Geo() *config.Geo { return p.geo.Load() }

// SetGeo replaces the core switch placement and redraws.
func (p *Pipeline) SetGeo(g *config.Geo) {
	p.geo.Store(g)
	p.Trigger()
}

type cycleResult struct {
	token uint64
	err   error
}

// Run drives the loop until ctx is done. A cycle that does not finish
// within RetryInterval is restarted; after a successful one the next starts
// UpdateInterval later. With NoPolling no timer is armed and cycles only run
// on start and on Trigger. Run returns early only on a diff error, which
// means the models carry values that cannot be compared.
func (p *Pipeline) Run(ctx context.Context) error {
	logger := log.WithFunc("pipeline.Run")

	retry := time.NewTimer(time.Hour)
	update := time.NewTimer(time.Hour)
	stopTimers := func() {
		retry.Stop()
		update.Stop()
	}
	stopTimers()
	defer stopTimers()
	defer p.gen.Abort()

	results := make(chan cycleResult, 1)
	start := func() {
		stopTimers()
		if p.state.paused() {
			p.gen.Abort()
			return
		}
		cctx, token := p.gen.Start(ctx)
		if !p.conf.NoPolling {
			retry.Reset(p.conf.RetryInterval)
		}
		go func() {
			err := p.cycle(cctx, token)
			select {
			case results <- cycleResult{token: token, err: err}:
			case <-ctx.Done():
			}
		}()
	}

	logger.Infof(ctx, "sync loop started, backend %s", p.conf.Backend)
	start()
	for {
		select {
		case <-ctx.Done():
			logger.Infof(ctx, "sync loop stopped")
			return nil

		case res := <-results:
			if !p.gen.Current(res.token) {
				continue
			}
			p.state.recordCycle(res.err)
			if errors.Is(res.err, diff.ErrUnsupportedKind) {
				logger.Errorf(ctx, res.err, "models cannot be compared")
				return res.err
			}
			if res.err != nil {
				// the watchdog restarts the cycle
				logger.Warnf(ctx, "sync cycle failed: %v", res.err)
				continue
			}
			retry.Stop()
			if !p.conf.NoPolling {
				update.Reset(p.conf.UpdateInterval)
			}

		case <-retry.C:
			metrics.Restarts.Inc()
			p.state.recordRestart()
			logger.Warnf(ctx, "sync cycle did not finish within %s, restarting", p.conf.RetryInterval)
			start()

		case <-update.C:
			start()

		case <-p.wake:
			start()
		}
	}
}

// RunOnce runs a single cycle synchronously.
func (p *Pipeline) RunOnce(ctx context.Context) error {
	cctx, token := p.gen.Start(ctx)
	defer p.gen.Abort()
	err := p.cycle(cctx, token)
	p.state.recordCycle(err)
	return err
}

// Trigger starts a fresh cycle, aborting the running one.
func (p *Pipeline) Trigger() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Pause aborts the running cycle and stops polling.
func (p *Pipeline) Pause() {
	p.state.setPaused(true)
	p.gen.Abort()
	p.Trigger()
}

// Resume restarts polling with a fresh cycle.
func (p *Pipeline) Resume() {
	p.state.setPaused(false)
	p.Trigger()
}

// SelectNetwork switches the virtual view to tenantID. Everything derived
// from the previous network is dropped before the next cycle starts.
func (p *Pipeline) SelectNetwork(tenantID int) {
	s := p.state
	s.mu.Lock()
	p.gen.Abort()
	old, had := s.reselect(tenantID, true)
	s.mu.Unlock()

	p.dropSelection(old, had, tenantID, true)
	p.pub.Publish(EventSelected, tenantID)
	p.Trigger()
}

// dropSelection releases what belonged to the previously selected network
// once the state has been switched.
func (p *Pipeline) dropSelection(old int, had bool, tenantID int, has bool) {
	if had && (!has || old != tenantID) {
		p.tracker.Drop(types.TenantScope(old))
	}
	p.mapping.Clear()
	metrics.SetPending(p.tracker.Count())
}

func (p *Pipeline) cycle(ctx context.Context, token uint64) error {
	if err := p.syncPhysical(ctx, token); err != nil {
		return err
	}
	if tenantID, ok := p.state.Selected(); ok {
		if err := p.syncVirtual(ctx, token, tenantID); err != nil {
			return err
		}
	}
	p.syncFlowtable(ctx, token)
	metrics.SetPending(p.tracker.Count())
	return nil
}

// commit applies fn to the state unless the generation of token was
// aborted meanwhile.
func (p *Pipeline) commit(token uint64, fn func(s *State)) bool {
	p.state.mu.Lock()
	defer p.state.mu.Unlock()
	if !p.gen.Current(token) {
		return false
	}
	fn(p.state)
	p.state.stats.LastUpdate = time.Now()
	return true
}

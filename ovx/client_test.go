package ovx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecteru2/ovxview/config"
	"github.com/projecteru2/ovxview/types"
	"github.com/projecteru2/ovxview/utils"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	conf := config.DefaultConfig()
	conf.Backend = srv.URL
	c, err := New(conf, opts...)
	require.NoError(t, err)
	return c
}

// --- Reads ---

func TestPhysicalTopology(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getPhysicalTopology", r.URL.Path)
		_, _ = w.Write([]byte(`{"switches":["00:01"],"links":[{"src":{"dpid":"00:01","port":1},"dst":{"dpid":"00:02","port":2},"linkId":3}]}`))
	})
	topo, err := c.PhysicalTopology(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"00:01"}, topo.Switches)
	require.Len(t, topo.Links, 1)
	assert.Equal(t, 3, topo.Links[0].LinkID)
	assert.Equal(t, 2, topo.Links[0].Dst.Port)
}

func TestVirtualCalls_PassTenant(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "4", r.URL.Query().Get("tenantId"))
		switch r.URL.Path {
		case "/getVirtualSwitchMapping":
			_, _ = w.Write([]byte(`{"v1":{"switches":["p1","p2"],"links":[7]}}`))
		case "/getVirtualLinkMapping":
			_, _ = w.Write([]byte(`{"1":[[7,8]]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	sm, err := c.VirtualSwitchMapping(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, types.SwitchMap{Switches: []string{"p1", "p2"}, Links: []int{7}}, sm["v1"])

	lm, err := c.VirtualLinkMapping(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{7, 8}}, lm["1"])
}

func TestFlowtable_DPIDWithoutColons(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/getPhysicalFlowtable":
			assert.Equal(t, "0000000000000100", r.URL.Query().Get("dpid"))
		case "/getVirtualFlowtable":
			assert.Equal(t, "2", r.URL.Query().Get("tenantId"))
			assert.Equal(t, "00a4230500000001", r.URL.Query().Get("vdpid"))
		}
		_, _ = w.Write([]byte(`[{"match":{"in_port":1},"actionsList":[{"type":"OUTPUT","port":2}]}]`))
	})
	ft, err := c.Flowtable(context.Background(), types.FlowtableTarget{View: types.ViewPhysical, DPID: "00:00:00:00:00:00:01:00"})
	require.NoError(t, err)
	assert.Len(t, ft, 1)

	_, err = c.Flowtable(context.Background(), types.FlowtableTarget{View: types.ViewVirtual, DPID: "00:a4:23:05:00:00:00:01", TenantID: 2})
	require.NoError(t, err)
}

func TestBackendError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})
	_, err := c.PhysicalHosts(context.Background())
	var ae *utils.APIError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusBadGateway, ae.Code)
}

func TestRetryOption(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[1,2]`))
	}, WithRetry())
	nets, err := c.VirtualNetworks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, nets)
	assert.EqualValues(t, 3, calls.Load())
}

// --- Actions ---

func TestActions_Casing(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]string{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		seen[r.URL.Path] = r.URL.RawQuery
		_, _ = w.Write([]byte(`{}`))
	})
	ctx := context.Background()
	require.NoError(t, c.LinkUp(ctx, "00:0a", "00:0b"))
	require.NoError(t, c.LinkDown(ctx, "00:0a", "00:0b"))
	require.NoError(t, c.StartPing(ctx, "AA:BB", "CC:DD"))
	require.NoError(t, c.StopPing(ctx, 3))

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, "dst=00%3A0B&src=00%3A0A", seen["/linkup"])
	assert.Equal(t, "dst=00%3A0B&src=00%3A0A", seen["/linkdown"])
	assert.Equal(t, "dst=cc%3Add&src=aa%3Abb", seen["/startPing"])
	assert.Equal(t, "tenantId=3", seen["/stopPing"])
}

// --- Bulk ---

func TestFlowtablesOf(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("dpid") == "bad" {
			http.Error(w, "no such switch", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	pool, err := ants.NewPool(2)
	require.NoError(t, err)
	defer pool.Release()

	tables, err := c.FlowtablesOf(context.Background(), pool, []string{"00:01", "00:02", "bad"})
	require.Error(t, err)
	assert.Len(t, tables, 2)
	assert.Contains(t, tables, "00:01")
}

func TestNew_BadBackend(t *testing.T) {
	conf := config.DefaultConfig()
	conf.Backend = "://nope"
	_, err := New(conf)
	assert.Error(t, err)
}

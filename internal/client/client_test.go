package client_test

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netvista-io/netsync/internal/client"
	"github.com/netvista-io/netsync/pkg/netsync"
	"github.com/netvista-io/netsync/pkg/store"
)

// newFacade builds a facade against serverURL with attached stores. The
// deferred re-sync timers are stopped so tests observe only the
// synchronous effects of a write.
func newFacade(t *testing.T, serverURL string) *client.Client {
	t.Helper()

	facade, err := client.New(&netsync.Config{
		BaseURL:       serverURL,
		BasicAuthUser: "admin",
		BasicAuthPass: "secret",
	})
	require.NoError(t, err)

	facade.SetStores(store.NewSet())
	facade.StopSync()

	return facade
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := client.New(nil)
	assert.ErrorIs(t, err, netsync.ErrConfigRequired)

	_, err = client.New(&netsync.Config{BasicAuthUser: "admin"})
	assert.ErrorIs(t, err, netsync.ErrBaseURLRequired)

	_, err = client.New(&netsync.Config{BaseURL: "https://netvista.lab"})
	assert.ErrorIs(t, err, netsync.ErrCredentialsNeeded)
}

func TestClient_Get_Dispatch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
		assert.Equal(t, "/api/equipment/", request.URL.Path)

		writeJSON(t, writer, map[string]any{
			"count": 1,
			"results": []netsync.Device{
				{ID: "d1", Name: "edge-sw-01", Vendor: "cisco", Healthy: true},
			},
		})
	}))
	defer server.Close()

	facade := newFacade(t, server.URL)
	ctx := context.Background()

	got, err := facade.Get(ctx, netsync.ModuleEquipment, netsync.KindData, nil)
	require.NoError(t, err)

	result, ok := got.(*netsync.ListResult[netsync.Device])
	require.True(t, ok)
	assert.Equal(t, "edge-sw-01", result.Data[0].Name)

	_, err = facade.Get(ctx, netsync.Module("bogus"), netsync.KindData, nil)
	assert.ErrorIs(t, err, netsync.ErrUnknownModule)

	_, err = facade.Get(ctx, netsync.ModuleEquipment, netsync.KindServers, nil)
	assert.ErrorIs(t, err, netsync.ErrUnknownKind)

	// Node reads need the owning project.
	_, err = facade.Get(ctx, netsync.ModuleGNS3, netsync.KindNodes, nil)
	assert.True(t, netsync.IsValidation(err))
}

func TestClient_InterceptorWiring(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
		assert.Equal(t, "netvista-ui", request.Header.Get("X-Origin"))

		writeJSON(t, writer, map[string]any{"count": 0, "results": []netsync.Device{}})
	}))
	defer server.Close()

	collector := netsync.NewMetricsCollector()
	chain := netsync.NewInterceptorChain()
	chain.AddRequestInterceptor(netsync.HeaderInterceptor(map[string]string{"X-Origin": "netvista-ui"}))
	chain.AddRequestInterceptor(netsync.MetricsRequestInterceptor(collector))
	chain.AddResponseInterceptor(netsync.MetricsResponseInterceptor(collector))

	facade, err := client.New(&netsync.Config{
		BaseURL:       server.URL,
		BasicAuthUser: "admin",
		BasicAuthPass: "secret",
		Interceptors:  chain,
	})
	require.NoError(t, err)
	facade.StopSync()

	_, err = facade.Get(context.Background(), netsync.ModuleEquipment, netsync.KindData, nil)
	require.NoError(t, err)

	metrics := collector.GetMetrics("GET /api/equipment/")
	require.NotNil(t, metrics)
	assert.Equal(t, int64(1), metrics.TotalRequests)
	assert.Positive(t, metrics.AverageLatency)
}

func TestClient_Post_UnknownAction(t *testing.T) {
	t.Parallel()

	facade := newFacade(t, "http://unused")

	_, err := facade.Post(context.Background(), netsync.ModuleViews, netsync.ActionDiscover, nil)
	assert.ErrorIs(t, err, netsync.ErrUnknownAction)
}

func TestClient_Post_Dedup(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
		calls.Add(1)

		writeJSON(t, writer, map[string]any{
			"success": true,
			"data":    netsync.APIClient{ID: "c1", Name: "grafana"},
		})
	}))
	defer server.Close()

	facade := newFacade(t, server.URL)
	ctx := context.Background()

	payload := &netsync.ClientRegistration{Name: "grafana", BaseURL: "https://grafana.lab"}

	first, err := facade.Post(ctx, netsync.ModuleClients, netsync.ActionRegisterClient, payload)
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.False(t, first.Deduped)

	// A byte-identical write inside the window returns the first outcome
	// without touching the transport.
	second, err := facade.Post(ctx, netsync.ModuleClients, netsync.ActionRegisterClient, payload)
	require.NoError(t, err)
	assert.True(t, second.Deduped)
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, int32(1), calls.Load())

	// A different payload is a different write.
	other := &netsync.ClientRegistration{Name: "archiver", BaseURL: "https://archive.lab"}

	_, err = facade.Post(ctx, netsync.ModuleClients, netsync.ActionRegisterClient, other)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Post_Invalidation(t *testing.T) {
	t.Parallel()

	var equipmentCalls atomic.Int32

	server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
		switch request.URL.Path {
		case "/api/equipment/":
			equipmentCalls.Add(1)
			writeJSON(t, writer, map[string]any{"count": 0, "results": []netsync.Device{}})
		case "/api/gns3_integration/api/projects/p1/start/":
			writeJSON(t, writer, map[string]any{
				"success": true,
				"data":    netsync.Project{ID: "p1", Status: netsync.ProjectStatusOpened},
			})
		default:
			writer.WriteHeader(nethttp.StatusNotFound)
		}
	}))
	defer server.Close()

	facade := newFacade(t, server.URL)
	ctx := context.Background()

	// Prime the equipment cache.
	_, err := facade.Get(ctx, netsync.ModuleEquipment, netsync.KindData, nil)
	require.NoError(t, err)

	_, err = facade.Get(ctx, netsync.ModuleEquipment, netsync.KindData, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), equipmentCalls.Load())

	// Starting a project changes equipment reachability, so its cache
	// goes too.
	_, err = facade.Post(ctx, netsync.ModuleGNS3, netsync.ActionStartProject, &netsync.ActionTarget{ID: "p1"})
	require.NoError(t, err)

	_, err = facade.Get(ctx, netsync.ModuleEquipment, netsync.KindData, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), equipmentCalls.Load())
}

func TestClient_Post_PendingGuard(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	facade := newFacade(t, server.URL)

	// Same (action, id) already in flight.
	require.True(t, facade.Stores().Projects.BeginAction(store.ActionStarting, "p1"))

	_, err := facade.Post(context.Background(), netsync.ModuleGNS3, netsync.ActionStartProject, &netsync.ActionTarget{ID: "p1"})
	require.ErrorIs(t, err, netsync.ErrActionInFlight)
	assert.Zero(t, calls.Load())
}

func TestClient_Post_ReconcilesStore(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
		writeJSON(t, writer, map[string]any{
			"success":  true,
			"data":     netsync.Project{ID: "p1", Name: "edge-lab", Status: netsync.ProjectStatusOpened, NodeCount: 4},
			"metadata": netsync.ActionMetadata{NewStatus: netsync.ProjectStatusOpened},
		})
	}))
	defer server.Close()

	facade := newFacade(t, server.URL)
	facade.Stores().Projects.ReplaceAll([]netsync.Project{
		{ID: "p1", Name: "edge-lab", Status: netsync.ProjectStatusClosed},
	})

	outcome, err := facade.Post(context.Background(), netsync.ModuleGNS3, netsync.ActionStartProject, &netsync.ActionTarget{ID: "p1"})
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, netsync.ProjectStatusOpened, outcome.Metadata.NewStatus)

	var confirmed netsync.Project

	require.NoError(t, json.Unmarshal(outcome.Data, &confirmed))
	assert.Equal(t, 4, confirmed.NodeCount)

	// The confirmed copy replaced the optimistic one.
	got, ok := facade.Stores().Projects.Get("p1")
	require.True(t, ok)
	assert.Equal(t, netsync.ProjectStatusOpened, got.Status)
	assert.Equal(t, 4, got.NodeCount)
	assert.False(t, facade.Stores().Projects.IsStale("p1"))
	assert.False(t, facade.Stores().Projects.InFlight(store.ActionStarting, "p1"))
}

func TestClient_Post_FailureMarksStale(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
		writer.WriteHeader(nethttp.StatusNotFound)
	}))
	defer server.Close()

	facade := newFacade(t, server.URL)
	facade.Stores().Projects.ReplaceAll([]netsync.Project{
		{ID: "p1", Status: netsync.ProjectStatusClosed},
	})

	_, err := facade.Post(context.Background(), netsync.ModuleGNS3, netsync.ActionStartProject, &netsync.ActionTarget{ID: "p1"})
	require.Error(t, err)
	assert.True(t, netsync.IsNotFound(err))

	// The optimistic copy stays, flagged for the next refresh.
	got, _ := facade.Stores().Projects.Get("p1")
	assert.Equal(t, netsync.ProjectStatusOpened, got.Status)
	assert.True(t, facade.Stores().Projects.IsStale("p1"))
	assert.False(t, facade.Stores().Projects.InFlight(store.ActionStarting, "p1"))
}

func TestClient_GetStats(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
		writeJSON(t, writer, map[string]any{"count": 0, "results": []netsync.Device{}})
	}))
	defer server.Close()

	facade := newFacade(t, server.URL)

	_, err := facade.Get(context.Background(), netsync.ModuleEquipment, netsync.KindData, nil)
	require.NoError(t, err)

	stats := facade.GetStats()
	assert.Len(t, stats.Caches, len(netsync.KnownModules()))
	assert.Equal(t, int64(1), stats.Transport.Requests)
	assert.Equal(t, int64(1), stats.Caches[netsync.ModuleEquipment].Misses)
	assert.False(t, stats.GeneratedAt.IsZero())
}

func TestClient_ClearCaches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(nethttp.HandlerFunc(func(writer nethttp.ResponseWriter, request *nethttp.Request) {
		calls.Add(1)
		writeJSON(t, writer, map[string]any{"count": 0, "results": []netsync.Device{}})
	}))
	defer server.Close()

	facade := newFacade(t, server.URL)
	ctx := context.Background()

	_, err := facade.Get(ctx, netsync.ModuleEquipment, netsync.KindData, nil)
	require.NoError(t, err)
	require.NoError(t, facade.ClearCaches(ctx))

	_, err = facade.Get(ctx, netsync.ModuleEquipment, netsync.KindData, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Sync(t *testing.T) {
	t.Parallel()

	facade := newFacade(t, "http://unused")

	assert.Equal(t, netsync.SyncDisconnected, facade.SyncStatus())
	assert.ErrorIs(t, facade.StartSync(), netsync.ErrSyncNotConfigured)
}

package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/netvista-io/netsync/internal/auth"
	"github.com/netvista-io/netsync/internal/constants"
	internalhttp "github.com/netvista-io/netsync/internal/http"
	"github.com/netvista-io/netsync/pkg/netsync"
	"github.com/netvista-io/netsync/pkg/store"
)

// moduleGateway is the slice of a gateway the facade needs for cache
// management and deferred re-sync.
type moduleGateway interface {
	ClearCache(ctx context.Context) error
	CacheStats() netsync.CacheStats
}

// actionKey addresses one write operation.
type actionKey struct {
	module netsync.Module
	action netsync.Action
}

// actionFunc executes one write and returns its data and metadata.
type actionFunc func(ctx context.Context, payload interface{}) (interface{}, netsync.ActionMetadata, error)

// Client is the unified facade. All state is per instance: caches, dedup
// window, statistics, stores, and sync orchestration.
type Client struct {
	config    *netsync.Config
	transport *internalhttp.Client
	logger    netsync.Logger

	clients   *ClientsClient
	views     *ViewsClient
	dashboard *DashboardClient
	projects  *ProjectsClient
	qos       *QoSClient
	equipment *EquipmentClient

	gateways map[netsync.Module]moduleGateway
	actions  map[actionKey]actionFunc
	rules    *netsync.RuleTable
	dedup    *netsync.CacheManager
	resync   *resyncScheduler
	stores   *store.Set
	sync     netsync.SyncOrchestrator
}

// New creates the facade from config. Every gateway gets its own cache
// built from the configured backend.
func New(config *netsync.Config) (*Client, error) {
	if config == nil {
		return nil, netsync.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, netsync.ErrBaseURLRequired
	}

	creds, err := auth.NewChainProvider(config.TokenProvider, config.BasicAuthUser, config.BasicAuthPass)
	if err != nil {
		return nil, err
	}

	opts := []internalhttp.Option{
		internalhttp.WithDebug(config.Debug),
	}

	if config.Logger != nil {
		opts = append(opts, internalhttp.WithLogger(config.Logger))
	}

	if config.UserAgent != "" {
		opts = append(opts, internalhttp.WithUserAgent(config.UserAgent))
	}

	if config.Interceptors != nil {
		opts = append(opts, internalhttp.WithInterceptors(config.Interceptors))
	}

	if config.RetryMax > 0 {
		opts = append(opts, internalhttp.WithRetryConfig(config.RetryMax, constants.RetryWaitMin, constants.RetryWaitMax))
	}

	if config.HTTPTimeout > 0 || config.UploadTimeout > 0 {
		timeout := config.HTTPTimeout
		if timeout <= 0 {
			timeout = constants.DefaultHTTPTimeout
		}

		uploadTimeout := config.UploadTimeout
		if uploadTimeout <= 0 {
			uploadTimeout = constants.UploadHTTPTimeout
		}

		opts = append(opts, internalhttp.WithTimeouts(timeout, uploadTimeout))
	}

	transport := internalhttp.NewClient(config.BaseURL, creds, opts...)

	newCache := func() (netsync.Cache, error) {
		return netsync.NewCacheFromConfig(config.Cache)
	}

	client := &Client{
		config:    config,
		transport: transport,
		logger:    config.Logger,
		dedup:     netsync.NewCacheManager(netsync.NewMemoryCache(constants.DedupCacheSize), config.Logger),
	}

	rules, err := netsync.NewRuleTable()
	if err != nil {
		return nil, fmt.Errorf("building invalidation table: %w", err)
	}

	client.rules = rules

	err = client.initializeGateways(newCache)
	if err != nil {
		return nil, err
	}

	client.initializeActions()

	client.resync = newResyncScheduler(client.refreshModule)

	return client, nil
}

// initializeGateways builds one gateway per module, each with its own
// cache backend.
func (c *Client) initializeGateways(newCache func() (netsync.Cache, error)) error {
	caches := make(map[netsync.Module]netsync.Cache, len(netsync.KnownModules()))

	for _, module := range netsync.KnownModules() {
		cache, err := newCache()
		if err != nil {
			return fmt.Errorf("building cache for %s: %w", module, err)
		}

		caches[module] = cache
	}

	c.clients = NewClientsClient(c.transport, caches[netsync.ModuleClients], c.logger)
	c.views = NewViewsClient(c.transport, caches[netsync.ModuleViews], c.logger)
	c.dashboard = NewDashboardClient(c.transport, caches[netsync.ModuleDashboard], c.logger)
	c.projects = NewProjectsClient(c.transport, caches[netsync.ModuleGNS3], c.logger)
	c.qos = NewQoSClient(c.transport, caches[netsync.ModuleQoS], c.logger)
	c.equipment = NewEquipmentClient(c.transport, caches[netsync.ModuleEquipment], c.logger)

	c.gateways = map[netsync.Module]moduleGateway{
		netsync.ModuleClients:   c.clients,
		netsync.ModuleViews:     c.views,
		netsync.ModuleDashboard: c.dashboard,
		netsync.ModuleGNS3:      c.projects,
		netsync.ModuleQoS:       c.qos,
		netsync.ModuleEquipment: c.equipment,
	}

	return nil
}

// convertPayload re-encodes an arbitrary payload into the typed form an
// action expects.
func convertPayload[T any](payload interface{}) (*T, error) {
	if payload == nil {
		return nil, nil
	}

	if typed, ok := payload.(*T); ok {
		return typed, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}

	out := new(T)

	err = json.Unmarshal(data, out)
	if err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}

	return out, nil
}

// initializeActions wires every (module, action) pair to its gateway
// call.
func (c *Client) initializeActions() {
	c.actions = map[actionKey]actionFunc{
		{netsync.ModuleClients, netsync.ActionRegisterClient}: func(ctx context.Context, payload interface{}) (interface{}, netsync.ActionMetadata, error) {
			reg, err := convertPayload[netsync.ClientRegistration](payload)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			result, err := c.clients.Register(ctx, reg)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			return result.Data, result.Metadata, nil
		},
		{netsync.ModuleClients, netsync.ActionTestServer}: func(ctx context.Context, payload interface{}) (interface{}, netsync.ActionMetadata, error) {
			target, err := convertPayload[netsync.ActionTarget](payload)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			result, err := c.clients.TestServer(ctx, targetID(target))
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			return result.Data, result.Metadata, nil
		},
		{netsync.ModuleGNS3, netsync.ActionCreateProject}: func(ctx context.Context, payload interface{}) (interface{}, netsync.ActionMetadata, error) {
			create, err := convertPayload[netsync.ProjectCreate](payload)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			result, err := c.projects.Create(ctx, create)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			return result.Data, result.Metadata, nil
		},
		{netsync.ModuleGNS3, netsync.ActionStartProject}: func(ctx context.Context, payload interface{}) (interface{}, netsync.ActionMetadata, error) {
			target, err := convertPayload[netsync.ActionTarget](payload)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			result, err := c.projects.Start(ctx, targetID(target))
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			return result.Data, result.Metadata, nil
		},
		{netsync.ModuleGNS3, netsync.ActionStopProject}: func(ctx context.Context, payload interface{}) (interface{}, netsync.ActionMetadata, error) {
			target, err := convertPayload[netsync.ActionTarget](payload)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			result, err := c.projects.Stop(ctx, targetID(target))
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			return result.Data, result.Metadata, nil
		},
		{netsync.ModuleGNS3, netsync.ActionStartNode}: func(ctx context.Context, payload interface{}) (interface{}, netsync.ActionMetadata, error) {
			target, err := convertPayload[netsync.ActionTarget](payload)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			result, err := c.projects.StartNode(ctx, targetParentID(target), targetID(target))
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			return result.Data, result.Metadata, nil
		},
		{netsync.ModuleGNS3, netsync.ActionStopNode}: func(ctx context.Context, payload interface{}) (interface{}, netsync.ActionMetadata, error) {
			target, err := convertPayload[netsync.ActionTarget](payload)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			result, err := c.projects.StopNode(ctx, targetParentID(target), targetID(target))
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			return result.Data, result.Metadata, nil
		},
		{netsync.ModuleQoS, netsync.ActionCreatePolicy}: func(ctx context.Context, payload interface{}) (interface{}, netsync.ActionMetadata, error) {
			create, err := convertPayload[netsync.PolicyCreate](payload)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			result, err := c.qos.Create(ctx, create)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			return result.Data, result.Metadata, nil
		},
		{netsync.ModuleQoS, netsync.ActionUpdatePolicy}: func(ctx context.Context, payload interface{}) (interface{}, netsync.ActionMetadata, error) {
			update, err := convertPayload[policyUpdateTarget](payload)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			if update == nil {
				return nil, netsync.ActionMetadata{}, netsync.NewValidationError("updatePolicy", []string{"policy_id"})
			}

			result, err := c.qos.Update(ctx, update.ID, &update.PolicyUpdate)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			return result.Data, result.Metadata, nil
		},
		{netsync.ModuleQoS, netsync.ActionApplyPolicy}: func(ctx context.Context, payload interface{}) (interface{}, netsync.ActionMetadata, error) {
			target, err := convertPayload[netsync.ActionTarget](payload)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			result, err := c.qos.Apply(ctx, targetID(target))
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			return result.Data, result.Metadata, nil
		},
		{netsync.ModuleEquipment, netsync.ActionDiscover}: func(ctx context.Context, payload interface{}) (interface{}, netsync.ActionMetadata, error) {
			req, err := convertPayload[netsync.DiscoveryRequest](payload)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			result, err := c.equipment.Discover(ctx, req)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			return result.Data, result.Metadata, nil
		},
		{netsync.ModuleDashboard, netsync.ActionSaveLayout}: func(ctx context.Context, payload interface{}) (interface{}, netsync.ActionMetadata, error) {
			layout, err := convertPayload[netsync.LayoutUpdate](payload)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			result, err := c.dashboard.SaveLayout(ctx, layout)
			if err != nil {
				return nil, netsync.ActionMetadata{}, err
			}

			return result.Data, result.Metadata, nil
		},
	}
}

// policyUpdateTarget combines the policy id with its partial update for
// the generic write entry point.
type policyUpdateTarget struct {
	ID string `json:"id"`
	netsync.PolicyUpdate
}

func targetID(target *netsync.ActionTarget) string {
	if target == nil {
		return ""
	}

	return target.ID
}

func targetParentID(target *netsync.ActionTarget) string {
	if target == nil {
		return ""
	}

	return target.ParentID
}

// Clients returns the client-registry gateway.
func (c *Client) Clients() netsync.ClientsGateway { return c.clients }

// Views returns the aggregated-views gateway.
func (c *Client) Views() netsync.ViewsGateway { return c.views }

// Dashboard returns the dashboard-widgets gateway.
func (c *Client) Dashboard() netsync.DashboardGateway { return c.dashboard }

// Projects returns the emulation-projects gateway.
func (c *Client) Projects() netsync.ProjectsGateway { return c.projects }

// QoS returns the QoS-policies gateway.
func (c *Client) QoS() netsync.QoSGateway { return c.qos }

// Equipment returns the equipment-inventory gateway.
func (c *Client) Equipment() netsync.EquipmentGateway { return c.equipment }

// Get dispatches a read on (module, kind).
func (c *Client) Get(ctx context.Context, module netsync.Module, kind netsync.Kind, opts *netsync.GetOptions) (any, error) {
	switch module {
	case netsync.ModuleClients:
		switch kind {
		case netsync.KindData:
			return c.clients.List(ctx, opts)
		case netsync.KindServers:
			return c.clients.ListServers(ctx, opts)
		}
	case netsync.ModuleViews:
		switch kind {
		case netsync.KindOverview:
			return c.views.Overview(ctx, opts)
		case netsync.KindTopology:
			return c.views.Topology(ctx, opts)
		}
	case netsync.ModuleDashboard:
		if kind == netsync.KindData || kind == netsync.KindWidgets {
			return c.dashboard.ListWidgets(ctx, opts)
		}
	case netsync.ModuleGNS3:
		switch kind {
		case netsync.KindData:
			return c.projects.List(ctx, opts)
		case netsync.KindNodes:
			if opts == nil || opts.ParentID == "" {
				return nil, netsync.NewValidationError("listNodes", []string{"parent_id"})
			}

			return c.projects.ListNodes(ctx, opts.ParentID, opts)
		}
	case netsync.ModuleQoS:
		if kind == netsync.KindData {
			return c.qos.List(ctx, opts)
		}
	case netsync.ModuleEquipment:
		if kind == netsync.KindData {
			return c.equipment.List(ctx, opts)
		}
	default:
		return nil, fmt.Errorf("%w: %s", netsync.ErrUnknownModule, module)
	}

	return nil, fmt.Errorf("%w: %s/%s", netsync.ErrUnknownKind, module, kind)
}

// dedupKey hashes (module, action, truncated payload) so byte-identical
// writes inside the window collapse to one transport call.
func dedupKey(module netsync.Module, action netsync.Action, payload interface{}) string {
	hasher := sha256.New()
	hasher.Write([]byte(string(module) + "|" + string(action) + "|"))

	if payload != nil {
		data, err := json.Marshal(payload)
		if err == nil {
			if len(data) > 512 {
				data = data[:512]
			}

			hasher.Write(data)
		}
	}

	return hex.EncodeToString(hasher.Sum(nil))
}

// Post dispatches a write on (module, action): dedup first, then the
// gateway call, then cache invalidation and deferred re-sync on success.
// Failed writes leave every cache untouched.
func (c *Client) Post(ctx context.Context, module netsync.Module, action netsync.Action, payload interface{}) (*netsync.ActionOutcome, error) {
	fn, ok := c.actions[actionKey{module, action}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", netsync.ErrUnknownAction, module, action)
	}

	key := dedupKey(module, action, payload)

	if cached, err := c.dedup.Get(ctx, key); err == nil {
		outcome := &netsync.ActionOutcome{}
		if json.Unmarshal(cached, outcome) == nil {
			outcome.Deduped = true

			return outcome, nil
		}
	}

	hooks := c.bindStore(module, action, payload)

	if hooks != nil {
		if !hooks.begin() {
			return nil, netsync.ErrActionInFlight
		}

		defer hooks.end()

		hooks.optimistic()
	}

	data, meta, err := fn(ctx, payload)
	if err != nil {
		if hooks != nil {
			hooks.onFailure()
		}

		return nil, err
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding action data: %w", err)
	}

	outcome := &netsync.ActionOutcome{
		Success:     true,
		Module:      module,
		Action:      action,
		Data:        raw,
		Metadata:    meta,
		CompletedAt: time.Now(),
	}

	if hooks != nil {
		hooks.onSuccess(raw, meta)
	}

	if encoded, err := json.Marshal(outcome); err == nil {
		_ = c.dedup.Set(ctx, key, encoded, constants.WriteDedupTTL)
	}

	c.invalidateAndResync(ctx, module, action)

	return outcome, nil
}

// invalidateAndResync clears every affected cache and schedules the
// deferred refreshes: the initiator sooner, dependents a beat later.
func (c *Client) invalidateAndResync(ctx context.Context, module netsync.Module, action netsync.Action) {
	for _, affected := range c.rules.AffectedBy(module, action) {
		if gw, ok := c.gateways[affected]; ok {
			_ = gw.ClearCache(ctx)
		}
	}

	if c.resync == nil {
		return
	}

	c.resync.schedule(module, constants.ResyncInitiatorDelay)

	for _, dependent := range c.rules.Dependents(module, action) {
		c.resync.schedule(dependent, constants.ResyncDependentDelay)
	}
}

// storeHooks bridges a write into the state containers: the pending-action
// guard, the optimistic patch, the staleness mark on failure, and the
// reconcile on success.
type storeHooks struct {
	begin      func() bool
	end        func()
	optimistic func()
	onFailure  func()
	onSuccess  func(data json.RawMessage, meta netsync.ActionMetadata)
}

// containerHooks builds the standard hook set over one container.
func containerHooks[T any](
	container *store.Container[T],
	storeAction store.Action,
	id string,
	patch func(T) T,
) *storeHooks {
	return &storeHooks{
		begin: func() bool { return container.BeginAction(storeAction, id) },
		end:   func() { container.EndAction(storeAction, id) },
		optimistic: func() {
			if patch != nil {
				container.ApplyPatch(id, patch)
			}
		},
		onFailure: func() { container.MarkStale(id) },
		onSuccess: func(data json.RawMessage, _ netsync.ActionMetadata) {
			var item T
			if json.Unmarshal(data, &item) == nil {
				container.Upsert(item)
			}
		},
	}
}

// bindStore maps id-scoped actions onto their containers. Actions without
// a target resource, and clients without stores, carry no hooks.
func (c *Client) bindStore(module netsync.Module, action netsync.Action, payload interface{}) *storeHooks {
	if c.stores == nil {
		return nil
	}

	target, err := convertPayload[netsync.ActionTarget](payload)
	if err != nil || target == nil || target.ID == "" {
		return nil
	}

	id := target.ID

	switch {
	case module == netsync.ModuleClients && action == netsync.ActionTestServer:
		return containerHooks(c.stores.Servers, store.ActionTesting, id, nil)

	case module == netsync.ModuleGNS3 && action == netsync.ActionStartProject:
		return containerHooks(c.stores.Projects, store.ActionStarting, id, func(p netsync.Project) netsync.Project {
			p.Status = netsync.ProjectStatusOpened

			return p
		})

	case module == netsync.ModuleGNS3 && action == netsync.ActionStopProject:
		return containerHooks(c.stores.Projects, store.ActionStopping, id, func(p netsync.Project) netsync.Project {
			p.Status = netsync.ProjectStatusClosed

			return p
		})

	case module == netsync.ModuleGNS3 && action == netsync.ActionStartNode:
		return containerHooks(c.stores.Nodes, store.ActionStarting, id, func(n netsync.Node) netsync.Node {
			n.Status = "started"

			return n
		})

	case module == netsync.ModuleGNS3 && action == netsync.ActionStopNode:
		return containerHooks(c.stores.Nodes, store.ActionStopping, id, func(n netsync.Node) netsync.Node {
			n.Status = "stopped"

			return n
		})

	case module == netsync.ModuleQoS && action == netsync.ActionApplyPolicy:
		return containerHooks(c.stores.Policies, store.ActionApplying, id, nil)

	default:
		return nil
	}
}

// refreshModule force-refreshes a module's primary reads and reconciles
// the stores from the fresh data.
func (c *Client) refreshModule(module netsync.Module) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultHTTPTimeout)
	defer cancel()

	opts := &netsync.GetOptions{ForceRefresh: true}

	switch module {
	case netsync.ModuleClients:
		if result, err := c.clients.List(ctx, opts); err == nil && c.stores != nil {
			c.stores.Clients.ReplaceAll(result.Data)
		}

		if result, err := c.clients.ListServers(ctx, opts); err == nil && c.stores != nil {
			c.stores.Servers.ReplaceAll(result.Data)
		}
	case netsync.ModuleViews:
		_, _ = c.views.Overview(ctx, opts)
		_, _ = c.views.Topology(ctx, opts)
	case netsync.ModuleDashboard:
		if result, err := c.dashboard.ListWidgets(ctx, opts); err == nil && c.stores != nil {
			c.stores.Widgets.ReplaceAll(result.Data)
		}
	case netsync.ModuleGNS3:
		if result, err := c.projects.List(ctx, opts); err == nil && c.stores != nil {
			c.stores.Projects.ReplaceAll(result.Data)
		}
	case netsync.ModuleQoS:
		if result, err := c.qos.List(ctx, opts); err == nil && c.stores != nil {
			c.stores.Policies.ReplaceAll(result.Data)
		}
	case netsync.ModuleEquipment:
		if result, err := c.equipment.List(ctx, opts); err == nil && c.stores != nil {
			c.stores.Devices.ReplaceAll(result.Data)
		}
	}
}

// RefreshModule implements the realtime sink: a refresh message triggers
// an immediate forced re-read.
func (c *Client) RefreshModule(module netsync.Module) {
	c.refreshModule(module)
}

// InvalidateModule implements the realtime sink: an invalidate message
// only drops the cache, leaving the next read to refill it.
func (c *Client) InvalidateModule(module netsync.Module) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultHTTPTimeout)
	defer cancel()

	if gw, ok := c.gateways[module]; ok {
		_ = gw.ClearCache(ctx)
	}
}

// GetStats returns transport and cache statistics.
func (c *Client) GetStats() *netsync.Stats {
	caches := make(map[netsync.Module]netsync.CacheStats, len(c.gateways))

	for module, gw := range c.gateways {
		caches[module] = gw.CacheStats()
	}

	return &netsync.Stats{
		Transport:   c.transport.Stats(),
		Caches:      caches,
		Dedup:       c.dedup.GetStats(),
		GeneratedAt: time.Now(),
	}
}

// GetHealthStatus probes the backend overview endpoint.
func (c *Client) GetHealthStatus() *netsync.HealthStatus {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultHTTPTimeout)
	defer cancel()

	_, err := c.views.Overview(ctx, &netsync.GetOptions{ForceRefresh: true})

	return &netsync.HealthStatus{
		BaseURL:     c.config.BaseURL,
		Reachable:   err == nil,
		SyncState:   c.SyncStatus(),
		LastChecked: time.Now(),
	}
}

// ClearCaches empties every module cache.
func (c *Client) ClearCaches(ctx context.Context) error {
	var lastErr error

	for _, gw := range c.gateways {
		err := gw.ClearCache(ctx)
		if err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// SetStores attaches the state containers.
func (c *Client) SetStores(stores *store.Set) {
	c.stores = stores
}

// Stores returns the attached state containers.
func (c *Client) Stores() *store.Set {
	return c.stores
}

// SetSyncOrchestrator attaches the realtime orchestrator.
func (c *Client) SetSyncOrchestrator(orchestrator netsync.SyncOrchestrator) {
	c.sync = orchestrator
}

// StartSync begins realtime synchronization.
func (c *Client) StartSync(modules ...netsync.Module) error {
	if c.sync == nil {
		return netsync.ErrSyncNotConfigured
	}

	return c.sync.Start(modules...)
}

// StopSync stops realtime synchronization and the pending re-syncs.
func (c *Client) StopSync() {
	if c.sync != nil {
		c.sync.Stop()
	}

	c.resync.Close()
}

// SyncStatus returns the realtime connection state.
func (c *Client) SyncStatus() netsync.SyncState {
	if c.sync == nil {
		return netsync.SyncDisconnected
	}

	return c.sync.Status()
}

package netsync

import (
	"context"
	"encoding/json"
	"time"
)

// Client is the unified data-access facade of the dashboard. Reads flow
// through per-module gateways with TTL caches; writes are deduplicated,
// invalidate the affected caches, and schedule deferred re-syncs.
type Client interface {
	// Clients returns the client-registry gateway.
	Clients() ClientsGateway

	// Views returns the aggregated-views gateway.
	Views() ViewsGateway

	// Dashboard returns the dashboard-widgets gateway.
	Dashboard() DashboardGateway

	// Projects returns the emulation-projects gateway.
	Projects() ProjectsGateway

	// QoS returns the QoS-policies gateway.
	QoS() QoSGateway

	// Equipment returns the equipment-inventory gateway.
	Equipment() EquipmentGateway

	// Get is the generic read entry point, dispatching on module and kind.
	Get(ctx context.Context, module Module, kind Kind, opts *GetOptions) (any, error)

	// Post is the generic write entry point, dispatching on module and
	// action. Identical writes inside the dedup window return the first
	// outcome without a second transport call.
	Post(ctx context.Context, module Module, action Action, payload any) (*ActionOutcome, error)

	// GetStats returns transport and cache statistics.
	GetStats() *Stats

	// GetHealthStatus summarizes connectivity and sync state.
	GetHealthStatus() *HealthStatus

	// ClearCaches empties every module cache.
	ClearCaches(ctx context.Context) error

	// StartSync begins realtime synchronization for the given modules, or
	// all modules when none are named.
	StartSync(modules ...Module) error

	// StopSync stops realtime synchronization.
	StopSync()

	// SyncStatus returns the realtime connection state.
	SyncStatus() SyncState
}

// ClientsGateway accesses the API client registry and its servers.
type ClientsGateway interface {
	List(ctx context.Context, opts *GetOptions) (*ListResult[APIClient], error)
	ListServers(ctx context.Context, opts *GetOptions) (*ListResult[Server], error)
	GetServer(ctx context.Context, serverID string) (*Server, error)
	Register(ctx context.Context, reg *ClientRegistration) (*ActionResult[APIClient], error)
	TestServer(ctx context.Context, serverID string) (*ActionResult[Server], error)
	ClearCache(ctx context.Context) error
}

// ViewsGateway accesses the aggregated overview and topology views.
type ViewsGateway interface {
	Overview(ctx context.Context, opts *GetOptions) (*OverviewView, error)
	Topology(ctx context.Context, opts *GetOptions) (*TopologyView, error)
	ClearCache(ctx context.Context) error
}

// DashboardGateway accesses dashboard widgets and the widget layout.
type DashboardGateway interface {
	ListWidgets(ctx context.Context, opts *GetOptions) (*ListResult[Widget], error)
	GetWidget(ctx context.Context, widgetID string) (*Widget, error)
	SaveLayout(ctx context.Context, layout *LayoutUpdate) (*ActionResult[WidgetLayout], error)
	ClearCache(ctx context.Context) error
}

// ProjectsGateway accesses emulation projects and their nodes.
type ProjectsGateway interface {
	List(ctx context.Context, opts *GetOptions) (*ListResult[Project], error)
	Get(ctx context.Context, projectID string) (*Project, error)
	ListNodes(ctx context.Context, projectID string, opts *GetOptions) (*ListResult[Node], error)
	Create(ctx context.Context, create *ProjectCreate) (*ActionResult[Project], error)
	Start(ctx context.Context, projectID string) (*ActionResult[Project], error)
	Stop(ctx context.Context, projectID string) (*ActionResult[Project], error)
	StartNode(ctx context.Context, projectID, nodeID string) (*ActionResult[Node], error)
	StopNode(ctx context.Context, projectID, nodeID string) (*ActionResult[Node], error)
	ClearCache(ctx context.Context) error
}

// QoSGateway accesses QoS policies.
type QoSGateway interface {
	List(ctx context.Context, opts *GetOptions) (*ListResult[Policy], error)
	Get(ctx context.Context, policyID string) (*Policy, error)
	Create(ctx context.Context, create *PolicyCreate) (*ActionResult[Policy], error)
	Update(ctx context.Context, policyID string, update *PolicyUpdate) (*ActionResult[Policy], error)
	Apply(ctx context.Context, policyID string) (*ActionResult[Policy], error)
	ClearCache(ctx context.Context) error
}

// EquipmentGateway accesses the equipment inventory.
type EquipmentGateway interface {
	List(ctx context.Context, opts *GetOptions) (*ListResult[Device], error)
	Get(ctx context.Context, deviceID string) (*Device, error)
	Discover(ctx context.Context, req *DiscoveryRequest) (*ActionResult[DiscoveryReport], error)
	ClearCache(ctx context.Context) error
}

// GetOptions tunes a single read.
type GetOptions struct {
	// Params carries pagination, ordering, search, and filters.
	Params *QueryParams

	// ForceRefresh bypasses the cache and refills it from the backend.
	ForceRefresh bool

	// ParentID scopes nested reads (nodes of a project).
	ParentID string
}

// ActionOutcome is the generic write result returned by Post.
type ActionOutcome struct {
	Success     bool            `json:"success"      yaml:"success"`
	Module      Module          `json:"module"       yaml:"module"`
	Action      Action          `json:"action"       yaml:"action"`
	Data        json.RawMessage `json:"data"         yaml:"data"`
	Metadata    ActionMetadata  `json:"metadata"     yaml:"metadata"`
	Deduped     bool            `json:"deduped"      yaml:"deduped"`
	CompletedAt time.Time       `json:"completed_at" yaml:"completed_at"`
}

// TransportStats counts transport-level activity.
type TransportStats struct {
	Requests int64 `json:"requests" yaml:"requests"`
	Errors   int64 `json:"errors"   yaml:"errors"`
	Retries  int64 `json:"retries"  yaml:"retries"`
}

// Stats aggregates transport and cache statistics for one client instance.
type Stats struct {
	Transport   TransportStats        `json:"transport"    yaml:"transport"`
	Caches      map[Module]CacheStats `json:"caches"       yaml:"caches"`
	Dedup       CacheStats            `json:"dedup"        yaml:"dedup"`
	GeneratedAt time.Time             `json:"generated_at" yaml:"generated_at"`
}

// HealthStatus summarizes the client's view of the backend.
type HealthStatus struct {
	BaseURL     string    `json:"base_url"     yaml:"base_url"`
	Reachable   bool      `json:"reachable"    yaml:"reachable"`
	SyncState   SyncState `json:"sync_state"   yaml:"sync_state"`
	LastChecked time.Time `json:"last_checked" yaml:"last_checked"`
}

// SyncState is the realtime connection state.
type SyncState string

const (
	SyncDisconnected SyncState = "DISCONNECTED"
	SyncConnecting   SyncState = "CONNECTING"
	SyncConnected    SyncState = "CONNECTED"
	SyncError        SyncState = "ERROR"
)

// SyncOrchestrator drives realtime cache synchronization.
type SyncOrchestrator interface {
	Start(modules ...Module) error
	Stop()
	Status() SyncState
}

// TokenProvider supplies bearer tokens for the Authorization header.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TokenProviderFunc adapts a function to the TokenProvider interface.
type TokenProviderFunc func(ctx context.Context) (string, error)

// Token implements TokenProvider.
func (f TokenProviderFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Logger is the logging contract used throughout the client.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config configures a client instance. Every constructed client owns its
// own caches, statistics, and sync state.
type Config struct {
	// BaseURL is the dashboard backend root, with or without scheme.
	BaseURL string

	// TokenProvider supplies bearer tokens. Preferred over basic auth.
	TokenProvider TokenProvider

	// BasicAuthUser and BasicAuthPass are the fallback credentials used
	// when no token provider is configured.
	BasicAuthUser string
	BasicAuthPass string

	// HTTPTimeout bounds ordinary requests; zero means the default.
	HTTPTimeout time.Duration

	// UploadTimeout bounds upload-class requests; zero means the default.
	UploadTimeout time.Duration

	// RetryMax overrides the retry budget; zero means the default.
	RetryMax int

	// Cache selects and configures the cache backend.
	Cache *CacheConfig

	// Logger receives structured log output. Nil disables logging.
	Logger Logger

	// UserAgent overrides the User-Agent header.
	UserAgent string

	// Interceptors, when set, observe every outgoing request and its
	// settled response.
	Interceptors *InterceptorChain

	// NATSURL enables realtime synchronization when set.
	NATSURL string

	// SyncSubjectPrefix overrides the realtime subject prefix.
	SyncSubjectPrefix string

	// Debug enables request/response logging.
	Debug bool
}

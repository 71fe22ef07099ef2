package netsync

import (
	"sort"
	"time"
)

// Module identifies one backend module.
type Module string

const (
	ModuleClients   Module = "clients"
	ModuleViews     Module = "views"
	ModuleDashboard Module = "dashboard"
	ModuleGNS3      Module = "gns3"
	ModuleQoS       Module = "qos"
	ModuleEquipment Module = "equipment"
)

// KnownModules returns all backend modules in stable order.
func KnownModules() []Module {
	return []Module{
		ModuleClients,
		ModuleViews,
		ModuleDashboard,
		ModuleGNS3,
		ModuleQoS,
		ModuleEquipment,
	}
}

// Kind selects a read projection within a module.
type Kind string

const (
	// KindData is the primary collection of a module.
	KindData     Kind = "data"
	KindServers  Kind = "servers"
	KindOverview Kind = "overview"
	KindTopology Kind = "topology"
	KindWidgets  Kind = "widgets"
	KindNodes    Kind = "nodes"
)

// Action identifies a mutating operation within a module.
type Action string

const (
	ActionRegisterClient Action = "registerClient"
	ActionTestServer     Action = "testServer"
	ActionCreateProject  Action = "createProject"
	ActionStartProject   Action = "startProject"
	ActionStopProject    Action = "stopProject"
	ActionStartNode      Action = "startNode"
	ActionStopNode       Action = "stopNode"
	ActionCreatePolicy   Action = "createPolicy"
	ActionUpdatePolicy   Action = "updatePolicy"
	ActionApplyPolicy    Action = "applyPolicy"
	ActionDiscover       Action = "discover"
	ActionSaveLayout     Action = "saveLayout"
)

// RequestMetadata travels with every transport call and is attached to both
// the response and any failure.
type RequestMetadata struct {
	RequestID    string    `json:"request_id"    yaml:"request_id"`
	IssuedAt     time.Time `json:"issued_at"     yaml:"issued_at"`
	RetryAttempt int       `json:"retry_attempt" yaml:"retry_attempt"`
}

// APIClient is a registered dashboard API client.
type APIClient struct {
	ID          string    `json:"id"          yaml:"id"`
	Name        string    `json:"name"        yaml:"name"`
	BaseURL     string    `json:"base_url"    yaml:"base_url"`
	ClientType  string    `json:"client_type" yaml:"client_type"`
	Description string    `json:"description" yaml:"description"`
	IsActive    bool      `json:"is_active"   yaml:"is_active"`
	CreatedAt   time.Time `json:"created_at"  yaml:"created_at"`
}

// Server is a backend server known to the client registry.
type Server struct {
	ID           string     `json:"id"             yaml:"id"`
	Name         string     `json:"name"           yaml:"name"`
	Address      string     `json:"address"        yaml:"address"`
	ServerType   string     `json:"server_type"    yaml:"server_type"`
	Status       string     `json:"status"         yaml:"status"`
	IsActive     bool       `json:"is_active"      yaml:"is_active"`
	Healthy      bool       `json:"healthy"        yaml:"healthy"`
	LastTestedAt *time.Time `json:"last_tested_at" yaml:"last_tested_at"`
}

// OverviewView is the aggregated dashboard overview.
type OverviewView struct {
	TotalServers   int       `json:"total_servers"   yaml:"total_servers"`
	HealthyServers int       `json:"healthy_servers" yaml:"healthy_servers"`
	TotalProjects  int       `json:"total_projects"  yaml:"total_projects"`
	OpenProjects   int       `json:"open_projects"   yaml:"open_projects"`
	ActivePolicies int       `json:"active_policies" yaml:"active_policies"`
	TotalDevices   int       `json:"total_devices"   yaml:"total_devices"`
	GeneratedAt    time.Time `json:"generated_at"    yaml:"generated_at"`
}

// TopologyView is the aggregated network topology.
type TopologyView struct {
	Nodes []TopologyNode `json:"nodes" yaml:"nodes"`
	Links []TopologyLink `json:"links" yaml:"links"`
}

// TopologyNode is one vertex of the topology graph.
type TopologyNode struct {
	ID     string `json:"id"     yaml:"id"`
	Label  string `json:"label"  yaml:"label"`
	Kind   string `json:"kind"   yaml:"kind"`
	Status string `json:"status" yaml:"status"`
}

// TopologyLink connects two topology nodes.
type TopologyLink struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Widget is a dashboard widget.
type Widget struct {
	ID         string         `json:"id"          yaml:"id"`
	Title      string         `json:"title"       yaml:"title"`
	WidgetType string         `json:"widget_type" yaml:"widget_type"`
	Position   int            `json:"position"    yaml:"position"`
	Config     map[string]any `json:"config"      yaml:"config"`
}

// WidgetLayout is the persisted widget arrangement.
type WidgetLayout struct {
	Widgets   []WidgetPosition `json:"widgets"    yaml:"widgets"`
	UpdatedAt time.Time        `json:"updated_at" yaml:"updated_at"`
}

// WidgetPosition places one widget in the layout.
type WidgetPosition struct {
	WidgetID string `json:"widget_id" yaml:"widget_id"`
	Position int    `json:"position"  yaml:"position"`
}

// Project is a GNS3 emulation project.
type Project struct {
	ID        string    `json:"id"         yaml:"id"`
	Name      string    `json:"name"       yaml:"name"`
	Status    string    `json:"status"     yaml:"status"`
	NodeCount int       `json:"node_count" yaml:"node_count"`
	ServerID  string    `json:"server_id"  yaml:"server_id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Project status values reported by the emulation backend.
const (
	ProjectStatusOpened = "opened"
	ProjectStatusClosed = "closed"
)

// Node is a device inside an emulation project.
type Node struct {
	ID          string `json:"id"           yaml:"id"`
	ProjectID   string `json:"project_id"   yaml:"project_id"`
	Name        string `json:"name"         yaml:"name"`
	NodeType    string `json:"node_type"    yaml:"node_type"`
	Status      string `json:"status"       yaml:"status"`
	ConsoleHost string `json:"console_host" yaml:"console_host"`
	ConsolePort int    `json:"console_port" yaml:"console_port"`
}

// Policy is a quality-of-service policy.
type Policy struct {
	ID            string     `json:"id"             yaml:"id"`
	Name          string     `json:"name"           yaml:"name"`
	Direction     string     `json:"direction"      yaml:"direction"`
	BandwidthKbps int        `json:"bandwidth_kbps" yaml:"bandwidth_kbps"`
	Priority      int        `json:"priority"       yaml:"priority"`
	IsActive      bool       `json:"is_active"      yaml:"is_active"`
	AppliedAt     *time.Time `json:"applied_at"     yaml:"applied_at"`
}

// Device is a piece of network equipment in the inventory.
type Device struct {
	ID         string `json:"id"          yaml:"id"`
	Name       string `json:"name"        yaml:"name"`
	Address    string `json:"address"     yaml:"address"`
	Vendor     string `json:"vendor"      yaml:"vendor"`
	DeviceType string `json:"device_type" yaml:"device_type"`
	Status     string `json:"status"      yaml:"status"`
	Healthy    bool   `json:"healthy"     yaml:"healthy"`
}

// DiscoveryReport summarizes an equipment discovery run.
type DiscoveryReport struct {
	Subnet       string    `json:"subnet"        yaml:"subnet"`
	DevicesFound int       `json:"devices_found" yaml:"devices_found"`
	DevicesNew   int       `json:"devices_new"   yaml:"devices_new"`
	StartedAt    time.Time `json:"started_at"    yaml:"started_at"`
}

// ClientRegistration is the payload for registering an API client.
type ClientRegistration struct {
	Name        string `json:"name"                  yaml:"name"`
	BaseURL     string `json:"base_url"              yaml:"base_url"`
	ClientType  string `json:"client_type,omitempty" yaml:"client_type,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ProjectCreate is the payload for creating an emulation project.
type ProjectCreate struct {
	Name     string `json:"name"                yaml:"name"`
	ServerID string `json:"server_id,omitempty" yaml:"server_id,omitempty"`
}

// PolicyCreate is the payload for creating a QoS policy.
type PolicyCreate struct {
	Name          string `json:"name"           yaml:"name"`
	Direction     string `json:"direction"      yaml:"direction"`
	BandwidthKbps int    `json:"bandwidth_kbps" yaml:"bandwidth_kbps"`
	Priority      int    `json:"priority"       yaml:"priority"`
}

// PolicyUpdate is the payload for updating a QoS policy. Nil fields are
// left unchanged.
type PolicyUpdate struct {
	Name          *string `json:"name,omitempty"           yaml:"name,omitempty"`
	BandwidthKbps *int    `json:"bandwidth_kbps,omitempty" yaml:"bandwidth_kbps,omitempty"`
	Priority      *int    `json:"priority,omitempty"       yaml:"priority,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"      yaml:"is_active,omitempty"`
}

// LayoutUpdate is the payload for saving the widget layout.
type LayoutUpdate struct {
	Widgets []WidgetPosition `json:"widgets" yaml:"widgets"`
}

// DiscoveryRequest is the payload for an equipment discovery run.
type DiscoveryRequest struct {
	Subnet string `json:"subnet" yaml:"subnet"`
}

// ActionTarget addresses the resource of an id-scoped action. ParentID is
// set for nested resources (a node inside a project).
type ActionTarget struct {
	ID       string `json:"id"                  yaml:"id"`
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
}

// ListMetadata is the summary recomputed on every cache miss. It is stored
// and invalidated together with the data, never independently.
type ListMetadata struct {
	Total        int       `json:"total"         yaml:"total"`
	ActiveCount  int       `json:"active_count"  yaml:"active_count"`
	HealthyCount int       `json:"healthy_count" yaml:"healthy_count"`
	Types        []string  `json:"types"         yaml:"types"`
	Page         int       `json:"page"          yaml:"page"`
	PageSize     int       `json:"page_size"     yaml:"page_size"`
	FetchedAt    time.Time `json:"fetched_at"    yaml:"fetched_at"`
}

// ListResult is the normalized envelope of every collection read.
type ListResult[T any] struct {
	Success  bool         `json:"success"  yaml:"success"`
	Data     []T          `json:"data"     yaml:"data"`
	Metadata ListMetadata `json:"metadata" yaml:"metadata"`
}

// ActionMetadata carries enough derived state for the caller to reconcile
// local copies without a re-fetch.
type ActionMetadata struct {
	TestPassed    *bool     `json:"test_passed,omitempty" yaml:"test_passed,omitempty"`
	NewStatus     string    `json:"new_status,omitempty"  yaml:"new_status,omitempty"`
	AffectedCount int       `json:"affected_count"        yaml:"affected_count"`
	CompletedAt   time.Time `json:"completed_at"          yaml:"completed_at"`
}

// ActionResult is the normalized envelope of every write.
type ActionResult[T any] struct {
	Success  bool           `json:"success"  yaml:"success"`
	Data     T              `json:"data"     yaml:"data"`
	Metadata ActionMetadata `json:"metadata" yaml:"metadata"`
}

// EnumerateTypes returns the sorted distinct values produced by classify.
func EnumerateTypes[T any](items []T, classify func(T) string) []string {
	seen := make(map[string]struct{})

	for _, item := range items {
		if t := classify(item); t != "" {
			seen[t] = struct{}{}
		}
	}

	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}

	sort.Strings(types)

	return types
}

// CountWhere returns how many items satisfy pred.
func CountWhere[T any](items []T, pred func(T) bool) int {
	count := 0

	for _, item := range items {
		if pred(item) {
			count++
		}
	}

	return count
}

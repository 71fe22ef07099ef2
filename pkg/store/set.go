package store

import "github.com/netvista-io/netsync/pkg/netsync"

// Set bundles one container per resource collection. A client instance
// owns exactly one Set.
type Set struct {
	Clients  *Container[netsync.APIClient]
	Servers  *Container[netsync.Server]
	Projects *Container[netsync.Project]
	Nodes    *Container[netsync.Node]
	Policies *Container[netsync.Policy]
	Devices  *Container[netsync.Device]
	Widgets  *Container[netsync.Widget]
}

// NewSet creates an empty container set.
func NewSet() *Set {
	return &Set{
		Clients:  NewContainer(func(c netsync.APIClient) string { return c.ID }),
		Servers:  NewContainer(func(s netsync.Server) string { return s.ID }),
		Projects: NewContainer(func(p netsync.Project) string { return p.ID }),
		Nodes:    NewContainer(func(n netsync.Node) string { return n.ID }),
		Policies: NewContainer(func(p netsync.Policy) string { return p.ID }),
		Devices:  NewContainer(func(d netsync.Device) string { return d.ID }),
		Widgets:  NewContainer(func(w netsync.Widget) string { return w.ID }),
	}
}

// ActiveServers returns the servers marked active.
func (s *Set) ActiveServers() []netsync.Server {
	return s.Servers.Filter(func(srv netsync.Server) bool { return srv.IsActive })
}

// UnhealthyServers returns the active servers failing health checks.
func (s *Set) UnhealthyServers() []netsync.Server {
	return s.Servers.Filter(func(srv netsync.Server) bool { return srv.IsActive && !srv.Healthy })
}

// ServersByType groups servers by type.
func (s *Set) ServersByType() map[string]int {
	return s.Servers.CountBy(func(srv netsync.Server) string { return srv.ServerType })
}

// OpenProjects returns the projects currently opened.
func (s *Set) OpenProjects() []netsync.Project {
	return s.Projects.Filter(func(p netsync.Project) bool { return p.Status == netsync.ProjectStatusOpened })
}

// ActivePolicies returns the policies marked active.
func (s *Set) ActivePolicies() []netsync.Policy {
	return s.Policies.Filter(func(p netsync.Policy) bool { return p.IsActive })
}

// HealthyDeviceCount returns how many devices are healthy.
func (s *Set) HealthyDeviceCount() int {
	return len(s.Devices.Filter(func(d netsync.Device) bool { return d.Healthy }))
}

// DevicesByVendor groups devices by vendor.
func (s *Set) DevicesByVendor() map[string]int {
	return s.Devices.CountBy(func(d netsync.Device) string { return d.Vendor })
}

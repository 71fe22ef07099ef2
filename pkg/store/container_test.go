package store_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netvista-io/netsync/pkg/netsync"
	"github.com/netvista-io/netsync/pkg/store"
)

func projectContainer() *store.Container[netsync.Project] {
	return store.NewContainer(func(p netsync.Project) string { return p.ID })
}

func TestContainer_ReplaceAll(t *testing.T) {
	t.Parallel()

	container := projectContainer()
	container.ReplaceAll([]netsync.Project{
		{ID: "p1", Name: "edge-lab", Status: netsync.ProjectStatusOpened},
		{ID: "p2", Name: "core-lab", Status: netsync.ProjectStatusClosed},
	})

	assert.Equal(t, 2, container.Len())

	items := container.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, "p2", items[1].ID)

	// A full refresh supersedes stale marks and fetch errors.
	container.MarkStale("p1")
	container.SetLastError(errors.New("fetch failed"))
	container.ReplaceAll([]netsync.Project{{ID: "p3", Name: "dmz-lab"}})

	assert.Equal(t, 1, container.Len())
	assert.False(t, container.IsStale("p1"))
	assert.NoError(t, container.LastError())

	_, ok := container.Get("p1")
	assert.False(t, ok)
}

func TestContainer_Upsert(t *testing.T) {
	t.Parallel()

	container := projectContainer()
	container.ReplaceAll([]netsync.Project{
		{ID: "p1", Status: netsync.ProjectStatusClosed},
		{ID: "p2", Status: netsync.ProjectStatusClosed},
	})

	// Replacing keeps the insertion position.
	container.Upsert(netsync.Project{ID: "p1", Status: netsync.ProjectStatusOpened})
	assert.Equal(t, "p1", container.Items()[0].ID)

	got, ok := container.Get("p1")
	require.True(t, ok)
	assert.Equal(t, netsync.ProjectStatusOpened, got.Status)

	// Inserting appends.
	container.Upsert(netsync.Project{ID: "p3"})
	assert.Equal(t, 3, container.Len())
	assert.Equal(t, "p3", container.Items()[2].ID)

	// A confirmed copy clears the stale mark.
	container.MarkStale("p2")
	container.Upsert(netsync.Project{ID: "p2", Status: netsync.ProjectStatusOpened})
	assert.False(t, container.IsStale("p2"))
}

func TestContainer_PendingActions(t *testing.T) {
	t.Parallel()

	container := projectContainer()

	require.True(t, container.BeginAction(store.ActionStarting, "p1"))
	assert.False(t, container.BeginAction(store.ActionStarting, "p1"))
	assert.True(t, container.InFlight(store.ActionStarting, "p1"))

	// A different action on the same id is independent.
	assert.True(t, container.BeginAction(store.ActionStopping, "p1"))

	// A different id under the same action is independent.
	assert.True(t, container.BeginAction(store.ActionStarting, "p2"))
	assert.ElementsMatch(t, []string{"p1", "p2"}, container.Pending(store.ActionStarting))

	container.EndAction(store.ActionStarting, "p1")
	assert.False(t, container.InFlight(store.ActionStarting, "p1"))
	assert.True(t, container.BeginAction(store.ActionStarting, "p1"))
}

func TestContainer_ApplyPatch(t *testing.T) {
	t.Parallel()

	container := projectContainer()
	container.ReplaceAll([]netsync.Project{{ID: "p1", Status: netsync.ProjectStatusClosed}})

	ok := container.ApplyPatch("p1", func(p netsync.Project) netsync.Project {
		p.Status = netsync.ProjectStatusOpened

		return p
	})
	require.True(t, ok)

	got, _ := container.Get("p1")
	assert.Equal(t, netsync.ProjectStatusOpened, got.Status)

	assert.False(t, container.ApplyPatch("absent", func(p netsync.Project) netsync.Project { return p }))
}

func TestContainer_Staleness(t *testing.T) {
	t.Parallel()

	container := projectContainer()
	container.ReplaceAll([]netsync.Project{
		{ID: "p1", Status: netsync.ProjectStatusOpened},
	})

	// A failed write leaves the optimistic copy in place, only flagged.
	container.ApplyPatch("p1", func(p netsync.Project) netsync.Project {
		p.Status = netsync.ProjectStatusClosed

		return p
	})
	container.MarkStale("p1")

	got, _ := container.Get("p1")
	assert.Equal(t, netsync.ProjectStatusClosed, got.Status)
	assert.True(t, container.IsStale("p1"))
	assert.Equal(t, []string{"p1"}, container.StaleIDs())
}

func TestContainer_LoadingAndError(t *testing.T) {
	t.Parallel()

	container := projectContainer()
	assert.False(t, container.Loading())

	container.SetLoading(true)
	assert.True(t, container.Loading())

	boom := errors.New("backend unreachable")
	container.SetLastError(boom)
	assert.ErrorIs(t, container.LastError(), boom)
}

func TestContainer_FilterAndCountBy(t *testing.T) {
	t.Parallel()

	container := projectContainer()
	container.ReplaceAll([]netsync.Project{
		{ID: "p1", Status: netsync.ProjectStatusOpened},
		{ID: "p2", Status: netsync.ProjectStatusClosed},
		{ID: "p3", Status: netsync.ProjectStatusOpened},
	})

	opened := container.Filter(func(p netsync.Project) bool { return p.Status == netsync.ProjectStatusOpened })
	require.Len(t, opened, 2)
	assert.Equal(t, "p1", opened[0].ID)
	assert.Equal(t, "p3", opened[1].ID)

	counts := container.CountBy(func(p netsync.Project) string { return p.Status })
	assert.Equal(t, map[string]int{"opened": 2, "closed": 1}, counts)
}

func TestSet_Helpers(t *testing.T) {
	t.Parallel()

	set := store.NewSet()

	set.Servers.ReplaceAll([]netsync.Server{
		{ID: "s1", Name: "gns3-main", ServerType: "gns3", IsActive: true, Healthy: true},
		{ID: "s2", Name: "snmp-poller", ServerType: "snmp", IsActive: true, Healthy: false},
		{ID: "s3", Name: "retired", ServerType: "gns3", IsActive: false, Healthy: false},
	})

	assert.Len(t, set.ActiveServers(), 2)

	unhealthy := set.UnhealthyServers()
	require.Len(t, unhealthy, 1)
	assert.Equal(t, "s2", unhealthy[0].ID)

	assert.Equal(t, map[string]int{"gns3": 2, "snmp": 1}, set.ServersByType())

	set.Projects.ReplaceAll([]netsync.Project{
		{ID: "p1", Status: netsync.ProjectStatusOpened},
		{ID: "p2", Status: netsync.ProjectStatusClosed},
	})
	assert.Len(t, set.OpenProjects(), 1)

	set.Policies.ReplaceAll([]netsync.Policy{
		{ID: "q1", IsActive: true},
		{ID: "q2", IsActive: false},
	})
	assert.Len(t, set.ActivePolicies(), 1)

	set.Devices.ReplaceAll([]netsync.Device{
		{ID: "d1", Vendor: "cisco", Healthy: true},
		{ID: "d2", Vendor: "cisco", Healthy: false},
		{ID: "d3", Vendor: "juniper", Healthy: true},
	})
	assert.Equal(t, 2, set.HealthyDeviceCount())
	assert.Equal(t, map[string]int{"cisco": 2, "juniper": 1}, set.DevicesByVendor())
}

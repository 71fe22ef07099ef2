package client

import (
	"context"
	"fmt"

	"github.com/netvista-io/netsync/internal/constants"
	internalhttp "github.com/netvista-io/netsync/internal/http"
	"github.com/netvista-io/netsync/pkg/netsync"
)

const projectsPath = "/api/gns3_integration/api/projects/"

// ProjectsClient implements the emulation-projects gateway. The project
// list carries the long TTL; node lists change with every start and stop
// and use the short one.
type ProjectsClient struct {
	base    *gatewayBase
	nodeTTL *gatewayBase
}

// NewProjectsClient creates a projects gateway with its own cache. List
// and node reads share one cache so a single clear covers both.
func NewProjectsClient(transport *internalhttp.Client, cache netsync.Cache, logger netsync.Logger) *ProjectsClient {
	manager := netsync.NewCacheManager(cache, logger)

	return &ProjectsClient{
		base: &gatewayBase{
			transport: transport,
			cache:     manager,
			ttl:       constants.ReadTTLLong,
			logger:    logger,
		},
		nodeTTL: &gatewayBase{
			transport: transport,
			cache:     manager,
			ttl:       constants.ReadTTLShort,
			logger:    logger,
		},
	}
}

// List returns the emulation projects.
func (c *ProjectsClient) List(ctx context.Context, opts *netsync.GetOptions) (*netsync.ListResult[netsync.Project], error) {
	result, err := fetchList(ctx, c.base, projectsPath, opts, func(items []netsync.Project, meta *netsync.ListMetadata) {
		meta.ActiveCount = netsync.CountWhere(items, func(p netsync.Project) bool {
			return p.Status == netsync.ProjectStatusOpened
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	return result, nil
}

// Get returns one project, bypassing the cache.
func (c *ProjectsClient) Get(ctx context.Context, projectID string) (*netsync.Project, error) {
	if projectID == "" {
		return nil, netsync.NewValidationError("getProject", []string{"project_id"})
	}

	project, err := fetchOne[netsync.Project](ctx, c.base, projectsPath+projectID+"/")
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}

	return project, nil
}

// ListNodes returns the nodes of a project.
func (c *ProjectsClient) ListNodes(ctx context.Context, projectID string, opts *netsync.GetOptions) (*netsync.ListResult[netsync.Node], error) {
	if projectID == "" {
		return nil, netsync.NewValidationError("listNodes", []string{"project_id"})
	}

	result, err := fetchList(ctx, c.nodeTTL, projectsPath+projectID+"/nodes/", opts, func(items []netsync.Node, meta *netsync.ListMetadata) {
		meta.ActiveCount = netsync.CountWhere(items, func(n netsync.Node) bool { return n.Status == "started" })
		meta.Types = netsync.EnumerateTypes(items, func(n netsync.Node) string { return n.NodeType })
	})
	if err != nil {
		return nil, fmt.Errorf("listing nodes: %w", err)
	}

	return result, nil
}

// Create creates a project.
func (c *ProjectsClient) Create(ctx context.Context, create *netsync.ProjectCreate) (*netsync.ActionResult[netsync.Project], error) {
	if create == nil || create.Name == "" {
		return nil, netsync.NewValidationError("createProject", []string{"name"})
	}

	result, err := postAction[netsync.Project](ctx, c.base, projectsPath, create)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	return result, nil
}

// Start opens a project. The result metadata reports the new status.
func (c *ProjectsClient) Start(ctx context.Context, projectID string) (*netsync.ActionResult[netsync.Project], error) {
	if projectID == "" {
		return nil, netsync.NewValidationError("startProject", []string{"project_id"})
	}

	result, err := postAction[netsync.Project](ctx, c.base, projectsPath+projectID+"/start/", nil)
	if err != nil {
		return nil, fmt.Errorf("starting project: %w", err)
	}

	return result, nil
}

// Stop closes a project.
func (c *ProjectsClient) Stop(ctx context.Context, projectID string) (*netsync.ActionResult[netsync.Project], error) {
	if projectID == "" {
		return nil, netsync.NewValidationError("stopProject", []string{"project_id"})
	}

	result, err := postAction[netsync.Project](ctx, c.base, projectsPath+projectID+"/stop/", nil)
	if err != nil {
		return nil, fmt.Errorf("stopping project: %w", err)
	}

	return result, nil
}

// StartNode starts one node inside a project.
func (c *ProjectsClient) StartNode(ctx context.Context, projectID, nodeID string) (*netsync.ActionResult[netsync.Node], error) {
	missing := make([]string, 0, 2)

	if projectID == "" {
		missing = append(missing, "project_id")
	}

	if nodeID == "" {
		missing = append(missing, "node_id")
	}

	if len(missing) > 0 {
		return nil, netsync.NewValidationError("startNode", missing)
	}

	result, err := postAction[netsync.Node](ctx, c.base, projectsPath+projectID+"/nodes/"+nodeID+"/start/", nil)
	if err != nil {
		return nil, fmt.Errorf("starting node: %w", err)
	}

	return result, nil
}

// StopNode stops one node inside a project.
func (c *ProjectsClient) StopNode(ctx context.Context, projectID, nodeID string) (*netsync.ActionResult[netsync.Node], error) {
	missing := make([]string, 0, 2)

	if projectID == "" {
		missing = append(missing, "project_id")
	}

	if nodeID == "" {
		missing = append(missing, "node_id")
	}

	if len(missing) > 0 {
		return nil, netsync.NewValidationError("stopNode", missing)
	}

	result, err := postAction[netsync.Node](ctx, c.base, projectsPath+projectID+"/nodes/"+nodeID+"/stop/", nil)
	if err != nil {
		return nil, fmt.Errorf("stopping node: %w", err)
	}

	return result, nil
}

// ClearCache empties this gateway's cache.
func (c *ProjectsClient) ClearCache(ctx context.Context) error {
	return c.base.cache.Clear(ctx)
}

// CacheStats returns this gateway's cache counters.
func (c *ProjectsClient) CacheStats() netsync.CacheStats {
	return c.base.cache.GetStats()
}

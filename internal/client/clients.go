package client

import (
	"context"
	"fmt"

	"github.com/netvista-io/netsync/internal/constants"
	internalhttp "github.com/netvista-io/netsync/internal/http"
	"github.com/netvista-io/netsync/pkg/netsync"
)

// ClientsClient implements the client-registry gateway. Registry lists
// change rarely, so it carries the long read TTL.
type ClientsClient struct {
	base *gatewayBase
}

// NewClientsClient creates a clients gateway with its own cache.
func NewClientsClient(transport *internalhttp.Client, cache netsync.Cache, logger netsync.Logger) *ClientsClient {
	return &ClientsClient{
		base: &gatewayBase{
			transport: transport,
			cache:     netsync.NewCacheManager(cache, logger),
			ttl:       constants.ReadTTLLong,
			logger:    logger,
		},
	}
}

// List returns the registered API clients.
func (c *ClientsClient) List(ctx context.Context, opts *netsync.GetOptions) (*netsync.ListResult[netsync.APIClient], error) {
	result, err := fetchList(ctx, c.base, "/api/clients/", opts, func(items []netsync.APIClient, meta *netsync.ListMetadata) {
		meta.ActiveCount = netsync.CountWhere(items, func(c netsync.APIClient) bool { return c.IsActive })
		meta.Types = netsync.EnumerateTypes(items, func(c netsync.APIClient) string { return c.ClientType })
	})
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}

	return result, nil
}

// ListServers returns the servers known to the registry.
func (c *ClientsClient) ListServers(ctx context.Context, opts *netsync.GetOptions) (*netsync.ListResult[netsync.Server], error) {
	result, err := fetchList(ctx, c.base, "/api/clients/servers/", opts, func(items []netsync.Server, meta *netsync.ListMetadata) {
		meta.ActiveCount = netsync.CountWhere(items, func(s netsync.Server) bool { return s.IsActive })
		meta.HealthyCount = netsync.CountWhere(items, func(s netsync.Server) bool { return s.Healthy })
		meta.Types = netsync.EnumerateTypes(items, func(s netsync.Server) string { return s.ServerType })
	})
	if err != nil {
		return nil, fmt.Errorf("listing servers: %w", err)
	}

	return result, nil
}

// GetServer returns one server, bypassing the cache.
func (c *ClientsClient) GetServer(ctx context.Context, serverID string) (*netsync.Server, error) {
	if serverID == "" {
		return nil, netsync.NewValidationError("getServer", []string{"server_id"})
	}

	server, err := fetchOne[netsync.Server](ctx, c.base, "/api/clients/servers/"+serverID+"/")
	if err != nil {
		return nil, fmt.Errorf("getting server: %w", err)
	}

	return server, nil
}

// Register registers a new API client. Required fields are checked
// before any transport call.
func (c *ClientsClient) Register(ctx context.Context, reg *netsync.ClientRegistration) (*netsync.ActionResult[netsync.APIClient], error) {
	missing := make([]string, 0, 2)

	if reg == nil || reg.Name == "" {
		missing = append(missing, "name")
	}

	if reg == nil || reg.BaseURL == "" {
		missing = append(missing, "base_url")
	}

	if len(missing) > 0 {
		return nil, netsync.NewValidationError("registerClient", missing)
	}

	result, err := postAction[netsync.APIClient](ctx, c.base, "/api/clients/", reg)
	if err != nil {
		return nil, fmt.Errorf("registering client: %w", err)
	}

	return result, nil
}

// TestServer runs a connectivity test against one server. The result
// metadata carries the test outcome so callers can reconcile health
// state without a re-fetch.
func (c *ClientsClient) TestServer(ctx context.Context, serverID string) (*netsync.ActionResult[netsync.Server], error) {
	if serverID == "" {
		return nil, netsync.NewValidationError("testServer", []string{"server_id"})
	}

	result, err := postAction[netsync.Server](ctx, c.base, "/api/clients/servers/"+serverID+"/test/", nil)
	if err != nil {
		return nil, fmt.Errorf("testing server: %w", err)
	}

	return result, nil
}

// ClearCache empties this gateway's cache.
func (c *ClientsClient) ClearCache(ctx context.Context) error {
	return c.base.cache.Clear(ctx)
}

// CacheStats returns this gateway's cache counters.
func (c *ClientsClient) CacheStats() netsync.CacheStats {
	return c.base.cache.GetStats()
}

package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/netvista-io/netsync/internal/constants"
	internalhttp "github.com/netvista-io/netsync/internal/http"
	"github.com/netvista-io/netsync/pkg/netsync"
)

// ViewsClient implements the aggregated-views gateway. Overview and
// topology are single documents, not collections, but they follow the
// same cache discipline.
type ViewsClient struct {
	base *gatewayBase
}

// NewViewsClient creates a views gateway with its own cache.
func NewViewsClient(transport *internalhttp.Client, cache netsync.Cache, logger netsync.Logger) *ViewsClient {
	return &ViewsClient{
		base: &gatewayBase{
			transport: transport,
			cache:     netsync.NewCacheManager(cache, logger),
			ttl:       constants.ReadTTLShort,
			logger:    logger,
		},
	}
}

// Overview returns the aggregated dashboard overview.
func (c *ViewsClient) Overview(ctx context.Context, opts *netsync.GetOptions) (*netsync.OverviewView, error) {
	view, err := fetchDocument[netsync.OverviewView](ctx, c.base, "/api/views/overview/", opts)
	if err != nil {
		return nil, fmt.Errorf("getting overview: %w", err)
	}

	return view, nil
}

// Topology returns the aggregated network topology.
func (c *ViewsClient) Topology(ctx context.Context, opts *netsync.GetOptions) (*netsync.TopologyView, error) {
	view, err := fetchDocument[netsync.TopologyView](ctx, c.base, "/api/views/topology/", opts)
	if err != nil {
		return nil, fmt.Errorf("getting topology: %w", err)
	}

	return view, nil
}

// ClearCache empties this gateway's cache.
func (c *ViewsClient) ClearCache(ctx context.Context) error {
	return c.base.cache.Clear(ctx)
}

// CacheStats returns this gateway's cache counters.
func (c *ViewsClient) CacheStats() netsync.CacheStats {
	return c.base.cache.GetStats()
}

// fetchDocument is the cached-read path for single-document views.
func fetchDocument[T any](ctx context.Context, base *gatewayBase, path string, opts *netsync.GetOptions) (*T, error) {
	var (
		params *netsync.QueryParams
		force  bool
	)

	if opts != nil {
		params = opts.Params
		force = opts.ForceRefresh
	}

	key := base.cache.GetCacheKey("GET", path, params.CanonicalMap())

	if !force {
		data, err := base.cache.Get(ctx, key)
		if err == nil {
			out := new(T)
			if json.Unmarshal(data, out) == nil {
				return out, nil
			}
		}
	}

	out, err := fetchOne[T](ctx, base, path)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(out)
	if err == nil {
		_ = base.cache.Set(ctx, key, data, base.ttl)
	}

	return out, nil
}

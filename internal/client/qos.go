package client

import (
	"context"
	"fmt"

	"github.com/netvista-io/netsync/internal/constants"
	internalhttp "github.com/netvista-io/netsync/internal/http"
	"github.com/netvista-io/netsync/pkg/netsync"
)

const policiesPath = "/api/qos-management/policies/"

// QoSClient implements the QoS-policies gateway.
type QoSClient struct {
	base *gatewayBase
}

// NewQoSClient creates a QoS gateway with its own cache.
func NewQoSClient(transport *internalhttp.Client, cache netsync.Cache, logger netsync.Logger) *QoSClient {
	return &QoSClient{
		base: &gatewayBase{
			transport: transport,
			cache:     netsync.NewCacheManager(cache, logger),
			ttl:       constants.ReadTTLShort,
			logger:    logger,
		},
	}
}

// List returns the QoS policies.
func (c *QoSClient) List(ctx context.Context, opts *netsync.GetOptions) (*netsync.ListResult[netsync.Policy], error) {
	result, err := fetchList(ctx, c.base, policiesPath, opts, func(items []netsync.Policy, meta *netsync.ListMetadata) {
		meta.ActiveCount = netsync.CountWhere(items, func(p netsync.Policy) bool { return p.IsActive })
		meta.Types = netsync.EnumerateTypes(items, func(p netsync.Policy) string { return p.Direction })
	})
	if err != nil {
		return nil, fmt.Errorf("listing policies: %w", err)
	}

	return result, nil
}

// Get returns one policy, bypassing the cache.
func (c *QoSClient) Get(ctx context.Context, policyID string) (*netsync.Policy, error) {
	if policyID == "" {
		return nil, netsync.NewValidationError("getPolicy", []string{"policy_id"})
	}

	policy, err := fetchOne[netsync.Policy](ctx, c.base, policiesPath+policyID+"/")
	if err != nil {
		return nil, fmt.Errorf("getting policy: %w", err)
	}

	return policy, nil
}

// Create creates a policy. Name, direction, and bandwidth are required.
func (c *QoSClient) Create(ctx context.Context, create *netsync.PolicyCreate) (*netsync.ActionResult[netsync.Policy], error) {
	missing := make([]string, 0, 3)

	if create == nil || create.Name == "" {
		missing = append(missing, "name")
	}

	if create == nil || create.Direction == "" {
		missing = append(missing, "direction")
	}

	if create == nil || create.BandwidthKbps <= 0 {
		missing = append(missing, "bandwidth_kbps")
	}

	if len(missing) > 0 {
		return nil, netsync.NewValidationError("createPolicy", missing)
	}

	result, err := postAction[netsync.Policy](ctx, c.base, policiesPath, create)
	if err != nil {
		return nil, fmt.Errorf("creating policy: %w", err)
	}

	return result, nil
}

// Update partially updates a policy.
func (c *QoSClient) Update(ctx context.Context, policyID string, update *netsync.PolicyUpdate) (*netsync.ActionResult[netsync.Policy], error) {
	if policyID == "" {
		return nil, netsync.NewValidationError("updatePolicy", []string{"policy_id"})
	}

	if update == nil {
		return nil, netsync.NewValidationError("updatePolicy", []string{"update"})
	}

	result, err := patchAction[netsync.Policy](ctx, c.base, policiesPath+policyID+"/", update)
	if err != nil {
		return nil, fmt.Errorf("updating policy: %w", err)
	}

	return result, nil
}

// Apply pushes a policy to the network. The result metadata reports how
// many interfaces were affected.
func (c *QoSClient) Apply(ctx context.Context, policyID string) (*netsync.ActionResult[netsync.Policy], error) {
	if policyID == "" {
		return nil, netsync.NewValidationError("applyPolicy", []string{"policy_id"})
	}

	result, err := postAction[netsync.Policy](ctx, c.base, policiesPath+policyID+"/apply/", nil)
	if err != nil {
		return nil, fmt.Errorf("applying policy: %w", err)
	}

	return result, nil
}

// ClearCache empties this gateway's cache.
func (c *QoSClient) ClearCache(ctx context.Context) error {
	return c.base.cache.Clear(ctx)
}

// CacheStats returns this gateway's cache counters.
func (c *QoSClient) CacheStats() netsync.CacheStats {
	return c.base.cache.GetStats()
}

package client

import (
	"context"
	"fmt"

	"github.com/netvista-io/netsync/internal/constants"
	internalhttp "github.com/netvista-io/netsync/internal/http"
	"github.com/netvista-io/netsync/pkg/netsync"
)

const equipmentPath = "/api/equipment/"

// EquipmentClient implements the equipment-inventory gateway.
type EquipmentClient struct {
	base *gatewayBase
}

// NewEquipmentClient creates an equipment gateway with its own cache.
func NewEquipmentClient(transport *internalhttp.Client, cache netsync.Cache, logger netsync.Logger) *EquipmentClient {
	return &EquipmentClient{
		base: &gatewayBase{
			transport: transport,
			cache:     netsync.NewCacheManager(cache, logger),
			ttl:       constants.ReadTTLShort,
			logger:    logger,
		},
	}
}

// List returns the equipment inventory.
func (c *EquipmentClient) List(ctx context.Context, opts *netsync.GetOptions) (*netsync.ListResult[netsync.Device], error) {
	result, err := fetchList(ctx, c.base, equipmentPath, opts, func(items []netsync.Device, meta *netsync.ListMetadata) {
		meta.HealthyCount = netsync.CountWhere(items, func(d netsync.Device) bool { return d.Healthy })
		meta.Types = netsync.EnumerateTypes(items, func(d netsync.Device) string { return d.DeviceType })
	})
	if err != nil {
		return nil, fmt.Errorf("listing equipment: %w", err)
	}

	return result, nil
}

// Get returns one device, bypassing the cache.
func (c *EquipmentClient) Get(ctx context.Context, deviceID string) (*netsync.Device, error) {
	if deviceID == "" {
		return nil, netsync.NewValidationError("getDevice", []string{"device_id"})
	}

	device, err := fetchOne[netsync.Device](ctx, c.base, equipmentPath+deviceID+"/")
	if err != nil {
		return nil, fmt.Errorf("getting device: %w", err)
	}

	return device, nil
}

// Discover runs a discovery scan over a subnet.
func (c *EquipmentClient) Discover(ctx context.Context, req *netsync.DiscoveryRequest) (*netsync.ActionResult[netsync.DiscoveryReport], error) {
	if req == nil || req.Subnet == "" {
		return nil, netsync.NewValidationError("discover", []string{"subnet"})
	}

	result, err := postAction[netsync.DiscoveryReport](ctx, c.base, equipmentPath+"discover/", req)
	if err != nil {
		return nil, fmt.Errorf("running discovery: %w", err)
	}

	return result, nil
}

// ClearCache empties this gateway's cache.
func (c *EquipmentClient) ClearCache(ctx context.Context) error {
	return c.base.cache.Clear(ctx)
}

// CacheStats returns this gateway's cache counters.
func (c *EquipmentClient) CacheStats() netsync.CacheStats {
	return c.base.cache.GetStats()
}

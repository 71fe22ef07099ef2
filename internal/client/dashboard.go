package client

import (
	"context"
	"fmt"

	"github.com/netvista-io/netsync/internal/constants"
	internalhttp "github.com/netvista-io/netsync/internal/http"
	"github.com/netvista-io/netsync/pkg/netsync"
)

// DashboardClient implements the dashboard-widgets gateway.
type DashboardClient struct {
	base *gatewayBase
}

// NewDashboardClient creates a dashboard gateway with its own cache.
func NewDashboardClient(transport *internalhttp.Client, cache netsync.Cache, logger netsync.Logger) *DashboardClient {
	return &DashboardClient{
		base: &gatewayBase{
			transport: transport,
			cache:     netsync.NewCacheManager(cache, logger),
			ttl:       constants.ReadTTLShort,
			logger:    logger,
		},
	}
}

// ListWidgets returns the dashboard widgets.
func (c *DashboardClient) ListWidgets(ctx context.Context, opts *netsync.GetOptions) (*netsync.ListResult[netsync.Widget], error) {
	result, err := fetchList(ctx, c.base, "/api/dashboard/widgets/", opts, func(items []netsync.Widget, meta *netsync.ListMetadata) {
		meta.Types = netsync.EnumerateTypes(items, func(w netsync.Widget) string { return w.WidgetType })
	})
	if err != nil {
		return nil, fmt.Errorf("listing widgets: %w", err)
	}

	return result, nil
}

// GetWidget returns one widget, bypassing the cache.
func (c *DashboardClient) GetWidget(ctx context.Context, widgetID string) (*netsync.Widget, error) {
	if widgetID == "" {
		return nil, netsync.NewValidationError("getWidget", []string{"widget_id"})
	}

	widget, err := fetchOne[netsync.Widget](ctx, c.base, "/api/dashboard/widgets/"+widgetID+"/")
	if err != nil {
		return nil, fmt.Errorf("getting widget: %w", err)
	}

	return widget, nil
}

// SaveLayout persists the widget arrangement.
func (c *DashboardClient) SaveLayout(ctx context.Context, layout *netsync.LayoutUpdate) (*netsync.ActionResult[netsync.WidgetLayout], error) {
	if layout == nil || len(layout.Widgets) == 0 {
		return nil, netsync.NewValidationError("saveLayout", []string{"widgets"})
	}

	result, err := putAction[netsync.WidgetLayout](ctx, c.base, "/api/dashboard/widgets/layout/", layout)
	if err != nil {
		return nil, fmt.Errorf("saving layout: %w", err)
	}

	return result, nil
}

// ClearCache empties this gateway's cache.
func (c *DashboardClient) ClearCache(ctx context.Context) error {
	return c.base.cache.Clear(ctx)
}

// CacheStats returns this gateway's cache counters.
func (c *DashboardClient) CacheStats() netsync.CacheStats {
	return c.base.cache.GetStats()
}

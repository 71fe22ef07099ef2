// Package nvclient is the public entry point for the NetVista data-access
// client.
package nvclient

import (
	"context"
	"fmt"
	"strings"

	internalclient "github.com/netvista-io/netsync/internal/client"
	"github.com/netvista-io/netsync/internal/realtime"
	"github.com/netvista-io/netsync/pkg/netsync"
	"github.com/netvista-io/netsync/pkg/store"
)

// New creates a client from config. The endpoint is normalized (trailing
// slash dropped, https assumed when no scheme is given), stores are
// attached, and realtime sync is wired when a NATS URL is configured.
func New(ctx context.Context, config *netsync.Config) (netsync.Client, error) {
	if config == nil {
		return nil, netsync.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, netsync.ErrBaseURLRequired
	}

	normalized := *config
	normalized.BaseURL = normalizeEndpoint(config.BaseURL)

	client, err := internalclient.New(&normalized)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	client.SetStores(store.NewSet())

	if normalized.NATSURL != "" {
		orchestrator := realtime.New(normalized.NATSURL, normalized.SyncSubjectPrefix, client, normalized.Logger)
		client.SetSyncOrchestrator(orchestrator)
	}

	return client, nil
}

// Stores returns the state containers of a client built by New, or nil
// for foreign implementations.
func Stores(client netsync.Client) *store.Set {
	if holder, ok := client.(interface{ Stores() *store.Set }); ok {
		return holder.Stores()
	}

	return nil
}

// normalizeEndpoint trims the trailing slash and defaults the scheme to
// https.
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSuffix(endpoint, "/")

	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

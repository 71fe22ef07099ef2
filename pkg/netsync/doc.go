// Package netsync defines the public API of the NetVista dashboard data
// access layer: typed records for every backend module, the unified client
// interface, the cache layer, typed failures, and the cross-module cache
// invalidation rules.
//
// The backend is split into independently versioned modules (client
// registry, aggregated views, dashboard widgets, GNS3 emulation projects,
// QoS policies, equipment inventory). Each module is reached through a
// gateway that builds endpoints, validates required fields before any
// network I/O, and normalizes responses into ListResult/ActionResult
// envelopes with derived summary metadata.
//
// The unified client adds what individual gateways do not provide:
//
//   - read caching with fixed per-module TTLs
//   - write deduplication (identical writes within 5s return the first
//     outcome without a second network call)
//   - cross-module cache invalidation after successful writes
//   - deferred re-synchronization of affected modules
//
// Construct clients with the nvclient package:
//
//	client, err := nvclient.New(ctx, &netsync.Config{
//	    BaseURL:       "https://dashboard.example.com",
//	    BasicAuthUser: "svc-dashboard",
//	    BasicAuthPass: "secret",
//	})
//	if err != nil {
//	    return err
//	}
//
//	servers, err := client.Clients().ListServers(ctx, nil)
package netsync

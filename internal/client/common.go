// Package client implements the per-module gateways and the unified
// facade over them.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	internalhttp "github.com/netvista-io/netsync/internal/http"
	"github.com/netvista-io/netsync/pkg/netsync"
)

// gatewayBase carries the pieces every gateway shares: the transport, its
// own cache manager, and the read TTL for its collections.
type gatewayBase struct {
	transport *internalhttp.Client
	cache     *netsync.CacheManager
	ttl       time.Duration
	logger    netsync.Logger
}

// page is the raw paginated collection shape of the backend. Count and
// Results are pointers so a missing field is distinguishable from an
// empty one.
type page[T any] struct {
	Count    *int    `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// decodePage decodes a paginated response strictly. A body without count
// or results is malformed, never silently treated as empty.
func decodePage[T any](body []byte, operation string) (*page[T], error) {
	var decoded page[T]

	err := json.Unmarshal(body, &decoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", netsync.ErrMalformedResponse, operation, err.Error())
	}

	if decoded.Count == nil || decoded.Results == nil {
		return nil, fmt.Errorf("%w: %s: missing count or results", netsync.ErrMalformedResponse, operation)
	}

	return &decoded, nil
}

// fetchList is the shared cached-read path: try the cache unless forced,
// fetch and decode on a miss, recompute metadata, and refill the cache.
// Metadata is stored with the data so the two can never diverge.
func fetchList[T any](
	ctx context.Context,
	base *gatewayBase,
	path string,
	opts *netsync.GetOptions,
	enrich func([]T, *netsync.ListMetadata),
) (*netsync.ListResult[T], error) {
	var (
		params *netsync.QueryParams
		force  bool
	)

	if opts != nil {
		params = opts.Params
		force = opts.ForceRefresh
	}

	var query url.Values
	if params != nil {
		query = params.ToValues()
	}

	key := base.cache.GetCacheKey("GET", path, params.CanonicalMap())

	if !force {
		data, err := base.cache.Get(ctx, key)
		if err == nil {
			result := &netsync.ListResult[T]{}
			if json.Unmarshal(data, result) == nil {
				return result, nil
			}
		}
	}

	resp, err := base.transport.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	decoded, err := decodePage[T](resp.Body, "GET "+path)
	if err != nil {
		return nil, err
	}

	meta := netsync.ListMetadata{
		Total:     *decoded.Count,
		FetchedAt: time.Now(),
	}

	if params != nil {
		meta.Page = params.Page
		meta.PageSize = params.PageSize
	}

	if enrich != nil {
		enrich(decoded.Results, &meta)
	}

	result := &netsync.ListResult[T]{
		Success:  true,
		Data:     decoded.Results,
		Metadata: meta,
	}

	data, err := json.Marshal(result)
	if err == nil {
		_ = base.cache.Set(ctx, key, data, base.ttl)
	}

	return result, nil
}

// fetchOne fetches a single resource, bypassing the cache. Narrow reads
// trade cache hits for freshness.
func fetchOne[T any](ctx context.Context, base *gatewayBase, path string) (*T, error) {
	resp, err := base.transport.Get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	out := new(T)

	err = json.Unmarshal(resp.Body, out)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %s", netsync.ErrMalformedResponse, path, err.Error())
	}

	return out, nil
}

// postAction sends a write and decodes the action envelope. A missing
// completion time is filled at settlement.
func postAction[T any](ctx context.Context, base *gatewayBase, path string, body interface{}) (*netsync.ActionResult[T], error) {
	resp, err := base.transport.Post(ctx, path, body)
	if err != nil {
		return nil, err
	}

	result := &netsync.ActionResult[T]{}

	err = json.Unmarshal(resp.Body, result)
	if err != nil {
		return nil, fmt.Errorf("%w: POST %s: %s", netsync.ErrMalformedResponse, path, err.Error())
	}

	if result.Metadata.CompletedAt.IsZero() {
		result.Metadata.CompletedAt = time.Now()
	}

	return result, nil
}

// putAction sends a replace-style write and decodes the action envelope.
func putAction[T any](ctx context.Context, base *gatewayBase, path string, body interface{}) (*netsync.ActionResult[T], error) {
	resp, err := base.transport.Put(ctx, path, body)
	if err != nil {
		return nil, err
	}

	result := &netsync.ActionResult[T]{}

	err = json.Unmarshal(resp.Body, result)
	if err != nil {
		return nil, fmt.Errorf("%w: PUT %s: %s", netsync.ErrMalformedResponse, path, err.Error())
	}

	if result.Metadata.CompletedAt.IsZero() {
		result.Metadata.CompletedAt = time.Now()
	}

	return result, nil
}

// patchAction sends a partial-update write and decodes the action
// envelope.
func patchAction[T any](ctx context.Context, base *gatewayBase, path string, body interface{}) (*netsync.ActionResult[T], error) {
	resp, err := base.transport.Patch(ctx, path, body)
	if err != nil {
		return nil, err
	}

	result := &netsync.ActionResult[T]{}

	err = json.Unmarshal(resp.Body, result)
	if err != nil {
		return nil, fmt.Errorf("%w: PATCH %s: %s", netsync.ErrMalformedResponse, path, err.Error())
	}

	if result.Metadata.CompletedAt.IsZero() {
		result.Metadata.CompletedAt = time.Now()
	}

	return result, nil
}

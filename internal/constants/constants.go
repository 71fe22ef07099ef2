package constants

import "time"

// HTTP timeouts.
const (
	// DefaultHTTPTimeout bounds ordinary requests.
	DefaultHTTPTimeout = 15 * time.Second

	// UploadHTTPTimeout bounds upload-class requests (project archives).
	UploadHTTPTimeout = 60 * time.Second
)

// Retry policy: up to three retries with 2s, 4s, 8s waits.
const (
	RetryMax     = 3
	RetryWaitMin = 2 * time.Second
	RetryWaitMax = 8 * time.Second
)

// Cache TTLs.
const (
	// ReadTTLShort covers view, QoS, project, node, widget, and equipment
	// reads.
	ReadTTLShort = 30 * time.Second

	// ReadTTLLong covers registry and project list reads.
	ReadTTLLong = 60 * time.Second

	// WriteDedupTTL bounds how long an identical write returns the first
	// outcome.
	WriteDedupTTL = 5 * time.Second
)

// Deferred re-sync delays after a successful write, absorbing backend-side
// asynchronous processing.
const (
	ResyncInitiatorDelay = 1 * time.Second
	ResyncDependentDelay = 2 * time.Second
)

// Realtime reconnect backoff bounds.
const (
	ReconnectWaitMin = 1 * time.Second
	ReconnectWaitMax = 30 * time.Second
)

// Cache sizing.
const (
	// DefaultCacheSize is the maximum number of entries per module cache.
	DefaultCacheSize = 512

	// DedupCacheSize bounds the write-dedup cache.
	DedupCacheSize = 128
)

// Pagination defaults.
const (
	DefaultPageSize = 50
)

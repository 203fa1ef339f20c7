package metadata

import (
	"time"

	"go.uber.org/zap"
)

/*
Metadata Collected
- Fetch timestamps, HTTP status codes, durations
- Content hashes of fetched pages
- Cache lookup provenance (hit vs miss)

Determinism guarantees:
 - Metadata does not affect control flow
 - No component may read metadata to influence fetch or cache decisions

Metadata is write-only.
*/

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		contentHash string,
		retryCount int,
	)

	RecordCacheLookup(key string, hit bool)
}

/*
ZapRecorder captures structured events through a zap logger.
It must not:
- perform I/O decisions
- affect control flow

Ordering guarantees:
- Events are recorded synchronously in the order they are received by a single worker.
- No global ordering across workers is guaranteed.
*/
type ZapRecorder struct {
	logger *zap.Logger
}

func NewZapRecorder(logger *zap.Logger) ZapRecorder {
	return ZapRecorder{
		logger: logger,
	}
}

func (r *ZapRecorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	fields := []zap.Field{
		zap.Time("observed_at", observedAt),
		zap.String("package", packageName),
		zap.String("action", action),
		zap.Int("cause", int(cause)),
	}
	for _, attr := range attrs {
		fields = append(fields, zap.String(string(attr.Key), attr.Value))
	}
	r.logger.Warn(details, fields...)
}

func (r *ZapRecorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	contentHash string,
	retryCount int,
) {
	r.logger.Info("fetch",
		zap.String("url", fetchUrl),
		zap.Int("http_status", httpStatus),
		zap.Duration("duration", duration),
		zap.String("content_type", contentType),
		zap.String("content_hash", contentHash),
		zap.Int("retry_count", retryCount),
	)
}

func (r *ZapRecorder) RecordCacheLookup(key string, hit bool) {
	// Mirrors the "Using cache" / "Fetching" provenance notices.
	r.logger.Info("cache lookup",
		zap.String("cache_key", key),
		zap.Bool("hit", hit),
	)
}

// NoopSink implements MetadataSink but does nothing.
// Callers (or tests) decide whether to inject ZapRecorder or NoopSink.
// Purpose is to keep metadata orthogonal.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	contentHash string,
	retryCount int,
) {
}

func (n *NoopSink) RecordCacheLookup(key string, hit bool) {}

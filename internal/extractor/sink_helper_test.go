package extractor_test

import (
	"time"

	"github.com/parkscout/parkscout/internal/metadata"
)

// recordingSink captures only error causes; extraction emits no other events.
type recordingSink struct {
	errorCauses []metadata.ErrorCause
}

func (r *recordingSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	r.errorCauses = append(r.errorCauses, cause)
}

func (r *recordingSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	contentHash string,
	retryCount int,
) {
}

func (r *recordingSink) RecordCacheLookup(key string, hit bool) {}

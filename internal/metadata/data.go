package metadata

import (
	"time"
)

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause is for observability only.
	 - It must never be used to derive retry, continuation, or abort decisions.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

  - The failure does not map cleanly to any known category.
  - Used as a safe fallback.

# CauseNetworkFailure

  - Failure caused by network transport or remote availability.
  - TCP timeouts, DNS failures, connection resets, HTTP 5xx.

# CauseContentInvalid

  - Content was fetched but could not be processed meaningfully.
  - Non-HTML responses, pages missing an expected structural marker,
    unparseable API payloads.

# CauseStorageFailure

  - Failure while persisting the cache file.
  - Disk full, write permission errors, filesystem I/O failures.

# CauseCacheReset

  - The on-disk cache could not be parsed and was silently replaced
    with an empty one. Recovered, never surfaced to the user.
*/
const (
	CauseUnknown = iota
	CauseNetworkFailure
	CauseContentInvalid
	CauseStorageFailure
	CauseCacheReset
)

type ErrorRecord struct {
	packageName string
	action      string
	cause       ErrorCause
	errorString string
	observedAt  time.Time
	attrs       []Attribute
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrTime       AttributeKey = "time"
	AttrURL        AttributeKey = "url"
	AttrState      AttributeKey = "state"
	AttrZip        AttributeKey = "zip"
	AttrCacheKey   AttributeKey = "cache_key"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrWritePath  AttributeKey = "write_path"
	AttrMessage    AttributeKey = "message"
)

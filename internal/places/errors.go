package places

import (
	"fmt"

	"github.com/parkscout/parkscout/internal/metadata"
	"github.com/parkscout/parkscout/pkg/failure"
)

type ClientErrorCause string

const (
	ErrCauseBadResponse = "unparseable search response"
)

type ClientError struct {
	Message   string
	Retryable bool
	Cause     ClientErrorCause
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("places error: %s", e.Cause)
}

func (e *ClientError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapClientErrorToMetadataCause maps places-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapClientErrorToMetadataCause(err *ClientError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseBadResponse:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}

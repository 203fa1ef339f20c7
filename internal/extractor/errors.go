package extractor

import (
	"fmt"

	"github.com/parkscout/parkscout/internal/metadata"
	"github.com/parkscout/parkscout/pkg/failure"
)

type ParseErrorCause string

const (
	ErrCauseNotHTML       = "not parseable HTML"
	ErrCauseNoStateNav    = "state navigation missing"
	ErrCauseNoResultsArea = "park results area missing"
	ErrCauseMissingField  = "expected field missing"
)

// ParseError reports that an expected structural element was absent from a
// fetched page. Extraction is all-or-nothing: no partial results are ever
// produced alongside a ParseError.
type ParseError struct {
	Message   string
	Retryable bool
	Cause     ParseErrorCause
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("extraction error: %s", e.Cause)
}

func (e *ParseError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

// mapParseErrorToMetadataCause maps extractor-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapParseErrorToMetadataCause(err *ParseError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseNotHTML, ErrCauseNoStateNav, ErrCauseNoResultsArea, ErrCauseMissingField:
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}

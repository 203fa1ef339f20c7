package fetcher_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/parkscout/parkscout/internal/fetcher"
	"github.com/parkscout/parkscout/internal/metadata"
	"github.com/parkscout/parkscout/pkg/retry"
	"github.com/parkscout/parkscout/pkg/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockMetadataSink is a test double for metadata.MetadataSink
type mockMetadataSink struct {
	fetchEvents []fetchEvent
	errorEvents []errorEvent
	lookups     []cacheLookup
}

type fetchEvent struct {
	fetchUrl    string
	httpStatus  int
	duration    time.Duration
	contentType string
	contentHash string
	retryCount  int
}

type errorEvent struct {
	observedAt  time.Time
	packageName string
	action      string
	cause       metadata.ErrorCause
	details     string
	attrs       []metadata.Attribute
}

type cacheLookup struct {
	key string
	hit bool
}

func (m *mockMetadataSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	contentHash string,
	retryCount int,
) {
	m.fetchEvents = append(m.fetchEvents, fetchEvent{
		fetchUrl:    fetchUrl,
		httpStatus:  httpStatus,
		duration:    duration,
		contentType: contentType,
		contentHash: contentHash,
		retryCount:  retryCount,
	})
}

func (m *mockMetadataSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	m.errorEvents = append(m.errorEvents, errorEvent{
		observedAt:  observedAt,
		packageName: packageName,
		action:      action,
		cause:       cause,
		details:     details,
		attrs:       attrs,
	})
}

func (m *mockMetadataSink) RecordCacheLookup(key string, hit bool) {
	m.lookups = append(m.lookups, cacheLookup{key: key, hit: hit})
}

// createTestRetryParam creates retry parameters for testing
func createTestRetryParam(maxAttempts int) retry.RetryParam {
	return retry.NewRetryParam(
		1*time.Millisecond,
		0,
		1,
		maxAttempts,
		timeutil.NewBackoffParam(1*time.Millisecond, 2.0, 5*time.Millisecond),
	)
}

func mustParseURL(t *testing.T, raw string) url.URL {
	t.Helper()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	return *parsed
}

func TestFetch_SuccessHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	mockSink := &mockMetadataSink{}
	f := fetcher.NewPageFetcher(mockSink, 5*time.Second)

	param := fetcher.NewFetchParam(mustParseURL(t, server.URL), "parkscout-test", fetcher.ContentKindHTML)
	result, err := f.Fetch(context.Background(), param, createTestRetryParam(1))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Code())
	assert.Contains(t, string(result.Body()), "ok")

	require.Len(t, mockSink.fetchEvents, 1)
	assert.Equal(t, http.StatusOK, mockSink.fetchEvents[0].httpStatus)
	assert.NotEmpty(t, mockSink.fetchEvents[0].contentHash)
}

func TestFetch_SuccessJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"searchResults":[]}`))
	}))
	defer server.Close()

	mockSink := &mockMetadataSink{}
	f := fetcher.NewPageFetcher(mockSink, 5*time.Second)

	param := fetcher.NewFetchParam(mustParseURL(t, server.URL), "parkscout-test", fetcher.ContentKindJSON)
	result, err := f.Fetch(context.Background(), param, createTestRetryParam(1))

	require.NoError(t, err)
	assert.JSONEq(t, `{"searchResults":[]}`, string(result.Body()))
}

func TestFetch_RejectsUnexpectedContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-"))
	}))
	defer server.Close()

	mockSink := &mockMetadataSink{}
	f := fetcher.NewPageFetcher(mockSink, 5*time.Second)

	param := fetcher.NewFetchParam(mustParseURL(t, server.URL), "parkscout-test", fetcher.ContentKindHTML)
	_, err := f.Fetch(context.Background(), param, createTestRetryParam(3))

	require.Error(t, err)
	var fetchErr *fetcher.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, fetcher.FetchErrorCause(fetcher.ErrCauseContentTypeInvalid), fetchErr.Cause)
	assert.False(t, fetchErr.IsRetryable())
}

func TestFetch_ClientErrorNotRetried(t *testing.T) {
	callCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	mockSink := &mockMetadataSink{}
	f := fetcher.NewPageFetcher(mockSink, 5*time.Second)

	param := fetcher.NewFetchParam(mustParseURL(t, server.URL), "parkscout-test", fetcher.ContentKindHTML)
	_, err := f.Fetch(context.Background(), param, createTestRetryParam(5))

	require.Error(t, err)
	assert.Equal(t, 1, callCount)

	// A failed fetch still records error metadata
	require.NotEmpty(t, mockSink.errorEvents)
	assert.Equal(t, "fetcher", mockSink.errorEvents[0].packageName)
}

func TestFetch_ServerErrorRetriedThenRecovers(t *testing.T) {
	callCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		if callCount < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body>recovered</body></html>"))
	}))
	defer server.Close()

	mockSink := &mockMetadataSink{}
	f := fetcher.NewPageFetcher(mockSink, 5*time.Second)

	param := fetcher.NewFetchParam(mustParseURL(t, server.URL), "parkscout-test", fetcher.ContentKindHTML)
	result, err := f.Fetch(context.Background(), param, createTestRetryParam(5))

	require.NoError(t, err)
	assert.Equal(t, 3, callCount)
	assert.Contains(t, string(result.Body()), "recovered")
}

func TestFetch_ExhaustedRetriesReturnsRetryError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	mockSink := &mockMetadataSink{}
	f := fetcher.NewPageFetcher(mockSink, 5*time.Second)

	param := fetcher.NewFetchParam(mustParseURL(t, server.URL), "parkscout-test", fetcher.ContentKindHTML)
	_, err := f.Fetch(context.Background(), param, createTestRetryParam(2))

	require.Error(t, err)
	var retryErr *retry.RetryError
	assert.True(t, errors.As(err, &retryErr))
}

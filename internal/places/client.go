package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/parkscout/parkscout/internal/cache"
	"github.com/parkscout/parkscout/internal/config"
	"github.com/parkscout/parkscout/internal/fetcher"
	"github.com/parkscout/parkscout/internal/metadata"
	"github.com/parkscout/parkscout/pkg/failure"
)

/*
Responsibilities
- Query the radius-search API for places near a postal code
- Consult the cache store first, keyed by the bare postal code
- Cache the raw response verbatim; never reinterpret cached results

Response handling is deliberately shallow: beyond JSON decoding, the
response shape is not validated. Rendering substitutes placeholders for
absent optional fields instead.
*/

type Client struct {
	store        *cache.Store
	fetcher      fetcher.Fetcher
	cfg          config.Config
	apiKey       string
	metadataSink metadata.MetadataSink
}

func NewClient(
	store *cache.Store,
	pageFetcher fetcher.Fetcher,
	cfg config.Config,
	apiKey string,
	metadataSink metadata.MetadataSink,
) Client {
	return Client{
		store:        store,
		fetcher:      pageFetcher,
		cfg:          cfg,
		apiKey:       apiKey,
		metadataSink: metadataSink,
	}
}

// Nearby returns the places around the given zip code.
//
// Results are keyed by the bare postal code: two sites sharing a zip code
// share one cache entry and one API result. That collision is inherited
// from the cache file's documented key set and acceptable for a
// single-user tool.
func (c *Client) Nearby(ctx context.Context, zipCode string) (Result, failure.ClassifiedError) {
	if raw, ok := c.store.Get(zipCode); ok {
		if result, err := c.decode(zipCode, raw); err == nil {
			return result, nil
		}
		// Malformed cached result: refetch and overwrite.
	}

	searchURL, buildErr := c.searchURL(zipCode)
	if buildErr != nil {
		return Result{}, buildErr
	}

	fetched, fetchErr := c.fetcher.Fetch(
		ctx,
		fetcher.NewFetchParam(searchURL, c.cfg.UserAgent(), fetcher.ContentKindJSON),
		c.cfg.RetryParam(),
	)
	if fetchErr != nil {
		return Result{}, fetchErr
	}

	result, decodeErr := c.decode(zipCode, fetched.Body())
	if decodeErr != nil {
		return Result{}, decodeErr
	}

	// Store the response verbatim, not the decoded projection, so fields
	// this tool does not model survive in the cache.
	if storeErr := c.store.Set(zipCode, json.RawMessage(fetched.Body())); storeErr != nil {
		return Result{}, storeErr
	}

	return result, nil
}

func (c *Client) searchURL(zipCode string) (url.URL, failure.ClassifiedError) {
	endpoint, err := url.Parse(c.cfg.SearchBaseURL() + "/search/v2/radius")
	if err != nil {
		return url.URL{}, &ClientError{
			Message:   fmt.Sprintf("failed to build search URL: %v", err),
			Retryable: false,
			Cause:     ErrCauseBadResponse,
		}
	}

	query := url.Values{}
	query.Set("key", c.apiKey)
	query.Set("radius", strconv.Itoa(c.cfg.SearchRadius()))
	query.Set("maxMatches", strconv.Itoa(c.cfg.MaxMatches()))
	query.Set("ambiguities", "ignore")
	query.Set("origin", zipCode)
	endpoint.RawQuery = query.Encode()

	return *endpoint, nil
}

func (c *Client) decode(zipCode string, raw []byte) (Result, failure.ClassifiedError) {
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		clientErr := &ClientError{
			Message:   fmt.Sprintf("failed to decode search response: %v", err),
			Retryable: false,
			Cause:     ErrCauseBadResponse,
		}
		c.metadataSink.RecordError(
			time.Now(),
			"places",
			"Client.Nearby",
			mapClientErrorToMetadataCause(clientErr),
			clientErr.Message,
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrZip, zipCode),
			},
		)
		return Result{}, clientErr
	}
	return result, nil
}

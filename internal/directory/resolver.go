package directory

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/parkscout/parkscout/internal/cache"
	"github.com/parkscout/parkscout/internal/config"
	"github.com/parkscout/parkscout/internal/extractor"
	"github.com/parkscout/parkscout/internal/fetcher"
	"github.com/parkscout/parkscout/pkg/failure"
)

/*
Responsibilities
- Map a state name to its listing-page URL
- Consult the cache store first, fetch the index page only on a miss

The resolved directory is returned as a value, never held as process state.
*/

type Resolver struct {
	store     *cache.Store
	fetcher   fetcher.Fetcher
	extractor extractor.DomExtractor
	cfg       config.Config
}

func NewResolver(
	store *cache.Store,
	pageFetcher fetcher.Fetcher,
	domExtractor extractor.DomExtractor,
	cfg config.Config,
) Resolver {
	return Resolver{
		store:     store,
		fetcher:   pageFetcher,
		extractor: domExtractor,
		cfg:       cfg,
	}
}

// Resolve returns the state-name → listing-URL mapping, from the cache when
// present. On a miss the index page is fetched, extracted, and the mapping
// stored under the fixed "states" key before returning.
func (r *Resolver) Resolve(ctx context.Context) (extractor.StateDirectory, failure.ClassifiedError) {
	if raw, ok := r.store.Get(cache.StatesKey); ok {
		var directory extractor.StateDirectory
		if err := json.Unmarshal(raw, &directory); err == nil && len(directory) > 0 {
			return directory, nil
		}
		// A malformed cached directory is not trusted; fall through to
		// refetch and overwrite it.
	}

	indexURL, parseErr := url.Parse(r.cfg.ParksBaseURL() + "/index.htm")
	if parseErr != nil {
		return nil, &fetcher.FetchError{
			Message:   parseErr.Error(),
			Retryable: false,
			Cause:     fetcher.ErrCauseNetworkFailure,
		}
	}

	result, fetchErr := r.fetcher.Fetch(
		ctx,
		fetcher.NewFetchParam(*indexURL, r.cfg.UserAgent(), fetcher.ContentKindHTML),
		r.cfg.RetryParam(),
	)
	if fetchErr != nil {
		return nil, fetchErr
	}

	directory, extractErr := r.extractor.ExtractStateDirectory(*indexURL, result.Body(), r.cfg.ParksBaseURL())
	if extractErr != nil {
		return nil, extractErr
	}

	if storeErr := r.store.Set(cache.StatesKey, directory); storeErr != nil {
		return nil, storeErr
	}

	return directory, nil
}

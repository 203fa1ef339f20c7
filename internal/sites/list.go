package sites

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/parkscout/parkscout/internal/cache"
	"github.com/parkscout/parkscout/internal/config"
	"github.com/parkscout/parkscout/internal/extractor"
	"github.com/parkscout/parkscout/internal/fetcher"
	"github.com/parkscout/parkscout/internal/park"
	"github.com/parkscout/parkscout/pkg/failure"
	"golang.org/x/sync/errgroup"
)

/*
Responsibilities
- Produce the ordered list of site records for one state listing page
- Consult the cache store first, keyed by the state URL
- Fetch individual site details through DetailFetcher, optionally in
  parallel, and join the results in page order

Ordering invariant: the sequence returned on a cache hit is identical to the
sequence produced by the preceding miss. There are no partial-success
semantics; one failed site detail aborts the whole listing.
*/

type ListFetcher struct {
	store     *cache.Store
	fetcher   fetcher.Fetcher
	extractor extractor.DomExtractor
	detail    *DetailFetcher
	cfg       config.Config
}

func NewListFetcher(
	store *cache.Store,
	pageFetcher fetcher.Fetcher,
	domExtractor extractor.DomExtractor,
	detail *DetailFetcher,
	cfg config.Config,
) ListFetcher {
	return ListFetcher{
		store:     store,
		fetcher:   pageFetcher,
		extractor: domExtractor,
		detail:    detail,
		cfg:       cfg,
	}
}

// FetchSites returns the site records listed at stateURL, in page order.
func (f *ListFetcher) FetchSites(ctx context.Context, stateURL string) ([]park.Site, failure.ClassifiedError) {
	if raw, ok := f.store.Get(stateURL); ok {
		if sites, ok := decodeSiteSequence(raw); ok {
			return sites, nil
		}
		// Malformed cached sequence: refetch and overwrite.
	}

	parsedURL, parseErr := url.Parse(stateURL)
	if parseErr != nil {
		return nil, &fetcher.FetchError{
			Message:   parseErr.Error(),
			Retryable: false,
			Cause:     fetcher.ErrCauseNetworkFailure,
		}
	}

	result, fetchErr := f.fetcher.Fetch(
		ctx,
		fetcher.NewFetchParam(*parsedURL, f.cfg.UserAgent(), fetcher.ContentKindHTML),
		f.cfg.RetryParam(),
	)
	if fetchErr != nil {
		return nil, fetchErr
	}

	links, extractErr := f.extractor.ExtractSiteLinks(*parsedURL, result.Body())
	if extractErr != nil {
		return nil, extractErr
	}

	sites, detailErr := f.fetchDetails(ctx, links)
	if detailErr != nil {
		return nil, detailErr
	}

	if storeErr := f.store.Set(stateURL, sites); storeErr != nil {
		return nil, storeErr
	}

	return sites, nil
}

// fetchDetails resolves each candidate link and fetches its record. Details
// are fetched through a bounded worker group; results land in a slice
// indexed by page position so the returned order never depends on
// completion order. Concurrency 1 reproduces strictly sequential fetching.
func (f *ListFetcher) fetchDetails(ctx context.Context, links []string) ([]park.Site, failure.ClassifiedError) {
	sites := make([]park.Site, len(links))
	classified := make([]failure.ClassifiedError, len(links))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(f.cfg.Concurrency())

	for i, link := range links {
		i, link := i, link
		group.Go(func() error {
			site, err := f.detail.FetchSite(groupCtx, f.cfg.ParksBaseURL()+link+"index.htm")
			if err != nil {
				classified[i] = err
				return err
			}
			sites[i] = site
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		// Report the first failure in page order, not completion order.
		for _, classifiedErr := range classified {
			if classifiedErr != nil {
				return nil, classifiedErr
			}
		}
	}

	return sites, nil
}

// decodeSiteSequence reconstructs the cached record sequence, preserving
// order. Any malformed entry rejects the whole sequence.
func decodeSiteSequence(raw json.RawMessage) ([]park.Site, bool) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}

	sites := make([]park.Site, 0, len(entries))
	for _, entry := range entries {
		site, err := park.DecodeSite(entry)
		if err != nil {
			return nil, false
		}
		sites = append(sites, site)
	}
	return sites, true
}

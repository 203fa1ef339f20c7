package sites

import (
	"context"
	"net/url"

	"github.com/parkscout/parkscout/internal/cache"
	"github.com/parkscout/parkscout/internal/config"
	"github.com/parkscout/parkscout/internal/extractor"
	"github.com/parkscout/parkscout/internal/fetcher"
	"github.com/parkscout/parkscout/internal/park"
	"github.com/parkscout/parkscout/pkg/failure"
)

/*
Responsibilities
- Produce one site record from a site detail page URL
- Consult the cache store first, keyed by the page URL
- Compose locality and region into the record's single address string

Extraction is all-or-nothing; a partially populated record is never cached
or returned.
*/

type DetailFetcher struct {
	store     *cache.Store
	fetcher   fetcher.Fetcher
	extractor extractor.DomExtractor
	cfg       config.Config
}

func NewDetailFetcher(
	store *cache.Store,
	pageFetcher fetcher.Fetcher,
	domExtractor extractor.DomExtractor,
	cfg config.Config,
) DetailFetcher {
	return DetailFetcher{
		store:     store,
		fetcher:   pageFetcher,
		extractor: domExtractor,
		cfg:       cfg,
	}
}

// FetchSite returns the record for one site detail page. A cached entry that
// fails validation is treated as a miss and refetched rather than trusted.
func (f *DetailFetcher) FetchSite(ctx context.Context, siteURL string) (park.Site, failure.ClassifiedError) {
	if raw, ok := f.store.Get(siteURL); ok {
		if site, err := park.DecodeSite(raw); err == nil {
			return site, nil
		}
	}

	parsedURL, parseErr := url.Parse(siteURL)
	if parseErr != nil {
		return park.Site{}, &fetcher.FetchError{
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
		return park.Site{}, fetchErr
	}

	fields, extractErr := f.extractor.ExtractSiteDetail(*parsedURL, result.Body())
	if extractErr != nil {
		return park.Site{}, extractErr
	}

	site := park.NewSite(
		fields.Category,
		fields.Name,
		fields.Locality+", "+fields.Region,
		fields.Zipcode,
		fields.Phone,
	)

	if storeErr := f.store.Set(siteURL, site); storeErr != nil {
		return park.Site{}, storeErr
	}

	return site, nil
}

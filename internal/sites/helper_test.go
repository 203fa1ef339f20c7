package sites_test

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/parkscout/parkscout/internal/cache"
	"github.com/parkscout/parkscout/internal/config"
	"github.com/parkscout/parkscout/internal/extractor"
	"github.com/parkscout/parkscout/internal/fetcher"
	"github.com/parkscout/parkscout/internal/metadata"
	"github.com/parkscout/parkscout/internal/sites"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T, baseURL string, concurrency int) config.Config {
	t.Helper()
	cfg, err := config.WithDefault().
		WithParksBaseURL(baseURL).
		WithCacheFile(filepath.Join(t.TempDir(), "cache.json")).
		WithConcurrency(concurrency).
		WithBaseDelay(time.Millisecond).
		WithJitter(0).
		Build()
	require.NoError(t, err)
	return cfg
}

func newFetchers(t *testing.T, cfg config.Config) (sites.ListFetcher, sites.DetailFetcher, *cache.Store) {
	t.Helper()
	sink := &metadata.NoopSink{}
	store := cache.Open(cfg.CacheFile(), sink)
	pageFetcher := fetcher.NewPageFetcher(sink, cfg.Timeout())
	domExtractor := extractor.NewDomExtractor(sink)
	detail := sites.NewDetailFetcher(store, &pageFetcher, domExtractor, cfg)
	list := sites.NewListFetcher(store, &pageFetcher, domExtractor, &detail, cfg)
	return list, detail, store
}

// detailPage renders a minimal site detail page carrying all six markers.
func detailPage(name, category, locality, region, zipcode, phone string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body>
<div class="Hero-titleContainer clearfix"><a href="#">%s</a></div>
<div class="Hero-designationContainer"><span class="Hero-designation">%s</span></div>
<div class="adr">
  <span itemprop="addressLocality">%s</span>,
  <span itemprop="addressRegion">%s</span>
  <span itemprop="postalCode">%s</span>
</div>
<span itemprop="telephone">%s</span>
</body>
</html>`, name, category, locality, region, zipcode, phone)
}

// listingPage renders a park results container with one h3 link per entry,
// in the given order.
func listingPage(links map[string]string, order []string) string {
	page := `<!DOCTYPE html><html><body><div id="parkListResultsArea">`
	for _, href := range order {
		page += fmt.Sprintf(`<div class="result"><h3><a href="%s">%s</a></h3></div>`, href, links[href])
	}
	return page + `</div></body></html>`
}

package sites_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStateServer serves one state listing page plus three park detail pages.
// It returns the server and a pointer to the request counter.
func newStateServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	listing := listingPage(map[string]string{
		"/isro/": "Isle Royale",
		"/kewe/": "Keweenaw",
		"/piro/": "Pictured Rocks",
	}, []string{"/isro/", "/kewe/", "/piro/"})

	details := map[string]string{
		"/isro/index.htm": detailPage("Isle Royale", "National Park", "Houghton", "MI", "49931", "(906) 482-0984"),
		"/kewe/index.htm": detailPage("Keweenaw", "National Historical Park", "Calumet", "MI", "49913", "906 337-3168"),
		"/piro/index.htm": detailPage("Pictured Rocks", "National Lakeshore", "Munising", "MI", "49862", "906-387-3700"),
	}

	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "text/html")
		if r.URL.Path == "/state/mi/index.htm" {
			w.Write([]byte(listing))
			return
		}
		page, ok := details[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)

	return server, &calls
}

func TestFetchSites_OrderFollowsListingPage(t *testing.T) {
	server, calls := newStateServer(t)

	cfg := newTestConfig(t, server.URL, 1)
	list, _, store := newFetchers(t, cfg)

	stateURL := server.URL + "/state/mi/index.htm"
	result, err := list.FetchSites(context.Background(), stateURL)
	require.NoError(t, err)

	require.Len(t, result, 3)
	assert.Equal(t, "Isle Royale", result[0].Name)
	assert.Equal(t, "Keweenaw", result[1].Name)
	assert.Equal(t, "Pictured Rocks", result[2].Name)

	// One listing fetch plus three detail fetches.
	assert.Equal(t, int64(4), calls.Load())

	// The listing sequence and each individual detail are cached.
	_, ok := store.Get(stateURL)
	assert.True(t, ok)
}

func TestFetchSites_CacheHitReproducesSequence(t *testing.T) {
	server, calls := newStateServer(t)

	cfg := newTestConfig(t, server.URL, 1)
	list, _, _ := newFetchers(t, cfg)

	stateURL := server.URL + "/state/mi/index.htm"
	first, err := list.FetchSites(context.Background(), stateURL)
	require.NoError(t, err)

	fetchedCalls := calls.Load()

	second, err := list.FetchSites(context.Background(), stateURL)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, fetchedCalls, calls.Load())
}

func TestFetchSites_ConcurrentFetchKeepsPageOrder(t *testing.T) {
	server, _ := newStateServer(t)

	cfg := newTestConfig(t, server.URL, 3)
	list, _, _ := newFetchers(t, cfg)

	result, err := list.FetchSites(context.Background(), server.URL+"/state/mi/index.htm")
	require.NoError(t, err)

	require.Len(t, result, 3)
	assert.Equal(t, "Isle Royale", result[0].Name)
	assert.Equal(t, "Keweenaw", result[1].Name)
	assert.Equal(t, "Pictured Rocks", result[2].Name)
}

func TestFetchSites_OneBadDetailAbortsListing(t *testing.T) {
	listing := listingPage(map[string]string{
		"/isro/": "Isle Royale",
		"/bad/":  "Broken",
	}, []string{"/isro/", "/bad/"})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/state/mi/index.htm":
			w.Write([]byte(listing))
		case "/isro/index.htm":
			w.Write([]byte(detailPage("Isle Royale", "National Park", "Houghton", "MI", "49931", "(906) 482-0984")))
		default:
			// Detail page missing every marker.
			w.Write([]byte("<html><body><p>renovation in progress</p></body></html>"))
		}
	}))
	defer server.Close()

	cfg := newTestConfig(t, server.URL, 1)
	list, _, store := newFetchers(t, cfg)

	stateURL := server.URL + "/state/mi/index.htm"
	_, err := list.FetchSites(context.Background(), stateURL)
	require.Error(t, err)

	// No partial sequence is stored under the state URL.
	_, ok := store.Get(stateURL)
	assert.False(t, ok)
}

func TestFetchSites_MalformedCachedSequenceRefetched(t *testing.T) {
	server, calls := newStateServer(t)

	cfg := newTestConfig(t, server.URL, 1)
	list, _, store := newFetchers(t, cfg)

	stateURL := server.URL + "/state/mi/index.htm"

	// One entry lacking the phone attribute rejects the whole sequence.
	require.NoError(t, store.Set(stateURL, []map[string]string{
		{
			"category": "National Park",
			"name":     "Isle Royale",
			"address":  "Houghton, MI",
			"zipcode":  "49931",
		},
	}))

	result, err := list.FetchSites(context.Background(), stateURL)
	require.NoError(t, err)

	require.Len(t, result, 3)
	assert.Equal(t, int64(4), calls.Load())
}

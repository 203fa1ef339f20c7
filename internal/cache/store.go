package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/parkscout/parkscout/internal/metadata"
	"github.com/parkscout/parkscout/pkg/failure"
)

/*
Responsibilities
- Hold every previously fetched result in memory as one string-keyed mapping
- Persist the full mapping to a single JSON file after every mutation

Store Semantics
- Keys are the literal "states" token, listing-page URLs, detail-page URLs,
  or postal codes; values are stored verbatim as raw JSON
- A missing or unparseable cache file yields an empty store, never an error
- Every Set rewrites the whole file; there is no merging, eviction, or expiry
- No cross-process locking: concurrent writers race, last writer wins

The store never interprets values; fetchers own their encoding.
*/

// StatesKey is the fixed key the state directory mapping is stored under.
const StatesKey = "states"

type Store struct {
	path         string
	metadataSink metadata.MetadataSink

	// Guards entries when site details are fetched concurrently.
	mu      sync.Mutex
	entries map[string]json.RawMessage
}

// Open reads the cache file at path and loads it into memory. A missing file
// or one holding malformed JSON produces an empty store; the reset is
// recorded through the metadata sink but never surfaced as an error.
func Open(path string, metadataSink metadata.MetadataSink) *Store {
	store := &Store{
		path:         path,
		metadataSink: metadataSink,
		entries:      make(map[string]json.RawMessage),
	}

	content, err := os.ReadFile(path)
	if err != nil {
		// Absent cache file is the normal first-run state.
		return store
	}

	entries := make(map[string]json.RawMessage)
	if err := json.Unmarshal(content, &entries); err != nil {
		metadataSink.RecordError(
			time.Now(),
			"cache",
			"cache.Open",
			metadata.CauseCacheReset,
			fmt.Sprintf("unparseable cache file, starting empty: %v", err),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrWritePath, path),
			},
		)
		return store
	}

	store.entries = entries
	return store
}

// Get returns the raw cached value for key. The lookup is recorded as
// provenance metadata either way.
func (s *Store) Get(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	raw, ok := s.entries[key]
	s.mu.Unlock()

	s.metadataSink.RecordCacheLookup(key, ok)
	return raw, ok
}

// Set stores value under key and immediately rewrites the cache file so the
// entry is durable before the next potential process exit. A write failure
// is fatal for the calling operation.
func (s *Store) Set(key string, value any) failure.ClassifiedError {
	encoded, err := json.Marshal(value)
	if err != nil {
		return s.recordStoreError("Store.Set", &StoreError{
			Message:   fmt.Sprintf("failed to encode value for key %q: %v", key, err),
			Retryable: false,
			Cause:     ErrCauseEncodeFailure,
		})
	}

	s.mu.Lock()
	s.entries[key] = json.RawMessage(encoded)
	saveErr := s.save()
	s.mu.Unlock()

	return saveErr
}

// Len reports the number of cached entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// save serializes the full mapping and overwrites the cache file in full.
// Callers must hold s.mu.
func (s *Store) save() failure.ClassifiedError {
	encoded, err := json.Marshal(s.entries)
	if err != nil {
		return s.recordStoreError("Store.save", &StoreError{
			Message:   fmt.Sprintf("failed to encode cache: %v", err),
			Retryable: false,
			Cause:     ErrCauseEncodeFailure,
		})
	}

	if err := os.WriteFile(s.path, encoded, 0644); err != nil {
		return s.recordStoreError("Store.save", &StoreError{
			Message:   fmt.Sprintf("failed to write cache file: %v", err),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
		})
	}

	return nil
}

func (s *Store) recordStoreError(action string, storeErr *StoreError) failure.ClassifiedError {
	s.metadataSink.RecordError(
		time.Now(),
		"cache",
		action,
		mapStoreErrorToMetadataCause(storeErr),
		storeErr.Message,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, s.path),
		},
	)
	return storeErr
}

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sittravell/MalTrackarr/internal/shared"
)

func TestDatasetService(t *testing.T) {
	t.Run("Builds Lookup Keyed By Provider Id", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{
  "1": {"tvdb_id": 76885, "imdb_id": "tt0213338"},
  "99": {"mal_id": 5, "imdb_id": "tt0112159"},
  "garbage": "not an object",
  "20": {"tvdb_id": "also garbage"},
  "not-a-number": {"imdb_id": "tt0000001"}
}`)
		}))
		defer ts.Close()

		srv := NewDatasetService(DatasetOpts{URL: ts.URL})

		mapping, err := srv.Fetch(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(mapping) != 2 {
			t.Fatalf("expected 2 parsable entries, got %d", len(mapping))
		}

		entry, ok := mapping[1]
		if !ok {
			t.Fatal("expected entry keyed by top-level key 1")
		}
		if entry.TVDBID == nil || *entry.TVDBID != 76885 {
			t.Errorf("expected tvdb_id 76885, got %v", entry.TVDBID)
		}
		if entry.IMDBID != "tt0213338" {
			t.Errorf("expected imdb_id tt0213338, got %q", entry.IMDBID)
		}

		// mal_id field wins over the top-level key
		if _, ok := mapping[5]; !ok {
			t.Error("expected entry keyed by its mal_id field")
		}
		if _, ok := mapping[99]; ok {
			t.Error("top-level key should not be used when mal_id is present")
		}
	})

	t.Run("Reuses In-Memory Copy Within TTL", func(t *testing.T) {
		calls := 0
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			fmt.Fprint(w, `{"1": {"tvdb_id": 1}}`)
		}))
		defer ts.Close()

		srv := NewDatasetService(DatasetOpts{URL: ts.URL, TTL: time.Hour})

		for i := 0; i < 3; i++ {
			if _, err := srv.Fetch(context.Background()); err != nil {
				t.Fatalf("fetch %d failed: %v", i, err)
			}
		}

		if calls != 1 {
			t.Errorf("expected a single download within the TTL, got %d", calls)
		}
	})

	t.Run("Zero TTL Disables Reuse", func(t *testing.T) {
		calls := 0
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			fmt.Fprint(w, `{"1": {"tvdb_id": 1}}`)
		}))
		defer ts.Close()

		srv := NewDatasetService(DatasetOpts{URL: ts.URL})

		for i := 0; i < 2; i++ {
			if _, err := srv.Fetch(context.Background()); err != nil {
				t.Fatalf("fetch %d failed: %v", i, err)
			}
		}

		if calls != 2 {
			t.Errorf("expected a download per fetch, got %d", calls)
		}
	})

	t.Run("Unretrievable Document", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		}))
		defer ts.Close()

		srv := NewDatasetService(DatasetOpts{URL: ts.URL})

		_, err := srv.Fetch(context.Background())
		if !errors.Is(err, shared.ErrDatasetRequest) {
			t.Errorf("expected ErrDatasetRequest, got %v", err)
		}
	})

	t.Run("Unparsable Document", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html>rate limited</html>")
		}))
		defer ts.Close()

		srv := NewDatasetService(DatasetOpts{URL: ts.URL})

		_, err := srv.Fetch(context.Background())
		if !errors.Is(err, shared.ErrDatasetRequest) {
			t.Errorf("expected ErrDatasetRequest, got %v", err)
		}
	})
}

// Kometa Anime-IDs implementation of [CrossRefService]
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Sittravell/MalTrackarr/internal/models"
	"github.com/Sittravell/MalTrackarr/internal/shared"
	"github.com/charmbracelet/log"
)

const datasetURL = "https://raw.githubusercontent.com/Kometa-Team/Anime-IDs/master/anime_ids.json"

// DatasetService downloads the cross-reference dataset and builds an
// in-memory lookup keyed by provider id. The parsed map is reused while it
// is fresh so a burst of requests does not re-download the document.
type DatasetService struct {
	url        string
	ttl        time.Duration
	httpClient *http.Client
	logger     *log.Logger
	now        func() time.Time

	mu        sync.Mutex
	cached    map[int]models.DatasetEntry
	fetchedAt time.Time
}

// DatasetOpts contains configuration options for creating a DatasetService.
type DatasetOpts struct {
	URL        string
	TTL        time.Duration // 0 disables in-memory reuse
	HTTPClient *http.Client
	Logger     *log.Logger
	Now        func() time.Time
}

// NewDatasetService creates a dataset client.
func NewDatasetService(opts DatasetOpts) *DatasetService {
	if opts.URL == "" {
		opts.URL = datasetURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &DatasetService{
		url:        opts.URL,
		ttl:        opts.TTL,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		now:        opts.Now,
	}
}

// Fetch returns the provider-id keyed mapping, reusing the in-memory copy
// while it is within the configured TTL.
func (d *DatasetService) Fetch(ctx context.Context) (map[int]models.DatasetEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cached != nil && d.ttl > 0 && d.now().Sub(d.fetchedAt) < d.ttl {
		return d.cached, nil
	}

	mapping, err := d.download(ctx)
	if err != nil {
		return nil, err
	}

	d.cached = mapping
	d.fetchedAt = d.now()
	return mapping, nil
}

// download retrieves and parses the dataset document.
//
// Each entry is keyed by its mal_id field when present, else by the
// top-level key; entries that parse to neither are skipped, not fatal.
func (d *DatasetService) download(ctx context.Context) (map[int]models.DatasetEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrDatasetRequest, err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDatasetRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", shared.ErrDatasetRequest, resp.StatusCode)
	}

	var payload map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode document: %v", shared.ErrDatasetRequest, err)
	}

	mapping := make(map[int]models.DatasetEntry, len(payload))
	skipped := 0
	for key, raw := range payload {
		var entry models.DatasetEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			skipped++
			continue
		}

		id := entry.MalID
		if id == 0 {
			parsed, err := strconv.Atoi(key)
			if err != nil {
				skipped++
				continue
			}
			id = parsed
		}

		entry.MalID = id
		mapping[id] = entry
	}

	if skipped > 0 {
		d.logger.Warn("skipped malformed dataset entries", "count", skipped)
	}
	d.logger.Info("dataset downloaded", "entries", len(mapping))

	return mapping, nil
}

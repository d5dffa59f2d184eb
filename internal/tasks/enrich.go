// package tasks implements the watch-list enrichment pipeline.
//
// The core abstraction is EnrichEngine, which orchestrates one request:
// token check, concurrent watch-list and dataset fetches, then the
// order-preserving merge.
package tasks

import (
	"context"
	"sync"

	"github.com/Sittravell/MalTrackarr/internal/models"
	"github.com/Sittravell/MalTrackarr/internal/services"
	"github.com/Sittravell/MalTrackarr/internal/shared"
	"github.com/charmbracelet/log"
)

// EnrichEngine joins a user's watch-list with the cross-reference dataset.
type EnrichEngine struct {
	provider services.WatchlistService
	dataset  services.CrossRefService
	logger   *log.Logger
}

// NewEnrichEngine creates an engine over the given provider and dataset clients.
func NewEnrichEngine(provider services.WatchlistService, dataset services.CrossRefService, logger *log.Logger) *EnrichEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &EnrichEngine{
		provider: provider,
		dataset:  dataset,
		logger:   logger,
	}
}

// Run executes the full pipeline for one request.
//
// The token is validated up front so an authentication failure aborts
// before any upstream fetch. The watch-list and dataset fetches do not
// depend on each other and run concurrently; the first failure aborts
// the request with no partial response.
func (e *EnrichEngine) Run(ctx context.Context, username, status string) ([]models.OutputRecord, error) {
	if _, err := e.provider.EnsureToken(ctx); err != nil {
		return nil, err
	}

	var (
		wg        sync.WaitGroup
		watchlist []models.WatchlistEntry
		dataset   map[int]models.DatasetEntry
		listErr   error
		dataErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		watchlist, listErr = e.provider.AnimeList(ctx, username, status)
	}()
	go func() {
		defer wg.Done()
		dataset, dataErr = e.dataset.Fetch(ctx)
	}()
	wg.Wait()

	if listErr != nil {
		return nil, listErr
	}
	if dataErr != nil {
		return nil, dataErr
	}

	records := Merge(watchlist, dataset)
	e.logger.Debug("pipeline complete", "username", username, "status", status, "records", len(records))
	return records, nil
}

// Merge joins watch-list entries with the cross-reference map.
//
// Output order and length match the watch-list. An entry without a dataset
// match keeps only title and malId; when a match exists, tvdb and imdb ids
// are copied over, the imdb id under both of its keys.
func Merge(watchlist []models.WatchlistEntry, dataset map[int]models.DatasetEntry) []models.OutputRecord {
	records := make([]models.OutputRecord, 0, len(watchlist))

	for _, item := range watchlist {
		record := models.OutputRecord{
			Title: item.Title,
			MalID: item.MalID,
		}

		if mapped, ok := dataset[item.MalID]; ok {
			if mapped.TVDBID != nil {
				id := *mapped.TVDBID
				record.TVDBID = &id
			}
			if mapped.IMDBID != "" {
				record.IMDBID = mapped.IMDBID
				record.IMDBIDCamel = mapped.IMDBID
			}
		}

		records = append(records, record)
	}

	return records
}

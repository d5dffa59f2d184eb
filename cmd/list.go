package main

import (
	"context"
	"fmt"

	"github.com/Sittravell/MalTrackarr/internal/formatter"
	"github.com/Sittravell/MalTrackarr/internal/models"
	"github.com/Sittravell/MalTrackarr/internal/shared"
	"github.com/Sittravell/MalTrackarr/internal/tasks"
	"github.com/urfave/cli/v3"
)

// List fetches a user's watch-list, merges in cross-reference ids and writes
// the result in the requested format.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	username := cmd.String("username")
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}

	status := cmd.String("status")
	if status == "" {
		status = models.DefaultStatus
	}
	if !models.ValidStatus(status) {
		return fmt.Errorf("%w: status must be one of %v", shared.ErrInvalidFlag, models.Statuses())
	}

	store := r.credStore()
	engine := tasks.NewEnrichEngine(r.malService(store), r.datasetService(), r.logger)

	records, err := engine.Run(ctx, username, status)
	if err != nil {
		return err
	}

	switch format := cmd.String("format"); format {
	case "json":
		return r.writeJSON(records, cmd.Bool("pretty"))
	case "csv":
		data, err := formatter.ExportToCSV(records)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case "markdown":
		heading := fmt.Sprintf("%s (%s)", username, status)
		return r.writePlain("%s", formatter.ExportToMarkdown(records, heading))
	case "plain":
		return r.writePlain("%s", formatter.ExportToPlainText(records))
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// DatasetLookup prints the cross-reference ids stored for one provider id.
func (r *Runner) DatasetLookup(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	id := int(cmd.Int("mal-id"))
	if id <= 0 {
		return fmt.Errorf("%w: mal-id must be positive", shared.ErrInvalidFlag)
	}

	lookup, err := r.datasetService().Fetch(ctx)
	if err != nil {
		return err
	}

	entry, ok := lookup[id]
	if !ok {
		return r.writePlainln("no cross-reference entry for id %d", id)
	}

	return r.writeJSON(entry, true)
}

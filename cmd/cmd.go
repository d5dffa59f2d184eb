// submodule cmd contains command definitions
package main

import (
	"github.com/Sittravell/MalTrackarr/internal/models"
	"github.com/urfave/cli/v3"
)

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

// serveCommand runs the HTTP service
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the watch-list enrichment HTTP service",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Override the configured server port",
			},
		},
		Action: r.Serve,
	}
}

// authCommand handles provider authentication
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage MyAnimeList authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize with MyAnimeList using OAuth2 and PKCE",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Report the stored token state",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthStatus,
			},
			{
				Name:   "refresh",
				Usage:  "Force a token exchange now",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthRefresh,
			},
		},
	}
}

// listCommand runs the enrichment pipeline from the CLI
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Fetch a user's watch-list enriched with cross-reference ids",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "username",
				Aliases:  []string{"u"},
				Usage:    "MyAnimeList username",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "status",
				Aliases: []string{"s"},
				Usage:   "List status filter",
				Value:   models.DefaultStatus,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json, csv, markdown, plain",
				Value:   "json",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
		},
		Action: r.List,
	}
}

// datasetCommand inspects the cross-reference dataset
func datasetCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "dataset",
		Usage: "Cross-reference dataset operations",
		Commands: []*cli.Command{
			{
				Name:  "lookup",
				Usage: "Show the cross-reference ids for one provider id",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:     "mal-id",
						Usage:    "Provider id to look up",
						Required: true,
					},
				},
				Action: r.DatasetLookup,
			},
		},
	}
}

// setupCommand writes starter configuration files
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Write an example app config and a credentials file skeleton",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

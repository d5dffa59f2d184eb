package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/Sittravell/MalTrackarr/internal/models"
	"github.com/Sittravell/MalTrackarr/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a starter app config and a credentials file skeleton.
//
// Existing files are left alone so a rerun never clobbers real credentials.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if err := shared.CreateConfigFile(configPath); err != nil {
		r.logger.Warnf("skipping app config %v", err)
	} else if err := r.writePlainln("wrote app config to %s", configPath); err != nil {
		return err
	}

	store := r.credStore()
	if _, err := store.Load(); err == nil {
		return r.writePlainln("credentials file already exists at %s", store.Path())
	} else if !errors.Is(err, shared.ErrMissingConfig) {
		return err
	}

	skeleton, err := json.MarshalIndent(&models.Credentials{}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(store.Path(), append(skeleton, '\n'), 0600); err != nil {
		return err
	}

	return r.writePlainln("wrote credentials skeleton to %s; fill in client_id and client_secret",
		store.Path())
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Sittravell/MalTrackarr/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin walks through the OAuth2 authorization-code flow with PKCE.
//
// It opens the provider's consent page, stores the pasted authorization code
// alongside the verifier, and immediately exchanges it for a token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	store := r.credStore()
	creds, err := store.Load()
	if err != nil {
		return err
	}
	if !creds.HasClient() {
		return fmt.Errorf("%w: client_id and client_secret must be set in %s",
			shared.ErrMissingCredentials, store.Path())
	}

	state, err := shared.GenerateState()
	if err != nil {
		return fmt.Errorf("failed to generate state: %w", err)
	}
	verifier, err := shared.GeneratePKCEVerifier()
	if err != nil {
		return fmt.Errorf("failed to generate verifier: %w", err)
	}

	service := r.malService(store)
	authURL := service.AuthCodeURL(creds, state, verifier)

	if cmd.Bool("no-browser") {
		if err := r.writePlainln("open this URL to authorize:\n%s", authURL); err != nil {
			return err
		}
	} else if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("could not open browser %v", err)
		if err := r.writePlainln("open this URL to authorize:\n%s", authURL); err != nil {
			return err
		}
	}

	if err := r.writePlain("paste the authorization code: "); err != nil {
		return err
	}

	scanner := bufio.NewScanner(r.input)
	if !scanner.Scan() {
		return fmt.Errorf("%w: no authorization code entered", shared.ErrMissingArgument)
	}
	code := strings.TrimSpace(scanner.Text())
	if code == "" {
		return fmt.Errorf("%w: no authorization code entered", shared.ErrMissingArgument)
	}

	creds.AuthorizationCode = code
	creds.CodeVerifier = verifier
	// Clearing the token forces an exchange on the next EnsureToken.
	creds.AccessToken = ""
	creds.RefreshToken = ""
	creds.ExpiresAt = 0
	if err := store.Save(creds); err != nil {
		return err
	}

	if _, err := service.EnsureToken(ctx); err != nil {
		return err
	}

	return r.writePlainln("authorized; token saved to %s", store.Path())
}

// AuthStatus reports the stored token state and its expiry.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	store := r.credStore()
	creds, err := store.Load()
	if err != nil {
		return err
	}

	service := r.malService(store)
	state := service.TokenState(creds)

	if err := r.writePlainln("credentials file: %s", store.Path()); err != nil {
		return err
	}
	if err := r.writePlain("token state: %s\n", state); err != nil {
		return err
	}
	if creds.ExpiresAt > 0 {
		expiry := time.Unix(creds.ExpiresAt, 0).UTC()
		return r.writePlain("expires at: %s\n", expiry.Format(time.RFC3339))
	}

	return nil
}

// AuthRefresh discards the stored access token and performs an exchange now.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	store := r.credStore()
	creds, err := store.Load()
	if err != nil {
		return err
	}

	creds.AccessToken = ""
	creds.ExpiresAt = 0
	if err := store.Save(creds); err != nil {
		return err
	}

	service := r.malService(store)
	if _, err := service.EnsureToken(ctx); err != nil {
		return err
	}

	refreshed, err := store.Load()
	if err != nil {
		return err
	}
	expiry := time.Unix(refreshed.ExpiresAt, 0).UTC()

	return r.writePlainln("token refreshed; expires at %s", expiry.Format(time.RFC3339))
}

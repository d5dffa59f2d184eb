package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Sittravell/MalTrackarr/internal/credfile"
	"github.com/Sittravell/MalTrackarr/internal/shared"
	"github.com/urfave/cli/v3"
)

func TestNewRunner(t *testing.T) {
	t.Run("applies defaults for nil options", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		if runner.config == nil {
			t.Error("expected default config to be set")
		}
		if runner.logger == nil {
			t.Error("expected default logger to be set")
		}
		if runner.output != os.Stdout {
			t.Error("expected output to default to stdout")
		}
		if runner.input != os.Stdin {
			t.Error("expected input to default to stdin")
		}
		if runner.httpClient != http.DefaultClient {
			t.Error("expected default http client")
		}
	})

	t.Run("keeps provided options", func(t *testing.T) {
		var buf bytes.Buffer
		config := shared.DefaultConfig()
		config.Server.Port = 9999

		runner := NewRunner(RunnerOpts{Config: config, Output: &buf})

		if runner.config.Server.Port != 9999 {
			t.Errorf("expected port 9999, got %d", runner.config.Server.Port)
		}
		if runner.output != &buf {
			t.Error("expected provided output writer")
		}
	})
}

func TestWriteJSON(t *testing.T) {
	t.Run("compact output", func(t *testing.T) {
		var buf bytes.Buffer
		runner := NewRunner(RunnerOpts{Output: &buf})

		if err := runner.writeJSON(map[string]int{"count": 3}, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := buf.String(); got != "{\"count\":3}\n" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("pretty output is indented", func(t *testing.T) {
		var buf bytes.Buffer
		runner := NewRunner(RunnerOpts{Output: &buf})

		if err := runner.writeJSON(map[string]int{"count": 3}, true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"count\": 3\n") {
			t.Errorf("expected indented output, got %q", buf.String())
		}
	})
}

// writeCreds writes a credentials file with a token valid for an hour and
// points CONFIG_PATH at it.
func writeCreds(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	creds := map[string]any{
		"client_id":     "id",
		"client_secret": "secret",
		"access_token":  "valid-token",
		"expires_at":    time.Now().Add(time.Hour).Unix(),
	}
	data, err := json.Marshal(creds)
	if err != nil {
		t.Fatalf("failed to marshal credentials: %v", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("failed to write credentials: %v", err)
	}
	t.Setenv(credfile.EnvConfigPath, path)

	return path
}

// newListApp builds a runner whose provider and dataset endpoints are served
// by test servers, wrapped in the CLI command tree.
func newListApp(t *testing.T, out *bytes.Buffer) *cli.Command {
	t.Helper()

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"node":{"id":1,"title":"Cowboy Bebop"}}],"paging":{}}`))
	}))
	t.Cleanup(provider.Close)

	dataset := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"1":{"tvdb_id":76885,"imdb_id":"tt0213338"}}`))
	}))
	t.Cleanup(dataset.Close)

	config := shared.DefaultConfig()
	config.Provider.APIBase = provider.URL
	config.Dataset.URL = dataset.URL

	runner := NewRunner(RunnerOpts{Config: config, Output: out})

	return &cli.Command{Name: "maltrackarr", Commands: runner.register()}
}

func TestListCommand(t *testing.T) {
	t.Run("writes merged records as json", func(t *testing.T) {
		writeCreds(t)

		var buf bytes.Buffer
		app := newListApp(t, &buf)

		err := app.Run(context.Background(), []string{"maltrackarr", "list", "--username", "alice"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := `[{"title":"Cowboy Bebop","malId":1,"tvdbId":76885,"imdb_id":"tt0213338","imdbId":"tt0213338"}]` + "\n"
		if got := buf.String(); got != want {
			t.Errorf("unexpected output\n got: %s\nwant: %s", got, want)
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		writeCreds(t)

		var buf bytes.Buffer
		app := newListApp(t, &buf)

		err := app.Run(context.Background(),
			[]string{"maltrackarr", "list", "--username", "alice", "--status", "finished"})
		if err == nil {
			t.Fatal("expected an error for unknown status")
		}
	})

	t.Run("csv format writes a header row", func(t *testing.T) {
		writeCreds(t)

		var buf bytes.Buffer
		app := newListApp(t, &buf)

		err := app.Run(context.Background(),
			[]string{"maltrackarr", "list", "--username", "alice", "--format", "csv"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "MalID,Title,TvdbID,ImdbID\n") {
			t.Errorf("expected csv header, got %q", buf.String())
		}
	})
}

func TestServeCommandStartup(t *testing.T) {
	t.Run("malformed credentials file is fatal before binding", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatalf("failed to write credentials: %v", err)
		}
		t.Setenv(credfile.EnvConfigPath, path)

		var buf bytes.Buffer
		runner := NewRunner(RunnerOpts{Output: &buf})
		app := &cli.Command{Name: "maltrackarr", Commands: runner.register()}

		err := app.Run(context.Background(), []string{"maltrackarr", "serve"})
		if err == nil {
			t.Fatal("expected a startup error")
		}
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("missing credentials file is fatal before binding", func(t *testing.T) {
		t.Setenv(credfile.EnvConfigPath, filepath.Join(t.TempDir(), "absent.json"))

		var buf bytes.Buffer
		runner := NewRunner(RunnerOpts{Output: &buf})
		app := &cli.Command{Name: "maltrackarr", Commands: runner.register()}

		err := app.Run(context.Background(), []string{"maltrackarr", "serve"})
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})
}

func TestSetupCommand(t *testing.T) {
	t.Run("writes config and credentials skeleton", func(t *testing.T) {
		dir := t.TempDir()
		configPath := filepath.Join(dir, "maltrackarr.toml")
		credsPath := filepath.Join(dir, "config.json")
		t.Setenv(credfile.EnvConfigPath, credsPath)

		var buf bytes.Buffer
		runner := NewRunner(RunnerOpts{Output: &buf})
		app := &cli.Command{Name: "maltrackarr", Commands: runner.register()}

		err := app.Run(context.Background(), []string{"maltrackarr", "setup", "--config", configPath})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Errorf("expected app config to exist: %v", err)
		}

		data, err := os.ReadFile(credsPath)
		if err != nil {
			t.Fatalf("expected credentials skeleton to exist: %v", err)
		}
		if !strings.Contains(string(data), `"client_id"`) {
			t.Errorf("expected client_id key in skeleton, got %s", data)
		}
	})

	t.Run("leaves an existing credentials file alone", func(t *testing.T) {
		dir := t.TempDir()
		credsPath := filepath.Join(dir, "config.json")
		original := []byte(`{"client_id":"id","client_secret":"secret"}`)
		if err := os.WriteFile(credsPath, original, 0600); err != nil {
			t.Fatalf("failed to seed credentials: %v", err)
		}
		t.Setenv(credfile.EnvConfigPath, credsPath)

		var buf bytes.Buffer
		runner := NewRunner(RunnerOpts{Output: &buf})
		app := &cli.Command{Name: "maltrackarr", Commands: runner.register()}

		err := app.Run(context.Background(),
			[]string{"maltrackarr", "setup", "--config", filepath.Join(dir, "maltrackarr.toml")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(credsPath)
		if err != nil {
			t.Fatalf("failed to read credentials: %v", err)
		}
		if !bytes.Equal(data, original) {
			t.Errorf("credentials file was modified: %s", data)
		}
	})
}

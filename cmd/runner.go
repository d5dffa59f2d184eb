package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Sittravell/MalTrackarr/internal/credfile"
	"github.com/Sittravell/MalTrackarr/internal/services"
	"github.com/Sittravell/MalTrackarr/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, listCommand, datasetCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig re-reads the app config when the command's --config flag
// points at an existing file, then applies the configured log level.
func (r *Runner) reloadConfig(cmd *cli.Command) {
	path := cmd.String("config")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if loaded, err := shared.LoadConfig(path); err == nil {
				r.config = loaded
			} else {
				r.logger.Warnf("failed to load config, keeping previous %v", err)
			}
		}
	}

	if level, err := log.ParseLevel(r.config.Logging.Level); err == nil {
		shared.SetLogLevel(r.logger, level)
	}
}

// credStore returns the JSON credentials store at the path selected by the
// CONFIG_PATH environment variable.
func (r *Runner) credStore() *credfile.Store {
	return credfile.NewStore(credfile.PathFromEnv())
}

// malService builds the provider client over the given token store.
func (r *Runner) malService(store services.TokenStore) *services.MALService {
	return services.NewMALService(store, services.MALOpts{
		TokenURL:   r.config.Provider.TokenURL,
		AuthURL:    r.config.Provider.AuthURL,
		APIBase:    r.config.Provider.APIBase,
		PageLimit:  r.config.Provider.PageLimit,
		RateLimit:  r.config.Provider.RateLimit,
		HTTPClient: r.httpClient,
		Logger:     shared.WithLogger(r.logger, "service", "mal"),
	})
}

// datasetService builds the cross-reference dataset client.
func (r *Runner) datasetService() *services.DatasetService {
	return services.NewDatasetService(services.DatasetOpts{
		URL:        r.config.Dataset.URL,
		TTL:        time.Duration(r.config.Dataset.TTLMinutes) * time.Minute,
		HTTPClient: r.httpClient,
		Logger:     shared.WithLogger(r.logger, "service", "dataset"),
	})
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

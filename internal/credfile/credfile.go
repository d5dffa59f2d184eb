// Package credfile persists provider client credentials and OAuth token
// state in a flat JSON file.
//
// The file is the process-wide token storage: it is read on every request
// and rewritten after every successful token exchange. Unknown fields are
// carried through a rewrite untouched. Writes are serialized in-process
// with a mutex; nothing guards against concurrent processes (single
// instance assumption).
package credfile

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/Sittravell/MalTrackarr/internal/models"
	"github.com/Sittravell/MalTrackarr/internal/shared"
)

const (
	// EnvConfigPath selects the credentials file path.
	EnvConfigPath = "CONFIG_PATH"
	// DefaultPath applies when the environment variable is unset.
	DefaultPath = "config.json"
)

// knownFields are the JSON keys owned by [models.Credentials]; everything
// else in the file is preserved verbatim.
var knownFields = []string{
	"client_id",
	"client_secret",
	"authorization_code",
	"code_verifier",
	"access_token",
	"refresh_token",
	"expires_at",
}

// PathFromEnv returns the credentials file path from the environment,
// falling back to [DefaultPath].
func PathFromEnv() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}
	return DefaultPath
}

// Store reads and writes the JSON credentials file.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a Store for the credentials file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the on-disk location of the credentials file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the credentials file.
//
// A missing file wraps [shared.ErrMissingConfig]; an unparsable one wraps
// [shared.ErrInvalidConfig]. Unknown fields are retained on the returned
// credentials for the next Save.
func (s *Store) Load() (*models.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMissingConfig, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	var creds models.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidConfig, err)
	}

	for _, key := range knownFields {
		delete(raw, key)
	}
	if len(raw) > 0 {
		creds.Extra = raw
	}

	return &creds, nil
}

// Save rewrites the credentials file with the given state, overwriting the
// known fields in place and preserving any unknown fields.
func (s *Store) Save(creds *models.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	known, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrConfigWrite, err)
	}

	merged := make(map[string]json.RawMessage, len(creds.Extra)+len(knownFields))
	for key, value := range creds.Extra {
		merged[key] = value
	}
	var knownMap map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownMap); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrConfigWrite, err)
	}
	for key, value := range knownMap {
		merged[key] = value
	}

	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrConfigWrite, err)
	}
	out = append(out, '\n')

	if err := os.WriteFile(s.path, out, 0600); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrConfigWrite, err)
	}

	return nil
}

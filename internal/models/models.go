// package models defines the data model for the watch-list enrichment service
package models

import "encoding/json"

// DefaultStatus is the list status used when a request omits the status parameter.
const DefaultStatus = "watching"

// listStatuses holds the list-status values recognized by the provider.
var listStatuses = map[string]struct{}{
	"watching":      {},
	"completed":     {},
	"on_hold":       {},
	"dropped":       {},
	"plan_to_watch": {},
}

// ValidStatus reports whether status is one of the provider's recognized
// list-status values.
func ValidStatus(status string) bool {
	_, ok := listStatuses[status]
	return ok
}

// Statuses returns the recognized list-status values in a stable order.
func Statuses() []string {
	return []string{"watching", "completed", "on_hold", "dropped", "plan_to_watch"}
}

// Credentials holds the provider client credentials and OAuth token state
// persisted in the JSON credentials file.
//
// Extra carries unknown fields from the file so a save never drops them.
type Credentials struct {
	ClientID          string `json:"client_id"`
	ClientSecret      string `json:"client_secret"`
	AuthorizationCode string `json:"authorization_code,omitempty"`
	CodeVerifier      string `json:"code_verifier,omitempty"`
	AccessToken       string `json:"access_token,omitempty"`
	RefreshToken      string `json:"refresh_token,omitempty"`
	ExpiresAt         int64  `json:"expires_at,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// HasClient reports whether the client credentials needed for any token
// exchange are present.
func (c *Credentials) HasClient() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// WatchlistEntry is one item of a user's watch-list as returned by the
// provider's animelist endpoint.
type WatchlistEntry struct {
	MalID int    `json:"malId"`
	Title string `json:"title"`
}

// DatasetEntry is one row of the cross-reference dataset, keyed by the
// provider id.
type DatasetEntry struct {
	MalID  int    `json:"mal_id"`
	TVDBID *int   `json:"tvdb_id"`
	IMDBID string `json:"imdb_id"`
}

// OutputRecord is a watch-list entry merged with its cross-reference ids.
//
// IMDBIDCamel always mirrors IMDBID; consumers of the unified format expect
// the id under both the snake_case and camelCase key. Optional ids are
// omitted entirely when unknown rather than emitted as null.
type OutputRecord struct {
	Title       string `json:"title"`
	MalID       int    `json:"malId"`
	TVDBID      *int   `json:"tvdbId,omitempty"`
	IMDBID      string `json:"imdb_id,omitempty"`
	IMDBIDCamel string `json:"imdbId,omitempty"`
}

// MyAnimeList API implementation of [WatchlistService]
//
// Token endpoint and animelist response shapes based on
// https://myanimelist.net/apiconfig/references/api/v2
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/Sittravell/MalTrackarr/internal/models"
	"github.com/Sittravell/MalTrackarr/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	malTokenURL = "https://myanimelist.net/v1/oauth2/token"
	malAuthURL  = "https://myanimelist.net/v1/oauth2/authorize"
	malAPIBase  = "https://api.myanimelist.net/v2"

	// expiryMargin is subtracted from the stored expiry when judging
	// validity, so a token about to lapse mid-request counts as expired.
	expiryMargin = 60 * time.Second
)

// animeListPage mirrors one page of the provider's animelist response.
type animeListPage struct {
	Data []struct {
		Node struct {
			ID    int    `json:"id"`
			Title string `json:"title"`
		} `json:"node"`
	} `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// MALService talks to the MyAnimeList API: it owns the OAuth2 token
// lifecycle and the paginated watch-list fetch.
type MALService struct {
	store      TokenStore
	tokenURL   string
	authURL    string
	apiBase    string
	pageLimit  int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
	now        func() time.Time

	// mu serializes token exchanges so concurrent requests do not race
	// to refresh redundantly.
	mu sync.Mutex
}

// MALOpts contains configuration options for creating a MALService.
// Zero values fall back to the production MyAnimeList endpoints.
type MALOpts struct {
	TokenURL   string
	AuthURL    string
	APIBase    string
	PageLimit  int
	RateLimit  float64 // page requests per second
	HTTPClient *http.Client
	Logger     *log.Logger
	Now        func() time.Time
}

// NewMALService creates a MyAnimeList client backed by the given token store.
func NewMALService(store TokenStore, opts MALOpts) *MALService {
	if opts.TokenURL == "" {
		opts.TokenURL = malTokenURL
	}
	if opts.AuthURL == "" {
		opts.AuthURL = malAuthURL
	}
	if opts.APIBase == "" {
		opts.APIBase = malAPIBase
	}
	if opts.PageLimit <= 0 {
		opts.PageLimit = 100
	}
	if opts.PageLimit > 1000 {
		opts.PageLimit = 1000
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 3.0
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

	return &MALService{
		store:      store,
		tokenURL:   opts.TokenURL,
		authURL:    opts.AuthURL,
		apiBase:    opts.APIBase,
		pageLimit:  opts.PageLimit,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		logger:     opts.Logger,
		now:        opts.Now,
	}
}

func (s *MALService) Name() string {
	return "MyAnimeList"
}

// oauthConfig builds the [oauth2.Config] for the stored client credentials.
// The provider expects client_id and client_secret in the form body.
func (s *MALService) oauthConfig(creds *models.Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.authURL,
			TokenURL:  s.tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// AuthCodeURL returns the provider authorization URL for the plain-method
// PKCE flow.
func (s *MALService) AuthCodeURL(creds *models.Credentials, state, verifier string) string {
	return s.oauthConfig(creds).AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", verifier),
		oauth2.SetAuthURLParam("code_challenge_method", "plain"),
	)
}

// TokenState reports the lifecycle state of the stored token: "absent",
// "expired" or "valid".
func (s *MALService) TokenState(creds *models.Credentials) string {
	switch {
	case creds.AccessToken == "":
		return "absent"
	case !s.tokenValid(creds):
		return "expired"
	default:
		return "valid"
	}
}

// tokenValid applies the conservative expiry check: a token expiring at or
// before now+margin is treated as expired.
func (s *MALService) tokenValid(creds *models.Credentials) bool {
	if creds.AccessToken == "" {
		return false
	}
	return s.now().Add(expiryMargin).Unix() < creds.ExpiresAt
}

// EnsureToken returns a valid access token.
//
// When the stored token is missing or expired it attempts the refresh grant
// first, then falls back to the authorization-code grant, persisting the
// result via the token store before returning. A still-valid token is
// returned without any network call.
func (s *MALService) EnsureToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.store.Load()
	if err != nil {
		return "", err
	}

	if s.tokenValid(creds) {
		return creds.AccessToken, nil
	}

	if !creds.HasClient() {
		return "", fmt.Errorf("%w: client_id and client_secret must be set in the credentials file", shared.ErrMissingCredentials)
	}

	conf := s.oauthConfig(creds)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	if creds.RefreshToken != "" {
		s.logger.Info("attempting refresh token grant")
		tok, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken}).Token()
		if err == nil {
			return s.applyToken(creds, tok)
		}
		s.logger.Warn("refresh token grant failed", "error", err)
	}

	if creds.AuthorizationCode != "" && creds.CodeVerifier != "" {
		s.logger.Info("attempting authorization_code grant")
		tok, err := conf.Exchange(ctx, creds.AuthorizationCode,
			oauth2.SetAuthURLParam("code_verifier", creds.CodeVerifier))
		if err == nil {
			return s.applyToken(creds, tok)
		}
		s.logger.Warn("authorization_code grant failed", "error", err)
	}

	return "", fmt.Errorf("%w: provide a valid refresh_token or authorization_code and code_verifier", shared.ErrAuthFailed)
}

// applyToken stores the exchange result and persists it before returning
// the new access token.
func (s *MALService) applyToken(creds *models.Credentials, tok *oauth2.Token) (string, error) {
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: token response did not include access_token", shared.ErrAuthFailed)
	}

	creds.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		creds.RefreshToken = tok.RefreshToken
	}
	if !tok.Expiry.IsZero() {
		creds.ExpiresAt = tok.Expiry.Unix()
	}

	if err := s.store.Save(creds); err != nil {
		return "", err
	}

	s.logger.Info("stored new access token", "expires_at", creds.ExpiresAt)
	return creds.AccessToken, nil
}

// AnimeList fetches all animelist entries for the given username and status.
//
// Follows the paging.next URL until the provider reports no further page;
// entries are aggregated in provider order. Each page is attempted once.
func (s *MALService) AnimeList(ctx context.Context, username, status string) ([]models.WatchlistEntry, error) {
	token, err := s.EnsureToken(ctx)
	if err != nil {
		return nil, err
	}

	next := fmt.Sprintf("%s/users/%s/animelist?status=%s&limit=%d",
		s.apiBase, url.PathEscape(username), url.QueryEscape(status), s.pageLimit)

	var entries []models.WatchlistEntry
	for next != "" {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrProviderRequest, err)
		}

		page, err := s.fetchPage(ctx, next, token)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Data {
			if item.Node.ID == 0 {
				continue
			}
			entries = append(entries, models.WatchlistEntry{
				MalID: item.Node.ID,
				Title: item.Node.Title,
			})
		}
		next = page.Paging.Next
	}

	s.logger.Info("fetched animelist", "username", username, "status", status, "entries", len(entries))
	return entries, nil
}

// fetchPage performs one authenticated page request.
func (s *MALService) fetchPage(ctx context.Context, pageURL, token string) (*animeListPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrProviderRequest, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProviderRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: provider rejected access token (status %d)", shared.ErrAuthFailed, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", shared.ErrProviderRequest, resp.StatusCode)
	}

	var page animeListPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: failed to decode page: %v", shared.ErrProviderRequest, err)
	}

	return &page, nil
}

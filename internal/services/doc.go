// Package services implements the upstream clients: the MyAnimeList API and
// the Kometa Anime-IDs dataset host.
//
// # Token Lifecycle
//
// [MALService] owns the OAuth2 token state machine. A stored token is
// Absent, Expired or Valid; EnsureToken drives Absent|Expired → Valid by
// attempting the refresh grant first and the authorization-code grant (with
// a plain-method PKCE verifier) as fallback, persisting the result through
// the [TokenStore] before returning. Exchanges are serialized with a mutex
// so concurrent requests do not refresh redundantly.
//
// The expiry check is conservative: a token within sixty seconds of its
// stored expiry already counts as expired.
//
// # Watch-list Fetch
//
// AnimeList follows the provider's paging.next URLs until exhausted,
// pacing page requests with a [rate.Limiter]. Each page is attempted once;
// there is no retry or backoff.
//
// # Dataset Fetch
//
// [DatasetService] downloads the anime_ids.json document and builds a
// map keyed by provider id. Malformed entries are skipped locally and never
// fail the request; only an unretrievable or unparsable document does.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrAuthFailed] : both grants failed, or the provider rejected the token
//   - [shared.ErrMissingCredentials] : client_id/client_secret absent
//   - [shared.ErrProviderRequest] : provider list API failure
//   - [shared.ErrDatasetRequest] : dataset host failure
package services

// Package twitter implements a polling gateway and media extractor for the
// Twitter REST API v1.1.
//
// # Architecture
//
// The package provides the driven ports a PollWorker needs:
//
//   - Dialer: authenticates once per run and returns a Gateway
//   - Gateway: reads user timelines and probes single statuses
//   - MediaExtractor: turns statuses into one document per attached media
//   - Client: handles API communication with rate limiting
//
// # Authentication
//
// Requests use an app-only bearer token. Either configure a pre-issued token,
// or a consumer key and secret, in which case the token is obtained from
// /oauth2/token with the client credentials grant at the start of each run.
//
// # Configuration
//
// Worker options accept the following keys:
//
//   - media_kinds: comma-separated list of media to keep.
//     Valid values: photo, video, animated_gif. Default: all kinds.
//
//   - include_retweets: "true" to extract media from retweets. Default: false.
//
// # Rate Limiting
//
// Requests are throttled proactively with a token bucket and reactively from
// the x-rate-limit-remaining and x-rate-limit-reset headers. A 429 response
// or error code 88 is returned as a RateLimitError, which wraps
// domain.ErrRateLimited.
//
// # Errors
//
// HTTP 401 and error codes 136 and 179 wrap domain.ErrUnauthorized, so the
// run is skipped rather than failed. HTTP 404 and codes 8, 34 and 144 mark a
// status as gone; Probe reports such a cursor as stale.
package twitter

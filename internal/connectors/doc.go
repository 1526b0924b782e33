// Package connectors groups the upstream-specific implementations of the
// Dialer, Gateway and Extractor ports. Each subpackage knows how to
// authenticate against one upstream, page through its items and turn them
// into documents.
//
// Connectors are wired to workers in internal/app.
package connectors

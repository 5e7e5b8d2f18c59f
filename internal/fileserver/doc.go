// Package fileserver turns one HTTP request into exactly one response.
//
// A request walks a small state machine: cache lookup, then on a miss the
// resolver, then one content branch (template, transpile, static file,
// directory listing or the not-found page). Every branch yields an immutable
// response.Response which is finalized (Content-Length, CORS), saved to the
// cache when the branch allowed it, written once and logged once.
package fileserver

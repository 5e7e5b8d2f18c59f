// Package files answers the filesystem questions the dispatcher asks: may
// this path be read, which concrete file does a request path resolve to once
// index files are taken into account, and what does a directory contain. All
// access goes through afero so the same code runs against the OS in
// production and an in-memory tree in tests.
package files

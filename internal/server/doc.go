// Package server hosts the Fiber HTTP service: the middleware chain (panic
// recovery, request IDs), the catch-all route that hands every request to the
// content handler, TLS-aware listening and the startup preflight checks.
// Keep exports narrow and accept explicit dependencies; the content handler
// lives in fileserver and is injected through ContentHandler.
package server

// Package server maps the HTTP and WebSocket surface onto the session
// registry, broadcast hub, and track catalog.
package server

// Package broadcast delivers registry mutation events to real-time
// subscribers over WebSocket, with per-subscriber bounded buffers and
// slow-client eviction.
package broadcast

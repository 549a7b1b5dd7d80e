// Package domain holds the core entities and contracts shared across the
// master server: sessions, players, registry errors, and the real-time event
// envelope.
package domain

package httpapi

import "time"

// Config defines control plane settings.
type Config struct {
	Addr string
	// MaxBodyBytes caps POST /buffer payloads. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// StyleCSS is served at /style.css for HTML frames.
	StyleCSS string
}

// DefaultMaxBodyBytes bounds a single buffer write.
const DefaultMaxBodyBytes = 32 << 20

const shutdownTimeout = 5 * time.Second

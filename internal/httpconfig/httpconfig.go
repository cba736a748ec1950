// Package httpconfig provides shared HTTP server configuration utilities:
// defaults, timeout conversion, and listen address validation. It
// centralizes the server-section handling shared by the serve command and
// the configuration converter.
package httpconfig

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/classmap/runtime/pkg/dashboard"
)

// Default configuration values
const (
	DefaultListenAddress     = ":8080"
	DefaultReadTimeoutMs     = 10000
	DefaultWriteTimeoutMs    = 30000
	DefaultShutdownTimeoutMs = 10000
)

// ValidationError represents a server configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// Timeouts holds the resolved server timeout durations.
type Timeouts struct {
	Read     time.Duration
	Write    time.Duration
	Shutdown time.Duration
}

// ApplyDefaults fills unset server fields with defaults and returns the
// completed config.
func ApplyDefaults(cfg dashboard.ServerConfig) dashboard.ServerConfig {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}
	if cfg.ReadTimeoutMs <= 0 {
		cfg.ReadTimeoutMs = DefaultReadTimeoutMs
	}
	if cfg.WriteTimeoutMs <= 0 {
		cfg.WriteTimeoutMs = DefaultWriteTimeoutMs
	}
	if cfg.ShutdownTimeoutMs <= 0 {
		cfg.ShutdownTimeoutMs = DefaultShutdownTimeoutMs
	}
	return cfg
}

// GetTimeouts converts the millisecond fields to durations, applying
// defaults for unset values.
func GetTimeouts(cfg dashboard.ServerConfig) Timeouts {
	cfg = ApplyDefaults(cfg)
	return Timeouts{
		Read:     time.Duration(cfg.ReadTimeoutMs) * time.Millisecond,
		Write:    time.Duration(cfg.WriteTimeoutMs) * time.Millisecond,
		Shutdown: time.Duration(cfg.ShutdownTimeoutMs) * time.Millisecond,
	}
}

// Validate checks a server configuration. The listen address must be a
// host:port pair with a numeric port in range; port 0 is allowed and means
// "pick a free port".
func Validate(cfg dashboard.ServerConfig) error {
	if cfg.ListenAddress != "" {
		if err := validateListenAddress(cfg.ListenAddress); err != nil {
			return err
		}
	}
	if cfg.ReadTimeoutMs < 0 {
		return &ValidationError{Field: "readTimeoutMs", Message: "must not be negative"}
	}
	if cfg.WriteTimeoutMs < 0 {
		return &ValidationError{Field: "writeTimeoutMs", Message: "must not be negative"}
	}
	if cfg.ShutdownTimeoutMs < 0 {
		return &ValidationError{Field: "shutdownTimeoutMs", Message: "must not be negative"}
	}
	return nil
}

func validateListenAddress(address string) error {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return &ValidationError{
			Field:   "listenAddress",
			Message: fmt.Sprintf("must be host:port, got %q", address),
		}
	}
	_ = host // empty host means all interfaces

	n, err := strconv.Atoi(port)
	if err != nil {
		return &ValidationError{
			Field:   "listenAddress",
			Message: fmt.Sprintf("port must be numeric, got %q", port),
		}
	}
	if n < 0 || n > 65535 {
		return &ValidationError{
			Field:   "listenAddress",
			Message: fmt.Sprintf("port out of range: %d", n),
		}
	}
	return nil
}

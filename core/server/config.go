package server

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

const (
	// IndexFile is served when a request resolves to a directory.
	IndexFile = "index.html"

	MinPort = 1
	MaxPort = 65535
)

// Config holds configuration for the static file server.
type Config struct {
	// Host is the address the listener binds to.
	Host string `mapstructure:"host" env:"HOST" default:"127.0.0.1"`
	// Port is the port where the server will listen.
	Port int `mapstructure:"port" env:"PORT" default:"8000"`
	// Browse enables directory listings for directories without an index file.
	Browse bool `mapstructure:"browse" default:"false"`
	// ShutdownTimeoutSeconds bounds how long Stop waits for in-flight requests.
	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" default:"5"`

	// Root is the directory files are served from. It is computed at startup
	// and never read from the environment.
	Root string
}

// Addr returns the host:port pair the listener binds to.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URL returns the base URL of the server.
func (c Config) URL() string {
	return "http://" + c.Addr() + "/"
}

// ShutdownTimeout returns the graceful shutdown bound, defaulting to 5s.
func (c Config) ShutdownTimeout() time.Duration {
	if c.ShutdownTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// Validate checks that the configuration can be used to start a listener.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("host must not be empty")
	}
	if c.Port < MinPort || c.Port > MaxPort {
		return fmt.Errorf("port %d out of range [%d, %d]", c.Port, MinPort, MaxPort)
	}
	if c.Root == "" {
		return errors.New("root directory is not set")
	}
	return nil
}

// ParsePort parses a port given on the command line.
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	if port < MinPort || port > MaxPort {
		return 0, fmt.Errorf("invalid port %q: out of range", s)
	}
	return port, nil
}

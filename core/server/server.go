package server

import (
	"errors"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"devserve/core/logger"
	"devserve/core/middleware/nocache"
	"devserve/core/middleware/rayid"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"go.uber.org/zap"
)

// ErrAlreadyStarted is returned when Start is called on a running server.
var ErrAlreadyStarted = errors.New("server already started")

// Server serves the files below Config.Root with caching disabled.
type Server struct {
	cfg    Config
	app    *fiber.App
	logger *zap.Logger

	mu   sync.Mutex
	ln   net.Listener
	done chan error
}

// New creates a server for the given configuration. Nothing is bound until
// Start is called.
func New(cfg Config, logg *zap.Logger) *Server {
	if logg == nil {
		logg = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true, // the command prints its own banner
		// fasthttp answers malformed requests (400, 431) through the error
		// handler without running any middleware.
		ErrorHandler: nocache.ErrorHandler(fiber.DefaultErrorHandler),
	})

	s := &Server{
		cfg:    cfg,
		app:    app,
		logger: logg,
		done:   make(chan error, 1),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	// 1. RayID (must be first so every log line can be correlated)
	s.app.Use(rayid.New())

	// 2. Request logging
	s.app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}

		l := logger.WithRayID(s.logger, c)
		if status >= fiber.StatusInternalServerError || err != nil {
			l.Error("Request failed", fields...)
		} else {
			l.Debug("Request served", fields...)
		}
		return err
	})

	// 3. No-cache headers, applied after the file handler and the error
	// handler have produced the response.
	s.app.Use(nocache.New())

	// 4. Files. The filesystem middleware opens the file on every request,
	// so edits on disk are visible immediately.
	files := filesystem.New(filesystem.Config{
		Root:   http.Dir(s.cfg.Root),
		Index:  IndexFile,
		Browse: s.cfg.Browse,
	})
	s.app.Use(func(c *fiber.Ctx) error {
		if target, ok := s.directoryRedirect(c); ok {
			return c.Redirect(target, fiber.StatusMovedPermanently)
		}

		err := files(c)
		// A directory without an index file is reported as missing.
		if errors.Is(err, fiber.ErrForbidden) {
			return fiber.ErrNotFound
		}
		return err
	})
}

// directoryRedirect reports the slash-terminated location for a GET or HEAD
// request naming a directory without a trailing slash, so relative links in
// its index resolve inside the directory.
func (s *Server) directoryRedirect(c *fiber.Ctx) (string, bool) {
	if c.Method() != fiber.MethodGet && c.Method() != fiber.MethodHead {
		return "", false
	}

	p := c.Path()
	if p == "" || strings.HasSuffix(p, "/") {
		return "", false
	}

	// Cleaning against "/" keeps the lookup inside the root.
	name := filepath.Join(s.cfg.Root, filepath.FromSlash(path.Clean("/"+p)))
	info, err := os.Stat(name)
	if err != nil || !info.IsDir() {
		return "", false
	}

	// Build the location from the raw URL to keep its escaping and query.
	raw, query, hasQuery := strings.Cut(c.OriginalURL(), "?")
	target := raw + "/"
	if hasQuery {
		target += "?" + query
	}
	return target, true
}

// Start binds the listener and begins serving in the background.
// A failure to bind is reported as a *BindError.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln != nil {
		return ErrAlreadyStarted
	}

	addr := s.cfg.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return &BindError{Addr: addr, Err: err}
	}
	s.ln = ln

	go func() {
		s.done <- s.app.Listener(ln)
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Wait returns a channel that receives the serve loop's result once it exits.
func (s *Server) Wait() <-chan error {
	return s.done
}

// Stop closes the listener and waits for in-flight requests to finish, up to
// the configured shutdown timeout.
func (s *Server) Stop() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	if ln == nil {
		return nil
	}

	err := s.app.ShutdownWithTimeout(s.cfg.ShutdownTimeout())

	// The serve goroutine may not have registered the listener with fasthttp
	// yet, in which case Shutdown leaves it open.
	if cerr := ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) && err == nil {
		err = cerr
	}
	return err
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"devserve/core/config"
	"devserve/core/logger"
	"devserve/core/server"

	"go.uber.org/zap"
)

// runServe runs the server until an interrupt arrives. The startup banner is
// written to out regardless of the configured log level.
func runServe(out io.Writer, args []string) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Initialize Logger
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logg.Sync()

	// 3. Positional port override, invalid values keep the configured port
	if len(args) > 0 {
		cfg.Server.Port = overridePort(logg, cfg.Server.Port, args[0])
	}

	// 4. Serving root
	root, err := resolveRoot()
	if err != nil {
		return fmt.Errorf("failed to resolve serving directory: %w", err)
	}
	cfg.Server.Root = root

	if err := cfg.Server.Validate(); err != nil {
		return fmt.Errorf("invalid server configuration: %w", err)
	}

	// 5. Register for interrupts before binding so none is missed
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)

	// 6. Start Server
	srv := server.New(cfg.Server, logg)
	if err := srv.Start(); err != nil {
		return err
	}

	printBanner(out, cfg.Server)
	logg.Debug("Server started", zap.String("addr", cfg.Server.Addr()), zap.String("root", root))

	// 7. Graceful Shutdown
	select {
	case <-c:
		logg.Debug("Shutting down server")
		if err := srv.Stop(); err != nil {
			logg.Debug("Shutdown did not complete cleanly", zap.Error(err))
		}
		return nil
	case err := <-srv.Wait():
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	}
}

func printBanner(out io.Writer, cfg server.Config) {
	fmt.Fprintf(out, "Serving '%s' at %s (Ctrl+C to stop)\n", cfg.Root, cfg.URL())
	fmt.Fprintf(out, "Open index.html: %s%s\n", cfg.URL(), server.IndexFile)
}

// overridePort parses the command line port. On failure it warns and returns
// fallback.
func overridePort(logg *zap.Logger, fallback int, arg string) int {
	port, err := server.ParsePort(arg)
	if err != nil {
		logg.Warn(fmt.Sprintf("Invalid port '%s', falling back to %d", arg, fallback), zap.Error(err))
		return fallback
	}
	return port
}

// resolveRoot returns the directory containing the running executable.
// Binaries built by `go run` live in a temporary build directory, in which
// case the working directory is served instead.
func resolveRoot() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	tmp := os.TempDir()
	if resolved, err := filepath.EvalSymlinks(tmp); err == nil {
		tmp = resolved
	}
	return rootFor(exe, tmp, os.Getwd)
}

func rootFor(exe, tmpDir string, getwd func() (string, error)) (string, error) {
	dir := filepath.Dir(exe)
	if isGoRunBuild(dir, tmpDir) {
		return getwd()
	}
	return dir, nil
}

func isGoRunBuild(dir, tmpDir string) bool {
	rel, err := filepath.Rel(tmpDir, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	return strings.HasPrefix(rel, "go-build")
}

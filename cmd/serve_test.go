package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"
	"time"

	"devserve/core/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func waitForListener(t *testing.T, addr string) {
	t.Helper()
	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 5*time.Second, 20*time.Millisecond)
}

func TestOverridePort(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logg := zap.New(core)

	assert.Equal(t, 9000, overridePort(logg, 8000, "9000"))
	assert.Equal(t, 0, logs.Len())

	assert.Equal(t, 8000, overridePort(logg, 8000, "abc"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Invalid port 'abc', falling back to 8000", logs.All()[0].Message)

	assert.Equal(t, 8000, overridePort(logg, 8000, "99999"))
	assert.Equal(t, 2, logs.Len())
}

func TestRootFor(t *testing.T) {
	tmp := filepath.Join(string(filepath.Separator), "tmp")
	getwd := func() (string, error) { return "/work/site", nil }

	tests := []struct {
		name string
		exe  string
		want string
	}{
		{"Installed", "/opt/site/devserve", "/opt/site"},
		{"GoRun", filepath.Join(tmp, "go-build123", "b001", "exe", "devserve"), "/work/site"},
		{"OtherTemp", filepath.Join(tmp, "site", "devserve"), filepath.Join(tmp, "site")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rootFor(tt.exe, tmp, getwd)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRoot(t *testing.T) {
	root, err := resolveRoot()
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRunServe_ZeroPortIsFatal(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "0")

	err := runServe(io.Discard, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server configuration")
}

func TestRunServe_PortInUseIsFatal(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", strconv.Itoa(ln.Addr().(*net.TCPAddr).Port))

	err = runServe(io.Discard, nil)
	var bindErr *server.BindError
	assert.True(t, errors.As(err, &bindErr))
}

func TestRunServe_InvalidArgFallsBackAndInterruptExitsCleanly(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("interrupt cannot be delivered to the own process on windows")
	}

	port := freePort(t)
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", strconv.Itoa(port))
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- runServe(&out, []string{"abc"})
	}()

	waitForListener(t, addr)

	proc, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, proc.Signal(os.Interrupt))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop after interrupt")
	}

	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	ln.Close()

	// The banner is printed even when the log level hides info lines.
	assert.Contains(t, out.String(), "at http://"+addr+"/ (Ctrl+C to stop)")
	assert.Contains(t, out.String(), "Open index.html: http://"+addr+"/index.html")
}

func TestPrintBanner(t *testing.T) {
	var out bytes.Buffer
	printBanner(&out, server.Config{Host: "127.0.0.1", Port: 8000, Root: "/srv/site"})

	assert.Equal(t,
		"Serving '/srv/site' at http://127.0.0.1:8000/ (Ctrl+C to stop)\n"+
			"Open index.html: http://127.0.0.1:8000/index.html\n",
		out.String())
}

func TestReportFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	l := zap.New(core)

	bindErr := &server.BindError{Addr: "127.0.0.1:8000", Err: errors.New("address already in use")}
	reportFailure(l, fmt.Errorf("start: %w", bindErr))
	reportFailure(l, errors.New("invalid server configuration"))

	require.Equal(t, 2, logs.Len())
	first := logs.All()[0]
	assert.Contains(t, first.Message, "port already in use")
	assert.Equal(t, "127.0.0.1:8000", first.ContextMap()["addr"])
	assert.Equal(t, "devserve stopped", logs.All()[1].Message)
}

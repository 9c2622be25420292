package mcp

import (
	"path/filepath"
	"testing"

	"github.com/nvandessel/samplespace/internal/config"
)

// isolateHome sets HOME to a temp directory to avoid touching real ~/.samplespace/
func isolateHome(t *testing.T, tmpDir string) {
	t.Helper()
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))
}

func TestNewServer(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	settings := config.Default()
	settings.History.Path = filepath.Join(tmpDir, "history.db")

	server, err := NewServer(&Config{
		Name:     "test-server",
		Version:  "v1.0.0",
		Root:     tmpDir,
		Settings: settings,
	})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	if server.server == nil {
		t.Error("Server.server is nil")
	}
	if server.runner == nil {
		t.Error("Server.runner is nil")
	}
	if server.history == nil {
		t.Error("Server.history is nil with history enabled")
	}
	if server.root != tmpDir {
		t.Errorf("Server.root = %q, want %q", server.root, tmpDir)
	}
	if len(server.toolLimiters) == 0 {
		t.Error("Server.toolLimiters is empty")
	}
}

func TestNewServer_HistoryDisabled(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	settings := config.Default()
	settings.History.Enabled = false

	server, err := NewServer(&Config{Name: "test", Version: "dev", Settings: settings})
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	defer server.Close()

	if server.history != nil {
		t.Error("Server.history should be nil with history disabled")
	}
}

func TestNewServer_InvalidSettings(t *testing.T) {
	settings := config.Default()
	settings.Sampling.Iterations = 0

	if _, err := NewServer(&Config{Name: "test", Settings: settings}); err == nil {
		t.Error("expected error for invalid settings")
	}
}

func TestServer_CloseTwice(t *testing.T) {
	server, _ := setupTestServer(t)
	if err := server.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := server.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

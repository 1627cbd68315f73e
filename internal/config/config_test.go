package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInitWorkspaceCreatesStructure(t *testing.T) {
	dir := t.TempDir()
	if err := InitWorkspace(dir); err != nil {
		t.Fatalf("init workspace: %v", err)
	}
	for _, sub := range []string{"logs", "exports"} {
		path := filepath.Join(dir, WorkspaceDir, sub)
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			t.Errorf("missing workspace dir %s: %v", path, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, WorkspaceDir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not seeded: %v", err)
	}
}

func TestInitWorkspaceKeepsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	if err := InitWorkspace(dir); err != nil {
		t.Fatalf("init workspace: %v", err)
	}
	path := filepath.Join(dir, WorkspaceDir, "config.yaml")
	custom := []byte("version: 1\napi:\n  base_url: http://backend:9000/api\n")
	if err := os.WriteFile(path, custom, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}
	if err := InitWorkspace(dir); err != nil {
		t.Fatalf("re-init workspace: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != string(custom) {
		t.Fatalf("re-init overwrote an existing config")
	}
}

func TestNewConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := NewConfig(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.APIBaseURL() != "http://localhost:8000/api" {
		t.Errorf("default base url: %s", cfg.APIBaseURL())
	}
	if cfg.APITimeout() != 120*time.Second {
		t.Errorf("default timeout: %s", cfg.APITimeout())
	}
	if cfg.ExportDir() != filepath.Join(dir, WorkspaceDir, "exports") {
		t.Errorf("default export dir: %s", cfg.ExportDir())
	}
}

func TestNewConfigReadsProjectFile(t *testing.T) {
	dir := t.TempDir()
	if err := InitWorkspace(dir); err != nil {
		t.Fatalf("init workspace: %v", err)
	}
	yaml := "version: 2\napi:\n  base_url: http://backend:9000/api\n  timeout_seconds: 30\nexport:\n  dir: out/docs\n"
	path := filepath.Join(dir, WorkspaceDir, "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := NewConfig(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Project.Version != 2 {
		t.Errorf("version: %d", cfg.Project.Version)
	}
	if cfg.APIBaseURL() != "http://backend:9000/api" {
		t.Errorf("base url: %s", cfg.APIBaseURL())
	}
	if cfg.APITimeout() != 30*time.Second {
		t.Errorf("timeout: %s", cfg.APITimeout())
	}
	if cfg.ExportDir() != filepath.Join(dir, "out/docs") {
		t.Errorf("export dir: %s", cfg.ExportDir())
	}
}

func TestEnvOverrideWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	if err := InitWorkspace(dir); err != nil {
		t.Fatalf("init workspace: %v", err)
	}
	t.Setenv(EnvAPIBaseURL, "http://staging:8001/api")

	cfg, err := NewConfig(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.APIBaseURL() != "http://staging:8001/api" {
		t.Errorf("env override lost: %s", cfg.APIBaseURL())
	}
}

func TestInvalidBaseURLRejected(t *testing.T) {
	dir := t.TempDir()
	if err := InitWorkspace(dir); err != nil {
		t.Fatalf("init workspace: %v", err)
	}
	yaml := "version: 1\napi:\n  base_url: not-a-url\n"
	path := filepath.Join(dir, WorkspaceDir, "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := NewConfig(dir); err == nil {
		t.Fatalf("expected validation failure for malformed base url")
	}
}

func TestMalformedYAMLRejected(t *testing.T) {
	dir := t.TempDir()
	if err := InitWorkspace(dir); err != nil {
		t.Fatalf("init workspace: %v", err)
	}
	path := filepath.Join(dir, WorkspaceDir, "config.yaml")
	if err := os.WriteFile(path, []byte("api: [not a mapping"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := NewConfig(dir); err == nil {
		t.Fatalf("expected parse failure")
	}
}

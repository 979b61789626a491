package config

import (
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirei-dev/kirei/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Fx.Queue != QueueSync {
		t.Errorf("Fx.Queue = %q, want %q", cfg.Fx.Queue, QueueSync)
	}
	if cfg.Fx.RecursionLimit != DefaultRecursionLimit {
		t.Errorf("Fx.RecursionLimit = %d, want %d", cfg.Fx.RecursionLimit, DefaultRecursionLimit)
	}
	if cfg.Inspector.Addr != DefaultInspectorAddr {
		t.Errorf("Inspector.Addr = %q, want %q", cfg.Inspector.Addr, DefaultInspectorAddr)
	}
	if cfg.Inspector.MetricsNamespace != DefaultMetricsNamespace {
		t.Errorf("Inspector.MetricsNamespace = %q", cfg.Inspector.MetricsNamespace)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(tmpDir)
	if err == nil {
		t.Fatal("expected error for missing config")
	}
	if !stderrors.Is(err, errors.New("CFG003")) {
		t.Errorf("missing config error = %v, want CFG003", err)
	}

	configJSON := `{
  "name": "todo-app",
  "fx": {
    "queue": "Deferred",
    "recursionLimit": 20
  },
  "log": {
    "level": "debug"
  },
  "inspector": {
    "addr": "0.0.0.0:9000"
  }
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Name != "todo-app" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if !cfg.Deferred() {
		t.Errorf("Fx.Queue = %q, want deferred", cfg.Fx.Queue)
	}
	if cfg.Fx.RecursionLimit != 20 {
		t.Errorf("Fx.RecursionLimit = %d, want 20", cfg.Fx.RecursionLimit)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", cfg.SlogLevel())
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format default = %q, want text", cfg.Log.Format)
	}
	if cfg.Inspector.Addr != "0.0.0.0:9000" {
		t.Errorf("Inspector.Addr = %q", cfg.Inspector.Addr)
	}
	if cfg.Inspector.MetricsNamespace != DefaultMetricsNamespace {
		t.Errorf("Inspector.MetricsNamespace default = %q", cfg.Inspector.MetricsNamespace)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(tmpDir)
	if err == nil {
		t.Fatal("expected parse error")
	}
	var ke *errors.KireiError
	if !stderrors.As(err, &ke) || ke.Code != "CFG001" {
		t.Errorf("error = %v, want CFG001", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "deferred queue", mutate: func(c *Config) { c.Fx.Queue = QueueDeferred }},
		{
			name:    "unknown queue",
			mutate:  func(c *Config) { c.Fx.Queue = "async" },
			wantErr: "fx.queue",
		},
		{
			name:    "negative recursion limit",
			mutate:  func(c *Config) { c.Fx.RecursionLimit = -1 },
			wantErr: "fx.recursionLimit",
		},
		{
			name:    "unknown level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: "log.level",
		},
		{
			name:    "unknown format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	if err := cfg.Save(); err == nil {
		t.Error("Save without a path should fail")
	}

	cfg.Name = "saved"
	cfg.Fx.Queue = QueueDeferred
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if loaded.Name != "saved" || !loaded.Deferred() {
		t.Errorf("reloaded config = %+v", loaded)
	}

	loaded.Name = "resaved"
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	again, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Name != "resaved" {
		t.Errorf("Name = %q, want resaved", again.Name)
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := FindProjectRoot(nested); err == nil {
		t.Error("expected error when no kirei.json exists")
	}

	if err := New().SaveTo(filepath.Join(root, ConfigFileName)); err != nil {
		t.Fatal(err)
	}

	found, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	want, _ := filepath.Abs(root)
	if found != want {
		t.Errorf("FindProjectRoot() = %q, want %q", found, want)
	}
	if !Exists(root) {
		t.Error("Exists(root) should be true")
	}
}

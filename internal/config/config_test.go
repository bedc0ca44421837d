package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points every lookup at a fresh temp dir so the developer's own
// configuration does not leak into tests.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Setenv("XDG_DATA_HOME", "")
	for _, key := range []string{EnvConfig, EnvDir, EnvSuffix, EnvLogLevel, EnvLogFormat, EnvLogFile, EnvWatch} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoad_Default(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(CLIFlags{EnvFile: filepath.Join(home, "missing.env")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DataDir != filepath.Join(home, ".local", "share", "notes-mcp") {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Suffix != ".notes.txt" {
		t.Errorf("Suffix = %q, want .notes.txt", cfg.Suffix)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Watch {
		t.Error("Watch = true, want false")
	}
	if cfg.Watcher.DebounceWindow != 300*time.Millisecond {
		t.Errorf("DebounceWindow = %v", cfg.Watcher.DebounceWindow)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".config", "notes-mcp", "config.yaml")
	os.MkdirAll(filepath.Dir(path), 0o755)
	os.WriteFile(path, []byte(`data_dir: ~/my-notes
suffix: .memo
log:
  level: debug
watch: true
watcher:
  debounce_window: 50ms
`), 0o644)

	cfg, err := Load(CLIFlags{EnvFile: filepath.Join(home, "missing.env")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DataDir != filepath.Join(home, "my-notes") {
		t.Errorf("DataDir = %q, want expanded ~/my-notes", cfg.DataDir)
	}
	if cfg.Suffix != ".memo" {
		t.Errorf("Suffix = %q, want .memo", cfg.Suffix)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Log.Format != "console" {
		t.Errorf("Log.Format = %q, want default console", cfg.Log.Format)
	}
	if !cfg.Watch {
		t.Error("Watch = false, want true")
	}
	if cfg.Watcher.DebounceWindow != 50*time.Millisecond {
		t.Errorf("DebounceWindow = %v, want 50ms", cfg.Watcher.DebounceWindow)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "custom.yaml")
	os.WriteFile(path, []byte("data_dir: /tmp/from-file\n"), 0o644)
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvDir, "/tmp/from-env")
	t.Setenv(EnvWatch, "true")

	cfg, err := Load(CLIFlags{EnvFile: filepath.Join(home, "missing.env")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DataDir != "/tmp/from-env" {
		t.Errorf("DataDir = %q, want /tmp/from-env", cfg.DataDir)
	}
	if !cfg.Watch {
		t.Error("Watch = false, want true")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	home := isolate(t)
	// godotenv does not override variables that are already set.
	os.Unsetenv(EnvLogLevel)
	envFile := filepath.Join(home, ".env")
	os.WriteFile(envFile, []byte("NOTES_LOG_LEVEL=warn\n"), 0o644)
	t.Cleanup(func() { os.Unsetenv(EnvLogLevel) })

	cfg, err := Load(CLIFlags{EnvFile: envFile})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestLoad_CLIFlags(t *testing.T) {
	home := isolate(t)
	t.Setenv(EnvDir, "/tmp/env-dir")
	t.Setenv(EnvWatch, "true")
	watch := false

	cfg, err := Load(CLIFlags{
		EnvFile:  filepath.Join(home, "missing.env"),
		DataDir:  "/tmp/cli-dir",
		LogLevel: "error",
		Watch:    &watch,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DataDir != "/tmp/cli-dir" {
		t.Errorf("DataDir = %q, want /tmp/cli-dir", cfg.DataDir)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want error", cfg.Log.Level)
	}
	if cfg.Watch {
		t.Error("Watch = true, want false from flag")
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing explicit config file", func(t *testing.T) {
		home := isolate(t)
		_, err := Load(CLIFlags{
			EnvFile:    filepath.Join(home, "missing.env"),
			ConfigFile: filepath.Join(home, "nope.yaml"),
		})
		if err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		home := isolate(t)
		path := filepath.Join(home, "bad.yaml")
		os.WriteFile(path, []byte("data_dir: [unterminated\n"), 0o644)
		_, err := Load(CLIFlags{EnvFile: filepath.Join(home, "missing.env"), ConfigFile: path})
		if err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("invalid watch env", func(t *testing.T) {
		home := isolate(t)
		t.Setenv(EnvWatch, "sometimes")
		_, err := Load(CLIFlags{EnvFile: filepath.Join(home, "missing.env")})
		if err == nil {
			t.Error("expected error for invalid NOTES_WATCH")
		}
	})

	t.Run("suffix with separator", func(t *testing.T) {
		home := isolate(t)
		_, err := Load(CLIFlags{EnvFile: filepath.Join(home, "missing.env"), Suffix: "a/b"})
		if err == nil {
			t.Error("expected error for invalid suffix")
		}
	})
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func useTempConfig(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "vrcphotos", "config.json")
	t.Setenv(PathEnv, p)
	t.Setenv(ServerEnv, "")
	t.Setenv(TokenEnv, "")
	return p
}

func TestConfig_Path(t *testing.T) {
	t.Run("honours override", func(t *testing.T) {
		want := useTempConfig(t)
		got, err := Path()
		if err != nil {
			t.Fatalf("Path() returned error: %v", err)
		}
		if got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	})

	t.Run("defaults to user config dir", func(t *testing.T) {
		t.Setenv(PathEnv, "")
		userConfigDir, err := os.UserConfigDir()
		if err != nil {
			t.Skipf("no user config dir: %v", err)
		}
		got, err := Path()
		if err != nil {
			t.Fatalf("Path() returned error: %v", err)
		}
		if got != filepath.Join(userConfigDir, "vrcphotos", "config.json") {
			t.Errorf("unexpected path %s", got)
		}
	})
}

func TestConfig_Load(t *testing.T) {
	t.Run("returns default config when file does not exist", func(t *testing.T) {
		useTempConfig(t)
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}
		if cfg.ServerURL != DefaultURL {
			t.Errorf("expected ServerURL %s, got %s", DefaultURL, cfg.ServerURL)
		}
		if cfg.HasToken() {
			t.Error("expected no token")
		}
	})

	t.Run("fills in default server url", func(t *testing.T) {
		p := useTempConfig(t)
		if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
			t.Fatalf("failed to create config dir: %v", err)
		}
		if err := os.WriteFile(p, []byte(`{"token":"abc"}`), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned error: %v", err)
		}
		if cfg.ServerURL != DefaultURL || cfg.Token != "abc" {
			t.Errorf("unexpected config %+v", cfg)
		}
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		p := useTempConfig(t)
		_ = os.MkdirAll(filepath.Dir(p), 0700)
		if err := os.WriteFile(p, []byte("{not json"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := Load(); err == nil {
			t.Fatal("expected error for invalid json")
		}
	})
}

func TestConfig_SaveAndClear(t *testing.T) {
	p := useTempConfig(t)

	want := &Config{ServerURL: "https://photos.example.com", Token: "tok", PhotoDir: "/pics"}
	if err := Save(want); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	info, err := os.Stat(p)
	if err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected perms 600, got %o", info.Mode().Perm())
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if *got != *want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	if err := Clear(); err != nil {
		t.Fatalf("Clear() returned error: %v", err)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Errorf("expected config removed, got %v", err)
	}
	if err := Clear(); err != nil {
		t.Errorf("expected clearing twice to succeed, got %v", err)
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	useTempConfig(t)
	if err := Save(&Config{ServerURL: "https://saved.example.com", Token: "saved", PhotoDir: "/pics"}); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	t.Setenv(ServerEnv, "https://env.example.com")
	t.Setenv(TokenEnv, "from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.ServerURL != "https://env.example.com" || cfg.Token != "from-env" {
		t.Errorf("expected env overrides, got %+v", cfg)
	}
	if cfg.PhotoDir != "/pics" {
		t.Errorf("expected saved photo dir kept, got %q", cfg.PhotoDir)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Sources{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Defaults(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFilePrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formdraft.yaml")
	content := "endpoint: http://file.example/forms\nstore_format: yaml\ntimeout: 5s\nrule_engine: cel\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FORMDRAFT_ENDPOINT", "http://env.example/forms")

	cfg, err := Load(Sources{ConfigFile: path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Endpoint != "http://env.example/forms" {
		t.Fatalf("env should override file, got %s", cfg.Endpoint)
	}
	if cfg.StoreFormat != "yaml" || cfg.RuleEngine != "cel" || cfg.Timeout != 5*time.Second {
		t.Fatalf("file values not applied: %+v", cfg)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("FORMDRAFT_STORE_KEY=fromdotenv\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("FORMDRAFT_STORE_KEY", "")
	os.Unsetenv("FORMDRAFT_STORE_KEY")

	cfg, err := Load(Sources{EnvFile: envFile})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StoreKey != "fromdotenv" {
		t.Fatalf("store key = %q", cfg.StoreKey)
	}

	if _, err := Load(Sources{EnvFile: filepath.Join(dir, "missing.env")}); err != nil {
		t.Fatalf("missing env file should be ignored: %v", err)
	}
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := map[string]string{
		"FORMDRAFT_STORE_FORMAT": "xml",
		"FORMDRAFT_RULE_ENGINE":  "lua",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(Sources{}); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formdraft.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(Sources{ConfigFile: path})
	if err != nil {
		t.Fatalf("load written file: %v", err)
	}
	if cfg.Endpoint != Defaults().Endpoint {
		t.Fatalf("endpoint = %s", cfg.Endpoint)
	}
	if err := WriteDefault(path); err == nil {
		t.Fatal("expected error when file exists")
	}
}

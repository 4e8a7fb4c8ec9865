package configparser

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Name string `env:"CPTEST_NAME" default:"sitetrack"`
	DB   struct {
		Host    string `env:"CPTEST_DB_HOST" default:"localhost"`
		Port    int    `env:"CPTEST_DB_PORT" default:"5432"`
		Enabled bool   `env:"CPTEST_DB_ENABLED" default:"false"`
	}
	Timeout time.Duration `env:"CPTEST_TIMEOUT" default:"60s"`
	Limit   float64       `env:"CPTEST_LIMIT" default:"30"`
	Origins []string      `env:"CPTEST_ORIGINS" default:"*"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg testConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("ParseEnv: %v", err)
	}
	if cfg.Name != "sitetrack" || cfg.DB.Host != "localhost" || cfg.DB.Port != 5432 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Timeout != time.Minute {
		t.Errorf("expected 60s timeout, got %v", cfg.Timeout)
	}
	if cfg.Limit != 30 {
		t.Errorf("expected limit 30, got %v", cfg.Limit)
	}
	if len(cfg.Origins) != 1 || cfg.Origins[0] != "*" {
		t.Errorf("unexpected origins %v", cfg.Origins)
	}
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("CPTEST_DB_PORT", "6543")
	t.Setenv("CPTEST_DB_ENABLED", "true")
	t.Setenv("CPTEST_ORIGINS", "http://a, http://b")

	var cfg testConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("ParseEnv: %v", err)
	}
	if cfg.DB.Port != 6543 || !cfg.DB.Enabled {
		t.Errorf("overrides not applied: %+v", cfg.DB)
	}
	if len(cfg.Origins) != 2 || cfg.Origins[1] != "http://b" {
		t.Errorf("unexpected origins %v", cfg.Origins)
	}
}

func TestParseEnvBadValue(t *testing.T) {
	t.Setenv("CPTEST_DB_PORT", "not-a-number")
	var cfg testConfig
	if err := ParseEnv(&cfg); err == nil {
		t.Fatal("expected an error for a bad int")
	}
}

func TestParseEnvRejectsNonPointer(t *testing.T) {
	if err := ParseEnv(testConfig{}); err != ErrNotStructPointer {
		t.Fatalf("expected ErrNotStructPointer, got %v", err)
	}
}

func TestFlattenYaml(t *testing.T) {
	t.Setenv("CPTEST_SECRET", "from-env")
	data := []byte(`
database:
  host: db.local
  port: 5432
auth:
  jwt_secret: ${CPTEST_SECRET:-fallback}
  other: ${CPTEST_MISSING:-fallback}
cors:
  origins:
    - http://a
    - http://b
empty:
`)
	vars, err := FlattenYaml(data)
	if err != nil {
		t.Fatalf("FlattenYaml: %v", err)
	}
	want := map[string]string{
		"DATABASE_HOST":   "db.local",
		"DATABASE_PORT":   "5432",
		"AUTH_JWT_SECRET": "from-env",
		"AUTH_OTHER":      "fallback",
		"CORS_ORIGINS":    "http://a,http://b",
	}
	for k, v := range want {
		if vars[k] != v {
			t.Errorf("%s: got %q, want %q", k, vars[k], v)
		}
	}
	if _, ok := vars["EMPTY"]; ok {
		t.Error("empty keys should be skipped")
	}
}

func TestLoadYamlFileKeepsExistingEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("cptest:\n  name: from-yaml\n  kept: yaml\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CPTEST_KEPT", "env")
	t.Setenv("CPTEST_NAME", "")

	if err := LoadYamlFile(path); err != nil {
		t.Fatalf("LoadYamlFile: %v", err)
	}
	if got := os.Getenv("CPTEST_NAME"); got != "from-yaml" {
		t.Errorf("CPTEST_NAME = %q", got)
	}
	if got := os.Getenv("CPTEST_KEPT"); got != "env" {
		t.Errorf("CPTEST_KEPT = %q, existing env must win", got)
	}
}

func TestLoadYamlFileNoPath(t *testing.T) {
	if err := LoadYamlFile(""); err != ErrNoFilePath {
		t.Fatalf("expected ErrNoFilePath, got %v", err)
	}
}

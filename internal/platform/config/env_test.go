package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port    int           `env:"CALCDECK_TEST_PORT" envDefault:"8095"`
	Timeout time.Duration `env:"CALCDECK_TEST_TIMEOUT" envDefault:"2s"`
	Files   []string      `env:"CALCDECK_TEST_FILES" envSeparator:","`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 8095 || cfg.Timeout != 2*time.Second || cfg.Files != nil {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseEnvReadsVariables(t *testing.T) {
	t.Setenv("CALCDECK_TEST_PORT", "9001")
	t.Setenv("CALCDECK_TEST_FILES", "a.lua,b.lua")

	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 9001 {
		t.Fatalf("port = %d, want 9001", cfg.Port)
	}
	if len(cfg.Files) != 2 || cfg.Files[1] != "b.lua" {
		t.Fatalf("files = %v", cfg.Files)
	}
}

func TestParseEnvReportsEveryBadVariable(t *testing.T) {
	t.Setenv("CALCDECK_TEST_PORT", "not-an-int")
	t.Setenv("CALCDECK_TEST_TIMEOUT", "soon")

	var cfg envTestConfig
	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "parse env:") {
		t.Fatalf("error = %q, want parse env prefix", msg)
	}
	for _, field := range []string{`"Port"`, `"Timeout"`} {
		if !strings.Contains(msg, field) {
			t.Fatalf("error = %q, want mention of field %s", msg, field)
		}
	}
}

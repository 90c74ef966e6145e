// Where: internal/config/config_test.go
// What: Tests for handler environment and project file loading.
// Why: Cold-start configuration errors must be explicit.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMail(t *testing.T) {
	t.Setenv("SES_EMAIL_FROM", "album@example.com")
	t.Setenv("SES_EMAIL_TO", "owner@example.com")
	t.Setenv("SES_REGION", "eu-west-1")

	cfg, err := LoadMail()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.From != "album@example.com" || cfg.To != "owner@example.com" || cfg.Region != "eu-west-1" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadMailMissingVariable(t *testing.T) {
	t.Setenv("SES_EMAIL_FROM", "album@example.com")
	t.Setenv("SES_EMAIL_TO", "")
	t.Setenv("SES_REGION", "eu-west-1")

	_, err := LoadMail()
	if !errors.Is(err, ErrMissingConfig) {
		t.Fatalf("expected ErrMissingConfig, got %v", err)
	}
	for _, name := range []string{"SES_EMAIL_TO", "SES_EMAIL_FROM", "SES_REGION"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("expected %s in error: %v", name, err)
		}
	}
}

func TestLoadProcessor(t *testing.T) {
	t.Setenv("TABLE_NAME", "")
	if _, err := LoadProcessor(); !errors.Is(err, ErrMissingConfig) {
		t.Fatalf("expected ErrMissingConfig, got %v", err)
	}
	t.Setenv("TABLE_NAME", "ImageTable")
	t.Setenv("TABLE_PARTITION_KEY", "")
	cfg, err := LoadProcessor()
	if err != nil || cfg.TableName != "ImageTable" || cfg.PartitionKey != "imageName" {
		t.Fatalf("unexpected result: %+v %v", cfg, err)
	}
}

func TestLoadRuntimeDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("AWS_ENDPOINT_URL", "http://localhost:4566")
	rt := LoadRuntime()
	if rt.LogLevel != "info" {
		t.Fatalf("expected default log level, got %q", rt.LogLevel)
	}
	if rt.Endpoint != "http://localhost:4566" {
		t.Fatalf("unexpected endpoint: %q", rt.Endpoint)
	}
}

func TestFindProjectFileSearchesUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path := filepath.Join(root, "eda.yaml")
	if err := os.WriteFile(path, []byte("table:\n  name: Photos\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if got := FindProjectFile(nested); got != path {
		t.Fatalf("expected %s, got %s", path, got)
	}

	cfg, used, err := LoadStackConfig("", nested)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if used != path || cfg.Table.Name != "Photos" {
		t.Fatalf("unexpected load result: %s %+v", used, cfg.Table)
	}
}

func TestLoadStackConfigDefaultsWithoutFile(t *testing.T) {
	cfg, used, err := LoadStackConfig("", t.TempDir())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if used != "" || cfg.Table.Name != "ImageTable" {
		t.Fatalf("expected defaults, got %s %+v", used, cfg.Table)
	}
}

func TestLoadStackConfigExplicitMissing(t *testing.T) {
	if _, _, err := LoadStackConfig(filepath.Join(t.TempDir(), "nope.yaml"), ""); err == nil {
		t.Fatalf("expected error for missing explicit file")
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/testlens/internal/llm"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Report.Format != nil || cfg.Batch.Workers != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigValues(t *testing.T) {
	path := writeConfig(t, `
[report]
format = "markdown"
width = 100
narrative = false

[buckets]
bounds = [20, 45, 90]

[llm]
provider = "openai"
openai-model = "gpt-4o"
timeout = "2m"
max-attempts = 5

[batch]
workers = 8

[server]
addr = "127.0.0.1:9000"
allowed-origins = ["https://example.org"]
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if *cfg.Report.Format != "markdown" || *cfg.Report.Width != 100 || *cfg.Report.Narrative {
		t.Fatalf("unexpected report config: %+v", cfg.Report)
	}
	if cfg.Report.Color != nil {
		t.Fatalf("expected unset color to stay nil")
	}
	if *cfg.Batch.Workers != 8 || *cfg.Server.Addr != "127.0.0.1:9000" || len(cfg.Server.AllowedOrigins) != 1 {
		t.Fatalf("unexpected batch/server config: %+v %+v", cfg.Batch, cfg.Server)
	}

	scheme, err := cfg.Buckets.BucketScheme()
	if err != nil {
		t.Fatalf("bucket scheme: %v", err)
	}
	if got := scheme.Bounds(); len(got) != 3 || got[2] != 90 {
		t.Fatalf("unexpected bounds: %v", got)
	}

	llmCfg := llm.DefaultConfig()
	if err := cfg.LLM.Apply(&llmCfg); err != nil {
		t.Fatalf("apply llm: %v", err)
	}
	if llmCfg.Provider != "openai" || llmCfg.OpenAI.Model != "gpt-4o" || llmCfg.Timeout != 2*time.Minute || llmCfg.Retry.MaxAttempts != 5 {
		t.Fatalf("unexpected llm config: %+v", llmCfg)
	}
	if llmCfg.Gemini.Model != "gemini-flash" {
		t.Fatalf("expected untouched defaults, got %q", llmCfg.Gemini.Model)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[report]\nfromat = \"json\"\n")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "report.fromat") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestInvalidValues(t *testing.T) {
	if _, err := (BucketsConfig{Bounds: []float64{60, 30}}).BucketScheme(); err == nil {
		t.Fatalf("expected error for decreasing bounds")
	}
	bad := "soon"
	cfg := llm.DefaultConfig()
	if err := (LLMConfig{Timeout: &bad}).Apply(&cfg); err == nil {
		t.Fatalf("expected error for bad timeout")
	}
	zero := 0
	if err := (LLMConfig{MaxAttempts: &zero}).Apply(&cfg); err == nil {
		t.Fatalf("expected error for zero attempts")
	}
}

func TestDefaultTemplateParses(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	path := writeConfig(t, DefaultTemplate())
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("template should parse: %v", err)
	}
	if cfg.LLM.Provider != nil {
		t.Fatalf("expected commented template to set nothing")
	}
	if !strings.Contains(DefaultTemplate(), filepath.Join("testlens", "testlens.db")) {
		t.Fatalf("expected db path in template")
	}
}

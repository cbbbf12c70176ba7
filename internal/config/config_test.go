package config

import (
	"flag"
	"io"
	"testing"
)

func TestDefault_Values(t *testing.T) {
	c := Default()
	if c == nil {
		t.Fatal("Default() returned nil")
	}
	if c.Host != "127.0.0.1" || c.Port != 13371 {
		t.Errorf("Addr = %s, want 127.0.0.1:13371", c.Addr())
	}
	if c.DefaultRadius != 1500 {
		t.Errorf("DefaultRadius = %v, want 1500", c.DefaultRadius)
	}
	if c.SeedMin != 79 || c.SeedMax != 30977 {
		t.Errorf("seed range = %d-%d, want 79-30977", c.SeedMin, c.SeedMax)
	}
	if c.MaxResults != 10 {
		t.Errorf("MaxResults = %v, want 10", c.MaxResults)
	}
	if c.HistoryLimit != 50 {
		t.Errorf("HistoryLimit = %v, want 50", c.HistoryLimit)
	}
	if c.MCPTransport != "stdio" {
		t.Errorf("MCPTransport = %q, want stdio", c.MCPTransport)
	}
	if c.OTelEndpoint != "" {
		t.Errorf("OTelEndpoint = %q, want empty", c.OTelEndpoint)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("TIMELESS_PORT", "9000")
	t.Setenv("TIMELESS_DATA_DIR", "/srv/poe")
	t.Setenv("TIMELESS_SEED_MAX", "40000")
	t.Setenv("TIMELESS_DEFAULT_RADIUS", "1075")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Port != 9000 {
		t.Errorf("Port = %d, want 9000", c.Port)
	}
	if c.DataDir != "/srv/poe" {
		t.Errorf("DataDir = %q", c.DataDir)
	}
	if c.SeedMax != 40000 || c.SeedMin != 79 {
		t.Errorf("seed range = %d-%d, want 79-40000", c.SeedMin, c.SeedMax)
	}
	if c.DefaultRadius != 1075 {
		t.Errorf("DefaultRadius = %v, want 1075", c.DefaultRadius)
	}
	if c.TreeFile != "psg_passive_nodes.json" {
		t.Errorf("unset TreeFile changed to %q", c.TreeFile)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("TIMELESS_PORT", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_InvalidRange(t *testing.T) {
	t.Setenv("TIMELESS_SEED_MIN", "500")
	t.Setenv("TIMELESS_SEED_MAX", "100")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestParseConfig_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("TIMELESS_PORT", "9000")
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	c, err := ParseConfig(fs, []string{"-port", "9100", "-data", "fixtures", "-workers", "3"})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if c.Port != 9100 {
		t.Errorf("Port = %d, want 9100", c.Port)
	}
	if c.DataDir != "fixtures" || c.SearchWorkers != 3 {
		t.Errorf("DataDir/SearchWorkers = %q/%d", c.DataDir, c.SearchWorkers)
	}
	if c.Addr() != "127.0.0.1:9100" {
		t.Errorf("Addr() = %q", c.Addr())
	}

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := ParseConfig(fs, []string{"-workers", "-1"}); err == nil {
		t.Error("negative workers accepted")
	}
}

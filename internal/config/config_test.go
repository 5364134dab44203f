package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	v := viper.New()
	if err := InitConfig(v, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.VinylDNS.URL != "http://localhost:9000" {
		t.Errorf("unexpected url %q", cfg.VinylDNS.URL)
	}
	if cfg.Zones.Forward != "ok." || cfg.Zones.Reverse != "2.0.192.in-addr.arpa." {
		t.Errorf("unexpected zones %+v", cfg.Zones)
	}
	if cfg.Poll.MaxAttempts != 20 || Seconds(cfg.Poll.Interval) != 500*time.Millisecond {
		t.Errorf("unexpected poll settings %+v", cfg.Poll)
	}
	if Seconds(cfg.Teardown.Timeout) != time.Minute {
		t.Errorf("expected a one minute teardown timeout, got %v", cfg.Teardown.Timeout)
	}
	if len(cfg.Scenario.Records) != 2 {
		t.Fatalf("expected 2 default records, got %d", len(cfg.Scenario.Records))
	}
	if r := cfg.Scenario.Records[0]; r.FQDN != "test-java-1.ok." || r.Value != "192.0.2.110" || r.Replacement != "192.0.2.115" {
		t.Errorf("unexpected first record %+v", r)
	}
	if len(cfg.Group.Members) != 1 || cfg.Group.Members[0] != "ok" {
		t.Errorf("unexpected members %v", cfg.Group.Members)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	content := `
vinyldns:
  url: https://vinyldns.example.com
zones:
  forward: example.
scenario:
  record_name_filter: demo-
  records:
    - kind: CNAME
      fqdn: demo-alias.example.
      value: one.example.
      replacement: two.example.
poll:
  max_attempts: 3
`
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VINYLDNS_ACCESS_KEY", "env-access")

	v := viper.New()
	if err := InitConfig(v, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.VinylDNS.URL != "https://vinyldns.example.com" {
		t.Errorf("unexpected url %q", cfg.VinylDNS.URL)
	}
	if cfg.VinylDNS.AccessKey != "env-access" {
		t.Errorf("expected env override, got %q", cfg.VinylDNS.AccessKey)
	}
	if cfg.Zones.Forward != "example." || cfg.Zones.Reverse != "2.0.192.in-addr.arpa." {
		t.Errorf("unexpected zones %+v", cfg.Zones)
	}
	if cfg.Poll.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.Poll.MaxAttempts)
	}
	if len(cfg.Scenario.Records) != 1 || cfg.Scenario.Records[0].Kind != "CNAME" {
		t.Errorf("unexpected records %+v", cfg.Scenario.Records)
	}
}

func TestInitConfig_ExplicitFileMissing(t *testing.T) {
	v := viper.New()
	if err := InitConfig(v, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{
		VinylDNS: VinylDNSConfig{URL: "http://localhost:9000"},
		Poll:     PollConfig{MaxAttempts: 0, Interval: 0},
		Teardown: TeardownConfig{Timeout: -1},
		Scenario: ScenarioConfig{Records: []RecordConfig{{Kind: "A", FQDN: "a.ok."}}},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"access_key", "group.name", "zones.forward", "max_attempts", "poll.interval", "teardown.timeout", "scenario.records[0]"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %q, got %v", want, err)
		}
	}
}

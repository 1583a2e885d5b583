package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func testViper(values map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViperDefaults(t *testing.T) {
	cfg := fromViper(testViper(map[string]any{"SESSION_SECRET": "s", "DEBUG": true}))

	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.MatchupsPath != "/matchups" {
		t.Errorf("MatchupsPath = %q", cfg.MatchupsPath)
	}
	if cfg.APITimeout != 10*time.Second {
		t.Errorf("APITimeout = %v", cfg.APITimeout)
	}
	if !cfg.RequireLocks {
		t.Error("RequireLocks should default to true")
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.LedgerEnabled() {
		t.Error("ledger should be disabled without DATABASE_URL or DB_PASS")
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate() = %v; want nil", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr bool
	}{
		{"debug without tls domains", map[string]any{"SESSION_SECRET": "s", "DEBUG": true}, false},
		{"missing secret", map[string]any{"DEBUG": true}, true},
		{"production without tls domains", map[string]any{"SESSION_SECRET": "s"}, true},
		{"production with tls domains", map[string]any{"SESSION_SECRET": "s", "TLS_DOMAINS": "multi.example.com"}, false},
		{"relative matchups path", map[string]any{"SESSION_SECRET": "s", "DEBUG": true, "MATCHUPS_PATH": "matches"}, true},
		{"zero timeout", map[string]any{"SESSION_SECRET": "s", "DEBUG": true, "API_TIMEOUT": "0s"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fromViper(testViper(tt.values)).validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate() = %v; wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := fromViper(testViper(map[string]any{"DB_PASS": "pw"}))
	want := "postgres://multi:pw@localhost:5432/multibuilder?sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Errorf("PostgresDSN() = %q; want %q", got, want)
	}
	if !cfg.LedgerEnabled() {
		t.Error("ledger should be enabled with DB_PASS")
	}

	cfg.DatabaseURL = "postgres://other"
	if got := cfg.PostgresDSN(); got != "postgres://other" {
		t.Errorf("PostgresDSN() = %q; want DATABASE_URL", got)
	}
}

func TestSplitTrimmed(t *testing.T) {
	got := splitTrimmed(" a.com, ,b.com ")
	if len(got) != 2 || got[0] != "a.com" || got[1] != "b.com" {
		t.Errorf("splitTrimmed() = %q", got)
	}
}

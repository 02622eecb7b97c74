package config

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConfig_Normalize(t *testing.T) {
	cfg := &Config{ListenAddr: "  ", Workers: 0, QueueSize: -1, ReadLimit: 0}
	cfg.Normalize()

	want := &Config{
		ListenAddr:     defaultListenAddr,
		Workers:        defaultWorkers,
		QueueSize:      defaultQueueSize,
		ReadLimit:      defaultReadLimit,
		AllowedOrigins: []string{"*"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Normalized config mismatch (-want +got):\n%s", diff)
	}

	cfg = &Config{ListenAddr: ":9000", Workers: 8, QueueSize: 10, ReadLimit: 1024, AllowedOrigins: []string{"http://a"}}
	cfg.Normalize()
	if cfg.ListenAddr != ":9000" || cfg.Workers != 8 || cfg.QueueSize != 10 || cfg.ReadLimit != 1024 {
		t.Errorf("Expected explicit values to be kept, got %+v", cfg)
	}
}

func TestConfig_AllowsOrigin(t *testing.T) {
	tests := []struct {
		allowed []string
		origin  string
		want    bool
	}{
		{allowed: []string{"*"}, origin: "http://anything", want: true},
		{allowed: []string{"http://localhost:5173"}, origin: "http://localhost:5173", want: true},
		{allowed: []string{"http://localhost:5173"}, origin: "HTTP://LOCALHOST:5173", want: true},
		{allowed: []string{"http://localhost:5173"}, origin: "http://evil.example", want: false},
		{allowed: []string{"http://localhost:5173"}, origin: "", want: true},
	}

	for _, tt := range tests {
		cfg := &Config{AllowedOrigins: tt.allowed}
		if got := cfg.AllowsOrigin(tt.origin); got != tt.want {
			t.Errorf("AllowsOrigin(%q) with %v = %v, want %v", tt.origin, tt.allowed, got, tt.want)
		}
	}
}

func TestConfig_AuthAndString(t *testing.T) {
	cfg := &Config{ListenAddr: ":5000", APIAuthToken: "secret-api", MCPAuthToken: "secret-mcp"}
	if !cfg.IsAPIAuthEnabled() || !cfg.IsMCPEnabled() {
		t.Error("Expected auth to be enabled")
	}

	s := cfg.String()
	if strings.Contains(s, "secret") {
		t.Errorf("String leaks tokens: %s", s)
	}
	if !strings.Contains(s, "api_auth=true") {
		t.Errorf("Expected api_auth=true in %s", s)
	}
}

func TestParseList(t *testing.T) {
	got := parseList(" http://a , ,http://b,")
	if diff := cmp.Diff([]string{"http://a", "http://b"}, got); diff != "" {
		t.Errorf("parseList mismatch (-want +got):\n%s", diff)
	}
	if parseList("") != nil {
		t.Error("Expected nil for empty input")
	}
}

package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		SetLevel(tt.in)
		if got := zerolog.GlobalLevel(); got != tt.want {
			t.Errorf("SetLevel(%q) -> %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("FACETEX_TEST_VALUE", "")
	if got := EnvOrDefault("FACETEX_TEST_VALUE", "fallback"); got != "fallback" {
		t.Errorf("empty env = %q", got)
	}
	t.Setenv("FACETEX_TEST_VALUE", "set")
	if got := EnvOrDefault("FACETEX_TEST_VALUE", "fallback"); got != "set" {
		t.Errorf("set env = %q", got)
	}
}

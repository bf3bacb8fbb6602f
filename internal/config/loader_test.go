package config

import (
	"testing"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("NC_TEST_HOST", "redis.internal")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"set variable wins over default", "host: ${NC_TEST_HOST:localhost}", "host: redis.internal"},
		{"unset variable uses default", "port: ${NC_TEST_PORT:6379}", "port: 6379"},
		{"unset variable without default is kept", "key: ${NC_TEST_MISSING}", "key: ${NC_TEST_MISSING}"},
		{"empty default", "password: ${NC_TEST_PASSWORD:}", "password: "},
		{"plain text untouched", "name: novelcraft", "name: novelcraft"},
		{"multiple placeholders", "addr: ${NC_TEST_HOST:x}:${NC_TEST_PORT:6379}", "addr: redis.internal:6379"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandEnv(tt.in); got != tt.want {
				t.Fatalf("expandEnv(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

package database

import "testing"

func TestSimpleProtocolURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u@h/db", "postgres://u@h/db?default_query_exec_mode=simple_protocol"},
		{"postgres://u@h/db?sslmode=disable", "postgres://u@h/db?sslmode=disable&default_query_exec_mode=simple_protocol"},
		{"postgres://u@h/db?default_query_exec_mode=exec", "postgres://u@h/db?default_query_exec_mode=exec"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SimpleProtocolURL(tt.in); got != tt.want {
				t.Errorf("SimpleProtocolURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultConfigsFromEnv(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "7")
	t.Setenv("REDIS_POOL_SIZE", "nope")

	if got := DefaultPostgresConfig().MaxConns; got != 7 {
		t.Errorf("MaxConns = %d, want 7", got)
	}
	if got := DefaultRedisConfig().PoolSize; got != 20 {
		t.Errorf("PoolSize = %d, want 20", got)
	}
}

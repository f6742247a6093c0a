package logger

import (
	"strings"
	"testing"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"code", "Your OTP is 482910", "Your OTP is [CODE]"},
		{"phone", "call +919876543210 now", "call [PHONE] now"},
		{"bare phone", "from 9876543210", "from [PHONE]"},
		{"short number kept", "room 42", "room 42"},
		{"plain", "hello", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Redact(tt.in); got != tt.want {
				t.Errorf("Redact(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRedact_Truncates(t *testing.T) {
	got := Redact(strings.Repeat("a", 250))
	if !strings.HasSuffix(got, "... [truncated]") {
		t.Errorf("expected truncation suffix, got %q", got)
	}
	if len(got) != 200+len("... [truncated]") {
		t.Errorf("len = %d, want %d", len(got), 200+len("... [truncated]"))
	}
}

package classification

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims", "  Your OTP is 1234 \n", "Your OTP is 1234"},
		{"blank", " \t\n ", ""},
		{"emoji kept", "🎉🔥", "🎉🔥"},
		{"unicode kept", "आपका OTP 4521 है", "आपका OTP 4521 है"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitize_Clips(t *testing.T) {
	long := strings.Repeat("é", MaxTextLength+50)
	got := Sanitize(long)
	if n := utf8.RuneCountInString(got); n != MaxTextLength {
		t.Errorf("rune count = %d, want %d", n, MaxTextLength)
	}
	if !utf8.ValidString(got) {
		t.Error("clipped text is not valid UTF-8")
	}
}

func TestIsEmojiOnly(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"🎉", true},
		{"👍🏽 ❤️", true},
		{"👨‍👩‍👧", true},
		{"ok 👍", false},
		{"1234", false},
		{"", false},
		{"   ", false},
	}
	for _, tt := range tests {
		if got := IsEmojiOnly(tt.in); got != tt.want {
			t.Errorf("IsEmojiOnly(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

package validation

import (
	"os"
	"strings"
	"testing"
)

func TestMaxMessageLength(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{"Default when unset", "", 4000},
		{"Custom value", "500", 500},
		{"Garbage falls back", "not-a-number", 4000},
		{"Zero falls back", "0", 4000},
		{"Negative falls back", "-5", 4000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("MAX_MESSAGE_LENGTH", tt.env)
			defer os.Unsetenv("MAX_MESSAGE_LENGTH")
			if got := MaxMessageLength(); got != tt.want {
				t.Errorf("MaxMessageLength() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTrimAndLimit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"Trims whitespace", "  hello  ", 100, "hello"},
		{"Whitespace only", "   \t\n", 100, ""},
		{"Truncates over limit", "abcdef", 3, "abc"},
		{"No limit when zero", strings.Repeat("x", 50), 0, strings.Repeat("x", 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndLimit(tt.input, tt.max); got != tt.want {
				t.Errorf("TrimAndLimit(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
		})
	}
}

func TestValidateEmoji(t *testing.T) {
	tests := []struct {
		name  string
		emoji string
		want  bool
	}{
		{"Literal emoji", "👍", true},
		{"Short code", ":thumbsup:", true},
		{"Empty", "", false},
		{"Whitespace inside", "thumbs up", false},
		{"Too long", strings.Repeat("a", 33), false},
		{"Invalid utf8", string([]byte{0xff, 0xfe}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateEmoji(tt.emoji); got != tt.want {
				t.Errorf("ValidateEmoji(%q) = %v, want %v", tt.emoji, got, tt.want)
			}
		})
	}
}

func TestValidateRoomName(t *testing.T) {
	tests := []struct {
		name     string
		roomName string
		want     bool
	}{
		{"Normal name", "Engineering", true},
		{"Empty", "", false},
		{"Whitespace only", "   ", false},
		{"At limit", strings.Repeat("a", 100), true},
		{"Over limit", strings.Repeat("a", 101), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateRoomName(tt.roomName); got != tt.want {
				t.Errorf("ValidateRoomName(%q) = %v, want %v", tt.roomName, got, tt.want)
			}
		})
	}
}

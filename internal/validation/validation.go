package validation

import (
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

func MaxMessageLength() int {
	maxStr := os.Getenv("MAX_MESSAGE_LENGTH")
	if maxStr == "" {
		return 4000
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 1 {
		return 4000
	}
	return max
}

func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}

// ValidateEmoji accepts short non-empty reaction keys. Clients send either
// a literal emoji or a short-code like ":thumbsup:".
func ValidateEmoji(emoji string) bool {
	if emoji == "" || len(emoji) > 32 {
		return false
	}
	if !utf8.ValidString(emoji) {
		return false
	}
	return !strings.ContainsAny(emoji, " \t\n")
}

// ValidateRoomName covers room and channel names.
func ValidateRoomName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && utf8.RuneCountInString(name) <= 100
}

package classification

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"sms_classifier/pkg/logger"
)

// MaxTextLength is the longest text, in characters, that reaches feature extraction.
const MaxTextLength = 1000

// Sanitize trims text and clips it to MaxTextLength characters.
// Blank input yields "". Emoji-only input is logged and passed through unchanged.
func Sanitize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if n := utf8.RuneCountInString(text); n > MaxTextLength {
		logger.Warn("[Sanitize] text clipped from %d to %d characters", n, MaxTextLength)
		text = string([]rune(text)[:MaxTextLength])
	}

	if IsEmojiOnly(text) {
		logger.Debug("[Sanitize] emoji-only message (%d characters)", utf8.RuneCountInString(text))
	}
	return text
}

// IsEmojiOnly reports whether text holds at least one pictograph and nothing
// but pictographs, emoji modifiers and whitespace.
func IsEmojiOnly(text string) bool {
	seen := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r), isEmojiJoiner(r):
			continue
		case isEmoji(r):
			seen = true
		default:
			return false
		}
	}
	return seen
}

func isEmoji(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // pictographs, emoticons, transport, flags
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r >= 0x2B00 && r <= 0x2BFF:
		return true
	}
	return unicode.Is(unicode.So, r)
}

// isEmojiJoiner covers ZWJ, variation selectors and keycap combiners.
func isEmojiJoiner(r rune) bool {
	return r == 0x200D || r == 0x20E3 || (r >= 0xFE00 && r <= 0xFE0F)
}

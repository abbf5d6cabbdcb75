package utils

import (
	"strings"
	"time"
)

var markdownReplacer = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"`", "\\`",
)

// EscapeMarkdown escapes Telegram Markdown control characters in
// model-produced text so it cannot break message formatting.
func EscapeMarkdown(s string) string {
	return markdownReplacer.Replace(s)
}

// FormatTimestamp renders a result timestamp for chat messages.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format("Jan 2, 15:04")
}

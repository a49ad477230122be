package render

import "strings"

var (
	textEscaper   = strings.NewReplacer("'", `'\''`, ":", `\:`, "%", "%%")
	textUnescaper = strings.NewReplacer(`'\''`, "'", `\:`, ":", "%%", "%")
)

// EscapeText prepares caption content for a single-quoted drawtext value:
// quotes close, escape and reopen the string; colons are backslash-escaped
// and percent signs are doubled so drawtext expansion prints them literally.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// UnescapeText reverses EscapeText.
func UnescapeText(s string) string {
	return textUnescaper.Replace(s)
}

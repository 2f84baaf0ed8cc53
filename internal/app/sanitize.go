package app

import "html"

// SanitizeText escapes markup-significant characters (< > & ' ") in free text
// that other clients may render as HTML.
func SanitizeText(s string) string {
	return html.EscapeString(s)
}

package rendering

import "strings"

// linkEscaper percent-escapes the characters that end a Markdown link target early.
var linkEscaper = strings.NewReplacer("(", "%28", ")", "%29")

// EscapeLinkURL escapes ( and ) in a URL placed inside [text](url).
func EscapeLinkURL(url string) string {
	if url == "" {
		return ""
	}
	return linkEscaper.Replace(url)
}

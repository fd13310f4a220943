package parsing

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML converts rich-text descriptions (posts and topics are authored in
// an HTML editor) to plain text for scoring and query building. Input that is
// not HTML passes through with whitespace collapsed.
func StripHTML(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	if !strings.Contains(trimmed, "<") {
		return collapseWhitespace(trimmed)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(trimmed))
	if err != nil {
		return collapseWhitespace(trimmed)
	}

	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package labelrules

import (
	"strings"

	"golang.org/x/net/html"
)

// stripHTML returns the text content of possibly-HTML input. Plain text
// passes through unchanged. Script and style bodies are dropped.
func stripHTML(text string) string {
	if !strings.ContainsRune(text, '<') {
		return text
	}

	tokenizer := html.NewTokenizer(strings.NewReader(text))
	var b strings.Builder
	skipDepth := 0
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if isSkipped(string(name)) {
				skipDepth++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if isSkipped(string(name)) && skipDepth > 0 {
				skipDepth--
			}
			b.WriteByte(' ')
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}
}

func isSkipped(tag string) bool {
	return tag == "script" || tag == "style"
}

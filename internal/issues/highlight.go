package issues

import (
	"regexp"
	"strings"
)

// LegalKeywords are emphasised by Highlight.
var LegalKeywords = []string{
	"plaintiff", "defendant", "verdict", "court", "judge", "appeal", "lawsuit", "case",
}

var defaultHighlighter = NewHighlighter(LegalKeywords)

type Highlighter struct {
	re *regexp.Regexp
}

func NewHighlighter(keywords []string) *Highlighter {
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			quoted = append(quoted, regexp.QuoteMeta(k))
		}
	}
	if len(quoted) == 0 {
		return &Highlighter{}
	}
	return &Highlighter{re: regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)}
}

// Highlight wraps whole-word keyword matches as **KEYWORD**.
func (h *Highlighter) Highlight(text string) string {
	if h.re == nil {
		return text
	}
	return h.re.ReplaceAllStringFunc(text, func(m string) string {
		return "**" + strings.ToUpper(m) + "**"
	})
}

func Highlight(text string) string {
	return defaultHighlighter.Highlight(text)
}

// Package issues picks out the sentences of a case that most likely state
// its legal issues, and marks legal keywords for display.
package issues

import (
	"sort"
	"strings"
)

// IssueKeywords score sentences for Extract.
var IssueKeywords = []string{
	"issue", "held", "holding", "reason", "liable", "breach", "negligence",
	"constitutional", "appeal", "convicted", "sentence", "dismissed",
	"contract", "tort",
}

const (
	DefaultTopN   = 5
	fallbackCount = 3
)

type scored struct {
	idx   int
	score int
	text  string
}

// Extract returns up to topN sentences ranked by how many issue keywords they
// contain. Ties keep document order. When no sentence matches, the first
// three sentences are returned instead.
func Extract(sentences []string, topN int) []string {
	if topN <= 0 {
		topN = DefaultTopN
	}

	var hits []scored
	for i, s := range sentences {
		if n := Score(s); n > 0 {
			hits = append(hits, scored{idx: i, score: n, text: s})
		}
	}

	if len(hits) == 0 {
		n := min(fallbackCount, len(sentences))
		return append([]string(nil), sentences[:n]...)
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if len(hits) > topN {
		hits = hits[:topN]
	}

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.text
	}
	return out
}

// Score counts the distinct issue keywords contained in s, ignoring case.
func Score(s string) int {
	lower := strings.ToLower(s)
	n := 0
	for _, k := range IssueKeywords {
		if strings.Contains(lower, k) {
			n++
		}
	}
	return n
}

// Bullets renders issues as one "• " line each.
func Bullets(issues []string) string {
	lines := make([]string, 0, len(issues))
	for _, i := range issues {
		lines = append(lines, "• "+strings.TrimSpace(i))
	}
	return strings.Join(lines, "\n")
}

package issues

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRanksByKeywordCount(t *testing.T) {
	sents := []string{
		"The parties met in 2019.",
		"The appeal was dismissed.",
		"The court held the defendant liable for breach of contract.",
		"Costs were reserved.",
		"Negligence was not pleaded.",
	}

	got := Extract(sents, 2)

	assert.Equal(t, []string{
		"The court held the defendant liable for breach of contract.",
		"The appeal was dismissed.",
	}, got)
}

func TestExtractTiesKeepOrder(t *testing.T) {
	sents := []string{"First appeal.", "Second tort.", "Third contract."}
	assert.Equal(t, sents, Extract(sents, 0))
}

func TestExtractFallsBackToLeadingSentences(t *testing.T) {
	sents := []string{"A.", "B.", "C.", "D."}
	assert.Equal(t, []string{"A.", "B.", "C."}, Extract(sents, 5))
	assert.Equal(t, []string{"A."}, Extract(sents[:1], 5))
	assert.Empty(t, Extract(nil, 5))
}

func TestScoreIgnoresCase(t *testing.T) {
	assert.Equal(t, 2, Score("HELD: the APPEAL succeeds"))
	assert.Zero(t, Score("nothing relevant"))
}

func TestBullets(t *testing.T) {
	assert.Equal(t, "• one\n• two", Bullets([]string{" one ", "two"}))
}

func TestHighlight(t *testing.T) {
	got := Highlight("The Court heard the case; the defendant lost the appeal. Showcase text.")
	assert.Equal(t, "The **COURT** heard the **CASE**; the **DEFENDANT** lost the **APPEAL**. Showcase text.", got)
}

func TestHighlighterEmpty(t *testing.T) {
	assert.Equal(t, "court", NewHighlighter(nil).Highlight("court"))
}

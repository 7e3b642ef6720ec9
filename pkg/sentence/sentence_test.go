package sentence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPunktTokenize(t *testing.T) {
	p, err := NewPunkt()
	require.NoError(t, err)

	got := p.Tokenize("The court dismissed the appeal. The defendant was held liable. Costs follow.", "en")

	assert.Equal(t, []string{
		"The court dismissed the appeal.",
		"The defendant was held liable.",
		"Costs follow.",
	}, got)
}

func TestPunktUnknownLocaleFallsBack(t *testing.T) {
	p, err := NewPunkt()
	require.NoError(t, err)

	assert.Len(t, p.Tokenize("One sentence. Another sentence.", "xx-YY"), 2)
	assert.Empty(t, p.Tokenize("   ", "en"))
}

func TestNormalizeLocale(t *testing.T) {
	cases := map[string]string{
		"":        "en",
		"english": "en",
		"en-US":   "en",
		"EN_gb":   "en",
		"de":      "de",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeLocale(in), in)
	}
}

func TestFirst(t *testing.T) {
	tok := TokenizerFunc(func(text, _ string) []string {
		return []string{"a.", "b.", "c."}
	})

	assert.Equal(t, "a. b.", First(tok, "ignored", "en", 2))
	assert.Equal(t, "a. b. c.", First(tok, "ignored", "en", 5))
}

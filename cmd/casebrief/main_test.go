package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offline(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OLLAMA_URL", "")
	t.Setenv("LLM_MAX_RETRIES", "0")
	t.Chdir(t.TempDir())
}

func TestRunRequiresFile(t *testing.T) {
	err := run(context.Background(), options{}, nil, &bytes.Buffer{})
	assert.EqualError(t, err, "-file is required")
}

func TestRunTextFile(t *testing.T) {
	offline(t)
	path := filepath.Join(t.TempDir(), "judgment.txt")
	text := strings.Repeat("The court held that the defendant was liable in negligence.\n", 4)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), options{file: path, premium: true, highlight: true}, nil, &out))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "judgment", got["title"])
	assert.Equal(t, "premium", got["tier"])
	assert.Equal(t, float64(400), got["summary_max_len"])
	assert.Contains(t, got["highlighted"], "**COURT**")
	assert.True(t, strings.HasPrefix(got["issues_text"].(string), "• "))
}

func TestRunEmptyStdin(t *testing.T) {
	offline(t)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), options{file: "-"}, strings.NewReader("  "), &out))
	assert.JSONEq(t, `{"summary":"⚠️ No text found."}`, out.String())
}

package emoji

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, 20, c.Len())
	assert.Equal(t, 20, c.Remaining(nil))
}

func TestNewCatalogValidation(t *testing.T) {
	_, err := NewCatalog(nil)
	assert.Error(t, err)

	_, err = NewCatalog([]Phrase{{Emojis: "🍰", Answer: "cake", Difficulty: 4}})
	assert.ErrorContains(t, err, "difficulty")

	_, err = NewCatalog([]Phrase{{Emojis: "", Answer: "cake", Difficulty: 1}})
	assert.ErrorContains(t, err, "emojis")

	_, err = NewCatalog([]Phrase{{Emojis: "🍰", Answer: " ", Difficulty: 1}})
	assert.ErrorContains(t, err, "answer")

	p := Phrase{Emojis: "🍰", Answer: "cake", Difficulty: 1}
	_, err = NewCatalog([]Phrase{p, p})
	assert.ErrorContains(t, err, "duplicate")
}

func TestSampleSkipsUsedUntilExhausted(t *testing.T) {
	c := DefaultCatalog()
	used := make(map[Phrase]struct{})

	for range c.Len() {
		p, ok := c.Sample(used)
		require.True(t, ok)

		_, dup := used[p]
		require.False(t, dup, "sampled %q twice", p.Answer)

		used[p] = struct{}{}
	}

	_, ok := c.Sample(used)
	assert.False(t, ok)
	assert.Zero(t, c.Remaining(used))
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "phrases.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`phrases:
  - emojis: "🍰🎂"
    answer: piece of cake
    difficulty: 1
  - emojis: "❄️🧊"
    answer: break the ice
    difficulty: 2
`), 0o600))

	c, err := LoadCatalog(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	jsonPath := filepath.Join(dir, "phrases.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"phrases":[{"emojis":"⏰💰","answer":"time is money","difficulty":5}]}`), 0o600))

	_, err = LoadCatalog(jsonPath)
	assert.ErrorContains(t, err, "difficulty")

	_, err = LoadCatalog(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

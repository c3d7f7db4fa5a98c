package deck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMixedPrompts(t *testing.T) {
	data := []byte(`{
		"white": ["a", "b", " "],
		"black": ["plain", {"text": "two ____ ____", "pick": 2}, {"text": "zero", "pick": 0}]
	}`)
	d, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, 2, d.ResponseCount(), "blank response cards are skipped")
	require.Equal(t, 3, d.PromptCount())
	assert.Equal(t, PromptCard{Text: "plain", Pick: 1}, d.prompts[0])
	assert.Equal(t, PromptCard{Text: "two ____ ____", Pick: 2}, d.prompts[1])
	assert.Equal(t, 1, d.prompts[2].Pick, "non-positive pick is normalized to 1")
	assert.Equal(t, 2, d.MaxPick())
}

func TestParseRejectsEmptyPools(t *testing.T) {
	_, err := Parse([]byte(`{"white": [], "black": ["x"]}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"white": ["x"], "black": []}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`not json`))
	assert.Error(t, err)
}

func TestLoadDefaultAndFile(t *testing.T) {
	d, err := Load("")
	require.NoError(t, err)
	assert.Greater(t, d.ResponseCount(), 10)
	assert.Greater(t, d.PromptCount(), 0)

	path := filepath.Join(t.TempDir(), "cards.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"white":["w"],"black":["b"]}`), 0o600))
	d, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"w", "w", "w"}, d.DrawResponseCards(3), "draws are with replacement")
	assert.Equal(t, PromptCard{Text: "b", Pick: 1}, d.DrawPrompt())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDrawResponseCards(t *testing.T) {
	d, err := New([]string{"a", "b", "c"}, []PromptCard{{Text: "p", Pick: 1}})
	require.NoError(t, err)

	assert.Nil(t, d.DrawResponseCards(0))
	cards := d.DrawResponseCards(50)
	require.Len(t, cards, 50)
	for _, c := range cards {
		assert.Contains(t, []string{"a", "b", "c"}, c)
	}
}

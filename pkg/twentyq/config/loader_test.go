package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderAllEmpty(t *testing.T) {
	loader := Loader{}

	comp, err := loader.Load()
	require.NoError(t, err)

	require.NotNil(t, comp.Config, "should fall back to the default config")
	assert.NotNil(t, comp.Normalizer)
	assert.NotNil(t, comp.Tokenizer)
	assert.Equal(t, 20, comp.Engine.MaxTurns)
}

func TestLoaderNonExistentConfig(t *testing.T) {
	loader := Loader{ConfigPath: "/nonexistent/twentyq.yaml"}

	_, err := loader.Load()
	assert.Error(t, err)
}

func TestLoaderNonExistentIgnoreList(t *testing.T) {
	loader := Loader{IgnorePath: "/nonexistent/ignore.yaml"}

	_, err := loader.Load()
	assert.Error(t, err)
}

func TestLoaderMalformedIgnoreList(t *testing.T) {
	loader := Loader{IgnorePath: writeFile(t, "bad.yaml", "terms: {unclosed\n")}

	_, err := loader.Load()
	assert.Error(t, err)
}

func TestLoaderValidFiles(t *testing.T) {
	loader := Loader{
		ConfigPath: writeFile(t, "twentyq.yaml", "engine:\n  max_turns: 12\ncorpus:\n  ignore:\n    - entity\n"),
		IgnorePath: writeFile(t, "ignore.yaml", "terms:\n  - object\n"),
	}

	comp, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 12, comp.Engine.MaxTurns)

	// Both the config's ignore list and the ignore file apply
	assert.Empty(t, comp.Normalizer.Normalize("wordnet entity 100001740"))
	assert.Empty(t, comp.Normalizer.Normalize("object"))
	assert.Equal(t, "FOLK DUOS", comp.Normalizer.Normalize("wikicat Folk duos"), "default prefixes still apply")
}

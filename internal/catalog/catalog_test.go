package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	c, err := Builtin()
	require.NoError(t, err)

	t.Run("default agent has a profile", func(t *testing.T) {
		_, ok := c.Lookup(c.Default())
		assert.True(t, ok)
	})

	t.Run("ports", func(t *testing.T) {
		p, ok := c.Lookup("pushAgent")
		require.True(t, ok)
		assert.Equal(t, []string{"array", "item"}, p.Inputs)
		assert.Equal(t, []string{"array"}, p.Outputs)
	})

	t.Run("default params", func(t *testing.T) {
		p, ok := c.Lookup("textInputAgent")
		require.True(t, ok)
		assert.Equal(t, "You:", p.Params["message"])
	})

	t.Run("unknown agent", func(t *testing.T) {
		_, ok := c.Lookup("noSuchAgent")
		assert.False(t, ok)
	})

	t.Run("categories are sorted", func(t *testing.T) {
		cats := c.Categories()
		assert.Contains(t, cats, "llm")
		assert.IsNonDecreasing(t, cats)
	})
}

func TestLoadOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	extra := `
[[agents]]
name = "echoAgent"
category = "custom"
inputs = ["in"]
outputs = ["out"]

[[agents]]
name = "fetchAgent"
category = "io"
inputs = ["url"]
outputs = ["body"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.toml"), []byte(extra), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	c, err := Load(dir)
	require.NoError(t, err)

	p, ok := c.Lookup("echoAgent")
	require.True(t, ok)
	assert.Equal(t, "custom", p.Category)
	assert.Equal(t, []string{"in"}, p.Inputs)

	_, ok = c.Lookup("fetchAgent")
	assert.True(t, ok)

	builtin, err := Builtin()
	require.NoError(t, err)
	assert.Len(t, c.All(), len(builtin.All())+1)
}

func TestLoadMissingDir(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.NotEmpty(t, c.All())
}

func TestLoadRejectsBadTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.toml"), []byte("[[agents]\nname ="), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestSetDefault(t *testing.T) {
	c := New(nil)
	assert.Equal(t, DefaultAgent, c.Default())
	c.SetDefault("")
	assert.Equal(t, DefaultAgent, c.Default())
	c.SetDefault("openAIAgent")
	assert.Equal(t, "openAIAgent", c.Default())
}

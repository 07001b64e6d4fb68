package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestOrderedKeepsDeclarationOrder(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var o Ordered[int]
		require.NoError(t, json.Unmarshal([]byte(`{"zeta": 1, "alpha": 2, "mid": 3}`), &o))
		assert.Equal(t, []string{"zeta", "alpha", "mid"}, o.Keys())

		out, err := json.Marshal(o)
		require.NoError(t, err)
		assert.JSONEq(t, `{"zeta":1,"alpha":2,"mid":3}`, string(out))
		assert.Equal(t, `{"zeta":1,"alpha":2,"mid":3}`, string(out))
	})

	t.Run("json with tab indentation", func(t *testing.T) {
		var o Ordered[string]
		require.NoError(t, json.Unmarshal([]byte("{\n\t\"b\": \"x\",\n\t\"a\": \"y\"\n}"), &o))
		assert.Equal(t, []string{"b", "a"}, o.Keys())
	})

	t.Run("yaml", func(t *testing.T) {
		var o Ordered[string]
		require.NoError(t, yaml.Unmarshal([]byte("b: one\na: two\n"), &o))
		assert.Equal(t, []string{"b", "a"}, o.Keys())

		out, err := yaml.Marshal(o)
		require.NoError(t, err)
		assert.Equal(t, "b: one\na: two\n", string(out))
	})
}

func TestOrderedRejectsDuplicateKeys(t *testing.T) {
	var o Ordered[int]
	err := yaml.Unmarshal([]byte("a: 1\na: 2\n"), &o)
	assert.Error(t, err)
}

func TestOrderedRejectsNonMapping(t *testing.T) {
	var o Ordered[int]
	err := json.Unmarshal([]byte(`[1, 2]`), &o)
	assert.Error(t, err)
}

func TestOrderedNull(t *testing.T) {
	o := Ordered[int]{{Key: "a", Value: 1}}
	require.NoError(t, json.Unmarshal([]byte(`null`), &o))
	assert.Nil(t, o)
}

func TestOrderedSetGetDelete(t *testing.T) {
	var o Ordered[string]
	o.Set("a", "1")
	o.Set("b", "2")
	o.Set("a", "3")

	v, ok := o.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "3", v)
	assert.Equal(t, []string{"a", "b"}, o.Keys())

	assert.True(t, o.Delete("a"))
	assert.False(t, o.Delete("a"))
	_, ok = o.Get("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, o.Keys())
}

func TestOrderedJSONStrings(t *testing.T) {
	t.Run("escaped solidus", func(t *testing.T) {
		var o Ordered[any]
		require.NoError(t, json.Unmarshal([]byte(`{"path": "a\/b"}`), &o))
		v, _ := o.Get("path")
		assert.Equal(t, "a/b", v)
	})

	t.Run("next line is kept", func(t *testing.T) {
		var o Ordered[any]
		require.NoError(t, json.Unmarshal([]byte("{\"text\": \"a\u0085b\"}"), &o))
		v, _ := o.Get("text")
		assert.Equal(t, "a\u0085b", v)

		out, err := json.Marshal(o)
		require.NoError(t, err)
		var back Ordered[any]
		require.NoError(t, json.Unmarshal(out, &back))
		assert.Equal(t, o, back)
	})
}

func TestOrderedJSONNumbers(t *testing.T) {
	var o Ordered[any]
	require.NoError(t, json.Unmarshal([]byte(`{"n": 3, "f": 1.5, "list": [1, {"k": 2}]}`), &o))

	n, _ := o.Get("n")
	assert.Equal(t, 3, n)
	f, _ := o.Get("f")
	assert.Equal(t, 1.5, f)
	list, _ := o.Get("list")
	assert.Equal(t, []any{1, map[string]any{"k": 2}}, list)
}

func TestOrderedYAMLNonStringKeys(t *testing.T) {
	var o Ordered[any]
	require.NoError(t, yaml.Unmarshal([]byte("value:\n  1: one\n  true: yes\n"), &o))
	v, _ := o.Get("value")
	assert.Equal(t, map[string]any{"1": "one", "true": "yes"}, v)

	_, err := json.Marshal(o)
	assert.NoError(t, err)

	err = yaml.Unmarshal([]byte("value:\n  ? [a, b]\n  : x\n"), &o)
	assert.Error(t, err)
}

package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const nestedJSON = `{
  "version": 0.5,
  "loop": {"while": ":continue"},
  "nodes": {
    "continue": {"value": true, "update": ":checkInput"},
    "userInput": {"agent": "textInputAgent", "isResult": true},
    "checkInput": {
      "agent": "compareAgent",
      "inputs": {"array": [":userInput", "!=", "/bye"]}
    },
    "chat": {
      "agent": "nestedAgent",
      "inputs": {"prompt": ":userInput.text"},
      "graph": {
        "nodes": {
          "llm": {"agent": "openAIAgent", "inputs": {"prompt": ":prompt"}}
        }
      }
    }
  }
}`

func TestGraphDataUnmarshalKeepsOrder(t *testing.T) {
	var g GraphData
	require.NoError(t, json.Unmarshal([]byte(nestedJSON), &g))

	assert.Equal(t, 0.5, g.Version)
	assert.Equal(t, []string{"continue", "userInput", "checkInput", "chat"}, g.Nodes.Keys())
	require.NotNil(t, g.Loop)
	assert.Equal(t, ":continue", g.Loop.While)

	chat, ok := g.Nodes.Get("chat")
	require.True(t, ok)
	require.NotNil(t, chat.Graph)
	assert.Equal(t, []string{"llm"}, chat.Graph.Nodes.Keys())

	userInput, _ := g.Nodes.Get("userInput")
	assert.True(t, userInput.IsResult)

	cont, _ := g.Nodes.Get("continue")
	assert.Equal(t, true, cont.Value)
	assert.Equal(t, ":checkInput", cont.Update)
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in   string
		key  string
		port string
		ok   bool
	}{
		{":a", "a", "", true},
		{":a.text", "a", "text", true},
		{":a.choices.0", "a", "choices.0", true},
		{"a", "", "", false},
		{":", "", "", false},
		{":a.", "", "", false},
		{":a b", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			key, port, ok := ParseRef(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.port, port)
		})
	}
}

func TestFormatRef(t *testing.T) {
	assert.Equal(t, ":a", FormatRef("a", ""))
	assert.Equal(t, ":a.text", FormatRef("a", "text"))
}

func TestValidKey(t *testing.T) {
	assert.True(t, ValidKey("node_1"))
	assert.True(t, ValidKey("userInput"))
	assert.False(t, ValidKey(""))
	assert.False(t, ValidKey("a/b"))
	assert.False(t, ValidKey("a.b"))
	assert.False(t, ValidKey(":a"))
	assert.False(t, ValidKey("a b"))
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "a", JoinPath("", "a"))
	assert.Equal(t, "a/b", JoinPath("a", "b"))
}

func TestNodeDataValuesEncodeAsJSON(t *testing.T) {
	var g GraphData
	src := "nodes:\n  a:\n    value:\n      1: one\n    params:\n      table:\n        2: two\n"
	require.NoError(t, yaml.Unmarshal([]byte(src), &g))

	a, ok := g.Nodes.Get("a")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"1": "one"}, a.Value)
	assert.Equal(t, map[string]any{"table": map[string]any{"2": "two"}}, a.Params)

	_, err := json.Marshal(g)
	assert.NoError(t, err)
}

func TestNodeDataJSONKeepsIntegers(t *testing.T) {
	var g GraphData
	require.NoError(t, json.Unmarshal([]byte(`{"loop": {"while": 2}, "nodes": {"a": {"value": [1, 2.5], "params": {"retry": 3}}}}`), &g))

	a, _ := g.Nodes.Get("a")
	assert.Equal(t, []any{1, 2.5}, a.Value)
	assert.Equal(t, map[string]any{"retry": 3}, a.Params)
	assert.Equal(t, 2, g.Loop.While)
}

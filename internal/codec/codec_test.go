package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphedit/internal/domain"
)

const sampleJSON = `{
  "version": 0.5,
  "concurrency": 2,
  "loop": {"while": ":continue"},
  "nodes": {
    "continue": {"value": true, "update": ":check"},
    "messages": {"value": []},
    "input": {"agent": "textInputAgent", "params": {"message": "You:", "retries": 3}},
    "check": {"agent": "compareAgent", "inputs": {"array": [":input.text", "!=", "/bye"]}},
    "llm": {
      "agent": "openAIAgent",
      "isResult": true,
      "inputs": {"system": "be brief", "prompt": ":input.text", "messages": ":messages"},
      "graph": {
        "loop": {"count": 3},
        "nodes": {"inner": {"agent": "echoAgent", "inputs": {"temperature": 0.7}}}
      }
    }
  },
  "metadata": {"positions": {"llm": {"x": 10, "y": 20.5}, "llm/inner": {"x": 1, "y": 2}}, "nextId": 4}
}`

func sample(t *testing.T) *domain.GraphData {
	t.Helper()
	g, err := NewJSONCodec().Parse(strings.NewReader(sampleJSON))
	require.NoError(t, err)
	return g
}

func TestRoundTripAllFormats(t *testing.T) {
	want := sample(t)
	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			c, err := ForFormat(format)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, c.Export(want, &buf))

			got, err := c.Parse(&buf)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("%s round trip mismatch (-want +got):\n%s", format, diff)
			}
		})
	}
}

func TestParseKeepsOrder(t *testing.T) {
	g := sample(t)
	assert.Equal(t, []string{"continue", "messages", "input", "check", "llm"}, g.Nodes.Keys())

	llm, _ := g.Nodes.Get("llm")
	assert.Equal(t, []string{"system", "prompt", "messages"}, llm.Inputs.Keys())
}

func TestHCLExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewHCLCodec().Export(sample(t), &buf))
	out := buf.String()

	assert.Contains(t, out, `node "continue" {`)
	assert.Contains(t, out, `agent = "openAIAgent"`)
	assert.Contains(t, out, "is_result = true")
	assert.Less(t, strings.Index(out, `node "input"`), strings.Index(out, `node "check"`))
	assert.Less(t, strings.Index(out, "system"), strings.Index(out, "prompt"))
}

func TestHCLParse(t *testing.T) {
	src := `
version = 0.5

node "b" {
  value = [1, 2]
}

node "a" {
  agent = "copyAgent"
  inputs {
    zeta  = ":b"
    alpha = { nested = true }
  }
}
`
	g, err := NewHCLCodec().Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, g.Nodes.Keys())

	b, _ := g.Nodes.Get("b")
	assert.Equal(t, []any{1, 2}, b.Value)

	a, _ := g.Nodes.Get("a")
	assert.Equal(t, []string{"zeta", "alpha"}, a.Inputs.Keys())
	v, _ := a.Inputs.Get("alpha")
	assert.Equal(t, map[string]any{"nested": true}, v)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		format string
		src    string
	}{
		{"json", `{"nodes": `},
		{"json", `{"nodes": {"a": {}, "a": {}}}`},
		{"yaml", "nodes: [1, 2]"},
		{"yaml", "nodes: {}\nunknown: 1\n"},
		{"hcl", `node "a" {`},
		{"hcl", `node "a" { color = "red" }`},
		{"hcl", "node \"a\" {}\nnode \"a\" {}\n"},
		{"hcl", `node "a" { agent = var.x }`},
	}
	for _, tt := range tests {
		t.Run(tt.format+"/"+tt.src, func(t *testing.T) {
			c, err := ForFormat(tt.format)
			require.NoError(t, err)
			_, err = c.Parse(strings.NewReader(tt.src))
			assert.ErrorIs(t, err, domain.ErrMalformedData)
		})
	}
}

func TestHCLExportRejectsBadInputName(t *testing.T) {
	g := &domain.GraphData{Nodes: domain.Ordered[domain.NodeData]{
		{Key: "a", Value: domain.NodeData{Agent: "echoAgent", Inputs: domain.Ordered[any]{{Key: "not an ident", Value: 1}}}},
	}}
	var buf bytes.Buffer
	assert.Error(t, NewHCLCodec().Export(g, &buf))
}

func TestForPath(t *testing.T) {
	for path, want := range map[string]string{
		"graph.json": "json",
		"graph.yaml": "yaml",
		"graph.yml":  "yaml",
		"graph.hcl":  "hcl",
	} {
		c, err := ForPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, c.Format())
	}

	_, err := ForPath("graph")
	assert.Error(t, err)
	_, err = ForPath("graph.xml")
	assert.Error(t, err)
}

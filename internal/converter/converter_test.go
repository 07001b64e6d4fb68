package converter

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphedit/internal/domain"
)

const chatGraph = `{
  "version": 0.5,
  "loop": {"while": ":continue"},
  "nodes": {
    "continue": {"value": true, "update": ":checkInput"},
    "messages": {"value": [], "update": ":reducer.array"},
    "userInput": {"agent": "textInputAgent", "params": {"message": "You:"}},
    "checkInput": {
      "agent": "compareAgent",
      "inputs": {"array": [":userInput.text", "!=", "/bye"]}
    },
    "llm": {
      "agent": "openAIAgent",
      "inputs": {"messages": ":messages", "prompt": ":userInput.text"},
      "isResult": true
    },
    "reducer": {
      "agent": "pushAgent",
      "inputs": {"array": ":messages", "item": ":llm.message"}
    }
  }
}`

const nestedGraph = `{
  "version": 0.5,
  "nodes": {
    "source": {"value": ["a", "b"]},
    "mapper": {
      "agent": "mapAgent",
      "inputs": {"rows": ":source"},
      "params": {"compositeResult": true},
      "graph": {
        "version": 0.5,
        "loop": {"count": 2},
        "nodes": {
          "echo": {"agent": "echoAgent", "inputs": {"text": ":row"}},
          "upper": {"agent": "stringCaseVariantsAgent", "inputs": {"text": ":echo.text"}, "isResult": true}
        }
      }
    },
    "sink": {"agent": "copyAgent", "inputs": {"value": ":mapper.upper"}}
  }
}`

func mustParse(t *testing.T, s string) *domain.GraphData {
	t.Helper()
	var g domain.GraphData
	require.NoError(t, json.Unmarshal([]byte(s), &g))
	return &g
}

var ignoreMetadata = cmp.Options{
	cmpopts.EquateEmpty(),
	cmpopts.IgnoreFields(domain.GraphData{}, "Metadata"),
}

func TestToGUI(t *testing.T) {
	gui, err := ToGUI(mustParse(t, chatGraph))
	require.NoError(t, err)

	t.Run("one node per entry in declared order", func(t *testing.T) {
		var ids []string
		for _, n := range gui.Nodes {
			ids = append(ids, n.ID)
		}
		assert.Equal(t, []string{"continue", "messages", "userInput", "checkInput", "llm", "reducer"}, ids)
	})

	t.Run("references become edges in input order", func(t *testing.T) {
		want := []domain.Edge{
			domain.NewEdge(domain.NewEndpoint("messages", ""), domain.NewEndpoint("llm", "messages")),
			domain.NewEdge(domain.NewEndpoint("userInput", "text"), domain.NewEndpoint("llm", "prompt")),
			domain.NewEdge(domain.NewEndpoint("messages", ""), domain.NewEndpoint("reducer", "array")),
			domain.NewEdge(domain.NewEndpoint("llm", "message"), domain.NewEndpoint("reducer", "item")),
		}
		assert.Equal(t, want, gui.Edges)
	})

	t.Run("non references are literals", func(t *testing.T) {
		n, ok := gui.Node("checkInput")
		require.True(t, ok)
		v, ok := n.Literals.Get("array")
		require.True(t, ok)
		assert.Equal(t, []any{":userInput.text", "!=", "/bye"}, v)
		assert.Equal(t, []string{"array"}, n.Inputs)
	})

	t.Run("static and computed nodes", func(t *testing.T) {
		n, _ := gui.Node("continue")
		assert.True(t, n.IsStatic())
		assert.Equal(t, ":checkInput", n.Update)

		n, _ = gui.Node("llm")
		assert.False(t, n.IsStatic())
		assert.True(t, n.IsResult)
	})

	t.Run("referenced source ports become outputs", func(t *testing.T) {
		n, _ := gui.Node("userInput")
		assert.Equal(t, []string{"text"}, n.Outputs)
	})

	t.Run("default grid layout", func(t *testing.T) {
		assert.Equal(t, domain.DefaultPosition(0), gui.Nodes[0].Position)
		assert.Equal(t, domain.DefaultPosition(5), gui.Nodes[5].Position)
	})

	t.Run("root loop", func(t *testing.T) {
		require.NotNil(t, gui.Loops.Root)
		assert.Equal(t, ":continue", gui.Loops.Root.While)
	})
}

func TestToGUINested(t *testing.T) {
	gui, err := ToGUI(mustParse(t, nestedGraph))
	require.NoError(t, err)

	var ids []string
	for _, n := range gui.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"source", "mapper", "mapper/echo", "mapper/upper", "sink"}, ids)

	grp, ok := gui.Group("mapper")
	require.True(t, ok)
	assert.Equal(t, []string{"mapper/echo", "mapper/upper"}, grp.Members)
	require.NotNil(t, grp.Spec)
	assert.Equal(t, 2, grp.Spec.Count)

	// :row names no sibling, so it stays a literal
	echo, _ := gui.Node("mapper/echo")
	assert.Equal(t, "mapper", echo.LoopID)
	v, ok := echo.Literals.Get("text")
	assert.True(t, ok)
	assert.Equal(t, ":row", v)

	assert.Contains(t, gui.Edges, domain.NewEdge(domain.NewEndpoint("mapper/echo", "text"), domain.NewEndpoint("mapper/upper", "text")))
	assert.Contains(t, gui.Edges, domain.NewEdge(domain.NewEndpoint("mapper", "upper"), domain.NewEndpoint("sink", "value")))
}

func TestToGUIUsesMetadataPositions(t *testing.T) {
	g := mustParse(t, nestedGraph)
	g.Metadata = &domain.Metadata{Positions: map[string]domain.Position{
		"sink":        {X: 500, Y: 60},
		"mapper/echo": {X: 10, Y: 20},
	}}

	gui, err := ToGUI(g)
	require.NoError(t, err)

	n, _ := gui.Node("sink")
	assert.Equal(t, domain.NewPosition(500, 60), n.Position)
	n, _ = gui.Node("mapper/echo")
	assert.Equal(t, domain.NewPosition(10, 20), n.Position)
}

func TestToGUIMalformed(t *testing.T) {
	tests := []struct {
		name  string
		nodes domain.Ordered[domain.NodeData]
	}{
		{"empty key", domain.Ordered[domain.NodeData]{{Key: "", Value: domain.NodeData{Agent: "a"}}}},
		{"key with separator", domain.Ordered[domain.NodeData]{{Key: "a/b", Value: domain.NodeData{Agent: "a"}}}},
		{"key with dot", domain.Ordered[domain.NodeData]{{Key: "a.b", Value: domain.NodeData{Agent: "a"}}}},
		{"duplicate key", domain.Ordered[domain.NodeData]{
			{Key: "a", Value: domain.NodeData{Agent: "a"}},
			{Key: "a", Value: domain.NodeData{Agent: "b"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToGUI(&domain.GraphData{Nodes: tt.nodes})
			assert.True(t, errors.Is(err, domain.ErrMalformedData))
		})
	}

	t.Run("nil description", func(t *testing.T) {
		_, err := ToGUI(nil)
		assert.ErrorIs(t, err, domain.ErrMalformedData)
	})
}

func TestRoundTrip(t *testing.T) {
	for name, src := range map[string]string{"chat": chatGraph, "nested": nestedGraph} {
		t.Run(name, func(t *testing.T) {
			g := mustParse(t, src)
			gui, err := ToGUI(g)
			require.NoError(t, err)

			out, report := ToGraphData(gui)
			require.True(t, report.OK(), report.Err())

			if diff := cmp.Diff(g, out, ignoreMetadata); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, g.Nodes.Keys(), out.Nodes.Keys())
		})
	}
}

func TestRoundTripIsDeterministic(t *testing.T) {
	g := mustParse(t, nestedGraph)
	gui1, err := ToGUI(g)
	require.NoError(t, err)
	gui2, err := ToGUI(g)
	require.NoError(t, err)
	assert.Equal(t, gui1, gui2)

	out1, _ := ToGraphData(gui1)
	out2, _ := ToGraphData(gui2)
	b1, err := json.Marshal(out1)
	require.NoError(t, err)
	b2, err := json.Marshal(out2)
	require.NoError(t, err)
	assert.Equal(t, string(b1), string(b2))
}

func TestToGraphDataWritesPositions(t *testing.T) {
	gui, err := ToGUI(mustParse(t, nestedGraph))
	require.NoError(t, err)
	gui.Nodes[gui.NodeIndex("mapper/upper")].Position = domain.NewPosition(7, 8)

	out, _ := ToGraphData(gui)
	require.NotNil(t, out.Metadata)
	assert.Equal(t, domain.NewPosition(7, 8), out.Metadata.Positions["mapper/upper"])
	assert.Len(t, out.Metadata.Positions, len(gui.Nodes))
}

func TestToGraphDataUsesNames(t *testing.T) {
	gui, err := ToGUI(mustParse(t, chatGraph))
	require.NoError(t, err)
	gui.Nodes[gui.NodeIndex("userInput")].Name = "question"

	out, report := ToGraphData(gui)
	require.True(t, report.OK())
	assert.Contains(t, out.Nodes.Keys(), "question")

	llm, _ := out.Nodes.Get("llm")
	v, _ := llm.Inputs.Get("prompt")
	assert.Equal(t, ":question.text", v)
}

func TestToGraphDataRejections(t *testing.T) {
	a := domain.NewComputedNode("a", "echoAgent", domain.Position{})
	b := domain.NewComputedNode("b", "echoAgent", domain.Position{})
	b.Inputs = []string{"in"}
	grp := domain.NewComputedNode("grp", "nestedAgent", domain.Position{})
	inner := domain.NewComputedNode("grp/inner", "echoAgent", domain.Position{})
	inner.LoopID = "grp"

	gui := domain.GUIData{
		Nodes: []domain.Node{a, b, grp, inner},
		Edges: []domain.Edge{
			domain.NewEdge(domain.NewEndpoint("a", ""), domain.NewEndpoint("b", "in")),
			domain.NewEdge(domain.NewEndpoint("grp", ""), domain.NewEndpoint("b", "in")),
			domain.NewEdge(domain.NewEndpoint("ghost", ""), domain.NewEndpoint("b", "other")),
			domain.NewEdge(domain.NewEndpoint("a", ""), domain.NewEndpoint("grp/inner", "in")),
		},
		Loops: domain.Loops{Groups: []domain.LoopGroup{{ID: "grp"}}},
	}

	out, report := ToGraphData(gui)
	require.Len(t, report.Rejected, 3)
	assert.Equal(t, "port already bound", report.Rejected[0].Reason)
	assert.Equal(t, "missing endpoint", report.Rejected[1].Reason)
	assert.Equal(t, "endpoints in different loop scopes", report.Rejected[2].Reason)
	assert.Error(t, report.Err())

	nd, ok := out.Nodes.Get("b")
	require.True(t, ok)
	v, _ := nd.Inputs.Get("in")
	assert.Equal(t, ":a", v)
	assert.Equal(t, []string{"in"}, nd.Inputs.Keys())
}

func TestToGraphDataRejectsDuplicateNames(t *testing.T) {
	a := domain.NewComputedNode("a", "echoAgent", domain.Position{})
	b := domain.NewComputedNode("b", "echoAgent", domain.Position{})
	b.Name = "a"

	out, report := ToGraphData(domain.GUIData{Nodes: []domain.Node{a, b}})
	assert.Equal(t, []string{"a"}, out.Nodes.Keys())
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, "b", report.Rejected[0].NodeID)
}

func TestToGraphDataRejectsOrphans(t *testing.T) {
	n := domain.NewComputedNode("x", "echoAgent", domain.Position{})
	n.LoopID = "missing"

	out, report := ToGraphData(domain.GUIData{Nodes: []domain.Node{n}})
	assert.Empty(t, out.Nodes)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, "x", report.Rejected[0].NodeID)
}

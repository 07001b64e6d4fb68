package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testGUI() GUIData {
	a := NewComputedNode("a", "echoAgent", Position{})
	loop := NewComputedNode("loop", "nestedAgent", Position{})
	inner := NewComputedNode("loop/inner", "echoAgent", Position{})
	inner.LoopID = "loop"
	inner.Literals.Set("count", 3)
	deep := NewComputedNode("loop/inner/deep", "echoAgent", Position{})
	deep.LoopID = "loop/inner"
	return GUIData{
		Nodes: []Node{a, loop, inner, deep},
		Edges: []Edge{NewEdge(NewEndpoint("a", ""), NewEndpoint("loop", "prompt"))},
		Loops: Loops{Groups: []LoopGroup{{ID: "loop"}, {ID: "loop/inner"}}},
	}
}

func TestGUIDataLookups(t *testing.T) {
	g := testGUI()

	assert.True(t, g.HasNode("a"))
	assert.False(t, g.HasNode("missing"))
	assert.Equal(t, 2, g.NodeIndex("loop/inner"))

	assert.True(t, g.IsBound(NewEndpoint("loop", "prompt")))
	assert.True(t, g.IsBound(NewEndpoint("loop/inner", "count")))
	assert.False(t, g.IsBound(NewEndpoint("loop", "other")))

	assert.Equal(t, "loop", g.ScopeOf("loop/inner"))
	assert.Len(t, g.InScope(""), 2)
}

func TestGUIDataIsAncestor(t *testing.T) {
	g := testGUI()
	assert.True(t, g.IsAncestor("loop", "loop/inner/deep"))
	assert.True(t, g.IsAncestor("loop/inner", "loop/inner/deep"))
	assert.False(t, g.IsAncestor("a", "loop/inner/deep"))
	assert.False(t, g.IsAncestor("loop/inner/deep", "loop"))
}

func TestGUIDataSyncMembers(t *testing.T) {
	g := testGUI()
	g.SyncMembers()

	grp, ok := g.Group("loop")
	assert.True(t, ok)
	assert.Equal(t, []string{"loop/inner"}, grp.Members)

	grp, _ = g.Group("loop/inner")
	assert.Equal(t, []string{"loop/inner/deep"}, grp.Members)
}

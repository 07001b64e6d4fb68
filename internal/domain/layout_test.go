package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPosition(t *testing.T) {
	assert.Equal(t, Position{X: GridOriginX, Y: GridOriginY}, DefaultPosition(0))
	assert.Equal(t, Position{X: GridOriginX + 3*GridSpacingX, Y: GridOriginY}, DefaultPosition(3))
	assert.Equal(t, Position{X: GridOriginX, Y: GridOriginY + GridSpacingY}, DefaultPosition(GridColumns))
}

func TestPortAnchors(t *testing.T) {
	n := Node{
		ID:       "a",
		Position: NewPosition(100, 100),
		Outputs:  []string{"text", "message"},
		Inputs:   []string{"prompt", "system"},
	}

	t.Run("outputs on the right edge", func(t *testing.T) {
		assert.Equal(t, NewPosition(100+NodeWidth, 100+HeaderHeight+0.5*PortRowHeight), n.OutputAnchor("text"))
		assert.Equal(t, NewPosition(100+NodeWidth, 100+HeaderHeight+1.5*PortRowHeight), n.OutputAnchor("message"))
		assert.Equal(t, NewPosition(100+NodeWidth, 100+HeaderHeight/2), n.OutputAnchor(""))
	})

	t.Run("inputs below outputs on the left edge", func(t *testing.T) {
		assert.Equal(t, NewPosition(100, 100+HeaderHeight+2.5*PortRowHeight), n.InputAnchor("prompt"))
		assert.Equal(t, NewPosition(100, 100+HeaderHeight+3.5*PortRowHeight), n.InputAnchor("system"))
	})

	t.Run("height covers every row", func(t *testing.T) {
		assert.Equal(t, HeaderHeight+4*PortRowHeight, n.Height())
	})
}

func TestPositionDistance(t *testing.T) {
	assert.Equal(t, 5.0, NewPosition(0, 0).Distance(NewPosition(3, 4)))
}

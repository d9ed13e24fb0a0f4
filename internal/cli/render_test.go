package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/geost/pkg/geost"
)

func setupWith(t *testing.T, boxes ...geost.ShiftedBox) *geost.Setup {
	t.Helper()
	s := geost.NewSetup(2)
	for _, b := range boxes {
		require.NoError(t, s.AddBox(b))
	}
	return s
}

func TestGridCells(t *testing.T) {
	square := geost.NewShiftedBox(1, []int{0, 0}, []int{2, 2})
	column := geost.NewShiftedBox(2, []int{0, 0}, []int{1, 2})
	top := geost.NewShiftedBox(2, []int{-1, 2}, []int{2, 1})

	tests := []struct {
		name  string
		setup *geost.Setup
		pls   []placement
		want  [][]int
	}{
		{
			name:  "two squares side by side",
			setup: setupWith(t, square),
			pls: []placement{
				{id: 1, shape: 1, origin: geost.Point{0, 0}},
				{id: 2, shape: 1, origin: geost.Point{2, 0}},
			},
			want: [][]int{
				{0, 0, 1, 1},
				{0, 0, 1, 1},
			},
		},
		{
			name:  "L shape reads upward",
			setup: setupWith(t, column, top),
			pls:   []placement{{id: 1, shape: 2, origin: geost.Point{1, 0}}},
			want: [][]int{
				{0, 0},
				{-1, 0},
				{-1, 0},
			},
		},
		{
			name:  "gaps stay empty",
			setup: setupWith(t, geost.NewShiftedBox(1, []int{0, 0}, []int{1, 1})),
			pls: []placement{
				{id: 1, shape: 1, origin: geost.Point{0, 0}},
				{id: 2, shape: 1, origin: geost.Point{2, 1}},
			},
			want: [][]int{
				{-1, -1, 1},
				{0, -1, -1},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gridCells(tt.setup, tt.pls))
		})
	}
}

func TestRenderGrid_OneLetterPerObject(t *testing.T) {
	s := setupWith(t, geost.NewShiftedBox(1, []int{0, 0}, []int{1, 1}))
	out := renderGrid(s, []placement{
		{id: 1, shape: 1, origin: geost.Point{0, 0}},
		{id: 2, shape: 1, origin: geost.Point{2, 0}},
	})
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Equal(t, 1, strings.Count(out, "A"))
	assert.Equal(t, 1, strings.Count(out, "B"))
	assert.Equal(t, 1, strings.Count(out, "."))
}

func TestRenderPlacements(t *testing.T) {
	out := renderPlacements([]placement{
		{id: 3, shape: 1, origin: geost.Point{4, 5}},
		{id: 7, shape: 2, origin: geost.Point{0, 1}},
	})
	for _, want := range []string{"Object", "Origin", "o3", "o7", geost.Point{4, 5}.String()} {
		assert.Contains(t, out, want)
	}
}

func TestGlyph(t *testing.T) {
	assert.Equal(t, 'A', glyph(0))
	assert.Equal(t, 'Z', glyph(25))
	assert.Equal(t, 'A', glyph(26))
}

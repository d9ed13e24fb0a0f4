package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/gitrdm/geost/pkg/geost"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")

	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleOK     = lipgloss.NewStyle().Foreground(colorGreen)
	styleFail   = lipgloss.NewStyle().Foreground(colorRed)

	// glyph colours cycle per object
	palette = []lipgloss.Color{"36", "35", "220", "75", "205", "141", "214", "81"}
)

// placement is the assignment of one object in a solution.
type placement struct {
	id     int
	shape  int
	origin geost.Point
}

// snapshot records the current values of every object. It is taken while
// the store sits on a solution.
func snapshot(objects []*geost.Object) []placement {
	out := make([]placement, len(objects))
	for i, o := range objects {
		out[i] = placement{id: o.ID(), shape: o.ShapeVar().Value(), origin: o.Lower()}
	}
	return out
}

// glyph names the i-th object in a grid.
func glyph(i int) rune { return rune('A' + i%26) }

// gridCells rasterises a 2D solution. Row 0 is the highest y so the grid
// reads with y growing upward. Empty cells hold -1, covered cells the
// index of the object covering them.
func gridCells(setup *geost.Setup, pls []placement) [][]int {
	type cell struct{ x, y int }
	covered := make(map[cell]int)
	first := true
	var minX, minY, maxX, maxY int
	for i, pl := range pls {
		for _, b := range setup.Shape(pl.shape).Boxes {
			for x := pl.origin[0] + b.Offset[0]; x < pl.origin[0]+b.End(0); x++ {
				for y := pl.origin[1] + b.Offset[1]; y < pl.origin[1]+b.End(1); y++ {
					covered[cell{x, y}] = i
					if first {
						minX, maxX, minY, maxY = x, x, y, y
						first = false
					}
					minX, maxX = min(minX, x), max(maxX, x)
					minY, maxY = min(minY, y), max(maxY, y)
				}
			}
		}
	}
	if first {
		return nil
	}
	rows := make([][]int, maxY-minY+1)
	for r := range rows {
		y := maxY - r
		row := make([]int, maxX-minX+1)
		for c := range row {
			if i, ok := covered[cell{minX + c, y}]; ok {
				row[c] = i
			} else {
				row[c] = -1
			}
		}
		rows[r] = row
	}
	return rows
}

// renderGrid draws a 2D solution with one coloured letter per object.
func renderGrid(setup *geost.Setup, pls []placement) string {
	var b strings.Builder
	for _, row := range gridCells(setup, pls) {
		for _, i := range row {
			if i < 0 {
				b.WriteString(styleDim.Render("."))
				continue
			}
			st := lipgloss.NewStyle().Bold(true).Foreground(palette[i%len(palette)])
			b.WriteString(st.Render(string(glyph(i))))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// renderPlacements lists a solution as a table.
func renderPlacements(pls []placement) string {
	rows := make([][]string, len(pls))
	for i, pl := range pls {
		rows[i] = []string{string(glyph(i)), fmt.Sprintf("o%d", pl.id), fmt.Sprint(pl.shape), pl.origin.String()}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleDim).
		Headers("", "Object", "Shape", "Origin").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// renderResults tabulates a scenario batch.
func renderResults(results []scenarioResult) string {
	rows := make([][]string, len(results))
	for i, r := range results {
		expect := "-"
		if r.expect != nil {
			expect = fmt.Sprint(*r.expect)
		}
		status := "ok"
		switch {
		case r.err != nil:
			status = r.err.Error()
		case !r.ok:
			status = "mismatch"
		}
		rows[i] = []string{
			r.name,
			r.variant,
			fmt.Sprint(r.solutions),
			expect,
			fmt.Sprint(r.stats.Episodes),
			fmt.Sprint(r.stats.SweepJumps),
			fmt.Sprintf("%d/%d", r.stats.FramesBuilt, r.stats.FramesReused),
			r.elapsed.String(),
			status,
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleDim).
		Headers("Scenario", "Variant", "Solutions", "Expected", "Episodes", "Jumps", "Frames", "Time", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 8 {
				if results[row].passed() {
					return styleOK
				}
				return styleFail
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

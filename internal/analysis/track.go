package analysis

import (
	"strings"

	"github.com/golang/geo/r2"
)

// Bounds is the box around points, padded by a tenth on each side.
func Bounds(points []r2.Point) r2.Rect {
	if len(points) == 0 {
		return r2.EmptyRect()
	}
	rect := r2.RectFromPoints(points...)
	pad := rect.Size().Mul(0.1)
	if pad.X == 0 {
		pad.X = 1
	}
	if pad.Y == 0 {
		pad.Y = 1
	}
	return rect.Expanded(pad)
}

// TrackToASCII draws the path sailed with the start marked S and the
// finish F. North is up.
func TrackToASCII(points []r2.Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	b := Bounds(points)
	size := b.Size()

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	cell := func(p r2.Point) (int, int, bool) {
		col := int((p.X - b.X.Lo) / size.X * float64(width-1))
		row := height - 1 - int((p.Y-b.Y.Lo)/size.Y*float64(height-1))
		return row, col, row >= 0 && row < height && col >= 0 && col < width
	}

	// axes through the origin when it is in view
	if b.X.Contains(0) {
		if _, col, ok := cell(r2.Point{X: 0, Y: b.Y.Lo}); ok {
			for row := range canvas {
				canvas[row][col] = '│'
			}
		}
	}
	if b.Y.Contains(0) {
		if row, _, ok := cell(r2.Point{X: b.X.Lo, Y: 0}); ok {
			for col := range canvas[row] {
				if canvas[row][col] == '│' {
					canvas[row][col] = '┼'
				} else {
					canvas[row][col] = '─'
				}
			}
		}
	}

	for _, p := range points {
		if row, col, ok := cell(p); ok {
			canvas[row][col] = '•'
		}
	}
	if row, col, ok := cell(points[len(points)-1]); ok {
		canvas[row][col] = 'F'
	}
	if row, col, ok := cell(points[0]); ok {
		canvas[row][col] = 'S'
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

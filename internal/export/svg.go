package export

import (
	"fmt"
	"strings"

	"github.com/golang/geo/r2"

	"github.com/san-kum/sailsim/internal/course"
	"github.com/san-kum/sailsim/internal/viz"
)

const (
	background = "#0a0a0a"
	markColor  = "#ff8800"
)

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	w, h := canvas.Size()
	width, height := float64(w)*scale, float64(h)*scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="#00ff00">
`, width, height, width, height, background)

	r := scale * 0.4
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if canvas.Get(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					float64(x)*scale+scale/2, float64(y)*scale+scale/2, r)
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrackToSVG draws a boat's track and the course marks, scaled to fit
// width x height with a 10% margin. World +Y is up in the image.
func TrackToSVG(points []r2.Point, marks []course.Mark, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	rect := r2.RectFromPoints(points...)
	for _, m := range marks {
		rect = rect.AddPoint(m.Position)
	}
	size := rect.Size()
	if size.X == 0 {
		size.X = 1
	}
	if size.Y == 0 {
		size.Y = 1
	}
	rect = r2.RectFromCenterSize(rect.Center(), size.Mul(1.2))
	size = rect.Size()

	project := func(p r2.Point) (float64, float64) {
		x := (p.X - rect.X.Lo) / size.X * float64(width)
		y := float64(height) - (p.Y-rect.Y.Lo)/size.Y*float64(height)
		return x, y
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)

	for _, m := range marks {
		x, y := project(m.Position)
		r := m.Radius / size.X * float64(width)
		fmt.Fprintf(&sb, "<circle class=\"mark\" cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", x, y, max(r, 2), markColor)
	}

	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)
	for i, p := range points {
		x, y := project(p)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")

	x, y := project(points[len(points)-1])
	fmt.Fprintf(&sb, "<circle class=\"boat\" cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n", x, y, strokeColor)
	sb.WriteString("</svg>")
	return sb.String()
}

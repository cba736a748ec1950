package render

import (
	"bytes"
	"fmt"

	"github.com/classmap/runtime/internal/dataset"
	"github.com/classmap/runtime/pkg/dashboard"
)

// Heatmap geometry, in SVG user units.
const (
	heatmapCellWidth  = 44
	heatmapCellHeight = 28
	heatmapMarginLeft = 80
	heatmapMarginTop  = 60
)

// HeatmapRenderer renders the classification x age-band percentage grid as
// an SVG heatmap. Cell shading follows the row-normalized percentage, and
// each cell carries its value as text.
type HeatmapRenderer struct{}

// NewHeatmapRenderer creates a heatmap renderer.
func NewHeatmapRenderer(deps Deps) Renderer {
	return &HeatmapRenderer{}
}

func (r *HeatmapRenderer) Type() string        { return "heatmap" }
func (r *HeatmapRenderer) ContentType() string { return ContentTypeSVG }

// Render produces the heatmap SVG. An empty cross-tab renders a placeholder
// message rather than failing — an empty subset is a valid dashboard state.
func (r *HeatmapRenderer) Render(data *dashboard.DashboardData) ([]byte, error) {
	ct := data.CrossTab
	if len(ct.Rows) == 0 || len(ct.Columns) == 0 {
		return emptyViewSVG("no records match the current selection"), nil
	}

	width := heatmapMarginLeft + len(ct.Columns)*heatmapCellWidth + 20
	height := heatmapMarginTop + len(ct.Rows)*heatmapCellHeight + 20

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		width, height, width, height)
	fmt.Fprintf(&buf, `<text x="%d" y="24" font-size="15" font-family="sans-serif">Age distribution by classification (%%)</text>`,
		heatmapMarginLeft)

	for j, col := range ct.Columns {
		x := heatmapMarginLeft + j*heatmapCellWidth + heatmapCellWidth/2
		fmt.Fprintf(&buf, `<text x="%d" y="%d" font-size="10" font-family="sans-serif" text-anchor="middle">%s</text>`,
			x, heatmapMarginTop-8, col)
	}

	for i, row := range ct.Rows {
		y := heatmapMarginTop + i*heatmapCellHeight
		fmt.Fprintf(&buf, `<text x="%d" y="%d" font-size="11" font-family="sans-serif" text-anchor="end">%s</text>`,
			heatmapMarginLeft-8, y+heatmapCellHeight/2+4, dataset.FormatClassification(row))

		for j := range ct.Columns {
			value := ct.Cells[i][j]
			x := heatmapMarginLeft + j*heatmapCellWidth
			fmt.Fprintf(&buf, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="#ffffff"/>`,
				x, y, heatmapCellWidth, heatmapCellHeight, fillColor(value))
			fmt.Fprintf(&buf, `<text x="%d" y="%d" font-size="9" font-family="sans-serif" text-anchor="middle" fill="%s">%.1f</text>`,
				x+heatmapCellWidth/2, y+heatmapCellHeight/2+3, cellTextColor(value), value)
		}
	}

	buf.WriteString(`</svg>`)
	return buf.Bytes(), nil
}

// cellTextColor keeps cell labels readable against the shading ramp.
func cellTextColor(value float64) string {
	if value > 60 {
		return "#ffffff"
	}
	return "#333333"
}

// emptyViewSVG renders a placeholder panel with a message.
func emptyViewSVG(message string) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="480" height="120" viewBox="0 0 480 120">`)
	buf.WriteString(`<rect x="0" y="0" width="480" height="120" fill="#f8f8f8" stroke="#cccccc"/>`)
	fmt.Fprintf(&buf, `<text x="240" y="64" font-size="13" font-family="sans-serif" text-anchor="middle" fill="#666666">%s</text>`, message)
	buf.WriteString(`</svg>`)
	return buf.Bytes()
}

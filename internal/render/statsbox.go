package render

import (
	"bytes"
	"fmt"

	"github.com/classmap/runtime/pkg/dashboard"
)

// StatsBoxRenderer renders the scalar summary as a compact SVG panel.
type StatsBoxRenderer struct{}

// NewStatsBoxRenderer creates a stats box renderer.
func NewStatsBoxRenderer(deps Deps) Renderer {
	return &StatsBoxRenderer{}
}

func (r *StatsBoxRenderer) Type() string        { return "stats" }
func (r *StatsBoxRenderer) ContentType() string { return ContentTypeSVG }

// Render produces the stats panel SVG.
func (r *StatsBoxRenderer) Render(data *dashboard.DashboardData) ([]byte, error) {
	s := data.Stats

	var buf bytes.Buffer
	buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="360" height="140" viewBox="0 0 360 140">`)
	buf.WriteString(`<rect x="0" y="0" width="360" height="140" rx="6" fill="#ffffff" stroke="#cccccc"/>`)
	buf.WriteString(`<text x="20" y="32" font-size="14" font-family="sans-serif" font-weight="bold">Selection summary</text>`)
	fmt.Fprintf(&buf, `<text x="20" y="64" font-size="12" font-family="sans-serif">Records: %d</text>`, s.Total)
	fmt.Fprintf(&buf, `<text x="20" y="88" font-size="12" font-family="sans-serif">Matching: %d</text>`, s.Matching)
	fmt.Fprintf(&buf, `<text x="20" y="112" font-size="12" font-family="sans-serif">Share: %.1f%%</text>`, s.Percent)
	buf.WriteString(`</svg>`)
	return buf.Bytes(), nil
}

// Package render turns derived dashboard tables into viewable artifacts:
// SVG documents for the heatmap, choropleth, and stats box, an SVG bar
// chart for the top counties, and the HTML dashboard page that embeds
// them. Renderers are pure with respect to their input data; the same
// DashboardData always produces the same bytes.
package render

import (
	"fmt"

	"github.com/classmap/runtime/internal/boundary"
	"github.com/classmap/runtime/pkg/dashboard"
)

// Error codes for rendering
const (
	ErrCodeRenderFailed = "RENDER_FAILED"
)

// Content types produced by renderers.
const (
	ContentTypeSVG  = "image/svg+xml"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// Renderer produces one view of the dashboard data.
type Renderer interface {
	// Type returns the renderer's type string ("heatmap", "choropleth", ...).
	Type() string

	// ContentType returns the MIME type of the rendered bytes.
	ContentType() string

	// Render produces the view for one pipeline result.
	Render(data *dashboard.DashboardData) ([]byte, error)
}

// Deps carries the shared resources renderers draw on. The boundary
// catalog may be nil for renderers that do not draw geometry.
type Deps struct {
	Catalog *boundary.Catalog
}

// fillColor maps a 0-100 value onto a white-to-blue ramp, returning a CSS
// hex color. Values outside the range clamp.
func fillColor(value float64) string {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	t := value / 100
	r := int(255 - t*(255-33))
	g := int(255 - t*(255-102))
	b := int(255 - t*(255-172))
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

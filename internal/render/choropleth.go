package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/twpayne/go-geom"

	"github.com/classmap/runtime/internal/boundary"
	"github.com/classmap/runtime/internal/errhandling"
	"github.com/classmap/runtime/pkg/dashboard"
)

// Choropleth viewport, in SVG user units.
const (
	choroplethWidth  = 760
	choroplethHeight = 520
	choroplethMargin = 16
)

// defaultTooltipTemplate labels each county shape.
const defaultTooltipTemplate = `{{name}} ({{code}}): {{percent}}% of {{total}}`

// ChoroplethRenderer renders the per-county aggregate as an SVG map. Unit
// polygons come from the boundary catalog; shading follows the unit
// percentage on a 0-100 scale. Units present in the data but absent from
// the catalog are listed beneath the map instead of drawn.
type ChoroplethRenderer struct {
	catalog *boundary.Catalog
	tooltip *TooltipEvaluator
}

// NewChoroplethRenderer creates a choropleth renderer over a boundary
// catalog.
func NewChoroplethRenderer(deps Deps) Renderer {
	return &ChoroplethRenderer{
		catalog: deps.Catalog,
		tooltip: NewTooltipEvaluator(),
	}
}

func (r *ChoroplethRenderer) Type() string        { return "choropleth" }
func (r *ChoroplethRenderer) ContentType() string { return ContentTypeSVG }

// Render produces the map SVG.
func (r *ChoroplethRenderer) Render(data *dashboard.DashboardData) ([]byte, error) {
	if r.catalog == nil {
		return nil, errhandling.NewRenderError(ErrCodeRenderFailed,
			"choropleth renderer has no boundary catalog", nil)
	}

	proj := newProjection(r.catalog.Bounds())

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		choroplethWidth, choroplethHeight, choroplethWidth, choroplethHeight)

	var unmapped []dashboard.GeoUnit
	for _, unit := range data.Geo.Units {
		if !unit.HasGeometry {
			unmapped = append(unmapped, unit)
			continue
		}
		bu, ok := r.catalog.Get(unit.Code)
		if !ok {
			unmapped = append(unmapped, unit)
			continue
		}

		tooltip := r.tooltip.Evaluate(defaultTooltipTemplate, tooltipFields(unit))
		fmt.Fprintf(&buf, `<g fill="%s" stroke="#666666" stroke-width="0.5">`, fillColor(unit.Percent))
		fmt.Fprintf(&buf, `<title>%s</title>`, html.EscapeString(tooltip))
		for _, polygon := range bu.Polygons {
			buf.WriteString(`<path d="`)
			writePolygonPath(&buf, polygon, proj)
			buf.WriteString(`"/>`)
		}
		buf.WriteString(`</g>`)
	}

	if len(unmapped) > 0 {
		fmt.Fprintf(&buf, `<text x="%d" y="%d" font-size="10" font-family="sans-serif" fill="#666666">unmapped: `,
			choroplethMargin, choroplethHeight-8)
		for i, unit := range unmapped {
			if i > 0 {
				buf.WriteString(", ")
			}
			fmt.Fprintf(&buf, "%s (%d)", html.EscapeString(unit.Name), unit.Total)
		}
		buf.WriteString(`</text>`)
	}

	buf.WriteString(`</svg>`)
	return buf.Bytes(), nil
}

// projection maps lon/lat onto the SVG viewport. Plate carrée with a
// uniform scale on both axes, fitted to the catalog bounds.
type projection struct {
	minLon, maxLat float64
	scale          float64
	offsetX        float64
	offsetY        float64
}

func newProjection(b *geom.Bounds) projection {
	spanLon := b.Max(0) - b.Min(0)
	spanLat := b.Max(1) - b.Min(1)
	if spanLon <= 0 {
		spanLon = 1
	}
	if spanLat <= 0 {
		spanLat = 1
	}

	usableW := float64(choroplethWidth - 2*choroplethMargin)
	usableH := float64(choroplethHeight - 2*choroplethMargin)
	scale := usableW / spanLon
	if s := usableH / spanLat; s < scale {
		scale = s
	}

	return projection{
		minLon:  b.Min(0),
		maxLat:  b.Max(1),
		scale:   scale,
		offsetX: choroplethMargin + (usableW-spanLon*scale)/2,
		offsetY: choroplethMargin + (usableH-spanLat*scale)/2,
	}
}

// project converts one lon/lat coordinate to viewport x/y. Latitude grows
// north, SVG y grows down.
func (p projection) project(lon, lat float64) (float64, float64) {
	return p.offsetX + (lon-p.minLon)*p.scale, p.offsetY + (p.maxLat-lat)*p.scale
}

// writePolygonPath emits SVG path data for every ring of a polygon.
func writePolygonPath(buf *bytes.Buffer, polygon *geom.Polygon, proj projection) {
	for ring := 0; ring < polygon.NumLinearRings(); ring++ {
		coords := polygon.LinearRing(ring).Coords()
		for i, c := range coords {
			x, y := proj.project(c[0], c[1])
			if i == 0 {
				fmt.Fprintf(buf, "M%.1f %.1f", x, y)
			} else {
				fmt.Fprintf(buf, "L%.1f %.1f", x, y)
			}
		}
		buf.WriteString("Z")
	}
}

// tooltipFields exposes a unit's values to the tooltip template.
func tooltipFields(unit dashboard.GeoUnit) map[string]interface{} {
	return map[string]interface{}{
		"code":     unit.Code,
		"name":     unit.Name,
		"total":    unit.Total,
		"matching": unit.Matching,
		"percent":  unit.Percent,
	}
}

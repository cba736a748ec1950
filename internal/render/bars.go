package render

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/classmap/runtime/internal/errhandling"
	"github.com/classmap/runtime/pkg/dashboard"
)

// barsTopN caps how many counties the bar chart shows.
const barsTopN = 15

// BarsRenderer renders the counties with the highest percentages as an SVG
// bar chart. Counties with no records are skipped; ties break by code so
// the chart is deterministic.
type BarsRenderer struct{}

// NewBarsRenderer creates a bar chart renderer.
func NewBarsRenderer(deps Deps) Renderer {
	return &BarsRenderer{}
}

func (r *BarsRenderer) Type() string        { return "bars" }
func (r *BarsRenderer) ContentType() string { return ContentTypeSVG }

// Render produces the bar chart SVG.
func (r *BarsRenderer) Render(data *dashboard.DashboardData) ([]byte, error) {
	units := make([]dashboard.GeoUnit, 0, len(data.Geo.Units))
	for _, u := range data.Geo.Units {
		if u.Total > 0 {
			units = append(units, u)
		}
	}
	if len(units) == 0 {
		return emptyViewSVG("no counties with records in the current selection"), nil
	}

	sort.Slice(units, func(i, j int) bool {
		if units[i].Percent != units[j].Percent {
			return units[i].Percent > units[j].Percent
		}
		return units[i].Code < units[j].Code
	})
	if len(units) > barsTopN {
		units = units[:barsTopN]
	}

	bars := make([]chart.Value, len(units))
	for i, u := range units {
		bars[i] = chart.Value{
			Label: u.Name,
			Value: u.Percent,
		}
	}

	graph := chart.BarChart{
		Title:    "Top counties (%)",
		Width:    760,
		Height:   360,
		BarWidth: 32,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return nil, errhandling.NewRenderError(ErrCodeRenderFailed,
			fmt.Sprintf("bar chart render failed: %v", err), err)
	}
	return buf.Bytes(), nil
}

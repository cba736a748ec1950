package registry

import (
	"fmt"
	"log/slog"

	"github.com/classmap/runtime/internal/logger"
	"github.com/classmap/runtime/internal/render"
	"github.com/classmap/runtime/pkg/dashboard"
)

// Built-in view type names.
const (
	TypeHeatmap    = "heatmap"
	TypeChoropleth = "choropleth"
	TypeBars       = "bars"
	TypeStats      = "stats"
)

func init() {
	Register(TypeHeatmap, render.NewHeatmapRenderer)
	Register(TypeChoropleth, render.NewChoroplethRenderer)
	Register(TypeBars, render.NewBarsRenderer)
	Register(TypeStats, render.NewStatsBoxRenderer)
}

// stubRenderer stands in for unknown view types. It logs its invocation
// and renders a placeholder panel naming the missing type, so a dashboard
// with a misconfigured view still renders the rest.
type stubRenderer struct {
	viewType string
}

func newStubRenderer(viewType string) render.Renderer {
	return &stubRenderer{viewType: viewType}
}

func (s *stubRenderer) Type() string        { return s.viewType }
func (s *stubRenderer) ContentType() string { return render.ContentTypeSVG }

func (s *stubRenderer) Render(data *dashboard.DashboardData) ([]byte, error) {
	logger.Warn("stub renderer invoked for unknown view type",
		slog.String("view_type", s.viewType),
	)
	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="480" height="120" viewBox="0 0 480 120">`+
		`<rect x="0" y="0" width="480" height="120" fill="#fff4e5" stroke="#e0a800"/>`+
		`<text x="240" y="64" font-size="13" font-family="sans-serif" text-anchor="middle" fill="#8a6d00">view type %q is not implemented</text>`+
		`</svg>`, s.viewType)
	return []byte(svg), nil
}

package registry

import (
	"strings"
	"testing"

	"github.com/classmap/runtime/internal/render"
	"github.com/classmap/runtime/pkg/dashboard"
)

// TestBuiltinsRegistered tests that the built-in view types resolve.
func TestBuiltinsRegistered(t *testing.T) {
	for _, viewType := range []string{TypeHeatmap, TypeChoropleth, TypeBars, TypeStats} {
		if Get(viewType) == nil {
			t.Errorf("built-in view %q not registered", viewType)
		}
	}
}

// TestBuildKnownType tests that Build returns the real renderer.
func TestBuildKnownType(t *testing.T) {
	r := Build(TypeHeatmap, render.Deps{})
	if r.Type() != TypeHeatmap {
		t.Errorf("Type() = %q, want %q", r.Type(), TypeHeatmap)
	}
	if r.ContentType() != render.ContentTypeSVG {
		t.Errorf("ContentType() = %q", r.ContentType())
	}
}

// TestBuildUnknownFallsBackToStub tests the stub fallback for unknown
// view types.
func TestBuildUnknownFallsBackToStub(t *testing.T) {
	r := Build("sparkline", render.Deps{})
	if r.Type() != "sparkline" {
		t.Errorf("Type() = %q, want sparkline", r.Type())
	}

	out, err := r.Render(&dashboard.DashboardData{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(out), "sparkline") {
		t.Error("stub output should name the missing view type")
	}
	if !strings.Contains(string(out), "not implemented") {
		t.Error("stub output should say the view is not implemented")
	}
}

// TestRegisterOverwrite tests that re-registering a type replaces the
// constructor.
func TestRegisterOverwrite(t *testing.T) {
	const viewType = "overwrite-test"
	t.Cleanup(func() {
		Clear()
		Register(TypeHeatmap, render.NewHeatmapRenderer)
		Register(TypeChoropleth, render.NewChoroplethRenderer)
		Register(TypeBars, render.NewBarsRenderer)
		Register(TypeStats, render.NewStatsBoxRenderer)
	})

	Register(viewType, render.NewHeatmapRenderer)
	Register(viewType, render.NewStatsBoxRenderer)

	r := Build(viewType, render.Deps{})
	if r.Type() != TypeStats {
		t.Errorf("Type() = %q, want the second registration to win", r.Type())
	}
}

// TestListTypes tests the sorted type listing.
func TestListTypes(t *testing.T) {
	types := ListTypes()
	if len(types) < 4 {
		t.Fatalf("ListTypes() = %v, want at least the 4 builtins", types)
	}
	for i := 1; i < len(types); i++ {
		if types[i-1] >= types[i] {
			t.Errorf("types not sorted: %v", types)
		}
	}
}

// Package boundary loads the geographic boundary reference: a GeoJSON
// FeatureCollection of county polygons keyed by GEOID. The catalog is the
// authoritative unit list for the geographic aggregate — units with zero
// records still render, and unit identifiers are opaque strings throughout.
package boundary

import (
	"fmt"
	"os"
	"sort"
	"strings"

	geojson "github.com/paulmach/go.geojson"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/classmap/runtime/internal/errhandling"
	"github.com/classmap/runtime/internal/pathutil"
)

// Error codes for catalog loading
const (
	ErrCodeCatalogLoadFailed = "CATALOG_LOAD_FAILED"
	ErrCodeCatalogInvalid    = "CATALOG_INVALID"
	ErrCodeCatalogEmpty      = "CATALOG_EMPTY"
)

// Property names read from catalog features (TIGER/Line conventions).
const (
	propGEOID   = "GEOID"
	propName    = "NAME"
	propStateFP = "STATEFP"
)

// Unit is one geographic unit of the catalog.
type Unit struct {
	// Code is the opaque unit identifier (GEOID).
	Code string

	// Name is the human-readable unit name.
	Name string

	// Polygons holds the unit's geometry; MultiPolygon features contribute
	// several entries.
	Polygons []*geom.Polygon

	// Bounds is the unit's bounding box in lon/lat.
	Bounds *geom.Bounds

	// Centroid is the unit's centroid, used for label placement.
	Centroid geom.Coord
}

// Catalog is the loaded boundary reference for one state.
type Catalog struct {
	stateFIPS string
	units     []Unit
	byCode    map[string]int
	bounds    *geom.Bounds
}

// Load reads a GeoJSON FeatureCollection and keeps features belonging to
// the given state FIPS (STATEFP property, or GEOID prefix when absent).
// FIPS codes are opaque strings; "01" and "1" are different codes.
func Load(path, stateFIPS string) (*Catalog, error) {
	if err := pathutil.ValidateFilePath(path); err != nil {
		return nil, errhandling.NewInputError(ErrCodeCatalogLoadFailed, err.Error(), err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errhandling.NewIOError(ErrCodeCatalogLoadFailed,
			fmt.Sprintf("reading boundary catalog %s", path), err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(content)
	if err != nil {
		return nil, errhandling.NewSchemaError(ErrCodeCatalogInvalid,
			fmt.Sprintf("parsing boundary catalog %s: %v", path, err), err)
	}

	catalog := &Catalog{
		stateFIPS: stateFIPS,
		byCode:    make(map[string]int),
		bounds:    geom.NewBounds(geom.XY),
	}

	for i, feature := range fc.Features {
		unit, ok, err := featureToUnit(feature, stateFIPS)
		if err != nil {
			return nil, errhandling.NewSchemaError(ErrCodeCatalogInvalid,
				fmt.Sprintf("catalog feature %d: %v", i, err), err)
		}
		if !ok {
			continue
		}
		if _, dup := catalog.byCode[unit.Code]; dup {
			continue
		}
		catalog.byCode[unit.Code] = len(catalog.units)
		catalog.units = append(catalog.units, unit)
		catalog.bounds.Extend(unit.Bounds.Polygon())
	}

	if len(catalog.units) == 0 {
		return nil, errhandling.NewSchemaError(ErrCodeCatalogEmpty,
			fmt.Sprintf("boundary catalog %s has no features for state FIPS %q", path, stateFIPS), nil)
	}

	sort.Slice(catalog.units, func(i, j int) bool {
		return catalog.units[i].Code < catalog.units[j].Code
	})
	for i, u := range catalog.units {
		catalog.byCode[u.Code] = i
	}

	return catalog, nil
}

// featureToUnit converts one GeoJSON feature, reporting ok=false when the
// feature belongs to another state.
func featureToUnit(feature *geojson.Feature, stateFIPS string) (Unit, bool, error) {
	code, _ := feature.Properties[propGEOID].(string)
	if code == "" {
		return Unit{}, false, fmt.Errorf("feature has no %s property", propGEOID)
	}

	if stateFP, ok := feature.Properties[propStateFP].(string); ok {
		if stateFP != stateFIPS {
			return Unit{}, false, nil
		}
	} else if !strings.HasPrefix(code, stateFIPS) {
		return Unit{}, false, nil
	}

	name, _ := feature.Properties[propName].(string)
	if name == "" {
		name = code
	}

	polygons, err := geometryToPolygons(feature.Geometry)
	if err != nil {
		return Unit{}, false, fmt.Errorf("unit %s: %w", code, err)
	}
	if len(polygons) == 0 {
		return Unit{}, false, fmt.Errorf("unit %s has no polygon geometry", code)
	}

	bounds := geom.NewBounds(geom.XY)
	for _, p := range polygons {
		bounds.Extend(p)
	}

	centroid, err := xy.Centroid(polygons[0])
	if err != nil {
		// Degenerate ring; fall back to the bounds center.
		centroid = geom.Coord{
			(bounds.Min(0) + bounds.Max(0)) / 2,
			(bounds.Min(1) + bounds.Max(1)) / 2,
		}
	}

	return Unit{
		Code:     code,
		Name:     name,
		Polygons: polygons,
		Bounds:   bounds,
		Centroid: centroid,
	}, true, nil
}

// geometryToPolygons converts a GeoJSON Polygon or MultiPolygon geometry
// into go-geom polygons.
func geometryToPolygons(g *geojson.Geometry) ([]*geom.Polygon, error) {
	if g == nil {
		return nil, fmt.Errorf("missing geometry")
	}

	switch {
	case g.IsPolygon():
		p, err := ringsToPolygon(g.Polygon)
		if err != nil {
			return nil, err
		}
		return []*geom.Polygon{p}, nil

	case g.IsMultiPolygon():
		polygons := make([]*geom.Polygon, 0, len(g.MultiPolygon))
		for _, rings := range g.MultiPolygon {
			p, err := ringsToPolygon(rings)
			if err != nil {
				return nil, err
			}
			polygons = append(polygons, p)
		}
		return polygons, nil

	default:
		return nil, fmt.Errorf("unsupported geometry type %s", g.Type)
	}
}

// ringsToPolygon converts GeoJSON ring coordinates to a go-geom polygon.
func ringsToPolygon(rings [][][]float64) (*geom.Polygon, error) {
	if len(rings) == 0 {
		return nil, fmt.Errorf("polygon has no rings")
	}

	coords := make([][]geom.Coord, len(rings))
	for i, ring := range rings {
		coords[i] = make([]geom.Coord, len(ring))
		for j, pt := range ring {
			if len(pt) < 2 {
				return nil, fmt.Errorf("ring %d point %d has %d ordinates", i, j, len(pt))
			}
			coords[i][j] = geom.Coord{pt[0], pt[1]}
		}
	}

	polygon := geom.NewPolygon(geom.XY)
	if _, err := polygon.SetCoords(coords); err != nil {
		return nil, fmt.Errorf("building polygon: %w", err)
	}
	return polygon, nil
}

// Units returns every unit, sorted by code.
func (c *Catalog) Units() []Unit {
	return c.units
}

// Get returns the unit for a code.
func (c *Catalog) Get(code string) (Unit, bool) {
	idx, ok := c.byCode[code]
	if !ok {
		return Unit{}, false
	}
	return c.units[idx], true
}

// Len returns the number of units.
func (c *Catalog) Len() int {
	return len(c.units)
}

// Bounds returns the catalog's overall bounding box in lon/lat.
func (c *Catalog) Bounds() *geom.Bounds {
	return c.bounds
}

// StateFIPS returns the FIPS code the catalog was filtered to.
func (c *Catalog) StateFIPS() string {
	return c.stateFIPS
}

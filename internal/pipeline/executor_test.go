package pipeline

import (
	"context"
	"reflect"
	"testing"

	"github.com/classmap/runtime/internal/dataset"
	"github.com/classmap/runtime/internal/errhandling"
	"github.com/classmap/runtime/internal/filter"
	"github.com/classmap/runtime/pkg/dashboard"
)

// tableSource serves a fixed table, switchable between loads.
type tableSource struct {
	table dataset.Table
}

func (s *tableSource) Fetch(ctx context.Context) (dataset.Table, error) {
	return s.table, nil
}

func (s *tableSource) Close() error { return nil }

func pipelineTable() dataset.Table {
	return dataset.Table{
		{Classification: 1, Age: 27, AgeBand: "25-29", County: "Fairfax", CountyCode: "51059", State: "VA"},
		{Classification: 1, Age: 3, AgeBand: "0-4", County: "Accomack", CountyCode: "51001", State: "VA"},
		{Classification: 0, Age: 27, AgeBand: "25-29", County: "Fairfax", CountyCode: "51059", State: "VA"},
		{Classification: 0, Age: 80, AgeBand: "80-84", County: "Juneau", CountyCode: "02110", State: "AK"},
	}
}

func testExecutor(t *testing.T, source *tableSource) *Executor {
	t.Helper()
	store := dataset.NewStore(source, "test.csv")
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("store.Load: %v", err)
	}
	return NewExecutor(store, nil, nil, "VA", 1)
}

// TestRunDerivesAllTables tests that a run fills every derived table.
func TestRunDerivesAllTables(t *testing.T) {
	e := testExecutor(t, &tableSource{table: pipelineTable()})

	data, metrics, err := e.Run(context.Background(), dashboard.Selection{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if data.Subset != 4 || data.Stats.Total != 4 || data.Stats.Matching != 2 {
		t.Errorf("stats = %+v subset = %d", data.Stats, data.Subset)
	}
	if len(data.CrossTab.Rows) != 2 {
		t.Errorf("cross-tab rows = %v", data.CrossTab.Rows)
	}
	// VA restriction drops the AK county from the aggregate.
	for _, u := range data.Geo.Units {
		if u.Code == "02110" {
			t.Error("geo aggregate should be restricted to VA")
		}
	}
	if metrics.FromCache {
		t.Error("first run should not come from cache")
	}
}

// TestRunIdempotent tests that identical selections yield identical data.
func TestRunIdempotent(t *testing.T) {
	e := testExecutor(t, &tableSource{table: pipelineTable()})
	sel := dashboard.Selection{Classification: "1"}

	first, _, err := e.Run(context.Background(), sel)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, metrics, err := e.Run(context.Background(), sel)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !metrics.FromCache {
		t.Error("second identical run should hit the memo table")
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("identical runs should yield identical data")
	}
}

// TestRunEquivalentSelectionsShareCache tests that "All" and "" selections
// share one memo entry.
func TestRunEquivalentSelectionsShareCache(t *testing.T) {
	e := testExecutor(t, &tableSource{table: pipelineTable()})

	if _, _, err := e.Run(context.Background(), dashboard.Selection{Classification: "All"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	_, metrics, err := e.Run(context.Background(), dashboard.Selection{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !metrics.FromCache {
		t.Error("equivalent selection should hit the memo table")
	}
}

// TestRunReloadInvalidates tests that a dataset reload forces
// recomputation with the new table.
func TestRunReloadInvalidates(t *testing.T) {
	source := &tableSource{table: pipelineTable()}
	e := testExecutor(t, source)
	sel := dashboard.Selection{}

	first, _, err := e.Run(context.Background(), sel)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if first.Subset != 4 {
		t.Fatalf("subset = %d, want 4", first.Subset)
	}

	source.table = pipelineTable()[:2]
	if err := e.Store().Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	second, metrics, err := e.Run(context.Background(), sel)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if metrics.FromCache {
		t.Error("run after reload should not come from cache")
	}
	if second.Subset != 2 {
		t.Errorf("subset = %d, want 2 from the reloaded table", second.Subset)
	}
}

// TestRunInvalidSelection tests that bad filter values propagate as input
// errors.
func TestRunInvalidSelection(t *testing.T) {
	e := testExecutor(t, &tableSource{table: pipelineTable()})

	_, _, err := e.Run(context.Background(), dashboard.Selection{Classification: "abc"})
	if err == nil {
		t.Fatal("Run should fail for a non-numeric classification")
	}
	if got := errhandling.GetCategory(err); got != errhandling.CategoryInput {
		t.Errorf("category = %s, want input", got)
	}
}

// TestRunCancelledContext tests early exit on a cancelled context.
func TestRunCancelledContext(t *testing.T) {
	e := testExecutor(t, &tableSource{table: pipelineTable()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := e.Run(ctx, dashboard.Selection{}); err == nil {
		t.Error("Run should fail on a cancelled context")
	}
}

// TestRunAdHoc tests the uncached path with an extra predicate.
func TestRunAdHoc(t *testing.T) {
	e := testExecutor(t, &tableSource{table: pipelineTable()})

	where, err := filter.NewWhere(`age >= 18`)
	if err != nil {
		t.Fatalf("NewWhere: %v", err)
	}

	data, metrics, err := e.RunAdHoc(context.Background(), dashboard.Selection{}, where)
	if err != nil {
		t.Fatalf("RunAdHoc: %v", err)
	}
	if data.Subset != 3 {
		t.Errorf("subset = %d, want 3 adults", data.Subset)
	}
	if metrics.FromCache {
		t.Error("ad-hoc runs never come from cache")
	}

	// Repeating the run must not consult or populate the memo table.
	if _, _, size := e.CacheStats(); size != 0 {
		t.Errorf("memo size = %d, want 0 after ad-hoc runs", size)
	}

	// Nil predicate falls back to the memoized path.
	if _, _, err := e.RunAdHoc(context.Background(), dashboard.Selection{}, nil); err != nil {
		t.Fatalf("RunAdHoc(nil): %v", err)
	}
	if _, _, size := e.CacheStats(); size != 1 {
		t.Errorf("memo size = %d, want 1 from the nil-predicate run", size)
	}
}

// TestOptions tests widget value listing.
func TestOptions(t *testing.T) {
	e := testExecutor(t, &tableSource{table: pipelineTable()})
	options := e.Options()

	if len(options.Classifications) == 0 || options.Classifications[0] != dashboard.SelectAll {
		t.Errorf("classifications = %v, want All first", options.Classifications)
	}
	if len(options.Classifications) != 3 {
		t.Errorf("classifications = %v, want All plus 2 values", options.Classifications)
	}
	// Full band range regardless of which bands have records.
	if len(options.AgeBands) != 21 {
		t.Errorf("age bands = %d entries, want All plus 20 bands", len(options.AgeBands))
	}
	// Only VA counties.
	for _, c := range options.Counties {
		if c == "Juneau" {
			t.Error("county options should be restricted to the configured state")
		}
	}
}

// TestCacheStats tests the hit/miss counters.
func TestCacheStats(t *testing.T) {
	e := testExecutor(t, &tableSource{table: pipelineTable()})
	sel := dashboard.Selection{County: "Fairfax"}

	e.Run(context.Background(), sel)
	e.Run(context.Background(), sel)

	hits, misses, size := e.CacheStats()
	if hits != 1 || misses != 1 || size != 1 {
		t.Errorf("cache stats = %d/%d/%d, want 1 hit, 1 miss, 1 entry", hits, misses, size)
	}

	e.Invalidate()
	if _, _, size := e.CacheStats(); size != 0 {
		t.Errorf("size after Invalidate = %d, want 0", size)
	}
}

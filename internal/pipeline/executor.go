// Package pipeline provides the dashboard derivation engine. It
// orchestrates the derivation flow for one selection: filter the record
// table, cross-tabulate, aggregate by county, and summarize, consulting
// the memo table before computing and storing the result after.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/classmap/runtime/internal/analysis"
	"github.com/classmap/runtime/internal/boundary"
	"github.com/classmap/runtime/internal/dataset"
	"github.com/classmap/runtime/internal/filter"
	"github.com/classmap/runtime/internal/logger"
	"github.com/classmap/runtime/pkg/dashboard"
)

// Error codes for pipeline execution errors
const (
	ErrCodeFilterFailed = "FILTER_FAILED"
)

// Common errors
var (
	// ErrNilStore is returned when the executor has no dataset store.
	ErrNilStore = errors.New("dataset store is nil")
)

// Executor derives dashboard data for selections. It owns no mutable state
// of its own beyond the memo table; the dataset store is the single source
// of record truth, and results are pure functions of (table, selection).
type Executor struct {
	store              *dataset.Store
	catalog            *boundary.Catalog
	where              *filter.Where
	memo               *analysis.Memo
	stateCode          string
	distinguishedClass int
}

// NewExecutor creates a pipeline executor.
//
// Parameters:
//   - store: the dataset store supplying the record table
//   - catalog: the boundary catalog for the geographic aggregate (may be
//     nil; county units then render unmapped)
//   - where: optional configured record predicate, ANDed with selections
//   - stateCode: the state the geographic aggregate is restricted to
//   - distinguishedClass: the classification value counted as matching
func NewExecutor(store *dataset.Store, catalog *boundary.Catalog, where *filter.Where, stateCode string, distinguishedClass int) *Executor {
	return &Executor{
		store:              store,
		catalog:            catalog,
		where:              where,
		memo:               analysis.NewMemo(),
		stateCode:          stateCode,
		distinguishedClass: distinguishedClass,
	}
}

// Run derives the dashboard data for one selection. Identical selections
// against an unchanged dataset generation are served from the memo table.
func (e *Executor) Run(ctx context.Context, sel dashboard.Selection) (*dashboard.DashboardData, dashboard.Metrics, error) {
	if e.store == nil {
		return nil, dashboard.Metrics{}, ErrNilStore
	}
	if err := ctx.Err(); err != nil {
		return nil, dashboard.Metrics{}, err
	}

	start := time.Now()
	table, generation := e.store.Snapshot()

	if data, ok := e.memo.Get(sel, generation); ok {
		metrics := dashboard.Metrics{TotalDuration: time.Since(start), FromCache: true}
		logger.LogPipelineRun(sel.Canonical(), data.Subset, true, metrics.TotalDuration)
		return data, metrics, nil
	}

	var metrics dashboard.Metrics

	filterStart := time.Now()
	subset, err := filter.Apply(table, sel, e.where)
	if err != nil {
		return nil, dashboard.Metrics{}, err
	}
	metrics.FilterDuration = time.Since(filterStart)

	data := e.derive(subset, sel, &metrics)

	e.memo.Put(sel, generation, data)
	metrics.TotalDuration = time.Since(start)
	logger.LogPipelineRun(sel.Canonical(), data.Subset, false, metrics.TotalDuration)
	return data, metrics, nil
}

// RunAdHoc derives dashboard data with an extra record predicate ANDed
// onto the configured one. Ad-hoc predicates are not part of the
// selection key, so these runs bypass the memo table entirely.
func (e *Executor) RunAdHoc(ctx context.Context, sel dashboard.Selection, adHoc *filter.Where) (*dashboard.DashboardData, dashboard.Metrics, error) {
	if adHoc == nil {
		return e.Run(ctx, sel)
	}
	if e.store == nil {
		return nil, dashboard.Metrics{}, ErrNilStore
	}
	if err := ctx.Err(); err != nil {
		return nil, dashboard.Metrics{}, err
	}

	start := time.Now()
	table, _ := e.store.Snapshot()

	var metrics dashboard.Metrics

	filterStart := time.Now()
	subset, err := filter.Apply(table, sel, e.where)
	if err != nil {
		return nil, dashboard.Metrics{}, err
	}
	subset, err = filter.Apply(subset, dashboard.Selection{}, adHoc)
	if err != nil {
		return nil, dashboard.Metrics{}, err
	}
	metrics.FilterDuration = time.Since(filterStart)

	data := e.derive(subset, sel, &metrics)

	metrics.TotalDuration = time.Since(start)
	logger.LogPipelineRun(sel.Canonical(), data.Subset, false, metrics.TotalDuration)
	return data, metrics, nil
}

// derive computes every table for one filtered subset, recording stage
// timings.
func (e *Executor) derive(subset dataset.Table, sel dashboard.Selection, metrics *dashboard.Metrics) *dashboard.DashboardData {
	crossTabStart := time.Now()
	crossTab := analysis.CrossTab(subset)
	metrics.CrossTabDuration = time.Since(crossTabStart)

	geoStart := time.Now()
	geo := analysis.GeoAggregate(subset, e.catalog, e.stateCode, e.distinguishedClass)
	metrics.GeoDuration = time.Since(geoStart)

	return &dashboard.DashboardData{
		Selection: sel.Normalized(),
		CrossTab:  crossTab,
		Geo:       geo,
		Stats:     analysis.Summarize(subset, e.distinguishedClass),
		Subset:    len(subset),
	}
}

// Options lists the filter widget values for the current dataset: every
// distinct classification, the full band range, and the counties of the
// configured state. Each list starts with the "All" sentinel.
func (e *Executor) Options() dashboard.Options {
	table, _ := e.store.Snapshot()

	classifications := []string{dashboard.SelectAll}
	for _, c := range table.Classifications() {
		classifications = append(classifications, dataset.FormatClassification(c))
	}

	ageBands := append([]string{dashboard.SelectAll}, dataset.AllBands()...)
	counties := append([]string{dashboard.SelectAll}, table.Counties(e.stateCode)...)

	return dashboard.Options{
		Classifications: classifications,
		AgeBands:        ageBands,
		Counties:        counties,
	}
}

// Invalidate drops every memoized result. The store's generation counter
// already isolates reloads; this is for explicit cache flushes.
func (e *Executor) Invalidate() {
	e.memo.Invalidate()
}

// CacheStats reports memo hit/miss counters and entry count.
func (e *Executor) CacheStats() (hits, misses uint64, size int) {
	return e.memo.Stats()
}

// Store returns the executor's dataset store.
func (e *Executor) Store() *dataset.Store {
	return e.store
}

package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/classmap/runtime/pkg/dashboard"
)

// OutputOptions configures CLI output behavior.
type OutputOptions struct {
	Verbose bool
	Quiet   bool
}

// PrintSnapshotResult displays the outcome of a snapshot run.
func PrintSnapshotResult(result *dashboard.SnapshotResult, err error, opts OutputOptions) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Snapshot failed")
		fmt.Fprintf(os.Stderr, "  Error: %s\n", err)
		return
	}
	if result == nil {
		fmt.Fprintln(os.Stderr, "✗ No snapshot result available")
		return
	}

	if opts.Quiet {
		return
	}

	fmt.Println("✓ Snapshot written")
	fmt.Printf("  Output: %s\n", result.OutputDir)
	fmt.Printf("  Records: %d total, %d matching (%.1f%%)\n",
		result.Stats.Total, result.Stats.Matching, result.Stats.Percent)
	printSnapshotFiles(result.Files)
	if opts.Verbose {
		fmt.Printf("  Duration: %v\n", result.CompletedAt.Sub(result.StartedAt))
	}
}

// printSnapshotFiles prints rendered files sorted by view type.
func printSnapshotFiles(files []dashboard.SnapshotFile) {
	if len(files) == 0 {
		return
	}
	sorted := make([]dashboard.SnapshotFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].View < sorted[j].View })

	fmt.Println("  Files:")
	for _, file := range sorted {
		fmt.Printf("    %s: %s (%d bytes)\n", file.View, file.Path, file.Bytes)
	}
}

// PrintServeInfo prints startup information for the dashboard server.
func PrintServeInfo(cfg *dashboard.Config, address string, opts OutputOptions) {
	if opts.Quiet {
		return
	}
	fmt.Printf("✓ Dashboard %q listening on %s\n", cfg.Name, address)
	if opts.Verbose {
		fmt.Printf("  Dataset: %s\n", cfg.Dataset.Path)
		fmt.Printf("  Boundary: %s (%s)\n", cfg.Boundary.Path, cfg.Boundary.StateCode)
		if cfg.Reload.Enabled {
			fmt.Printf("  Reload: every %dms\n", cfg.Reload.IntervalMs)
		}
	}
}

// PrintConfigSummary prints dashboard name and version if available.
func PrintConfigSummary(data map[string]interface{}) {
	if data == nil {
		return
	}

	dash, ok := data["dashboard"].(map[string]interface{})
	if !ok {
		return
	}

	if name, ok := dash["name"].(string); ok {
		fmt.Printf("  Dashboard: %s\n", name)
	}
	if version, ok := dash["version"].(string); ok {
		fmt.Printf("  Version: %s\n", version)
	}
}

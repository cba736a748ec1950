package config

import (
	"fmt"

	"github.com/classmap/runtime/internal/httpconfig"
	"github.com/classmap/runtime/pkg/dashboard"
)

// DefaultDistinguishedClass is the classification value counted as
// matching when the configuration does not set one.
const DefaultDistinguishedClass = 1

// ConvertToConfig converts parsed configuration data to a typed
// dashboard.Config. The data should have been validated against the schema
// first; conversion still guards against structural surprises.
//
// The configuration has this structure:
//
//	{
//	  "schemaVersion": "1.0.0",
//	  "dashboard": {
//	    "name": "...",
//	    "version": "...",
//	    "dataset": {...},
//	    "boundary": {...},
//	    "filters": {...},
//	    "server": {...},
//	    "reload": {...}
//	  }
//	}
func ConvertToConfig(data map[string]interface{}) (*dashboard.Config, error) {
	if data == nil {
		return nil, fmt.Errorf("configuration data is nil")
	}

	dashData, ok := data["dashboard"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'dashboard' section")
	}

	cfg := &dashboard.Config{}

	if cfg.Name, ok = dashData["name"].(string); !ok {
		return nil, fmt.Errorf("missing required field 'dashboard.name'")
	}
	if cfg.Version, ok = dashData["version"].(string); !ok {
		return nil, fmt.Errorf("missing required field 'dashboard.version'")
	}
	if description, okDesc := dashData["description"].(string); okDesc {
		cfg.Description = description
	}
	if stateDir, okDir := dashData["stateDir"].(string); okDir {
		cfg.StateDir = stateDir
	}

	datasetData, ok := dashData["dataset"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'dashboard.dataset' section")
	}
	dataset, err := convertDataset(datasetData)
	if err != nil {
		return nil, fmt.Errorf("invalid dataset config: %w", err)
	}
	cfg.Dataset = dataset

	boundaryData, ok := dashData["boundary"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'dashboard.boundary' section")
	}
	boundary, err := convertBoundary(boundaryData)
	if err != nil {
		return nil, fmt.Errorf("invalid boundary config: %w", err)
	}
	cfg.Boundary = boundary

	if filtersData, okF := dashData["filters"].(map[string]interface{}); okF {
		if where, okW := filtersData["where"].(string); okW {
			cfg.Filters.Where = where
		}
	}

	if serverData, okS := dashData["server"].(map[string]interface{}); okS {
		cfg.Server = convertServer(serverData)
	}
	cfg.Server = httpconfig.ApplyDefaults(cfg.Server)
	if err := httpconfig.Validate(cfg.Server); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	if reloadData, okR := dashData["reload"].(map[string]interface{}); okR {
		if enabled, okE := reloadData["enabled"].(bool); okE {
			cfg.Reload.Enabled = enabled
		}
		if interval, okI := asInt(reloadData["intervalMs"]); okI {
			cfg.Reload.IntervalMs = interval
		}
	}

	return cfg, nil
}

// convertDataset converts the dataset section.
func convertDataset(data map[string]interface{}) (dashboard.DatasetConfig, error) {
	cfg := dashboard.DatasetConfig{DistinguishedClass: DefaultDistinguishedClass}

	path, ok := data["path"].(string)
	if !ok || path == "" {
		return cfg, fmt.Errorf("missing required field 'path'")
	}
	cfg.Path = path

	if columns, okC := data["columns"].(map[string]interface{}); okC {
		cfg.Columns = make(map[string]string, len(columns))
		for key, value := range columns {
			header, okH := value.(string)
			if !okH {
				return cfg, fmt.Errorf("invalid column mapping for %q: expected string, got %T", key, value)
			}
			cfg.Columns[key] = header
		}
	}

	if class, okD := asInt(data["distinguishedClass"]); okD {
		cfg.DistinguishedClass = class
	}

	if script, okS := data["script"].(string); okS {
		cfg.Script = script
	}
	if scriptFile, okS := data["scriptFile"].(string); okS {
		cfg.ScriptFile = scriptFile
	}
	if cfg.Script != "" && cfg.ScriptFile != "" {
		return cfg, fmt.Errorf("'script' and 'scriptFile' are mutually exclusive")
	}

	return cfg, nil
}

// convertBoundary converts the boundary section.
func convertBoundary(data map[string]interface{}) (dashboard.BoundaryConfig, error) {
	cfg := dashboard.BoundaryConfig{}

	path, ok := data["path"].(string)
	if !ok || path == "" {
		return cfg, fmt.Errorf("missing required field 'path'")
	}
	cfg.Path = path

	if cfg.StateCode, ok = data["stateCode"].(string); !ok {
		return cfg, fmt.Errorf("missing required field 'stateCode'")
	}
	if cfg.StateFIPS, ok = data["stateFips"].(string); !ok {
		return cfg, fmt.Errorf("missing required field 'stateFips'")
	}
	return cfg, nil
}

// convertServer converts the server section.
func convertServer(data map[string]interface{}) dashboard.ServerConfig {
	cfg := dashboard.ServerConfig{}

	if address, ok := data["listenAddress"].(string); ok {
		cfg.ListenAddress = address
	}
	if ms, ok := asInt(data["readTimeoutMs"]); ok {
		cfg.ReadTimeoutMs = ms
	}
	if ms, ok := asInt(data["writeTimeoutMs"]); ok {
		cfg.WriteTimeoutMs = ms
	}
	if ms, ok := asInt(data["shutdownTimeoutMs"]); ok {
		cfg.ShutdownTimeoutMs = ms
	}
	return cfg
}

// asInt accepts both JSON numbers (float64) and YAML integers (int).
func asInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

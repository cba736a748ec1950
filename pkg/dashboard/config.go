package dashboard

// Config is the complete, validated dashboard configuration.
// It is produced by internal/config from a JSON or YAML file.
type Config struct {
	// Name is the human-readable dashboard name.
	Name string `json:"name"`

	// Description provides additional context about the dashboard.
	Description string `json:"description,omitempty"`

	// Version is the configuration version.
	Version string `json:"version"`

	// Dataset configures the tabular source.
	Dataset DatasetConfig `json:"dataset"`

	// Boundary configures the geographic boundary catalog.
	Boundary BoundaryConfig `json:"boundary"`

	// Filters configures ad-hoc filtering on top of the selection.
	Filters FilterConfig `json:"filters,omitempty"`

	// Server configures the HTTP dashboard server.
	Server ServerConfig `json:"server,omitempty"`

	// Reload configures the dataset reload watcher.
	Reload ReloadConfig `json:"reload,omitempty"`

	// StateDir is the directory for runtime state (bookmarks).
	StateDir string `json:"stateDir,omitempty"`
}

// DatasetConfig configures the tabular record source.
type DatasetConfig struct {
	// Path is the CSV file to load at startup.
	Path string `json:"path"`

	// Columns optionally maps canonical field names (classification, age,
	// county, countyCode, state) to CSV header names. Unmapped fields use
	// the conventional upper-case headers (CLASSIFICATION, AGE, COUNTY,
	// COUNTY_CODE, STATE).
	Columns map[string]string `json:"columns,omitempty"`

	// DistinguishedClass is the classification value the geographic
	// aggregator and stats box count. Defaults to 1.
	DistinguishedClass int `json:"distinguishedClass,omitempty"`

	// Script is an optional inline JavaScript source defining a
	// transform(record) function that adds derived fields at load time.
	Script string `json:"script,omitempty"`

	// ScriptFile is the path to a JavaScript file; mutually exclusive with
	// Script.
	ScriptFile string `json:"scriptFile,omitempty"`
}

// BoundaryConfig configures the geographic boundary catalog.
type BoundaryConfig struct {
	// Path is the GeoJSON FeatureCollection of county polygons.
	Path string `json:"path"`

	// StateCode restricts records in the geographic aggregate (e.g. "VA").
	StateCode string `json:"stateCode"`

	// StateFIPS restricts catalog features by STATEFP property or GEOID
	// prefix (e.g. "51"). Opaque string, never parsed numerically.
	StateFIPS string `json:"stateFips"`
}

// FilterConfig configures ad-hoc filtering.
type FilterConfig struct {
	// Where is an optional expression evaluated per record and ANDed with
	// the selection (expr-lang syntax, record fields as variables).
	Where string `json:"where,omitempty"`
}

// ServerConfig configures the HTTP dashboard server.
type ServerConfig struct {
	// ListenAddress is the host:port to bind. Port 0 picks a free port.
	ListenAddress string `json:"listenAddress,omitempty"`

	// ReadTimeoutMs is the HTTP read timeout in milliseconds.
	ReadTimeoutMs int `json:"readTimeoutMs,omitempty"`

	// WriteTimeoutMs is the HTTP write timeout in milliseconds.
	WriteTimeoutMs int `json:"writeTimeoutMs,omitempty"`

	// ShutdownTimeoutMs bounds graceful shutdown in milliseconds.
	ShutdownTimeoutMs int `json:"shutdownTimeoutMs,omitempty"`
}

// ReloadConfig configures the dataset reload watcher.
type ReloadConfig struct {
	// Enabled turns the watcher on.
	Enabled bool `json:"enabled,omitempty"`

	// IntervalMs is how often the dataset file is checked for changes.
	IntervalMs int `json:"intervalMs,omitempty"`
}

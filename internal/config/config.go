// Package config manages the engine host's operational configuration:
// the tunable knobs spec §9 calls out as configurable (spatial index
// cell sizes, snap/fusion radii, ranking truncation) plus host-level
// settings (data directory, worker port, connection pool size). The
// scoring weights themselves are intentionally not here — spec §9 calls
// them out as fixed constants, kept in internal/scoring.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// DefaultWorkerPort is the default HTTP port for cmd/server.
const DefaultWorkerPort = 37777

// Config holds the host's operational configuration.
type Config struct {
	DBPath  string `json:"db_path" yaml:"db_path"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	WorkerPort int `json:"worker_port" yaml:"worker_port"`
	MaxConns   int `json:"max_conns" yaml:"max_conns"`

	// Spatial index cell sizes, in degrees. Larger than any snap/fusion
	// radius below keeps a query within one cell's immediate neighbors.
	NodeIndexCellDeg   float64 `json:"node_index_cell_deg" yaml:"node_index_cell_deg"`
	EdgeIndexCellDeg   float64 `json:"edge_index_cell_deg" yaml:"edge_index_cell_deg"`
	ReportIndexCellDeg float64 `json:"report_index_cell_deg" yaml:"report_index_cell_deg"`

	POISnapRadiusM      float64 `json:"poi_snap_radius_m" yaml:"poi_snap_radius_m"`
	AnchorSnapRadiusM   float64 `json:"anchor_snap_radius_m" yaml:"anchor_snap_radius_m"`
	ReportFusionRadiusM float64 `json:"report_fusion_radius_m" yaml:"report_fusion_radius_m"`
	ReportBonusRadiusM  float64 `json:"report_bonus_radius_m" yaml:"report_bonus_radius_m"`

	MaxRankedCandidates int `json:"max_ranked_candidates" yaml:"max_ranked_candidates"`

	// GraphHost, if non-empty, enables mirroring each job's classified
	// graph and rankings into FalkorDB at GraphHost:GraphPort. Empty
	// disables the mirror entirely.
	GraphHost string `json:"graph_host" yaml:"graph_host"`
	GraphPort int    `json:"graph_port" yaml:"graph_port"`

	// RequireAuth gates cmd/server's /v1/jobs surface behind a
	// server-generated bearer token, logged once at startup. False is
	// appropriate for a trusted localhost deployment; true for anything
	// reachable beyond localhost.
	RequireAuth bool `json:"require_auth" yaml:"require_auth"`

	// JobCooldownSeconds is the minimum interval cmd/server enforces
	// between two analysis runs that both miss the result cache, so a
	// burst of cache-missing requests can't each trigger a full pipeline
	// run back to back. 0 disables the cooldown.
	JobCooldownSeconds int64 `json:"job_cooldown_seconds" yaml:"job_cooldown_seconds"`
}

var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// DataDir returns the data directory path (~/.aae).
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".aae")
}

// DBPath returns the default job-store database file path.
func DBPath() string {
	return filepath.Join(DataDir(), "aae.db")
}

// SettingsPath returns the settings file path.
func SettingsPath() string {
	return filepath.Join(DataDir(), "settings.json")
}

// EnsureDataDir creates the data directory if it doesn't exist, with
// owner-only permissions.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0700)
}

// EnsureSettings creates a default settings file if it doesn't exist.
func EnsureSettings() error {
	path := SettingsPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// EnsureAll ensures the data directory and a default settings file exist.
func EnsureAll() error {
	if err := EnsureDataDir(); err != nil {
		return err
	}
	return EnsureSettings()
}

// Default returns a Config with the engine's documented default radii
// and cell sizes (spec §4.1, §4.6, §4.7, §4.9–§4.11).
func Default() *Config {
	return &Config{
		DataDir:    DataDir(),
		DBPath:     DBPath(),
		WorkerPort: DefaultWorkerPort,
		MaxConns:   4,

		NodeIndexCellDeg:   0.01,
		EdgeIndexCellDeg:   0.01,
		ReportIndexCellDeg: 0.01,

		POISnapRadiusM:      220,
		AnchorSnapRadiusM:   450,
		ReportFusionRadiusM: 260,
		ReportBonusRadiusM:  70,

		MaxRankedCandidates: 240,

		GraphHost: "",
		GraphPort: 6379,

		RequireAuth:        false,
		JobCooldownSeconds: 2,
	}
}

// Load loads configuration from the settings file, merging with
// defaults; a missing file or a parse error yields the defaults.
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(SettingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := mergeJSON(cfg, data); err != nil {
		return cfg, nil
	}
	return cfg, nil
}

// mergeJSON unmarshals data over cfg in place, preserving any field not
// present in data at its current (default) value.
func mergeJSON(cfg *Config, data []byte) error {
	return json.Unmarshal(data, cfg)
}

// LoadProfileYAML reads a YAML tunable-override file (the shape an
// operator hand-edits to define an accessibility profile — e.g. a wider
// POISnapRadiusM for a rural deployment) and merges it over the JSON
// settings file's defaults. A field absent from the YAML file keeps its
// existing value, same merge-over-defaults behavior as Load.
func LoadProfileYAML(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Get returns the global configuration, loading it once on first use.
func Get() *Config {
	configOnce.Do(func() {
		var err error
		globalConfig, err = Load()
		if err != nil {
			globalConfig = Default()
		}
	})

	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}

// set swaps the global configuration under the write lock, used by
// WatchSettings on every reload.
func set(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	globalConfig = cfg
}

// WatchSettings watches the settings file for writes and hot-reloads
// the global configuration on change, invoking onChange (if non-nil)
// with the freshly loaded Config. It starts its own watcher goroutine
// and returns immediately; calling the returned function closes the
// watcher, which ends that goroutine.
func WatchSettings(onChange func(*Config)) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	path := SettingsPath()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load()
				if err != nil {
					continue
				}
				set(cfg)
				if onChange != nil {
					onChange(cfg)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return watcher.Close, nil
}

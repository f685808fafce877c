package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Truth      TruthConfig      `yaml:"truth"`
	Phot       PhotConfig       `yaml:"phot"`
	LightCurve LightCurveConfig `yaml:"lightcurve"`
	Watcher    WatcherConfig    `yaml:"watcher"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the forced-photometry database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// TruthConfig holds the truth-table builder configuration.
type TruthConfig struct {
	// CatalogDSN points at the star cache database holding the simulation
	// inputs (sqlite file path or postgres DSN).
	CatalogDSN string `yaml:"catalog_dsn"`
	// OpsimPath is the survey pointing (OpSim) sqlite database.
	OpsimPath string `yaml:"opsim_path"`
	// VisitCSV is the default list of visit ids to process.
	VisitCSV string `yaml:"visit_csv"`
	// Sky region the simulation covers. Visits outside it are skipped.
	FieldRAMin  float64 `yaml:"field_ra_min"`
	FieldRAMax  float64 `yaml:"field_ra_max"`
	FieldDecMin float64 `yaml:"field_dec_min"`
	FieldDecMax float64 `yaml:"field_dec_max"`
	BoundLength float64 `yaml:"bound_length"`
	// MagCutoff is the gmag constraint applied to the star query.
	MagCutoff float64 `yaml:"mag_cutoff"`
	// Output sqlite file and table name for the accumulated fluxes.
	OutputPath  string `yaml:"output_path"`
	OutputTable string `yaml:"output_table"`
}

// PhotConfig locates the photometric reference data.
type PhotConfig struct {
	BandpassDir string   `yaml:"bandpass_dir"`
	SedDir      string   `yaml:"sed_dir"`
	Filters     []string `yaml:"filters"`
}

// LightCurveConfig holds the file-based assembly inputs.
type LightCurveConfig struct {
	// FPTableDir is the root of the per-visit forced-photometry table tree.
	FPTableDir string `yaml:"fp_table_dir"`
	// MJDFile maps visit numbers to modified Julian dates.
	MJDFile string `yaml:"mjd_file"`
}

// WatcherConfig holds the epoch watcher configuration.
type WatcherConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.Truth.FieldRAMin == 0 && cfg.Truth.FieldRAMax == 0 {
		// The simulated field the truth catalog covers.
		cfg.Truth.FieldRAMin = 53
		cfg.Truth.FieldRAMax = 54
		cfg.Truth.FieldDecMin = -29
		cfg.Truth.FieldDecMax = -27
	}
	if cfg.Truth.BoundLength <= 0 {
		cfg.Truth.BoundLength = 0.3
	}
	if cfg.Truth.MagCutoff == 0 {
		cfg.Truth.MagCutoff = 11
	}
	if cfg.Truth.OutputTable == "" {
		cfg.Truth.OutputTable = "stars"
	}
	if cfg.Truth.VisitCSV == "" {
		cfg.Truth.VisitCSV = "./data/selected_visits.csv"
	}

	if len(cfg.Phot.Filters) == 0 {
		cfg.Phot.Filters = []string{"u", "g", "r", "i", "z", "y"}
	}

	if cfg.Watcher.IntervalSeconds <= 0 {
		cfg.Watcher.IntervalSeconds = 300
	}
	cfg.Watcher.Interval = time.Duration(cfg.Watcher.IntervalSeconds) * time.Second

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}

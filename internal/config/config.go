package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

const EnvPrefix = "DOCKET"

type ScanConfig struct {
	Root     string `toml:"root"`
	MinPages int    `toml:"min_pages"`
	Workers  int    `toml:"workers"`
}

type DedupeConfig struct {
	NearThreshold    float64 `toml:"near_threshold"`
	PartialThreshold float64 `toml:"partial_threshold"`
	LSHThreshold     float64 `toml:"lsh_threshold"`
	NumPerm          int     `toml:"num_perm"`
	Seed             int64   `toml:"seed"`
	ShingleSize      int     `toml:"shingle_size"`
}

type ExtractionConfig struct {
	MatchThreshold       float64  `toml:"match_threshold"`
	ClusterThreshold     float64  `toml:"cluster_threshold"`
	UnresolvedClustering string   `toml:"unresolved_clustering"`
	StopTerms            []string `toml:"stop_terms"`
	BadLastNames         []string `toml:"bad_last_names"`
	IdentitiesPath       string   `toml:"identities_path"`
}

type OutputConfig struct {
	ReportPath   string `toml:"report_path"`
	SkipReport   bool   `toml:"skip_report"`
	FragmentsDir string `toml:"fragments_dir"`
	Dataset      string `toml:"dataset"`
	IncludeText  bool   `toml:"include_text"`
}

type OrganizeConfig struct {
	Enabled        bool   `toml:"enabled"`
	Move           bool   `toml:"move"`
	DryRun         bool   `toml:"dry_run"`
	TargetRoot     string `toml:"target_root"`
	SingletonsOnly bool   `toml:"singletons_only"`
}

type StoreConfig struct {
	SQLitePath string `toml:"sqlite_path"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// ServerConfig binds to loopback by default. APIToken, when set, is required
// as a bearer token, and scan requests may only move files with AllowMove.
type ServerConfig struct {
	Host      string `toml:"host"`
	Port      string `toml:"port"`
	APIToken  string `toml:"api_token"`
	AllowMove bool   `toml:"allow_move"`
}

type LoggingConfig struct {
	Environment string `toml:"environment"`
	Level       string `toml:"level"`
}

type ConsolidateConfig struct {
	SourceDir    string `toml:"source_dir"`
	OutputDir    string `toml:"output_dir"`
	FolderPrefix string `toml:"folder_prefix"`
	Communities  string `toml:"communities"` // lpa or components
}

type Config struct {
	Scan        ScanConfig        `toml:"scan"`
	Dedupe      DedupeConfig      `toml:"dedupe"`
	Extraction  ExtractionConfig  `toml:"extraction"`
	Output      OutputConfig      `toml:"output"`
	Organize    OrganizeConfig    `toml:"organize"`
	Store       StoreConfig       `toml:"store"`
	Memgraph    MemgraphConfig    `toml:"memgraph"`
	Server      ServerConfig      `toml:"server"`
	Logging     LoggingConfig     `toml:"logging"`
	Consolidate ConsolidateConfig `toml:"consolidate"`
}

func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Root:    "sourcefiles",
			Workers: runtime.NumCPU(),
		},
		Dedupe: DedupeConfig{
			NearThreshold:    0.90,
			PartialThreshold: 0.60,
			LSHThreshold:     0.8,
			NumPerm:          128,
			Seed:             1,
			ShingleSize:      3,
		},
		Extraction: ExtractionConfig{
			MatchThreshold:       0.85,
			ClusterThreshold:     0.85,
			UnresolvedClustering: "first_member",
		},
		Output: OutputConfig{
			ReportPath:  "assets/data/pdf_duplicates.json",
			Dataset:     "Dataset12",
			IncludeText: true,
		},
		Organize: OrganizeConfig{
			Move: true,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Logging: LoggingConfig{
			Environment: "production",
			Level:       "info",
		},
		Consolidate: ConsolidateConfig{
			SourceDir:   "assets/data/documents",
			OutputDir:   "assets/data",
			Communities: "lpa",
		},
	}
}

// Load layers the TOML file at path (optional when empty) and DOCKET_*
// environment variables over the defaults, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envOverrides lists every setting that can be overridden from the
// environment as DOCKET_<NAME>. Unset variables leave the field nil.
type envOverrides struct {
	ScanRoot     *string `envconfig:"SCAN_ROOT"`
	ScanMinPages *int    `envconfig:"SCAN_MIN_PAGES"`
	ScanWorkers  *int    `envconfig:"SCAN_WORKERS"`

	NearThreshold    *float64 `envconfig:"NEAR_THRESHOLD"`
	PartialThreshold *float64 `envconfig:"PARTIAL_THRESHOLD"`
	LSHThreshold     *float64 `envconfig:"LSH_THRESHOLD"`
	NumPerm          *int     `envconfig:"NUM_PERM"`
	Seed             *int64   `envconfig:"MINHASH_SEED"`

	MatchThreshold       *float64 `envconfig:"MATCH_THRESHOLD"`
	ClusterThreshold     *float64 `envconfig:"CLUSTER_THRESHOLD"`
	UnresolvedClustering *string  `envconfig:"UNRESOLVED_CLUSTERING"`
	StopTerms            []string `envconfig:"STOP_TERMS"`
	BadLastNames         []string `envconfig:"BAD_LAST_NAMES"`
	IdentitiesPath       *string  `envconfig:"IDENTITIES_PATH"`

	ReportPath   *string `envconfig:"REPORT_PATH"`
	FragmentsDir *string `envconfig:"FRAGMENTS_DIR"`
	Dataset      *string `envconfig:"DATASET"`

	SQLitePath       *string `envconfig:"SQLITE_PATH"`
	MemgraphURI      *string `envconfig:"MEMGRAPH_URI"`
	MemgraphUser     *string `envconfig:"MEMGRAPH_USER"`
	MemgraphPassword *string `envconfig:"MEMGRAPH_PASSWORD"`

	ConsolidateSource *string `envconfig:"CONSOLIDATE_SOURCE"`
	ConsolidateOutput *string `envconfig:"CONSOLIDATE_OUTPUT"`
	FolderPrefix      *string `envconfig:"FOLDER_PREFIX"`

	Host        *string `envconfig:"HOST"`
	Port        *string `envconfig:"PORT"`
	APIToken    *string `envconfig:"API_TOKEN"`
	AllowMove   *bool   `envconfig:"ALLOW_MOVE"`
	Environment *string `envconfig:"ENVIRONMENT"`
	LogLevel    *string `envconfig:"LOG_LEVEL"`
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return err
	}

	setString(&c.Scan.Root, env.ScanRoot)
	setInt(&c.Scan.MinPages, env.ScanMinPages)
	setInt(&c.Scan.Workers, env.ScanWorkers)

	setFloat(&c.Dedupe.NearThreshold, env.NearThreshold)
	setFloat(&c.Dedupe.PartialThreshold, env.PartialThreshold)
	setFloat(&c.Dedupe.LSHThreshold, env.LSHThreshold)
	setInt(&c.Dedupe.NumPerm, env.NumPerm)
	if env.Seed != nil {
		c.Dedupe.Seed = *env.Seed
	}

	setFloat(&c.Extraction.MatchThreshold, env.MatchThreshold)
	setFloat(&c.Extraction.ClusterThreshold, env.ClusterThreshold)
	setString(&c.Extraction.UnresolvedClustering, env.UnresolvedClustering)
	if len(env.StopTerms) > 0 {
		c.Extraction.StopTerms = env.StopTerms
	}
	if len(env.BadLastNames) > 0 {
		c.Extraction.BadLastNames = env.BadLastNames
	}
	setString(&c.Extraction.IdentitiesPath, env.IdentitiesPath)

	setString(&c.Output.ReportPath, env.ReportPath)
	setString(&c.Output.FragmentsDir, env.FragmentsDir)
	setString(&c.Output.Dataset, env.Dataset)

	setString(&c.Store.SQLitePath, env.SQLitePath)
	setString(&c.Memgraph.URI, env.MemgraphURI)
	setString(&c.Memgraph.User, env.MemgraphUser)
	setString(&c.Memgraph.Password, env.MemgraphPassword)

	setString(&c.Consolidate.SourceDir, env.ConsolidateSource)
	setString(&c.Consolidate.OutputDir, env.ConsolidateOutput)
	setString(&c.Consolidate.FolderPrefix, env.FolderPrefix)

	setString(&c.Server.Host, env.Host)
	setString(&c.Server.Port, env.Port)
	setString(&c.Server.APIToken, env.APIToken)
	if env.AllowMove != nil {
		c.Server.AllowMove = *env.AllowMove
	}
	setString(&c.Logging.Environment, env.Environment)
	setString(&c.Logging.Level, env.LogLevel)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func (c *Config) Validate() error {
	thresholds := []struct {
		name  string
		value float64
	}{
		{"dedupe.near_threshold", c.Dedupe.NearThreshold},
		{"dedupe.partial_threshold", c.Dedupe.PartialThreshold},
		{"extraction.match_threshold", c.Extraction.MatchThreshold},
		{"extraction.cluster_threshold", c.Extraction.ClusterThreshold},
	}
	for _, t := range thresholds {
		if t.value < 0 || t.value > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %v", t.name, t.value)
		}
	}
	if c.Dedupe.LSHThreshold <= 0 || c.Dedupe.LSHThreshold >= 1 {
		return fmt.Errorf("dedupe.lsh_threshold must be within (0, 1), got %v", c.Dedupe.LSHThreshold)
	}
	if c.Dedupe.PartialThreshold > c.Dedupe.NearThreshold {
		return fmt.Errorf("dedupe.partial_threshold (%v) cannot exceed dedupe.near_threshold (%v)", c.Dedupe.PartialThreshold, c.Dedupe.NearThreshold)
	}
	if c.Dedupe.NumPerm < 2 {
		return fmt.Errorf("dedupe.num_perm must be >= 2")
	}
	if c.Dedupe.ShingleSize < 1 {
		return fmt.Errorf("dedupe.shingle_size must be >= 1")
	}
	if c.Scan.MinPages < 0 {
		return fmt.Errorf("scan.min_pages must be >= 0")
	}
	if c.Scan.Workers < 1 {
		return fmt.Errorf("scan.workers must be >= 1")
	}
	switch c.Extraction.UnresolvedClustering {
	case "first_member", "transitive":
	default:
		return fmt.Errorf("extraction.unresolved_clustering must be first_member or transitive, got %q", c.Extraction.UnresolvedClustering)
	}
	switch c.Consolidate.Communities {
	case "lpa", "components":
	default:
		return fmt.Errorf("consolidate.communities must be lpa or components, got %q", c.Consolidate.Communities)
	}
	if strings.TrimSpace(c.Output.Dataset) == "" {
		return fmt.Errorf("output.dataset is required")
	}
	if strings.TrimSpace(c.Server.Port) == "" {
		return fmt.Errorf("server.port is required")
	}
	return nil
}

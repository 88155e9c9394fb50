// Package config holds PSCue's configuration, enumerated in spec section 6.
// The shape follows the teacher's internal/config.Config: a single struct
// assembled by a DefaultConfig() factory and then layered with overrides,
// first from an optional YAML file and then from the environment (the
// teacher layers from a workspace-local JSON file; PSCue additionally reads
// the environment because spec section 6 specifies env-sourced config and
// the module has no natural per-project config file of its own).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PCD holds the PcdEngine tunables enumerated in spec section 4.11.
type PCD struct {
	FrequencyWeight  float64 `yaml:"frequency_weight"`
	RecencyWeight    float64 `yaml:"recency_weight"`
	DistanceWeight   float64 `yaml:"distance_weight"`
	ExactMatchBoost  float64 `yaml:"exact_match_boost"`
	FuzzyMinMatchPct float64 `yaml:"fuzzy_min_match_pct"`
	LongQueryLCSPct  float64 `yaml:"long_query_lcs_pct"`
	MaxDepthTab      int     `yaml:"max_depth_tab"`
	MaxDepthPredictor int    `yaml:"max_depth_predictor"`
	RecursiveSearch  bool    `yaml:"recursive_search"`
	EnableDotDirFilter bool  `yaml:"enable_dot_dir_filter"`
	CustomBlocklist  []string `yaml:"custom_blocklist"`
	TopN             int     `yaml:"top_n"`
}

// Config is the complete set of PSCue configuration knobs from spec
// section 6.
type Config struct {
	Debug bool `yaml:"debug"`

	DisableLearning bool `yaml:"disable_learning"`

	HistorySize int `yaml:"history_size"`

	MaxCommands   int `yaml:"max_commands"`
	MaxArgsPerCmd int `yaml:"max_args_per_cmd"`
	DecayDays     float64 `yaml:"decay_days"`

	MLEnabled       bool `yaml:"ml_enabled"`
	MLNgramOrder    int  `yaml:"ml_ngram_order"`
	MLNgramMinFreq  int  `yaml:"ml_ngram_min_freq"`

	WorkflowLearning            bool          `yaml:"workflow_learning"`
	WorkflowMinFrequency        int           `yaml:"workflow_min_frequency"`
	WorkflowMaxTimeDelta        time.Duration `yaml:"workflow_max_time_delta_minutes"`
	WorkflowMinConfidence       float64       `yaml:"workflow_min_confidence"`

	IgnorePatterns []string `yaml:"ignore_patterns"`

	PCD PCD `yaml:"pcd"`

	DataDir string `yaml:"data_dir"`

	AutoSaveInterval time.Duration `yaml:"auto_save_interval"`
	BusyTimeout      time.Duration `yaml:"busy_timeout"`

	InlineBudget     time.Duration `yaml:"inline_budget"`
	TabBudget        time.Duration `yaml:"tab_budget"`
	PCDTabBudget     time.Duration `yaml:"pcd_tab_budget"`
}

// DefaultConfig returns the spec section 6 defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:           false,
		DisableLearning: false,
		HistorySize:     100,
		MaxCommands:     500,
		MaxArgsPerCmd:   100,
		DecayDays:       30,
		MLEnabled:       true,
		MLNgramOrder:    2,
		MLNgramMinFreq:  3,
		WorkflowLearning:      true,
		WorkflowMinFrequency:  5,
		WorkflowMaxTimeDelta:  15 * time.Minute,
		WorkflowMinConfidence: 0.6,
		IgnorePatterns:        nil,
		PCD: PCD{
			FrequencyWeight:    0.5,
			RecencyWeight:      0.3,
			DistanceWeight:     0.2,
			ExactMatchBoost:    100.0,
			FuzzyMinMatchPct:   0.70,
			LongQueryLCSPct:    0.60,
			MaxDepthTab:        3,
			MaxDepthPredictor:  1,
			RecursiveSearch:    true,
			EnableDotDirFilter: true,
			CustomBlocklist:    nil,
			TopN:               10,
		},
		DataDir:          defaultDataDir(),
		AutoSaveInterval: 5 * time.Minute,
		BusyTimeout:      5 * time.Second,
		InlineBudget:     20 * time.Millisecond,
		TabBudget:        50 * time.Millisecond,
		PCDTabBudget:     10 * time.Millisecond,
	}
}

// defaultDataDir mirrors spec section 6's per-platform file-system layout.
func defaultDataDir() string {
	if runtimeIsWindows() {
		if v := os.Getenv("LOCALAPPDATA"); v != "" {
			return filepath.Join(v, "PSCue")
		}
	}
	xdg := os.Getenv("XDG_DATA_HOME")
	if xdg == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			xdg = filepath.Join(home, ".local", "share")
		}
	}
	return filepath.Join(xdg, "PSCue")
}

func runtimeIsWindows() bool {
	return os.PathSeparator == '\\'
}

// DBPath returns the full path to the learned-data database, per spec
// section 4.7.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "learned-data.db")
}

// LoadFile layers YAML overrides from path onto cfg in place. A missing
// file is not an error (config is optional everywhere in PSCue); a
// malformed file falls back to the existing values plus a diagnostic,
// matching spec section 7's "configuration errors fall back to defaults".
func LoadFile(cfg *Config, path string) (diagnostic string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		return fmt.Sprintf("config: could not read %s: %v (using previous values)", path, err)
	}
	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Sprintf("config: could not parse %s: %v (using previous values)", path, err)
	}
	mergeYAML(cfg, &overlay, data)
	return ""
}

// mergeYAML only overwrites fields that were actually present in the YAML
// document, so a partial override file cannot zero out defaults it never
// mentioned.
func mergeYAML(cfg, overlay *Config, raw []byte) {
	var generic map[string]interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return
	}
	if _, ok := generic["debug"]; ok {
		cfg.Debug = overlay.Debug
	}
	if _, ok := generic["disable_learning"]; ok {
		cfg.DisableLearning = overlay.DisableLearning
	}
	if _, ok := generic["history_size"]; ok {
		cfg.HistorySize = overlay.HistorySize
	}
	if _, ok := generic["max_commands"]; ok {
		cfg.MaxCommands = overlay.MaxCommands
	}
	if _, ok := generic["max_args_per_cmd"]; ok {
		cfg.MaxArgsPerCmd = overlay.MaxArgsPerCmd
	}
	if _, ok := generic["decay_days"]; ok {
		cfg.DecayDays = overlay.DecayDays
	}
	if _, ok := generic["ml_enabled"]; ok {
		cfg.MLEnabled = overlay.MLEnabled
	}
	if _, ok := generic["ml_ngram_order"]; ok {
		cfg.MLNgramOrder = overlay.MLNgramOrder
	}
	if _, ok := generic["ml_ngram_min_freq"]; ok {
		cfg.MLNgramMinFreq = overlay.MLNgramMinFreq
	}
	if _, ok := generic["workflow_learning"]; ok {
		cfg.WorkflowLearning = overlay.WorkflowLearning
	}
	if _, ok := generic["workflow_min_frequency"]; ok {
		cfg.WorkflowMinFrequency = overlay.WorkflowMinFrequency
	}
	if _, ok := generic["workflow_max_time_delta_minutes"]; ok {
		cfg.WorkflowMaxTimeDelta = overlay.WorkflowMaxTimeDelta
	}
	if _, ok := generic["workflow_min_confidence"]; ok {
		cfg.WorkflowMinConfidence = overlay.WorkflowMinConfidence
	}
	if _, ok := generic["ignore_patterns"]; ok {
		cfg.IgnorePatterns = overlay.IgnorePatterns
	}
	if _, ok := generic["data_dir"]; ok && overlay.DataDir != "" {
		cfg.DataDir = overlay.DataDir
	}
	if _, ok := generic["pcd"]; ok {
		cfg.PCD = overlay.PCD
	}
}

// LoadEnv layers environment-variable overrides onto cfg in place, per the
// spec section 6 table. Unparsable values are skipped with a diagnostic
// rather than aborting (spec section 7).
func LoadEnv(cfg *Config, getenv func(string) string) (diagnostics []string) {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		v := getenv(key)
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			diagnostics = append(diagnostics, fmt.Sprintf("config: invalid bool for %s=%q, using default", key, v))
			return
		}
		*dst = b
	}
	integer := func(key string, dst *int) {
		v := getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			diagnostics = append(diagnostics, fmt.Sprintf("config: invalid int for %s=%q, using default", key, v))
			return
		}
		*dst = n
	}
	float := func(key string, dst *float64) {
		v := getenv(key)
		if v == "" {
			return
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			diagnostics = append(diagnostics, fmt.Sprintf("config: invalid float for %s=%q, using default", key, v))
			return
		}
		*dst = f
	}

	boolean("PSCUE_DEBUG", &cfg.Debug)
	boolean("PSCUE_DISABLE_LEARNING", &cfg.DisableLearning)
	integer("PSCUE_HISTORY_SIZE", &cfg.HistorySize)
	integer("PSCUE_MAX_COMMANDS", &cfg.MaxCommands)
	integer("PSCUE_MAX_ARGS_PER_CMD", &cfg.MaxArgsPerCmd)
	float("PSCUE_DECAY_DAYS", &cfg.DecayDays)
	boolean("PSCUE_ML_ENABLED", &cfg.MLEnabled)
	integer("PSCUE_ML_NGRAM_ORDER", &cfg.MLNgramOrder)
	integer("PSCUE_ML_NGRAM_MIN_FREQ", &cfg.MLNgramMinFreq)
	boolean("PSCUE_WORKFLOW_LEARNING", &cfg.WorkflowLearning)
	integer("PSCUE_WORKFLOW_MIN_FREQUENCY", &cfg.WorkflowMinFrequency)
	float("PSCUE_WORKFLOW_MIN_CONFIDENCE", &cfg.WorkflowMinConfidence)
	str("PSCUE_DATA_DIR", &cfg.DataDir)

	if v := getenv("PSCUE_WORKFLOW_MAX_TIME_DELTA_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WorkflowMaxTimeDelta = time.Duration(n) * time.Minute
		} else {
			diagnostics = append(diagnostics, fmt.Sprintf("config: invalid int for PSCUE_WORKFLOW_MAX_TIME_DELTA_MINUTES=%q, using default", v))
		}
	}
	if v := getenv("PSCUE_IGNORE_PATTERNS"); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.IgnorePatterns = parts
	}

	return diagnostics
}

// Load assembles a Config from defaults, an optional YAML file, and the
// environment, in that precedence order (environment wins), matching the
// teacher's layered-override pattern in internal/config/user_config.go.
func Load(yamlPath string, getenv func(string) string) (*Config, []string) {
	cfg := DefaultConfig()
	var diagnostics []string
	if yamlPath != "" {
		if d := LoadFile(cfg, yamlPath); d != "" {
			diagnostics = append(diagnostics, d)
		}
	}
	diagnostics = append(diagnostics, LoadEnv(cfg, getenv)...)
	return cfg, diagnostics
}

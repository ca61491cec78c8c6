// Package config loads the RepoMap Configuration value described in the
// analysis facade's external interface: a nested record with defaults for
// every option, so an empty configuration is valid.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// RootConfig holds project-root-level options.
type RootConfig struct {
	ProjectRoot  string `mapstructure:"project_root"`
	CacheDir     string `mapstructure:"cache_dir"`
	MapTokens    int    `mapstructure:"map_tokens"`
	MaxResults   int    `mapstructure:"max_results"`
	RefreshCache bool   `mapstructure:"refresh_cache"`
}

// PerfConfig holds worker-pool and matcher-cache tuning.
type PerfConfig struct {
	MaxWorkers         int  `mapstructure:"max_workers"`
	ParallelThreshold  int  `mapstructure:"parallel_threshold"`
	EnableProgress     bool `mapstructure:"enable_progress"`
	CacheSize          int  `mapstructure:"cache_size"`
	CacheTTLSeconds    int  `mapstructure:"cache_ttl"`
	AllowFallback      bool `mapstructure:"allow_fallback"`
}

// FuzzyConfig holds fuzzy-matcher options.
type FuzzyConfig struct {
	Threshold  int      `mapstructure:"threshold"`
	Strategies []string `mapstructure:"strategies"`
}

// SemanticConfig holds TF-IDF matcher options.
type SemanticConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	Threshold      float64 `mapstructure:"threshold"`
	MinWordLength  int     `mapstructure:"min_word_length"`
}

// DepsConfig holds dependency-graph and centrality options.
type DepsConfig struct {
	MaxGraphSize                 int      `mapstructure:"max_graph_size"`
	PerformanceThresholdSeconds  float64  `mapstructure:"performance_threshold_seconds"`
	CentralityAlgorithms         []string `mapstructure:"centrality_algorithms"`
}

// Configuration is the full Configuration record the Analysis Facade is
// constructed from. All fields have defaults; a zero-value Configuration
// passed through Load's defaulting behaves like an empty configuration.
type Configuration struct {
	Root     RootConfig     `mapstructure:"root"`
	Perf     PerfConfig     `mapstructure:"perf"`
	Fuzzy    FuzzyConfig    `mapstructure:"fuzzy"`
	Semantic SemanticConfig `mapstructure:"semantic"`
	Deps     DepsConfig     `mapstructure:"deps"`
}

// Default returns the Configuration with every documented default applied
// and ProjectRoot set to root (the only option without a built-in default).
func Default(root string) Configuration {
	return Configuration{
		Root: RootConfig{
			ProjectRoot: root,
			CacheDir:    filepath.Join(root, ".repomap", "cache"),
			MapTokens:   4096,
			MaxResults:  50,
		},
		Perf: PerfConfig{
			MaxWorkers:        4,
			ParallelThreshold: 10,
			EnableProgress:    true,
			CacheSize:         1000,
			CacheTTLSeconds:   3600,
		},
		Fuzzy: FuzzyConfig{
			Threshold:  70,
			Strategies: []string{"prefix", "substring", "levenshtein"},
		},
		Semantic: SemanticConfig{
			Enabled:       false,
			Threshold:     0.1,
			MinWordLength: 3,
		},
		Deps: DepsConfig{
			MaxGraphSize:                10000,
			PerformanceThresholdSeconds: 30.0,
			CentralityAlgorithms:        []string{"degree", "betweenness", "pagerank"},
		},
	}
}

// Load reads layered configuration (defaults, then an optional config file,
// then REPOMAP_-prefixed environment variables) into a Configuration bound
// to projectRoot. A missing config file is not an error.
func Load(projectRoot string) (Configuration, error) {
	def := Default(projectRoot)
	v := viper.New()

	v.SetDefault("root.project_root", def.Root.ProjectRoot)
	v.SetDefault("root.cache_dir", def.Root.CacheDir)
	v.SetDefault("root.map_tokens", def.Root.MapTokens)
	v.SetDefault("root.max_results", def.Root.MaxResults)
	v.SetDefault("root.refresh_cache", def.Root.RefreshCache)
	v.SetDefault("perf.max_workers", def.Perf.MaxWorkers)
	v.SetDefault("perf.parallel_threshold", def.Perf.ParallelThreshold)
	v.SetDefault("perf.enable_progress", def.Perf.EnableProgress)
	v.SetDefault("perf.cache_size", def.Perf.CacheSize)
	v.SetDefault("perf.cache_ttl", def.Perf.CacheTTLSeconds)
	v.SetDefault("perf.allow_fallback", def.Perf.AllowFallback)
	v.SetDefault("fuzzy.threshold", def.Fuzzy.Threshold)
	v.SetDefault("fuzzy.strategies", def.Fuzzy.Strategies)
	v.SetDefault("semantic.enabled", def.Semantic.Enabled)
	v.SetDefault("semantic.threshold", def.Semantic.Threshold)
	v.SetDefault("semantic.min_word_length", def.Semantic.MinWordLength)
	v.SetDefault("deps.max_graph_size", def.Deps.MaxGraphSize)
	v.SetDefault("deps.performance_threshold_seconds", def.Deps.PerformanceThresholdSeconds)
	v.SetDefault("deps.centrality_algorithms", def.Deps.CentralityAlgorithms)

	v.SetConfigName("repomap")
	v.SetConfigType("yaml")
	v.AddConfigPath(projectRoot)
	v.AddConfigPath(".")

	v.SetEnvPrefix("REPOMAP")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Configuration{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return Configuration{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Root.ProjectRoot == "" {
		cfg.Root.ProjectRoot = projectRoot
	}
	return cfg, Validate(cfg)
}

// Validate checks the recognized options against the ranges spec.md's
// external-interfaces table documents, returning a ConfigError-shaped error
// (wrapped by callers into the repomap error taxonomy).
func Validate(cfg Configuration) error {
	if cfg.Root.ProjectRoot == "" {
		return fmt.Errorf("root.project_root is required")
	}
	if info, err := os.Stat(cfg.Root.ProjectRoot); err != nil || !info.IsDir() {
		return fmt.Errorf("root.project_root %q is not an existing directory", cfg.Root.ProjectRoot)
	}
	if cfg.Perf.MaxWorkers < 1 || cfg.Perf.MaxWorkers > 16 {
		return fmt.Errorf("perf.max_workers must be in [1,16], got %d", cfg.Perf.MaxWorkers)
	}
	if cfg.Perf.CacheSize < 100 || cfg.Perf.CacheSize > 10000 {
		return fmt.Errorf("perf.cache_size must be in [100,10000], got %d", cfg.Perf.CacheSize)
	}
	if cfg.Fuzzy.Threshold < 0 || cfg.Fuzzy.Threshold > 100 {
		return fmt.Errorf("fuzzy.threshold must be in [0,100], got %d", cfg.Fuzzy.Threshold)
	}
	if cfg.Semantic.Threshold < 0 || cfg.Semantic.Threshold > 1 {
		return fmt.Errorf("semantic.threshold must be in [0,1], got %f", cfg.Semantic.Threshold)
	}
	return nil
}

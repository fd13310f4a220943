// Package config provides configuration loading and validation for the
// matching engine and its CLI harness. Every tuned constant of the engine is
// a named, documented field rather than a literal in the code.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// ScorerBounds is one heuristic scorer's rejection threshold and raw-score
// ceiling. Raw sums at or below Threshold reject the candidate; the range
// (Threshold, Max] rescales linearly to (0, 100].
type ScorerBounds struct {
	Threshold int `json:"threshold" validate:"min=0"`
	Max       int `json:"max" validate:"gtfield=Threshold"`
}

// Config represents the engine configuration, loadable from a JSON file.
// Missing values use defaults.
type Config struct {
	// Connections
	DatabaseURL  string `json:"database_url,omitempty"`             // PostgreSQL connection URL
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`           // ranking service API key
	GeminiModel  string `json:"gemini_model,omitempty"`             // ranking model name
	SearchURL    string `json:"search_url,omitempty" validate:"omitempty,url"` // semantic-search base URL

	// Scorer bounds
	StudentGroup ScorerBounds `json:"student_group"`
	StudentPost  ScorerBounds `json:"student_post"`
	GroupTopic   ScorerBounds `json:"group_topic"`
	PostNeeds    ScorerBounds `json:"post_needs"`

	// External pipeline sizing
	RerankPoolSize int `json:"rerank_pool_size" validate:"min=1"` // candidates per ranking call
	ShortlistLimit int `json:"shortlist_limit" validate:"min=1"`  // ids requested from semantic search
	SampleSize     int `json:"sample_size" validate:"min=1"`      // students sampled for AI staffing picks

	// Assignment behavior. RunLimit caps assignments written per staffing run
	// and bounds how far group capacities may expand toward the policy max.
	RunLimit int `json:"run_limit" validate:"min=1"`

	// GPA tiering. These are tuned heuristics carried over from operational
	// experience; change with care.
	GPAPercentile float64 `json:"gpa_percentile" validate:"gt=0,lt=1"` // high-tier quantile within a major
	GPAMinSamples int     `json:"gpa_min_samples" validate:"min=1"`    // samples required before tiering
	GPALowOffset  float64 `json:"gpa_low_offset" validate:"min=0"`     // high threshold minus this = low cutoff

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // debug logging
}

// Default returns the engine defaults.
func Default() *Config {
	return &Config{
		GeminiModel:    "gemini-2.0-flash",
		StudentGroup:   ScorerBounds{Threshold: 25, Max: 85},
		StudentPost:    ScorerBounds{Threshold: 25, Max: 95},
		GroupTopic:     ScorerBounds{Threshold: 20, Max: 90},
		PostNeeds:      ScorerBounds{Threshold: 25, Max: 85},
		RerankPoolSize: 8,
		ShortlistLimit: 50,
		SampleSize:     20,
		RunLimit:       100,
		GPAPercentile:  0.75,
		GPAMinSamples:  6,
		GPALowOffset:   1.0,
	}
}

// Load reads configuration from a JSON file, fills unset fields from
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	cfg.fillZeroes()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillZeroes restores defaults for numeric fields an explicit zero would
// break. A zero in the file means "not set", not "zero candidates".
func (c *Config) fillZeroes() {
	defaults := Default()
	if c.RerankPoolSize == 0 {
		c.RerankPoolSize = defaults.RerankPoolSize
	}
	if c.ShortlistLimit == 0 {
		c.ShortlistLimit = defaults.ShortlistLimit
	}
	if c.SampleSize == 0 {
		c.SampleSize = defaults.SampleSize
	}
	if c.RunLimit == 0 {
		c.RunLimit = defaults.RunLimit
	}
	if c.GPAPercentile == 0 {
		c.GPAPercentile = defaults.GPAPercentile
	}
	if c.GPAMinSamples == 0 {
		c.GPAMinSamples = defaults.GPAMinSamples
	}
	if c.StudentGroup == (ScorerBounds{}) {
		c.StudentGroup = defaults.StudentGroup
	}
	if c.StudentPost == (ScorerBounds{}) {
		c.StudentPost = defaults.StudentPost
	}
	if c.GroupTopic == (ScorerBounds{}) {
		c.GroupTopic = defaults.GroupTopic
	}
	if c.PostNeeds == (ScorerBounds{}) {
		c.PostNeeds = defaults.PostNeeds
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

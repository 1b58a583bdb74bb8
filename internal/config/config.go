// Package config provides configuration management for the admission
// filter. It defines the policy tunables, their defaults, and validation.
package config

import "time"

// Config holds every tunable of the admission policy, the link
// extractor, and the stats collector.
type Config struct {
	// Domain admission
	AllowedDomains []string `mapstructure:"allowed_domains" yaml:"allowed_domains"` // Root domains permitted for crawling

	// Static pattern rules
	DisallowedExtensions []string `mapstructure:"disallowed_extensions" yaml:"disallowed_extensions"` // File extensions rejected by path suffix
	TrapPatterns         []string `mapstructure:"trap_patterns" yaml:"trap_patterns"`                 // Ordered regex patterns, first match rejects

	// Structural heuristics
	MaxPathDepth   int `mapstructure:"max_path_depth" yaml:"max_path_depth"`     // Maximum non-empty path segments
	MaxQueryParams int `mapstructure:"max_query_params" yaml:"max_query_params"` // Maximum query parameters
	MaxURLLength   int `mapstructure:"max_url_length" yaml:"max_url_length"`     // Maximum absolute URL length

	// Dynamic trap tracking
	PatternCeiling int `mapstructure:"pattern_ceiling" yaml:"pattern_ceiling"` // Occurrences of a path pattern before rejection

	// Link extraction
	MaxBodySize int64 `mapstructure:"max_body_size" yaml:"max_body_size"` // Response bodies above this are skipped

	// Stats collection
	MinPageTokens      int           `mapstructure:"min_page_tokens" yaml:"min_page_tokens"`         // Pages below this token count record no stats
	CheckpointInterval int           `mapstructure:"checkpoint_interval" yaml:"checkpoint_interval"` // Checkpoint every N unique pages
	CheckpointMinGap   time.Duration `mapstructure:"checkpoint_min_gap" yaml:"checkpoint_min_gap"`   // Minimum spacing between checkpoint writes
	StatsPath          string        `mapstructure:"stats_path" yaml:"stats_path"`                   // Path of the JSON stats snapshot
	DatabasePath       string        `mapstructure:"database_path" yaml:"database_path"`             // SQLite checkpoint database ("" disables)
	TopWords           int           `mapstructure:"top_words" yaml:"top_words"`                     // Word-frequency entries kept in snapshots
	SubdomainSamples   int           `mapstructure:"subdomain_samples" yaml:"subdomain_samples"`     // Sample URLs kept per subdomain
}

// DefaultConfig returns a configuration with default values.
// The allow-list and extension set come from the crawl assignment this
// filter was built for.
func DefaultConfig() *Config {
	return &Config{
		AllowedDomains: []string{
			"ics.uci.edu",
			"cs.uci.edu",
			"informatics.uci.edu",
			"stat.uci.edu",
		},
		DisallowedExtensions: []string{
			"css", "js", "bmp", "gif", "jpe", "jpg", "jpeg", "ico",
			"png", "tif", "tiff", "mid", "mp2", "mp3", "mp4",
			"wav", "avi", "mov", "mpeg", "ram", "m4v", "mkv", "ogg", "ogv", "pdf",
			"ps", "eps", "tex", "ppt", "pptx", "doc", "docx", "xls", "xlsx", "names",
			"data", "dat", "exe", "bz2", "tar", "msi", "bin", "7z", "psd", "dmg", "iso",
			"epub", "dll", "cnf", "tgz", "sha1",
			"thmx", "mso", "arff", "rtf", "jar", "csv",
			"rm", "smil", "wmv", "swf", "wma", "zip", "rar", "gz",
		},
		TrapPatterns: []string{
			`/calendar/`,
			`/events?/\d{4}`,
			`[?&]ical=`,
			`/wp-admin`,
			`/wp-login`,
			`/wp-json`,
			`/feed/?$`,
			`/tag/`,
			`[?&]action=(login|edit|download|source|raw|diff|history)`,
			`[?&]do=(login|edit|media|diff|revisions|backlink|recent|index)`,
			`[?&](page|paged|offset|start)=\d{3,}`,
			`[?&]share=`,
			`[?&]replytocom=`,
			`^(mailto|tel|javascript|ftp|file|data):`,
		},
		MaxPathDepth:       15,
		MaxQueryParams:     5,
		MaxURLLength:       300,
		PatternCeiling:     100,
		MaxBodySize:        10 << 20,
		MinPageTokens:      25,
		CheckpointInterval: 100,
		CheckpointMinGap:   1 * time.Second,
		StatsPath:          "./crawl_stats.json",
		DatabasePath:       "./linksift.db",
		TopWords:           50,
		SubdomainSamples:   5,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if len(c.AllowedDomains) == 0 {
		return ErrNoAllowedDomains
	}

	if c.MaxPathDepth <= 0 || c.MaxQueryParams <= 0 || c.MaxURLLength <= 0 {
		return ErrInvalidStructuralLimit
	}

	if c.PatternCeiling <= 0 {
		return ErrInvalidPatternCeiling
	}

	if c.MaxBodySize <= 0 {
		return ErrInvalidBodySize
	}

	if c.CheckpointInterval <= 0 {
		return ErrInvalidCheckpointInterval
	}

	// Enforce a minimum gap so a burst of checkpoints cannot saturate the
	// background writer.
	if c.CheckpointMinGap < 100*time.Millisecond {
		c.CheckpointMinGap = 100 * time.Millisecond
	}

	if c.StatsPath == "" {
		return ErrEmptyStatsPath
	}

	return nil
}

package config

import "errors"

// Configuration validation errors
var (
	ErrNoAllowedDomains          = errors.New("at least one allowed domain is required")
	ErrInvalidStructuralLimit    = errors.New("structural limits must be greater than 0")
	ErrInvalidPatternCeiling     = errors.New("pattern ceiling must be greater than 0")
	ErrInvalidBodySize           = errors.New("max body size must be greater than 0")
	ErrInvalidCheckpointInterval = errors.New("checkpoint interval must be greater than 0")
	ErrEmptyStatsPath            = errors.New("stats path cannot be empty")
)

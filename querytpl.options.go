package querytpl

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	cacheSize         int
	allowExcessParams bool
	registerer        prometheus.Registerer
	storage           QueryStorage
	logger            *zap.Logger
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		cacheSize:         DefaultCacheSize,
		allowExcessParams: false,
		registerer:        nil,
		storage:           nil,
		logger:            nil,
	}
}

// WithCacheSize sets how many compiled templates the engine keeps.
// Use 0 to disable caching.
// Default: 512
func WithCacheSize(size int) Option {
	return func(c *engineConfig) {
		c.cacheSize = size
	}
}

// WithAllowExcessParams stops the engine from rejecting parameters that no
// marker consumed.
// Default: false (excess parameters are an error)
func WithAllowExcessParams(allow bool) Option {
	return func(c *engineConfig) {
		c.allowExcessParams = allow
	}
}

// WithMetrics registers the engine's Prometheus collectors with reg.
// Default: nil (no metrics)
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *engineConfig) {
		c.registerer = reg
	}
}

// WithStorage sets the query catalog used by BuildNamed and SaveQuery.
// Default: nil (no catalog)
func WithStorage(storage QueryStorage) Option {
	return func(c *engineConfig) {
		c.storage = storage
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

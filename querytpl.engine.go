package querytpl

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/itsatony/go-querytpl/internal"
	"go.uber.org/zap"
)

// Engine is the main entry point for building queries.
// It compiles templates, caches the compiled form by source text, and
// executes them against parameter lists. An Engine is immutable after New
// and safe for concurrent use; every build owns its own scan state.
type Engine struct {
	config   *engineConfig
	executor *internal.Executor
	cache    *lru.Cache[string, *Template]
	metrics  *engineMetrics
	storage  QueryStorage
	logger   *zap.Logger
}

// New creates a new Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if config.cacheSize < 0 {
		return nil, NewConfigError(MetaKeyCacheSize, ErrMsgInvalidCacheSize, nil)
	}
	var cache *lru.Cache[string, *Template]
	if config.cacheSize > 0 {
		c, err := lru.New[string, *Template](config.cacheSize)
		if err != nil {
			return nil, NewConfigError(MetaKeyCacheSize, ErrMsgInvalidCacheSize, err)
		}
		cache = c
	}

	metrics, err := newEngineMetrics(config.registerer)
	if err != nil {
		return nil, NewConfigError(MetaKeyMetrics, ErrMsgMetricsRegister, err)
	}

	executor := internal.NewExecutor(internal.ExecutorConfig{
		AllowExcessParams: config.allowExcessParams,
	}, logger)

	logger.Debug(LogMsgEngineCreated, zap.Int(LogFieldCacheSize, config.cacheSize))

	return &Engine{
		config:   config,
		executor: executor,
		cache:    cache,
		metrics:  metrics,
		storage:  config.storage,
		logger:   logger,
	}, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Parse compiles a template. Malformed block structure is reported here.
// The returned Template can be built many times with different parameters.
func (e *Engine) Parse(source string) (*Template, error) {
	if e.cache != nil {
		if tmpl, ok := e.cache.Get(source); ok {
			e.metrics.observeCache(true)
			e.logger.Debug(LogMsgCacheHit, zap.Int(LogFieldSource, len(source)))
			return tmpl, nil
		}
		e.metrics.observeCache(false)
		e.logger.Debug(LogMsgCacheMiss, zap.Int(LogFieldSource, len(source)))
	}

	nodes, err := internal.NewScanner(source, e.logger).Scan()
	if err != nil {
		return nil, translateError(err)
	}

	tmpl := newTemplate(source, nodes, e)
	e.logger.Debug(LogMsgTemplateParsed,
		zap.Int(LogFieldSource, len(source)),
		zap.Int(LogFieldMarkers, tmpl.markers))

	if e.cache != nil {
		e.cache.Add(source, tmpl)
	}
	return tmpl, nil
}

// Build substitutes params into the markers of source, in order.
// Exactly one parameter is consumed per marker, including markers inside
// blocks elided by Skip.
func (e *Engine) Build(source string, params ...Value) (string, error) {
	tmpl, err := e.Parse(source)
	if err != nil {
		e.metrics.observeBuild(err)
		e.logBuildError(err)
		return "", err
	}
	return tmpl.Build(params...)
}

// BuildArgs is Build with plain Go values, converted with ValueOf.
func (e *Engine) BuildArgs(source string, args ...any) (string, error) {
	params, err := ValuesOf(args...)
	if err != nil {
		e.metrics.observeBuild(err)
		e.logBuildError(err)
		return "", err
	}
	return e.Build(source, params...)
}

// Skip returns the skip signal value.
func (e *Engine) Skip() Value {
	return Skip()
}

// Storage returns the configured query catalog, or nil.
func (e *Engine) Storage() QueryStorage {
	return e.storage
}

// BuildNamed loads the latest version of a stored query and builds it.
func (e *Engine) BuildNamed(ctx context.Context, name string, params ...Value) (string, error) {
	if e.storage == nil {
		return "", NewNoStorageError(name)
	}

	stored, err := e.storage.Get(ctx, name)
	if err != nil {
		return "", err
	}
	e.logger.Debug(LogMsgQueryLoaded,
		zap.String(LogFieldQueryName, name),
		zap.Int(LogFieldVersion, stored.Version))

	return e.Build(stored.Source, params...)
}

// SaveQuery validates the query's template and stores it as a new version.
func (e *Engine) SaveQuery(ctx context.Context, query *StoredQuery) error {
	if e.storage == nil {
		return NewNoStorageError(query.Name)
	}
	if _, err := e.Parse(query.Source); err != nil {
		return err
	}
	if err := e.storage.Save(ctx, query); err != nil {
		return err
	}

	e.logger.Debug(LogMsgQuerySaved,
		zap.String(LogFieldQueryName, query.Name),
		zap.Int(LogFieldVersion, query.Version))
	return nil
}

// execute runs a compiled template and records the outcome
func (e *Engine) execute(tmpl *Template, params []Value) (string, error) {
	out, err := e.executor.Execute(tmpl.nodes, params)
	if err != nil {
		err = translateError(err)
		e.metrics.observeBuild(err)
		e.logBuildError(err)
		return "", err
	}

	e.metrics.observeBuild(nil)
	e.logger.Debug(LogMsgQueryBuilt,
		zap.Int(LogFieldMarkers, tmpl.markers),
		zap.Int(LogFieldParams, len(params)))
	return out, nil
}

func (e *Engine) logBuildError(err error) {
	e.logger.Debug(LogMsgBuildFailed,
		zap.String(LogFieldCode, ErrorCode(err)),
		zap.Error(err))
}

// Default engine for the package-level helpers
var defaultEngine = MustNew()

// Build builds a query with the default engine.
func Build(source string, params ...Value) (string, error) {
	return defaultEngine.Build(source, params...)
}

// BuildArgs builds a query from plain Go values with the default engine.
func BuildArgs(source string, args ...any) (string, error) {
	return defaultEngine.BuildArgs(source, args...)
}

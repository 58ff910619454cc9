package querytpl

import "time"

// Marker syntax, as written in templates
const (
	MarkerGeneric    = "?"
	MarkerInt        = "?d"
	MarkerFloat      = "?f"
	MarkerList       = "?a"
	MarkerIdentifier = "?#"
	BlockOpen        = "{"
	BlockClose       = "}"
)

// Engine defaults
const (
	// DefaultCacheSize is the number of compiled templates kept per engine
	DefaultCacheSize = 512
)

// Error code constants for categorization
const (
	ErrCodeMarker     = "QUERYTPL_MARKER"
	ErrCodeConversion = "QUERYTPL_CONVERSION"
	ErrCodeParse      = "QUERYTPL_PARSE"
	ErrCodeStream     = "QUERYTPL_STREAM"
	ErrCodeValue      = "QUERYTPL_VALUE"
	ErrCodeConfig     = "QUERYTPL_CONFIG"
	ErrCodeStorage    = "QUERYTPL_STORAGE"
	ErrCodeUnknown    = "QUERYTPL_UNKNOWN"
)

// Metadata keys for cuserr.WithMetadata
const (
	MetaKeyLine       = "line"
	MetaKeyColumn     = "column"
	MetaKeyOffset     = "offset"
	MetaKeyMarker     = "marker"
	MetaKeyKind       = "kind"
	MetaKeyParamIndex = "param_index"
	MetaKeyParamCount = "param_count"
	MetaKeyReason     = "reason"
	MetaKeyGoType     = "go_type"
	MetaKeyOption     = "option"
	MetaKeyQueryName  = "query_name"
	MetaKeyCacheSize  = "cache_size"
	MetaKeyMetrics    = "metrics"
)

// Log message constants
const (
	LogMsgEngineCreated  = "engine created"
	LogMsgCacheHit       = "compiled template cache hit"
	LogMsgCacheMiss      = "compiled template cache miss"
	LogMsgTemplateParsed = "template parsed"
	LogMsgBuildFailed    = "query build failed"
	LogMsgQueryBuilt     = "query built"
	LogMsgQuerySaved     = "query saved"
	LogMsgQueryLoaded    = "query loaded from storage"
)

// Log field names
const (
	LogFieldSource    = "source_length"
	LogFieldMarkers   = "marker_count"
	LogFieldParams    = "param_count"
	LogFieldCode      = "code"
	LogFieldQueryName = "query_name"
	LogFieldVersion   = "version"
	LogFieldCacheSize = "cache_size"
)

// Metrics names and label values
const (
	MetricsNamespace        = "querytpl"
	MetricBuildsTotal       = "builds_total"
	MetricBuildErrorsTotal  = "build_errors_total"
	MetricCacheLookupsTotal = "cache_lookups_total"
	MetricLabelResult       = "result"
	MetricLabelCode         = "code"
	MetricResultSuccess     = "success"
	MetricResultError       = "error"
	MetricResultHit         = "hit"
	MetricResultMiss        = "miss"
)

// Parameter document constants
const (
	// ParamTagSkip is the YAML tag that marks a skip parameter, e.g. "- !skip"
	ParamTagSkip = "!skip"
	// ParamKeySkip is the mapping key that marks a skip parameter in JSON, e.g. {"$skip": true}
	ParamKeySkip = "$skip"
	// TimeLayout is how time.Time parameters are rendered
	TimeLayout = "2006-01-02 15:04:05"
)

// Storage driver names
const (
	StorageDriverNameMemory     = "memory"
	StorageDriverNameFilesystem = "filesystem"
	StorageDriverNamePostgres   = "postgres"
)

// Filesystem storage constants
const (
	FilesystemDirPermissions  = 0755
	FilesystemFilePermissions = 0644
	FilesystemVersionPrefix   = "v"
	FilesystemVersionSuffix   = ".yaml"
)

// PostgreSQL storage defaults
const (
	PostgresDefaultMaxOpenConns    = 25
	PostgresDefaultMaxIdleConns    = 5
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultConnMaxIdleTime = 5 * time.Minute
	PostgresDefaultQueryTimeout    = 30 * time.Second
	PostgresTablePrefix            = "querytpl_"
	PostgresDriverName             = "postgres"
)

// Cached storage defaults
const (
	DefaultStorageCacheTTL        = 5 * time.Minute
	DefaultStorageCacheMaxEntries = 1000
)

// Stored query ID prefix
const (
	QueryIDPrefix = "qry_"
)

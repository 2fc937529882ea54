package config

// Environment variable names.
const (
	EnvClickHouseURL      = "CLICKHOUSE_URL"
	EnvClickHouseDatabase = "CLICKHOUSE_DATABASE"
	EnvHTTPTimeout        = "HTTP_TIMEOUT"
	EnvExportDir          = "EXPORT_DIR"
	EnvLogFile            = "LOG_FILE"
	EnvDebug              = "DEBUG"
	EnvNotifyOnLoad       = "NOTIFY_ON_LOAD"
	EnvWatchEnv           = "WATCH_ENV"
)

// Fallbacks used when the environment does not name an endpoint.
const (
	DefaultClickHouseURL      = "http://localhost:8123/"
	DefaultClickHouseDatabase = "default"
)

const appDirName = "usagedash"

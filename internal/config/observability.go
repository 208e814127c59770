package config

// ObservabilityConfig holds observability configuration.
// The OTLP endpoint itself is read by the exporters from the standard
// OTEL_EXPORTER_OTLP_* variables.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"TODOLIST_OTEL_ENABLED" default:"false"`
	ServiceName string `env:"OTEL_SERVICE_NAME" default:"todolist"`
	LogLevel    string `env:"TODOLIST_LOG_LEVEL" default:"info"`
}

package bootstrap

import (
	"log/slog"

	"github.com/signonhq/signon/config"
	"github.com/signonhq/signon/internal/observability/statsd"
)

// BuildMetricsSink creates the StatsD client when metrics are enabled.
// Returns nil when disabled or when the sink cannot be dialed; callers and
// the client itself treat a nil sink as a no-op.
func BuildMetricsSink(cfg config.ObservabilityMetricsConfig, logger *slog.Logger) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Address: cfg.StatsdAddress,
		Prefix:  "signon",
		Logger:  logger,
	})
	if err != nil {
		if logger != nil {
			logger.Warn("metrics disabled: statsd dial failed", "error", err)
		}
		return nil
	}
	if logger != nil {
		logger.Info("metrics enabled", "statsd_address", cfg.StatsdAddress)
	}
	return client
}

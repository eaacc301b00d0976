package http

import (
	"expvar"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AlibekovAA/no-tion/internal/common/httpmetrics"
	"github.com/AlibekovAA/no-tion/internal/common/logger"
)

// NewOpsHandler serves /health, /metrics, /debug/vars and /debug/users for
// operators.
func NewOpsHandler(log *logger.Logger, stats StatsFunc, users UsersFunc) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/health", HealthHandler(stats))
	mux.Handle("/debug/users", UsersHandler(users))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/vars", expvar.Handler())

	return RecoveryMiddleware(log)(httpmetrics.New().Wrap(mux))
}

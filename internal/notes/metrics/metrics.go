package metrics

import (
	"strconv"
	"time"

	commonerrors "github.com/AlibekovAA/no-tion/internal/common/errors"
	observabilitymetrics "github.com/AlibekovAA/no-tion/internal/observability/metrics"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

func IncrementActiveConnections() {
	observabilitymetrics.ConnectionsActive.Inc()
}

func DecrementActiveConnections() {
	observabilitymetrics.ConnectionsActive.Dec()
}

func IncrementAcceptedConnections() {
	observabilitymetrics.ConnectionsTotal.Inc()
}

func SetQueuedConnections(n int) {
	observabilitymetrics.ConnectionsQueued.Set(float64(n))
}

func IncrementDisconnection(reason string) {
	observabilitymetrics.Disconnections.WithLabelValues(reason).Inc()
}

func ObserveSession(d time.Duration) {
	observabilitymetrics.SessionDurationSeconds.Observe(d.Seconds())
}

// ObserveCommand records one handled command. A non-nil err counts as an
// error result and, for domain errors, under domain_errors_total too.
func ObserveCommand(command string, err error, d time.Duration) {
	result := ResultOK
	if err != nil {
		result = ResultError
		RecordDomainError(err)
	}
	observabilitymetrics.CommandsTotal.WithLabelValues(command, result).Inc()
	observabilitymetrics.CommandDurationSeconds.WithLabelValues(command).Observe(d.Seconds())
}

func RecordDomainError(err error) {
	de, ok := commonerrors.AsDomainError(err)
	if !ok {
		return
	}
	observabilitymetrics.DomainErrorsTotal.WithLabelValues(
		string(de.Category()),
		de.Code(),
		strconv.Itoa(de.Status()),
	).Inc()
}

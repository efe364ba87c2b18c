package ledger

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tchajed/pricedb/program"
)

// Metrics counts invocations by program, command and outcome, plus the
// account bytes persisted by successful ones.
type Metrics struct {
	invocations  *prometheus.CounterVec
	bytesWritten prometheus.Counter
}

// NewMetrics registers the ledger collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pricedb",
			Subsystem: "ledger",
			Name:      "invocations_total",
			Help:      "Program invocations by program, command and outcome.",
		}, []string{"program", "command", "outcome"}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pricedb",
			Subsystem: "ledger",
			Name:      "account_bytes_written_total",
			Help:      "Account data bytes persisted by committed invocations.",
		}),
	}
	reg.MustRegister(m.invocations, m.bytesWritten)
	return m
}

var outcomes = []struct {
	err   error
	label string
}{
	{ErrNotJournaled, "committed_unjournaled"},
	{program.ErrInvalidCommand, "invalid_command"},
	{program.ErrNotEnoughAccounts, "not_enough_accounts"},
	{program.ErrAlreadyInitialized, "already_initialized"},
	{program.ErrUninitialized, "uninitialized"},
	{program.ErrMissingAuthorization, "missing_authorization"},
	{program.ErrNotOwner, "not_owner"},
	{program.ErrMalformedBuffer, "malformed_buffer"},
	{program.ErrCapacityExceeded, "capacity_exceeded"},
	{program.ErrKeyNotFound, "key_not_found"},
	{program.ErrAccountDataTooSmall, "account_data_too_small"},
	{ErrAccountNotFound, "account_not_found"},
}

// Outcome labels err for metrics and logs.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	for _, o := range outcomes {
		if errors.Is(err, o.err) {
			return o.label
		}
	}
	return "error"
}

func (m *Metrics) observe(prog, command string, err error) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(prog, command, Outcome(err)).Inc()
}

func (m *Metrics) wrote(n int) {
	if m == nil {
		return
	}
	m.bytesWritten.Add(float64(n))
}

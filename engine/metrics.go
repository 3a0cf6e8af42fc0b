package engine

import "github.com/prometheus/client_golang/prometheus"

var (
	inboundCommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "offsync",
		Name:      "inbound_commands_total",
		Help:      "Inbound offchain commands by type and result.",
	}, []string{"command_type", "result"})

	driverTaskErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "offsync",
		Name:      "driver_task_errors_total",
		Help:      "Failed workflow driver tasks by status bucket.",
	}, []string{"status"})

	ledgerSubmissionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "offsync",
		Name:      "ledger_submissions_total",
		Help:      "Successful p2p transfer submissions to the ledger.",
	})
)

func init() {
	prometheus.MustRegister(inboundCommandsTotal, driverTaskErrorsTotal, ledgerSubmissionsTotal)
}

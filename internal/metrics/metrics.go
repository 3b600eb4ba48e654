package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for ledger mutations and feed reconciliation. Registered on the
// default registry and exposed via promhttp on /metrics.
var (
	EntriesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fintrack_ledger_entries_created_total",
		Help: "Number of ledger entries created through the API.",
	})

	EntriesUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fintrack_ledger_entries_updated_total",
		Help: "Number of ledger entries updated through the API.",
	})

	EntriesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fintrack_ledger_entries_deleted_total",
		Help: "Number of ledger entries soft-deleted through the API.",
	})

	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fintrack_sync_runs_total",
		Help: "Number of feed reconciliation runs by outcome.",
	}, []string{"outcome"})

	SyncPages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fintrack_sync_pages_total",
		Help: "Number of feed pages committed.",
	})

	SyncRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fintrack_sync_records_total",
		Help: "Number of feed records applied by kind.",
	}, []string{"kind"})

	WebhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fintrack_webhooks_received_total",
		Help: "Number of webhook deliveries received by code.",
	}, []string{"code"})
)

package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesApplied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tally",
		Subsystem: "ledger",
		Name:      "batches_applied_total",
		Help:      "Number of batch adjustments applied.",
	})

	batchParticipantsModified = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tally",
		Subsystem: "ledger",
		Name:      "batch_participants_modified_total",
		Help:      "Number of distinct participants modified by batch adjustments.",
	})

	participantCount = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tally",
		Subsystem: "ledger",
		Name:      "participants",
		Help:      "Current number of participants in the ledger.",
	})
)

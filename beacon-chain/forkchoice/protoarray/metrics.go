package protoarray

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var (
	log = logrus.WithField("prefix", "forkchoice-protoarray")

	headSlotNumber = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proto_array_head_slot",
			Help: "The slot number of the current head.",
		},
	)
	nodeCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proto_array_node_count",
			Help: "The number of saved nodes in the fork choice store.",
		},
	)
	queuedAttestationCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proto_array_queued_attestation_count",
			Help: "The number of gossip attestations waiting for their slot to end.",
		},
	)
	headChangesCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proto_array_head_changed_count",
			Help: "The number of times head changes.",
		},
	)
	calledHeadCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proto_array_head_requested_count",
			Help: "The number of times someone called head.",
		},
	)
	processedBlockCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proto_array_block_processed_count",
			Help: "The number of times a block is processed for fork choice.",
		},
	)
	processedAttestationCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proto_array_attestation_processed_count",
			Help: "The number of times an attestation is processed for fork choice.",
		},
	)
	staleAttestationCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proto_array_stale_attestation_count",
			Help: "The number of validator votes dropped for not being newer than the recorded one.",
		},
	)
	prunedCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proto_array_pruned_count",
			Help: "The number of nodes removed by pruning.",
		},
	)
	proposerBoostCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proto_array_proposer_boost_applied_count",
			Help: "The number of times a proposer boost score was applied to a node.",
		},
	)
	invalidatedNodesCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proto_array_invalidated_nodes_count",
			Help: "The number of nodes marked invalid by the execution engine.",
		},
	)
)

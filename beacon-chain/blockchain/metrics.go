package blockchain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	balancesCacheHit = promauto.NewCounter(prometheus.CounterOpts{
		Name: "justified_balances_cache_hit",
		Help: "The number of justified balance requests that are present in the cache.",
	})
	balancesCacheMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "justified_balances_cache_miss",
		Help: "The number of justified balance requests that aren't present in the cache.",
	})
	receivedBlocks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockchain_received_blocks_total",
		Help: "The number of blocks inserted into fork choice by the service.",
	})
	rejectedGossipAttestations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockchain_rejected_gossip_attestations_total",
		Help: "The number of gossip attestations rejected for their timing.",
	})
	invalidPayloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "blockchain_invalid_payloads_total",
		Help: "The number of INVALID payload statuses received from the execution engine.",
	})
	headSlot = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "beacon_head_slot",
		Help: "Slot of the head block of the beacon chain",
	})
	tipsCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "forkchoice_tips_count",
		Help: "The number of leaves of the fork choice tree at the last status report.",
	})
)

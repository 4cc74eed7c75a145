package kv

// The schema will define how to store and retrieve data from the db.
// Block summaries are keyed by big endian slot followed by the block root, so a
// cursor walks them in slot order and a finalized prefix can be dropped with a
// single seek.
var (
	blockSummariesBucket  = []byte("block-summaries")
	checkpointBucket      = []byte("checkpoints")
	balancesBucket        = []byte("justified-balances")
	executionStatusBucket = []byte("execution-status")

	// Checkpoint keys.
	justifiedCheckpointKey = []byte("justified-checkpoint")
	finalizedCheckpointKey = []byte("finalized-checkpoint")
)

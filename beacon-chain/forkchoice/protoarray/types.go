// Package protoarray implements the LMD-GHOST fork choice rule over a flat array of
// block nodes, with execution payload status tracking for optimistic sync.
package protoarray

import (
	"sync"

	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
)

// ForkChoice defines the overall fork choice store which includes all block nodes, validator's latest votes and balances.
type ForkChoice struct {
	store     *Store
	votes     []Vote // tracks individual validator's last vote.
	votesLock sync.RWMutex
	balances  []uint64 // tracks individual validator's last justified balances.

	// Gossip attestations for the current slot, applied once the slot is over.
	queuedAttestations []*forkchoicetypes.IndexedAttestation
}

// Store defines the fork choice store which includes block nodes and the last view of checkpoint information.
// Lock order: ForkChoice.votesLock, nodesLock, checkpointsLock, proposerBoostLock.
type Store struct {
	pruneThreshold      uint64                              // do not prune tree unless threshold is reached.
	justifiedEpoch      types.Epoch                         // epochs used for node viability, set on every weight update.
	finalizedEpoch      types.Epoch                         // epochs used for node viability, set on every weight update.
	nodes               []*Node                             // list of block nodes, each node is a representation of one block.
	nodesIndices        map[[32]byte]uint64                 // the root of block node and the nodes index in the list.
	payloadIndices      map[[32]byte]uint64                 // the payload hash of block node and the index in the list.
	canonicalNodes      map[[32]byte]bool                   // the canonical block nodes.
	slashedIndices      map[types.ValidatorIndex]bool       // the list of equivocating validator indices.
	headRoot            [32]byte                            // the last computed head root.
	highestReceivedSlot types.Slot                          // the highest slot of any inserted block.
	viabilityChanged    bool                                // node or store epochs moved since the last weight update.
	statusErr           error                               // execution status contradiction, head is refused while set.
	nodesLock           sync.RWMutex

	justifiedCheckpoint           *forkchoicetypes.Checkpoint // latest justified checkpoint in store.
	bestJustifiedCheckpoint       *forkchoicetypes.Checkpoint // best justified checkpoint in store.
	prevJustifiedCheckpoint       *forkchoicetypes.Checkpoint // previous justified checkpoint in store.
	finalizedCheckpoint           *forkchoicetypes.Checkpoint // latest finalized checkpoint in store.
	unrealizedJustifiedCheckpoint *forkchoicetypes.Checkpoint // best unrealized justified checkpoint in store.
	unrealizedFinalizedCheckpoint *forkchoicetypes.Checkpoint // best unrealized finalized checkpoint in store.
	currentSlot                   types.Slot                  // slot of the last on_tick.
	genesisTime                   uint64
	originRoot                    [32]byte // the root of the anchor block the store was started from.
	checkpointsLock               sync.RWMutex

	proposerBoostRoot          [32]byte // latest block root that was boosted after being received in a timely manner.
	previousProposerBoostRoot  [32]byte // previous block root that was boosted after being received in a timely manner.
	previousProposerBoostScore uint64   // previous proposer boosted root score.
	proposerBoostLock          sync.RWMutex
}

// Node defines the individual block which includes its block parent, ancestor and how much weight accounted for it.
// This is used as an array based stateful DAG for efficient fork choice look up.
type Node struct {
	slot                types.Slot                      // slot of the block converted to the node.
	root                [32]byte                        // root of the block converted to the node.
	parentRoot          [32]byte                        // root of the parent block.
	stateRoot           [32]byte                        // post state root of the block.
	targetRoot          [32]byte                        // epoch boundary block root of the block's epoch.
	payloadHash         [32]byte                        // hash of the execution payload, zero before the merge.
	parent              uint64                          // parent index of this node.
	justified           forkchoicetypes.Checkpoint      // justified checkpoint of the node, realized.
	finalized           forkchoicetypes.Checkpoint      // finalized checkpoint of the node, realized.
	unrealizedJustified forkchoicetypes.Checkpoint      // justified checkpoint implied by the block's attestations.
	unrealizedFinalized forkchoicetypes.Checkpoint      // finalized checkpoint implied by the block's attestations.
	weight              uint64                          // weight of this node: the sum of the node's and its descendants' votes.
	bestChild           uint64                          // bestChild index of this node.
	bestDescendant      uint64                          // bestDescendant of this node.
	status              forkchoicetypes.ExecutionStatus // optimistic status of this node.
}

// Vote defines an individual validator's vote.
type Vote struct {
	currentRoot [32]byte    // current voting root.
	nextRoot    [32]byte    // next voting root.
	nextEpoch   types.Epoch // epoch of next voting period.
}

// NonExistentNode defines an unknown node which is used for the array based stateful DAG.
const NonExistentNode = ^uint64(0)

// defaultPruneThreshold prunes on every finalization advance.
const defaultPruneThreshold = 0

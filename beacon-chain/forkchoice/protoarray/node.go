package protoarray

import (
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
)

// Slot of the fork choice node.
func (n *Node) Slot() types.Slot {
	return n.slot
}

// Root of the fork choice node.
func (n *Node) Root() [32]byte {
	return n.root
}

// Parent of the fork choice node.
func (n *Node) Parent() uint64 {
	return n.parent
}

// JustifiedEpoch of the fork choice node.
func (n *Node) JustifiedEpoch() types.Epoch {
	return n.justified.Epoch
}

// FinalizedEpoch of the fork choice node.
func (n *Node) FinalizedEpoch() types.Epoch {
	return n.finalized.Epoch
}

// Weight of the fork choice node.
func (n *Node) Weight() uint64 {
	return n.weight
}

// BestChild of the fork choice node.
func (n *Node) BestChild() uint64 {
	return n.bestChild
}

// BestDescendant of the fork choice node.
func (n *Node) BestDescendant() uint64 {
	return n.bestDescendant
}

// Status of the node's execution payload.
func (n *Node) Status() forkchoicetypes.ExecutionStatus {
	return n.status
}

func (n *Node) protoBlock() *forkchoicetypes.ProtoBlock {
	return &forkchoicetypes.ProtoBlock{
		Slot:                     n.slot,
		Root:                     n.root,
		ParentRoot:               n.parentRoot,
		StateRoot:                n.stateRoot,
		TargetRoot:               n.targetRoot,
		PayloadHash:              n.payloadHash,
		JustifiedEpoch:           n.justified.Epoch,
		FinalizedEpoch:           n.finalized.Epoch,
		UnrealizedJustifiedEpoch: n.unrealizedJustified.Epoch,
		UnrealizedFinalizedEpoch: n.unrealizedFinalized.Epoch,
		ExecutionStatus:          n.status,
		Weight:                   n.weight,
	}
}

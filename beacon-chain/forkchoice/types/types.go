// Package types defines the values exchanged between fork choice and its collaborators.
package types

import (
	"fmt"

	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
)

// Checkpoint is an array version of ethpb.Checkpoint. It is used internally in
// forkchoice, while the slice version is used in the interface to legacy code
// in other packages
type Checkpoint struct {
	Epoch types.Epoch
	Root  [32]byte
}

// Copy returns a copy of the checkpoint, nil stays nil.
func (c *Checkpoint) Copy() *Checkpoint {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// ExecutionStatus of a node's execution payload as last reported by the execution engine.
type ExecutionStatus uint8

const (
	PreMerge ExecutionStatus = iota // the block has no execution payload.
	Syncing                         // the payload has not been verified yet.
	Valid
	Invalid
)

// String returns the lowercase name of the status.
func (s ExecutionStatus) String() string {
	switch s {
	case PreMerge:
		return "pre-merge"
	case Syncing:
		return "syncing"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Block holds the identity fields of a beacon block as seen by fork choice.
type Block struct {
	Slot        types.Slot
	Root        [32]byte
	ParentRoot  [32]byte
	StateRoot   [32]byte
	TargetRoot  [32]byte
	PayloadHash [32]byte
}

// BlockAndCheckpoints to call the InsertOptimisticChain function. The unrealized
// checkpoints default to the realized ones when left nil.
type BlockAndCheckpoints struct {
	Block                         *Block
	JustifiedCheckpoint           *Checkpoint
	FinalizedCheckpoint           *Checkpoint
	UnrealizedJustifiedCheckpoint *Checkpoint
	UnrealizedFinalizedCheckpoint *Checkpoint
	ExecutionStatus               ExecutionStatus
}

// BoostProposerRootArgs to call the BoostProposerRoot function.
type BoostProposerRootArgs struct {
	BlockRoot       [32]byte
	BlockSlot       types.Slot
	CurrentSlot     types.Slot
	SecondsIntoSlot uint64
}

// IndexedAttestation is the subset of an attestation fork choice consumes. Signatures are
// verified before it gets here.
type IndexedAttestation struct {
	Slot             types.Slot
	BeaconBlockRoot  [32]byte
	Target           Checkpoint
	AttestingIndices []uint64
}

// ProtoBlock is a read-only snapshot of a fork choice node.
type ProtoBlock struct {
	Slot                     types.Slot
	Root                     [32]byte
	ParentRoot               [32]byte
	StateRoot                [32]byte
	TargetRoot               [32]byte
	PayloadHash              [32]byte
	JustifiedEpoch           types.Epoch
	FinalizedEpoch           types.Epoch
	UnrealizedJustifiedEpoch types.Epoch
	UnrealizedFinalizedEpoch types.Epoch
	ExecutionStatus          ExecutionStatus
	Weight                   uint64
}

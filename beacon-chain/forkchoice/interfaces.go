package forkchoice

import (
	"context"

	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
)

// BalancesByRooter is a handler to obtain the effective balances of the state
// with the given block root.
type BalancesByRooter func(context.Context, [32]byte) ([]uint64, error)

// ForkChoicer represents the full fork choice interface composed of all the sub-interfaces.
type ForkChoicer interface {
	HeadRetriever        // to compute head.
	BlockProcessor       // to track new block for fork choice.
	AttestationProcessor // to track new attestation for fork choice.
	Getter               // to retrieve fork choice information.
	Setter               // to set fork choice information.
}

// HeadRetriever retrieves head root and optimistic info of the current chain.
type HeadRetriever interface {
	Head(context.Context, []uint64) ([32]byte, error)
	CachedHeadRoot() [32]byte
	Tips() ([][32]byte, []types.Slot)
	IsOptimistic(root [32]byte) (bool, error)
	AllTipsAreInvalid() bool
}

// BlockProcessor processes the block that's used for accounting fork choice.
type BlockProcessor interface {
	InsertNode(context.Context, *forkchoicetypes.BlockAndCheckpoints) error
	InsertOptimisticChain(context.Context, []*forkchoicetypes.BlockAndCheckpoints) error
}

// AttestationProcessor processes the attestation that's used for accounting fork choice.
type AttestationProcessor interface {
	ProcessAttestation(context.Context, []uint64, [32]byte, types.Epoch)
	OnAttestation(ctx context.Context, att *forkchoicetypes.IndexedAttestation, isFromBlock bool) error
	InsertSlashedIndex(context.Context, types.ValidatorIndex)
	IsSlashed(types.ValidatorIndex) bool
}

// Getter returns fork choice related information.
type Getter interface {
	HasNode([32]byte) bool
	HasParent(root [32]byte) bool
	Block(root [32]byte) (*forkchoicetypes.ProtoBlock, error)
	AllAncestors(ctx context.Context, root [32]byte) ([]*forkchoicetypes.ProtoBlock, error)
	AncestorRoot(ctx context.Context, root [32]byte, slot types.Slot) ([32]byte, error)
	IsDescendant(ancestor, descendant [32]byte) (bool, error)
	CommonAncestor(ctx context.Context, root1 [32]byte, root2 [32]byte) ([32]byte, types.Slot, error)
	NonAncestors(root [32]byte) ([]*forkchoicetypes.ProtoBlock, error)
	BlocksAtSlot(slot types.Slot) [][32]byte
	IsCanonical(root [32]byte) bool
	FinalizedCheckpoint() *forkchoicetypes.Checkpoint
	FinalizedPayloadBlockHash() [32]byte
	JustifiedCheckpoint() *forkchoicetypes.Checkpoint
	PreviousJustifiedCheckpoint() *forkchoicetypes.Checkpoint
	JustifiedPayloadBlockHash() [32]byte
	BestJustifiedCheckpoint() *forkchoicetypes.Checkpoint
	UnrealizedJustifiedCheckpoint() *forkchoicetypes.Checkpoint
	UnrealizedFinalizedCheckpoint() *forkchoicetypes.Checkpoint
	IsMergeTransitionComplete() bool
	NodeCount() int
	HighestReceivedBlockSlot() types.Slot
	CurrentSlot() types.Slot
	Weight(root [32]byte) (uint64, error)
	ProposerBoost() [32]byte
}

// Setter allows to set forkchoice information
type Setter interface {
	SetOptimisticToValid(context.Context, [32]byte) error
	SetOptimisticToInvalid(ctx context.Context, root, parentRoot, lastValidHash [32]byte) ([][32]byte, error)
	UpdateJustifiedCheckpoint(*forkchoicetypes.Checkpoint) error
	UpdateFinalizedCheckpoint(*forkchoicetypes.Checkpoint) error
	BoostProposerRoot(context.Context, *forkchoicetypes.BoostProposerRootArgs) error
	ResetBoostedProposerRoot(context.Context) error
	NewSlot(context.Context, types.Slot) error
	SetGenesisTime(uint64)
	SetOriginRoot([32]byte)
	SetPruneThreshold(uint64)
}

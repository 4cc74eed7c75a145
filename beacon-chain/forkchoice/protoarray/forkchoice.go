package protoarray

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/forkchoice/config/params"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
	"github.com/prysmaticlabs/forkchoice/encoding/bytesutil"
	"github.com/prysmaticlabs/forkchoice/time/slots"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

var _ forkchoice.ForkChoicer = (*ForkChoice)(nil)

// New initializes a new fork choice store.
func New(justified, finalized *forkchoicetypes.Checkpoint) *ForkChoice {
	if justified == nil {
		justified = &forkchoicetypes.Checkpoint{}
	}
	if finalized == nil {
		finalized = &forkchoicetypes.Checkpoint{}
	}
	s := &Store{
		justifiedCheckpoint:           justified.Copy(),
		bestJustifiedCheckpoint:       justified.Copy(),
		prevJustifiedCheckpoint:       justified.Copy(),
		unrealizedJustifiedCheckpoint: justified.Copy(),
		finalizedCheckpoint:           finalized.Copy(),
		unrealizedFinalizedCheckpoint: finalized.Copy(),
		justifiedEpoch:                justified.Epoch,
		finalizedEpoch:                finalized.Epoch,
		proposerBoostRoot:             [32]byte{},
		nodes:                         make([]*Node, 0),
		nodesIndices:                  make(map[[32]byte]uint64),
		payloadIndices:                make(map[[32]byte]uint64),
		canonicalNodes:                make(map[[32]byte]bool),
		slashedIndices:                make(map[types.ValidatorIndex]bool),
		pruneThreshold:                defaultPruneThreshold,
	}

	b := make([]uint64, 0)
	v := make([]Vote, 0)
	return &ForkChoice{store: s, balances: b, votes: v}
}

// Head returns the head root from fork choice store.
// It firsts computes validator's balance changes then recalculates block tree from leaves to root.
func (f *ForkChoice) Head(ctx context.Context, justifiedStateBalances []uint64) ([32]byte, error) {
	ctx, span := trace.StartSpan(ctx, "protoArrayForkChoice.Head")
	defer span.End()
	calledHeadCount.Inc()

	f.votesLock.Lock()
	defer f.votesLock.Unlock()
	f.store.nodesLock.Lock()
	defer f.store.nodesLock.Unlock()

	f.store.checkpointsLock.RLock()
	jc := *f.store.justifiedCheckpoint
	fc := *f.store.finalizedCheckpoint
	justifiedRoot := f.store.resolveRoot(jc.Root)
	f.store.checkpointsLock.RUnlock()

	newBalances := justifiedStateBalances

	// Using the write lock here because `updateCanonicalNodes` that gets called subsequently requires a write operation.
	deltas, newVotes, err := computeDeltas(ctx, len(f.store.nodes), f.store.nodesIndices, f.votes, f.balances, newBalances, f.store.slashedIndices)
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "Could not compute deltas")
	}
	f.votes = newVotes

	if err := f.store.applyProposerBoostScore(newBalances, deltas); err != nil {
		return [32]byte{}, errors.Wrap(err, "could not apply proposer boost score")
	}

	if err := f.store.applyWeightChanges(ctx, jc.Epoch, fc.Epoch, deltas); err != nil {
		return [32]byte{}, errors.Wrap(err, "Could not apply score changes")
	}
	f.balances = newBalances

	return f.store.head(ctx, justifiedRoot)
}

// InsertNode processes a new block by inserting it to the fork choice store.
func (f *ForkChoice) InsertNode(ctx context.Context, bc *forkchoicetypes.BlockAndCheckpoints) error {
	ctx, span := trace.StartSpan(ctx, "protoArrayForkChoice.InsertNode")
	defer span.End()

	if bc == nil || bc.Block == nil {
		return errNilBlock
	}
	f.store.nodesLock.Lock()
	defer f.store.nodesLock.Unlock()
	return f.store.insertNode(ctx, bc)
}

// InsertOptimisticChain inserts all nodes corresponding to blocks in the slice
// `chain`. The slice is ordered parents first: every block's parent is either
// already in fork choice or precedes it in the slice.
func (f *ForkChoice) InsertOptimisticChain(ctx context.Context, chain []*forkchoicetypes.BlockAndCheckpoints) error {
	ctx, span := trace.StartSpan(ctx, "protoArrayForkChoice.InsertOptimisticChain")
	defer span.End()

	f.store.nodesLock.Lock()
	defer f.store.nodesLock.Unlock()
	for i, bc := range chain {
		if bc == nil || bc.Block == nil {
			return errors.Wrapf(errNilBlock, "chain element %d", i)
		}
		if err := f.store.insertNode(ctx, bc); err != nil {
			return errors.Wrapf(err, "could not insert block %#x", bytesutil.Trunc(bc.Block.Root[:]))
		}
	}
	return nil
}

// insertNode inserts a block and reconciles the store's checkpoints with the
// node's. This function assumes a lock on s.nodesLock.
func (s *Store) insertNode(ctx context.Context, bc *forkchoicetypes.BlockAndCheckpoints) error {
	if _, ok := s.nodesIndices[bc.Block.Root]; ok {
		return nil
	}
	if len(s.nodes) == 0 {
		s.checkpointsLock.Lock()
		if s.originRoot == params.BeaconConfig().ZeroHash {
			s.originRoot = bc.Block.Root
		}
		s.checkpointsLock.Unlock()
	}
	n, err := s.insert(ctx, bc)
	if err != nil {
		return err
	}
	finalizedAdvanced, err := s.updateCheckpoints(n)
	if err != nil {
		return err
	}
	// The node and checkpoints are committed at this point, a failed prune is retried
	// on the next finalization advance.
	if finalizedAdvanced {
		if err := s.prune(ctx); err != nil {
			log.WithError(err).WithField("root", fmt.Sprintf("%#x", bytesutil.Trunc(bc.Block.Root[:]))).Warn("Could not prune fork choice store after block insertion")
		}
	}
	return nil
}

// updateCheckpoints moves the store's checkpoints forward with the ones carried by
// a freshly inserted node. It reports whether the finalized checkpoint advanced.
// This function assumes a lock on s.nodesLock.
func (s *Store) updateCheckpoints(n *Node) (bool, error) {
	s.checkpointsLock.Lock()
	defer s.checkpointsLock.Unlock()

	jc, fc := n.justified, n.finalized
	if jc.Epoch > s.justifiedCheckpoint.Epoch {
		if jc.Epoch > s.bestJustifiedCheckpoint.Epoch && s.descendsFromFinalized(jc.Root) {
			s.bestJustifiedCheckpoint = jc.Copy()
		}
		if slots.SinceEpochStarts(s.currentSlot) < params.BeaconConfig().SafeSlotsToUpdateJustified {
			s.prevJustifiedCheckpoint = s.justifiedCheckpoint
			s.justifiedCheckpoint = jc.Copy()
		} else {
			jSlot, err := slots.EpochStart(s.justifiedCheckpoint.Epoch)
			if err != nil {
				return false, err
			}
			if idx, ok := s.nodesIndices[s.resolveRoot(jc.Root)]; ok {
				ancestor, err := s.ancestorIndex(idx, jSlot)
				if err != nil {
					return false, err
				}
				if s.nodes[ancestor].root == s.resolveRoot(s.justifiedCheckpoint.Root) {
					s.prevJustifiedCheckpoint = s.justifiedCheckpoint
					s.justifiedCheckpoint = jc.Copy()
				}
			}
		}
	}

	finalizedAdvanced := false
	if fc.Epoch > s.finalizedCheckpoint.Epoch {
		s.finalizedCheckpoint = fc.Copy()
		if jc.Epoch >= s.justifiedCheckpoint.Epoch && jc != *s.justifiedCheckpoint {
			s.prevJustifiedCheckpoint = s.justifiedCheckpoint
			s.justifiedCheckpoint = jc.Copy()
		}
		finalizedAdvanced = true
		log.WithFields(logrus.Fields{
			"epoch": fc.Epoch,
			"root":  fmt.Sprintf("%#x", bytesutil.Trunc(fc.Root[:])),
		}).Debug("Finalized checkpoint advanced on block insertion")
	}

	if n.unrealizedJustified.Epoch > s.unrealizedJustifiedCheckpoint.Epoch {
		s.unrealizedJustifiedCheckpoint = n.unrealizedJustified.Copy()
	}
	if n.unrealizedFinalized.Epoch > s.unrealizedFinalizedCheckpoint.Epoch {
		s.unrealizedFinalizedCheckpoint = n.unrealizedFinalized.Copy()
	}
	return finalizedAdvanced, nil
}

// descendsFromFinalized reports whether root is the finalized block or one of its
// descendants. Unknown roots do not. This function assumes a lock on s.nodesLock
// and s.checkpointsLock.
func (s *Store) descendsFromFinalized(root [32]byte) bool {
	idx, ok := s.nodesIndices[s.resolveRoot(root)]
	if !ok {
		return false
	}
	fIdx, ok := s.nodesIndices[s.resolveRoot(s.finalizedCheckpoint.Root)]
	if !ok {
		// Pruned stores keep the finalized block at index 0.
		return true
	}
	return s.isDescendant(fIdx, idx)
}

// HasNode returns true if the node exists in fork choice store,
// false else wise.
func (f *ForkChoice) HasNode(root [32]byte) bool {
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()

	_, ok := f.store.nodesIndices[root]
	return ok
}

// HasParent returns true if the node parent exists in fork choice store,
// false else wise.
func (f *ForkChoice) HasParent(root [32]byte) bool {
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()

	i, ok := f.store.nodesIndices[root]
	if !ok || i >= uint64(len(f.store.nodes)) {
		return false
	}

	return f.store.nodes[i].parent != NonExistentNode
}

// IsCanonical returns true if the given root is part of the canonical chain.
func (f *ForkChoice) IsCanonical(root [32]byte) bool {
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()

	return f.store.canonicalNodes[root]
}

// Block returns a snapshot of the node with the given root.
func (f *ForkChoice) Block(root [32]byte) (*forkchoicetypes.ProtoBlock, error) {
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()

	i, ok := f.store.nodesIndices[root]
	if !ok || i >= uint64(len(f.store.nodes)) {
		return nil, forkchoice.ErrNilNode
	}
	return f.store.nodes[i].protoBlock(), nil
}

// AncestorRoot returns the ancestor root of input block root at a given slot.
func (f *ForkChoice) AncestorRoot(ctx context.Context, root [32]byte, slot types.Slot) ([32]byte, error) {
	ctx, span := trace.StartSpan(ctx, "protoArray.AncestorRoot")
	defer span.End()

	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()

	i, ok := f.store.nodesIndices[root]
	if !ok {
		return [32]byte{}, errors.New("node does not exist")
	}
	if i >= uint64(len(f.store.nodes)) {
		return [32]byte{}, errors.New("node index out of range")
	}

	for f.store.nodes[i].slot > slot {
		if ctx.Err() != nil {
			return [32]byte{}, ctx.Err()
		}

		i = f.store.nodes[i].parent

		if i >= uint64(len(f.store.nodes)) {
			return [32]byte{}, errors.New("node index out of range")
		}
	}

	return f.store.nodes[i].root, nil
}

// AllAncestors returns the given block and all of its ancestors known to fork
// choice, newest first.
func (f *ForkChoice) AllAncestors(ctx context.Context, root [32]byte) ([]*forkchoicetypes.ProtoBlock, error) {
	_, span := trace.StartSpan(ctx, "protoArray.AllAncestors")
	defer span.End()

	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()

	i, ok := f.store.nodesIndices[root]
	if !ok {
		return nil, forkchoice.ErrNilNode
	}
	ancestors := make([]*forkchoicetypes.ProtoBlock, 0)
	for ; i != NonExistentNode; i = f.store.nodes[i].parent {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if i >= uint64(len(f.store.nodes)) {
			return nil, errInvalidNodeIndex
		}
		ancestors = append(ancestors, f.store.nodes[i].protoBlock())
	}
	return ancestors, nil
}

// IsDescendant reports whether descendant is ancestor itself or sits in its subtree.
func (f *ForkChoice) IsDescendant(ancestor, descendant [32]byte) (bool, error) {
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()

	aIdx, ok := f.store.nodesIndices[ancestor]
	if !ok {
		return false, errors.Wrapf(forkchoice.ErrNilNode, "ancestor %#x", bytesutil.Trunc(ancestor[:]))
	}
	dIdx, ok := f.store.nodesIndices[descendant]
	if !ok {
		return false, errors.Wrapf(forkchoice.ErrNilNode, "descendant %#x", bytesutil.Trunc(descendant[:]))
	}
	return f.store.isDescendant(aIdx, dIdx), nil
}

// CommonAncestor returns the common ancestor root and slot between the two block roots r1 and r2.
func (f *ForkChoice) CommonAncestor(ctx context.Context, r1 [32]byte, r2 [32]byte) ([32]byte, types.Slot, error) {
	ctx, span := trace.StartSpan(ctx, "protoArray.CommonAncestor")
	defer span.End()

	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()

	i1, ok := f.store.nodesIndices[r1]
	if !ok || i1 >= uint64(len(f.store.nodes)) {
		return [32]byte{}, 0, forkchoice.ErrNilNode
	}
	i2, ok := f.store.nodesIndices[r2]
	if !ok || i2 >= uint64(len(f.store.nodes)) {
		return [32]byte{}, 0, forkchoice.ErrNilNode
	}

	// Parents always have lower indices, so walking up the higher index converges.
	for i1 != i2 {
		if ctx.Err() != nil {
			return [32]byte{}, 0, ctx.Err()
		}
		if i1 > i2 {
			i1 = f.store.nodes[i1].parent
		} else {
			i2 = f.store.nodes[i2].parent
		}
		if i1 == NonExistentNode || i2 == NonExistentNode {
			return [32]byte{}, 0, forkchoice.ErrUnknownCommonAncestor
		}
		if i1 >= uint64(len(f.store.nodes)) || i2 >= uint64(len(f.store.nodes)) {
			return [32]byte{}, 0, forkchoice.ErrNilNode
		}
	}
	n := f.store.nodes[i1]
	return n.root, n.slot, nil
}

// NonAncestors returns every node that is neither the given root nor one of its ancestors.
func (f *ForkChoice) NonAncestors(root [32]byte) ([]*forkchoicetypes.ProtoBlock, error) {
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()

	i, ok := f.store.nodesIndices[root]
	if !ok {
		return nil, forkchoice.ErrNilNode
	}
	ancestors := make(map[uint64]bool)
	for ; i != NonExistentNode; i = f.store.nodes[i].parent {
		if i >= uint64(len(f.store.nodes)) {
			return nil, errInvalidNodeIndex
		}
		ancestors[i] = true
	}
	blocks := make([]*forkchoicetypes.ProtoBlock, 0, len(f.store.nodes)-len(ancestors))
	for idx, n := range f.store.nodes {
		if !ancestors[uint64(idx)] {
			blocks = append(blocks, n.protoBlock())
		}
	}
	return blocks, nil
}

// BlocksAtSlot returns the roots of all known blocks at the given slot.
func (f *ForkChoice) BlocksAtSlot(slot types.Slot) [][32]byte {
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()

	roots := make([][32]byte, 0)
	for _, n := range f.store.nodes {
		if n.slot == slot {
			roots = append(roots, n.root)
		}
	}
	return roots
}

// Weight returns the weight of the given root if found on the store.
func (f *ForkChoice) Weight(root [32]byte) (uint64, error) {
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()

	i, ok := f.store.nodesIndices[root]
	if !ok || i >= uint64(len(f.store.nodes)) {
		return 0, forkchoice.ErrNilNode
	}
	return f.store.nodes[i].weight, nil
}

// CachedHeadRoot returns the last cached head root.
func (f *ForkChoice) CachedHeadRoot() [32]byte {
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()
	return f.store.headRoot
}

// NodeCount returns the current number of nodes in the Store.
func (f *ForkChoice) NodeCount() int {
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()
	return len(f.store.nodes)
}

// HighestReceivedBlockSlot returns the highest slot received by the forkchoice.
func (f *ForkChoice) HighestReceivedBlockSlot() types.Slot {
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()
	return f.store.highestReceivedSlot
}

// CurrentSlot returns the slot of the last NewSlot call.
func (f *ForkChoice) CurrentSlot() types.Slot {
	f.store.checkpointsLock.RLock()
	defer f.store.checkpointsLock.RUnlock()
	return f.store.currentSlot
}

// JustifiedCheckpoint of fork choice store.
func (f *ForkChoice) JustifiedCheckpoint() *forkchoicetypes.Checkpoint {
	f.store.checkpointsLock.RLock()
	defer f.store.checkpointsLock.RUnlock()
	return f.store.justifiedCheckpoint.Copy()
}

// PreviousJustifiedCheckpoint of fork choice store.
func (f *ForkChoice) PreviousJustifiedCheckpoint() *forkchoicetypes.Checkpoint {
	f.store.checkpointsLock.RLock()
	defer f.store.checkpointsLock.RUnlock()
	return f.store.prevJustifiedCheckpoint.Copy()
}

// BestJustifiedCheckpoint of fork choice store.
func (f *ForkChoice) BestJustifiedCheckpoint() *forkchoicetypes.Checkpoint {
	f.store.checkpointsLock.RLock()
	defer f.store.checkpointsLock.RUnlock()
	return f.store.bestJustifiedCheckpoint.Copy()
}

// FinalizedCheckpoint of fork choice store.
func (f *ForkChoice) FinalizedCheckpoint() *forkchoicetypes.Checkpoint {
	f.store.checkpointsLock.RLock()
	defer f.store.checkpointsLock.RUnlock()
	return f.store.finalizedCheckpoint.Copy()
}

// UnrealizedJustifiedCheckpoint of fork choice store.
func (f *ForkChoice) UnrealizedJustifiedCheckpoint() *forkchoicetypes.Checkpoint {
	f.store.checkpointsLock.RLock()
	defer f.store.checkpointsLock.RUnlock()
	return f.store.unrealizedJustifiedCheckpoint.Copy()
}

// UnrealizedFinalizedCheckpoint of fork choice store.
func (f *ForkChoice) UnrealizedFinalizedCheckpoint() *forkchoicetypes.Checkpoint {
	f.store.checkpointsLock.RLock()
	defer f.store.checkpointsLock.RUnlock()
	return f.store.unrealizedFinalizedCheckpoint.Copy()
}

// JustifiedPayloadBlockHash returns the payload hash of the justified block, or
// the zero hash if it is unknown or pre-merge.
func (f *ForkChoice) JustifiedPayloadBlockHash() [32]byte {
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()
	f.store.checkpointsLock.RLock()
	root := f.store.resolveRoot(f.store.justifiedCheckpoint.Root)
	f.store.checkpointsLock.RUnlock()
	return f.store.payloadHashOf(root)
}

// FinalizedPayloadBlockHash returns the payload hash of the finalized block, or
// the zero hash if it is unknown or pre-merge.
func (f *ForkChoice) FinalizedPayloadBlockHash() [32]byte {
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()
	f.store.checkpointsLock.RLock()
	root := f.store.resolveRoot(f.store.finalizedCheckpoint.Root)
	f.store.checkpointsLock.RUnlock()
	return f.store.payloadHashOf(root)
}

func (s *Store) payloadHashOf(root [32]byte) [32]byte {
	i, ok := s.nodesIndices[root]
	if !ok || i >= uint64(len(s.nodes)) {
		return [32]byte{}
	}
	return s.nodes[i].payloadHash
}

// IsMergeTransitionComplete reports whether the chain carries an execution payload:
// either the finalized block has one, or some block that was not invalidated does.
func (f *ForkChoice) IsMergeTransitionComplete() bool {
	if f.FinalizedPayloadBlockHash() != params.BeaconConfig().ZeroHash {
		return true
	}
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()
	for _, n := range f.store.nodes {
		if n.payloadHash != params.BeaconConfig().ZeroHash && n.status != forkchoicetypes.Invalid {
			return true
		}
	}
	return false
}

// UpdateJustifiedCheckpoint sets the justified checkpoint to the given one.
func (f *ForkChoice) UpdateJustifiedCheckpoint(jc *forkchoicetypes.Checkpoint) error {
	if jc == nil {
		return errInvalidNilCheckpoint
	}
	f.store.checkpointsLock.Lock()
	defer f.store.checkpointsLock.Unlock()
	f.store.prevJustifiedCheckpoint = f.store.justifiedCheckpoint
	f.store.justifiedCheckpoint = jc.Copy()
	bj := f.store.bestJustifiedCheckpoint
	if bj == nil || bj.Root == params.BeaconConfig().ZeroHash || jc.Epoch > bj.Epoch {
		f.store.bestJustifiedCheckpoint = jc.Copy()
	}
	return nil
}

// UpdateFinalizedCheckpoint sets the finalized checkpoint to the given one and
// prunes the store when it advanced.
func (f *ForkChoice) UpdateFinalizedCheckpoint(fc *forkchoicetypes.Checkpoint) error {
	if fc == nil {
		return errInvalidNilCheckpoint
	}
	f.store.nodesLock.Lock()
	defer f.store.nodesLock.Unlock()

	f.store.checkpointsLock.Lock()
	advanced := fc.Epoch > f.store.finalizedCheckpoint.Epoch
	f.store.finalizedCheckpoint = fc.Copy()
	f.store.checkpointsLock.Unlock()

	if !advanced {
		return nil
	}
	return f.store.prune(context.Background())
}

// SetGenesisTime sets the genesis time in seconds.
func (f *ForkChoice) SetGenesisTime(genesisTime uint64) {
	f.store.checkpointsLock.Lock()
	defer f.store.checkpointsLock.Unlock()
	f.store.genesisTime = genesisTime
}

// SetOriginRoot sets the root of the block the store was started from. Checkpoints
// with a zero root refer to it.
func (f *ForkChoice) SetOriginRoot(root [32]byte) {
	f.store.checkpointsLock.Lock()
	defer f.store.checkpointsLock.Unlock()
	f.store.originRoot = root
}

// SetPruneThreshold sets the minimum finalized index before the store prunes.
func (f *ForkChoice) SetPruneThreshold(threshold uint64) {
	f.store.nodesLock.Lock()
	defer f.store.nodesLock.Unlock()
	f.store.pruneThreshold = threshold
}

// IsSlashed returns true if the validator was marked as an equivocator.
func (f *ForkChoice) IsSlashed(index types.ValidatorIndex) bool {
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()
	return f.store.slashedIndices[index]
}

// InsertSlashedIndex adds the given slashed validator index to the
// store-tracked list. Votes from these validators are not accounted for
// in forkchoice, and the weight they already added is removed right away.
func (f *ForkChoice) InsertSlashedIndex(ctx context.Context, index types.ValidatorIndex) {
	ctx, span := trace.StartSpan(ctx, "protoArrayForkChoice.InsertSlashedIndex")
	defer span.End()

	f.votesLock.RLock()
	defer f.votesLock.RUnlock()
	f.store.nodesLock.Lock()
	defer f.store.nodesLock.Unlock()

	if f.store.slashedIndices[index] {
		return
	}
	f.store.slashedIndices[index] = true

	if uint64(index) >= uint64(len(f.votes)) || uint64(index) >= uint64(len(f.balances)) {
		return
	}
	nodeIndex, ok := f.store.nodesIndices[f.votes[index].currentRoot]
	if !ok || nodeIndex >= uint64(len(f.store.nodes)) {
		return
	}

	deltas := make([]int, len(f.store.nodes))
	deltas[nodeIndex] = -int(f.balances[index])
	if err := f.store.applyWeightChanges(ctx, f.store.justifiedEpoch, f.store.finalizedEpoch, deltas); err != nil {
		log.WithError(err).WithField("validatorIndex", index).Error("Could not remove slashed validator weight")
	}
}

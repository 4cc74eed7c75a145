package protoarray

import (
	"bytes"
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

// PruneThreshold returns the current prune threshold of the store.
func (s *Store) PruneThreshold() uint64 {
	return s.pruneThreshold
}

// head starts from justified root and then follows the best descendant links
// to find the best block for head. This function assumes a lock on s.nodesLock.
func (s *Store) head(ctx context.Context, justifiedRoot [32]byte) ([32]byte, error) {
	ctx, span := trace.StartSpan(ctx, "protoArrayForkChoice.head")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return [32]byte{}, err
	}
	if s.statusErr != nil {
		return [32]byte{}, errors.Wrap(s.statusErr, "fork choice store must be rebuilt")
	}

	// Justified index has to be valid in node indices map, and can not be out of bound.
	justifiedIndex, ok := s.nodesIndices[justifiedRoot]
	if !ok {
		return [32]byte{}, forkchoice.ErrUnknownJustifiedRoot
	}
	if justifiedIndex >= uint64(len(s.nodes)) {
		return [32]byte{}, errInvalidJustifiedIndex
	}

	justifiedNode := s.nodes[justifiedIndex]
	if justifiedNode.status == forkchoicetypes.Invalid {
		return [32]byte{}, forkchoice.ErrJustifiedNodeInvalidated
	}
	bestDescendantIndex := justifiedNode.bestDescendant
	// If the justified node doesn't have a best descendant,
	// the best node is itself.
	if bestDescendantIndex == NonExistentNode {
		bestDescendantIndex = justifiedIndex
	}
	if bestDescendantIndex >= uint64(len(s.nodes)) {
		return [32]byte{}, errInvalidBestDescendantIndex
	}

	bestNode := s.nodes[bestDescendantIndex]

	if bestDescendantIndex != justifiedIndex && !s.viableForHead(bestNode) {
		return [32]byte{}, errors.Wrapf(errInvalidBestNode,
			"head at slot %d with weight %d is not eligible, finalizedEpoch %d != %d, justifiedEpoch %d != %d",
			bestNode.slot, bestNode.weight, bestNode.finalized.Epoch, s.finalizedEpoch, bestNode.justified.Epoch, s.justifiedEpoch)
	}

	// Update metrics and the canonical chain.
	if bestNode.root != s.headRoot || len(s.canonicalNodes) == 0 {
		if bestNode.root != s.headRoot {
			headChangesCount.Inc()
			log.WithFields(logrus.Fields{
				"slot":    bestNode.slot,
				"root":    fmt.Sprintf("%#x", bytesutil.Trunc(bestNode.root[:])),
				"weight":  bestNode.weight,
				"oldRoot": fmt.Sprintf("%#x", bytesutil.Trunc(s.headRoot[:])),
			}).Debug("Head changed")
		}
		headSlotNumber.Set(float64(bestNode.slot))
		s.headRoot = bestNode.root
		if err := s.updateCanonicalNodes(ctx, bestDescendantIndex); err != nil {
			return [32]byte{}, err
		}
	}

	return bestNode.root, nil
}

// updateCanonicalNodes marks the chain from the given node down to the oldest
// node in the store as canonical. This function assumes a lock on s.nodesLock.
func (s *Store) updateCanonicalNodes(ctx context.Context, index uint64) error {
	canonical := make(map[[32]byte]bool, len(s.canonicalNodes))
	for i := index; i != NonExistentNode; i = s.nodes[i].parent {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i >= uint64(len(s.nodes)) {
			return errInvalidNodeIndex
		}
		canonical[s.nodes[i].root] = true
	}
	s.canonicalNodes = canonical
	return nil
}

// insert registers a new block node to the fork choice store's node list.
// It then updates the new node's parent with best child and descendant node.
// This function assumes a lock on s.nodesLock.
func (s *Store) insert(ctx context.Context, bc *forkchoicetypes.BlockAndCheckpoints) (*Node, error) {
	_, span := trace.StartSpan(ctx, "protoArrayForkChoice.insert")
	defer span.End()

	b := bc.Block
	// Return if the block has been inserted into Store before.
	if idx, ok := s.nodesIndices[b.Root]; ok {
		return s.nodes[idx], nil
	}
	if bc.ExecutionStatus == forkchoicetypes.Invalid {
		return nil, errors.Wrap(forkchoice.ErrInvalidOptimisticStatus, "cannot insert a block with an invalid payload")
	}

	jc := checkpointOrZero(bc.JustifiedCheckpoint)
	fc := checkpointOrZero(bc.FinalizedCheckpoint)
	ujc, ufc := jc, fc
	if bc.UnrealizedJustifiedCheckpoint != nil {
		ujc = *bc.UnrealizedJustifiedCheckpoint
	}
	if bc.UnrealizedFinalizedCheckpoint != nil {
		ufc = *bc.UnrealizedFinalizedCheckpoint
	}

	parentIndex := NonExistentNode
	// The first node of an empty store is the anchor and has no parent.
	if len(s.nodes) > 0 {
		idx, ok := s.nodesIndices[b.ParentRoot]
		if !ok {
			return nil, errors.Wrapf(forkchoice.ErrInvalidParent, "unknown parent %#x", bytesutil.Trunc(b.ParentRoot[:]))
		}
		parent := s.nodes[idx]
		if b.Slot <= parent.slot {
			return nil, errors.Wrapf(forkchoice.ErrInvalidParent, "block slot %d is not after parent slot %d", b.Slot, parent.slot)
		}
		if parent.status == forkchoicetypes.Invalid {
			return nil, errors.Wrapf(forkchoice.ErrInvalidParent, "parent %#x has an invalid payload", bytesutil.Trunc(b.ParentRoot[:]))
		}
		if err := s.validateFinality(b, idx, ujc, ufc); err != nil {
			return nil, err
		}
		parentIndex = idx
	}

	n := &Node{
		slot:                b.Slot,
		root:                b.Root,
		parentRoot:          b.ParentRoot,
		stateRoot:           b.StateRoot,
		targetRoot:          b.TargetRoot,
		payloadHash:         b.PayloadHash,
		parent:              parentIndex,
		justified:           jc,
		finalized:           fc,
		unrealizedJustified: ujc,
		unrealizedFinalized: ufc,
		bestChild:           NonExistentNode,
		bestDescendant:      NonExistentNode,
		weight:              0,
		status:              bc.ExecutionStatus,
	}

	// Blocks from past epochs already had their epoch processed, their
	// unrealized checkpoints are realized.
	s.checkpointsLock.RLock()
	currentSlot := s.currentSlot
	s.checkpointsLock.RUnlock()
	if slots.ToEpoch(b.Slot) < slots.ToEpoch(currentSlot) {
		n.justified = n.unrealizedJustified
		n.finalized = n.unrealizedFinalized
	}

	index := uint64(len(s.nodes))
	s.nodesIndices[n.root] = index
	if n.payloadHash != params.BeaconConfig().ZeroHash {
		s.payloadIndices[n.payloadHash] = index
	}
	s.nodes = append(s.nodes, n)
	if n.slot > s.highestReceivedSlot {
		s.highestReceivedSlot = n.slot
	}

	// Walk up the ancestors so every best descendant pointer accounts for the new leaf.
	for child, parent := index, parentIndex; parent != NonExistentNode; child, parent = parent, s.nodes[parent].parent {
		if err := s.updateBestChildAndDescendant(parent, child); err != nil {
			return n, err
		}
	}

	if n.status == forkchoicetypes.Valid {
		if err := s.setNodeAndParentValidated(ctx, index); err != nil {
			return n, err
		}
	}

	// Update metrics.
	processedBlockCount.Inc()
	nodeCount.Set(float64(len(s.nodes)))

	return n, nil
}

// validateFinality rejects blocks that conflict with the store's finalized checkpoint or
// that regress its justified or finalized epoch. This function assumes a lock on s.nodesLock.
func (s *Store) validateFinality(b *forkchoicetypes.Block, parentIndex uint64, jc, fc forkchoicetypes.Checkpoint) error {
	s.checkpointsLock.RLock()
	justified := *s.justifiedCheckpoint
	finalized := *s.finalizedCheckpoint
	finalizedRoot := s.resolveRoot(finalized.Root)
	s.checkpointsLock.RUnlock()

	finalizedSlot, err := slots.EpochStart(finalized.Epoch)
	if err != nil {
		return err
	}
	if finalized.Epoch > 0 && b.Slot <= finalizedSlot {
		return errors.Wrapf(forkchoice.ErrInvalidFinalization, "block slot %d is not after finalized slot %d", b.Slot, finalizedSlot)
	}
	if _, ok := s.nodesIndices[finalizedRoot]; ok {
		ancestor, err := s.ancestorIndex(parentIndex, finalizedSlot)
		if err != nil {
			return err
		}
		if s.nodes[ancestor].root != finalizedRoot {
			return errors.Wrapf(forkchoice.ErrInvalidFinalization, "block %#x does not descend from finalized root %#x",
				bytesutil.Trunc(b.Root[:]), bytesutil.Trunc(finalizedRoot[:]))
		}
	}
	if jc.Epoch < justified.Epoch {
		return errors.Wrapf(forkchoice.ErrInvalidFinalization, "block justified epoch %d is lower than store justified epoch %d", jc.Epoch, justified.Epoch)
	}
	if fc.Epoch < finalized.Epoch {
		return errors.Wrapf(forkchoice.ErrInvalidFinalization, "block finalized epoch %d is lower than store finalized epoch %d", fc.Epoch, finalized.Epoch)
	}
	return nil
}

// ancestorIndex returns the index of the node's ancestor at the given slot, or of the
// ancestor closest below it when the slot was skipped. The walk stops at the tree root, so
// slots older than the anchor resolve to it. This function assumes a lock on s.nodesLock.
func (s *Store) ancestorIndex(index uint64, slot types.Slot) (uint64, error) {
	if index >= uint64(len(s.nodes)) {
		return NonExistentNode, errors.New("node index out of range")
	}
	for s.nodes[index].slot > slot && s.nodes[index].parent != NonExistentNode {
		index = s.nodes[index].parent
		if index >= uint64(len(s.nodes)) {
			return NonExistentNode, errors.New("node index out of range")
		}
	}
	return index, nil
}

// isDescendant reports whether descendant sits in the subtree of ancestor, both
// given as indices. This function assumes a lock on s.nodesLock.
func (s *Store) isDescendant(ancestor, descendant uint64) bool {
	for i := descendant; i != NonExistentNode && i >= ancestor; i = s.nodes[i].parent {
		if i == ancestor {
			return true
		}
	}
	return false
}

// applyWeightChanges iterates backwards through the nodes in store. It checks if the weight
// is valid and adds the delta to the node's weight, then bubbles it up to the parent. A second
// pass updates the best child and descendant of every node whose subtree changed, once all
// weights are coherent.
// This function assumes a lock on s.nodesLock.
func (s *Store) applyWeightChanges(
	ctx context.Context, justifiedEpoch, finalizedEpoch types.Epoch, delta []int,
) error {
	ctx, span := trace.StartSpan(ctx, "protoArrayForkChoice.applyWeightChanges")
	defer span.End()

	// The length of the nodes can not be different than length of the delta.
	if len(s.nodes) != len(delta) {
		return errInvalidDeltaLength
	}

	// Update the justified and finalized epochs in store if they have changed.
	if s.justifiedEpoch != justifiedEpoch || s.finalizedEpoch != finalizedEpoch {
		s.justifiedEpoch = justifiedEpoch
		s.finalizedEpoch = finalizedEpoch
		s.viabilityChanged = true
	}

	var dirty []bool
	if !s.viabilityChanged {
		dirty = make([]bool, len(s.nodes))
	}

	// Iterate backwards through all index to node in store.
	for i := len(s.nodes) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n := s.nodes[i]
		nodeDelta := delta[i]
		// Invalid nodes carry no weight, whatever votes they keep receiving.
		if n.status == forkchoicetypes.Invalid {
			nodeDelta = -int(n.weight)
		}

		if nodeDelta < 0 {
			d := uint64(-nodeDelta)
			if n.weight < d {
				log.WithFields(logrus.Fields{
					"root":   fmt.Sprintf("%#x", bytesutil.Trunc(n.root[:])),
					"weight": n.weight,
					"delta":  nodeDelta,
				}).Warn("Node weight underflow, clamping to zero")
				n.weight = 0
			} else {
				n.weight -= d
			}
		} else {
			n.weight += uint64(nodeDelta)
		}
		if dirty != nil && nodeDelta != 0 {
			dirty[i] = true
		}

		// Update parent's best child and descendant if the node has a known parent.
		if n.parent != NonExistentNode {
			// Protection against node parent index out of bound. This should not happen.
			if int(n.parent) >= len(delta) {
				return errInvalidParentDelta
			}
			// Back propagate the nodes delta to its parents.
			delta[n.parent] += nodeDelta
			if dirty != nil && dirty[i] {
				dirty[n.parent] = true
			}
		}
	}

	if err := s.updateBestDescendants(ctx, dirty); err != nil {
		return err
	}
	s.viabilityChanged = false
	return nil
}

// updateBestDescendants recomputes the best child and descendant of every node flagged in
// dirty, or of every node when dirty is nil. Children have greater indices than their parents,
// so walking backwards settles each subtree before its parent.
// This function assumes a lock on s.nodesLock.
func (s *Store) updateBestDescendants(ctx context.Context, dirty []bool) error {
	for i := len(s.nodes) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n := s.nodes[i]
		if n.parent == NonExistentNode {
			continue
		}
		if dirty != nil && !dirty[n.parent] {
			continue
		}
		if err := s.updateBestChildAndDescendant(n.parent, uint64(i)); err != nil {
			return err
		}
	}
	return nil
}

// updateBestChildAndDescendant updates parent node's best child and descendant.
// It looks at input parent node and input child node and potentially modifies parent's best
// child and best descendant indices.
// There are four outcomes:
// 1.)  The child is already the best child, but it's now invalid due to a FFG change and should be removed.
// 2.)  The child is already the best child and the parent is updated with the new best descendant.
// 3.)  The child is not the best child but becomes the best child.
// 4.)  The child is not the best child and does not become the best child.
// This function assumes a lock on s.nodesLock.
func (s *Store) updateBestChildAndDescendant(parentIndex, childIndex uint64) error {
	// Protection against parent index out of bound, this should not happen.
	if parentIndex >= uint64(len(s.nodes)) {
		return errInvalidNodeIndex
	}
	parent := s.nodes[parentIndex]

	// Protection against child index out of bound, again this should not happen.
	if childIndex >= uint64(len(s.nodes)) {
		return errInvalidNodeIndex
	}
	child := s.nodes[childIndex]

	// Is the child viable to become head? Based on justification and finalization rules.
	childLeadsToViableHead, err := s.leadsToViableHead(child)
	if err != nil {
		return err
	}

	// Define 3 variables for the 3 outcomes mentioned above. This is to
	// set `parent.bestChild` and `parent.bestDescendant` to. These
	// aliases are to assist readability.
	changeToNone := []uint64{NonExistentNode, NonExistentNode}
	bestDescendant := child.bestDescendant
	if bestDescendant == NonExistentNode {
		bestDescendant = childIndex
	}
	changeToChild := []uint64{childIndex, bestDescendant}
	noChange := []uint64{parent.bestChild, parent.bestDescendant}
	var newParentChild []uint64

	if parent.bestChild != NonExistentNode {
		if parent.bestChild == childIndex && !childLeadsToViableHead {
			// If the child is already the best child of the parent but it's not viable for head,
			// we should remove it. (Outcome 1)
			newParentChild = changeToNone
		} else if parent.bestChild == childIndex {
			// If the child is already the best child of the parent, set it again to ensure best
			// descendent of the parent is updated. (Outcome 2)
			newParentChild = changeToChild
		} else {
			// Protection against parent's best child going out of bound.
			if parent.bestChild >= uint64(len(s.nodes)) {
				return errInvalidBestChildIndex
			}
			bestChild := s.nodes[parent.bestChild]
			// Is current parent's best child viable to be head? Based on justification and finalization rules.
			bestChildLeadsToViableHead, err := s.leadsToViableHead(bestChild)
			if err != nil {
				return err
			}

			if childLeadsToViableHead && !bestChildLeadsToViableHead {
				// The child leads to a viable head, but the current parent's best child doesn't.
				newParentChild = changeToChild
			} else if !childLeadsToViableHead && bestChildLeadsToViableHead {
				// The child doesn't lead to a viable head, the current parent's best child does.
				newParentChild = noChange
			} else if child.weight == bestChild.weight {
				// If both are viable, compare their weights.
				// Tie-breaker of equal weights by root.
				if bytes.Compare(child.root[:], bestChild.root[:]) > 0 {
					newParentChild = changeToChild
				} else {
					newParentChild = noChange
				}
			} else {
				// Choose winner by weight.
				if child.weight > bestChild.weight {
					newParentChild = changeToChild
				} else {
					newParentChild = noChange
				}
			}
		}
	} else {
		if childLeadsToViableHead {
			// If parent doesn't have a best child and the child is viable.
			newParentChild = changeToChild
		} else {
			// If parent doesn't have a best child and the child is not viable.
			newParentChild = noChange
		}
	}

	// Update parent with the outcome.
	parent.bestChild = newParentChild[0]
	parent.bestDescendant = newParentChild[1]
	s.nodes[parentIndex] = parent

	return nil
}

// leadsToViableHead returns true if the node or the best descendent of the node is viable for head.
// Any node with diff finalized or justified epoch than the ones in fork choice store
// should not be viable to head.
func (s *Store) leadsToViableHead(node *Node) (bool, error) {
	var bestDescendentViable bool
	bestDescendentIndex := node.bestDescendant

	// If the best descendant is not part of the leaves.
	if bestDescendentIndex != NonExistentNode {
		// Protection against out of bound, best descendent index can not be
		// exceeds length of nodes list.
		if bestDescendentIndex >= uint64(len(s.nodes)) {
			return false, errInvalidBestDescendantIndex
		}

		bestDescendentNode := s.nodes[bestDescendentIndex]
		bestDescendentViable = s.viableForHead(bestDescendentNode)
	}

	// The node is viable as long as the best descendent is viable.
	return bestDescendentViable || s.viableForHead(node), nil
}

// viableForHead returns true if the node is viable to head.
// Any node with diff finalized or justified epoch than the ones in fork choice store
// should not be viable to head. Nodes with an invalid payload are never viable.
func (s *Store) viableForHead(node *Node) bool {
	// `node` is viable if its justified epoch and finalized epoch are the same as the one in `Store`.
	// It's also viable if we are in genesis epoch.
	justified := s.justifiedEpoch == node.justified.Epoch || s.justifiedEpoch == 0
	finalized := s.finalizedEpoch == node.finalized.Epoch || s.finalizedEpoch == 0

	return justified && finalized && node.status != forkchoicetypes.Invalid
}

// prune prunes the store with the finalized root. The store will only prune if the
// supplied root is different than the current store finalized root and the number
// of the store has met prune threshold.
// This function assumes a lock on s.nodesLock.
func (s *Store) prune(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "protoArrayForkChoice.prune")
	defer span.End()

	s.checkpointsLock.RLock()
	finalizedRoot := s.resolveRoot(s.finalizedCheckpoint.Root)
	s.checkpointsLock.RUnlock()

	finalizedIndex, ok := s.nodesIndices[finalizedRoot]
	if !ok {
		return errors.Wrapf(errUnknownFinalizedRoot, "root %#x", bytesutil.Trunc(finalizedRoot[:]))
	}

	// The number of the nodes has not met the prune threshold.
	// Pruning at small numbers incurs more cost than benefit.
	if finalizedIndex == 0 || finalizedIndex < s.pruneThreshold {
		return nil
	}

	// Traverse through the node list starting from the finalized root at index 0.
	// Nodes that are not descendants of the finalized node are dropped, the rest
	// get their indices remapped.
	remap := make(map[uint64]uint64, uint64(len(s.nodes))-finalizedIndex)
	kept := make([]*Node, 0, uint64(len(s.nodes))-finalizedIndex)
	for idx := finalizedIndex; idx < uint64(len(s.nodes)); idx++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		node := s.nodes[idx]
		newParent, parentKept := remap[node.parent]
		if idx != finalizedIndex && !parentKept {
			continue
		}
		cp := copyNode(node)
		if idx == finalizedIndex {
			cp.parent = NonExistentNode
		} else {
			cp.parent = newParent
		}
		remap[idx] = uint64(len(kept))
		kept = append(kept, cp)
	}

	for _, node := range kept {
		if node.bestChild != NonExistentNode {
			node.bestChild = remap[node.bestChild]
		}
		if node.bestDescendant != NonExistentNode {
			node.bestDescendant = remap[node.bestDescendant]
		}
	}

	pruned := len(s.nodes) - len(kept)
	for idx, node := range s.nodes {
		if _, ok := remap[uint64(idx)]; ok {
			continue
		}
		delete(s.nodesIndices, node.root)
		delete(s.canonicalNodes, node.root)
		if node.payloadHash != params.BeaconConfig().ZeroHash {
			delete(s.payloadIndices, node.payloadHash)
		}
	}
	for idx, node := range kept {
		s.nodesIndices[node.root] = uint64(idx)
		if node.payloadHash != params.BeaconConfig().ZeroHash {
			s.payloadIndices[node.payloadHash] = uint64(idx)
		}
	}
	s.nodes = kept

	// Forget boosts on pruned nodes, their weight left with them.
	s.proposerBoostLock.Lock()
	if _, ok := s.nodesIndices[s.proposerBoostRoot]; !ok {
		s.proposerBoostRoot = [32]byte{}
	}
	if _, ok := s.nodesIndices[s.previousProposerBoostRoot]; !ok {
		s.previousProposerBoostRoot = [32]byte{}
		s.previousProposerBoostScore = 0
	}
	s.proposerBoostLock.Unlock()

	prunedCount.Add(float64(pruned))
	nodeCount.Set(float64(len(s.nodes)))
	log.WithFields(logrus.Fields{
		"finalizedRoot": fmt.Sprintf("%#x", bytesutil.Trunc(finalizedRoot[:])),
		"pruned":        pruned,
		"remaining":     len(s.nodes),
	}).Debug("Pruned fork choice store")
	return nil
}

// resolveRoot maps the zero hash, used for the genesis checkpoint, to the
// store's origin root. This function assumes a lock on s.checkpointsLock.
func (s *Store) resolveRoot(root [32]byte) [32]byte {
	if root == params.BeaconConfig().ZeroHash {
		return s.originRoot
	}
	return root
}

func checkpointOrZero(c *forkchoicetypes.Checkpoint) forkchoicetypes.Checkpoint {
	if c == nil {
		return forkchoicetypes.Checkpoint{}
	}
	return *c
}

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
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// IsOptimistic returns true if this node is optimistically synced
// A optimistically synced block is synced as usual, but its
// execution payload is not validated, while the EL is still syncing.
// This function returns an error if the block is not found in the fork choice
// store
func (f *ForkChoice) IsOptimistic(root [32]byte) (bool, error) {
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()

	index, ok := f.store.nodesIndices[root]
	if !ok || index >= uint64(len(f.store.nodes)) {
		return false, forkchoice.ErrNilNode
	}
	return f.store.nodes[index].status == forkchoicetypes.Syncing, nil
}

// Tips returns all possible chain heads (leaves of fork choice tree).
// Heads roots and heads slots are returned.
func (f *ForkChoice) Tips() ([][32]byte, []types.Slot) {
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()

	roots := make([][32]byte, 0)
	slots := make([]types.Slot, 0)
	for _, i := range f.store.leaves() {
		n := f.store.nodes[i]
		roots = append(roots, n.root)
		slots = append(slots, n.slot)
	}
	return roots, slots
}

// AllTipsAreInvalid returns true if no forkchoice tip is viable for head.
func (f *ForkChoice) AllTipsAreInvalid() bool {
	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()

	for _, i := range f.store.leaves() {
		if f.store.nodes[i].status != forkchoicetypes.Invalid {
			return false
		}
	}
	return true
}

// leaves returns the indices of the nodes that are nobody's parent.
// This function assumes a lock on s.nodesLock.
func (s *Store) leaves() []uint64 {
	hasChild := make([]bool, len(s.nodes))
	for _, n := range s.nodes {
		if n.parent != NonExistentNode && n.parent < uint64(len(s.nodes)) {
			hasChild[n.parent] = true
		}
	}
	leaves := make([]uint64, 0)
	for i := range s.nodes {
		if !hasChild[i] {
			leaves = append(leaves, uint64(i))
		}
	}
	return leaves
}

// SetOptimisticToValid is called with the root of a block that was returned as
// VALID by the EL. Its ancestors are fully validated along with it.
func (f *ForkChoice) SetOptimisticToValid(ctx context.Context, root [32]byte) error {
	ctx, span := trace.StartSpan(ctx, "protoArrayForkChoice.SetOptimisticToValid")
	defer span.End()

	f.store.nodesLock.Lock()
	defer f.store.nodesLock.Unlock()

	index, ok := f.store.nodesIndices[root]
	if !ok || index >= uint64(len(f.store.nodes)) {
		return forkchoice.ErrNilNode
	}
	if f.store.nodes[index].status == forkchoicetypes.Invalid {
		return f.store.setStatusError(errors.Wrapf(forkchoice.ErrInvalidOptimisticStatus, "block %#x was already invalidated", bytesutil.Trunc(root[:])))
	}
	return f.store.setNodeAndParentValidated(ctx, index)
}

// setStatusError records an execution status contradiction. The store stops
// computing heads until it is rebuilt.
// This function assumes a lock on s.nodesLock.
func (s *Store) setStatusError(err error) error {
	if s.statusErr == nil {
		s.statusErr = err
		log.WithError(err).Error("Execution engine contradicted a previous payload status, fork choice must be rebuilt")
	}
	return err
}

// setNodeAndParentValidated marks the node and its syncing ancestors as valid. The walk
// stops at the first ancestor that already is valid or pre-merge.
// This function assumes a lock on s.nodesLock.
func (s *Store) setNodeAndParentValidated(ctx context.Context, index uint64) error {
	for i := index; i != NonExistentNode; i = s.nodes[i].parent {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i >= uint64(len(s.nodes)) {
			return errInvalidNodeIndex
		}
		n := s.nodes[i]
		if i != index && (n.status == forkchoicetypes.Valid || n.status == forkchoicetypes.PreMerge) {
			return nil
		}
		if n.status == forkchoicetypes.Invalid {
			return s.setStatusError(errors.Wrapf(forkchoice.ErrInvalidOptimisticStatus, "ancestor %#x was already invalidated", bytesutil.Trunc(n.root[:])))
		}
		if n.status == forkchoicetypes.Syncing || i == index {
			n.status = forkchoicetypes.Valid
		}
	}
	return nil
}

// SetOptimisticToInvalid is called when the EL reports the payload of the block with
// the given root as invalid. lastValidHash is the payload hash of the newest valid
// ancestor as reported by the EL, zero meaning the last pre-merge block.
// Every block from the first invalid ancestor down is marked invalid and their roots are
// returned. The block carrying lastValidHash and its syncing ancestors become valid. If the justified block gets invalidated, ErrJustifiedNodeInvalidated is
// returned along with the roots.
func (f *ForkChoice) SetOptimisticToInvalid(ctx context.Context, root, parentRoot, lastValidHash [32]byte) ([][32]byte, error) {
	ctx, span := trace.StartSpan(ctx, "protoArrayForkChoice.SetOptimisticToInvalid")
	defer span.End()

	f.store.nodesLock.Lock()
	defer f.store.nodesLock.Unlock()
	f.store.checkpointsLock.RLock()
	justifiedRoot := f.store.resolveRoot(f.store.justifiedCheckpoint.Root)
	f.store.checkpointsLock.RUnlock()

	invalidRoots, err := f.store.setOptimisticToInvalid(ctx, root, parentRoot, lastValidHash)
	if err != nil {
		return nil, err
	}
	if len(invalidRoots) > 0 {
		log.WithFields(logrus.Fields{
			"root":          fmt.Sprintf("%#x", bytesutil.Trunc(root[:])),
			"lastValidHash": fmt.Sprintf("%#x", bytesutil.Trunc(lastValidHash[:])),
			"invalidated":   len(invalidRoots),
		}).Warn("Pruned invalid blocks from fork choice view")
	}

	if i, ok := f.store.nodesIndices[justifiedRoot]; ok && f.store.nodes[i].status == forkchoicetypes.Invalid {
		log.WithField("justifiedRoot", fmt.Sprintf("%#x", bytesutil.Trunc(justifiedRoot[:]))).Error("Justified block has been invalidated")
		return invalidRoots, forkchoice.ErrJustifiedNodeInvalidated
	}
	return invalidRoots, nil
}

// setOptimisticToInvalid does the work of SetOptimisticToInvalid.
// This function assumes a lock on s.nodesLock.
func (s *Store) setOptimisticToInvalid(ctx context.Context, root, parentRoot, lastValidHash [32]byte) ([][32]byte, error) {
	isLastValid := func(n *Node) bool {
		if lastValidHash == params.BeaconConfig().ZeroHash {
			return n.status == forkchoicetypes.PreMerge
		}
		return n.payloadHash == lastValidHash
	}

	firstInvalid := NonExistentNode
	var walkFrom uint64
	if index, ok := s.nodesIndices[root]; ok {
		firstInvalid = index
		walkFrom = s.nodes[index].parent
	} else {
		index, ok := s.nodesIndices[parentRoot]
		if !ok {
			return nil, errors.Wrapf(forkchoice.ErrNilNode, "unknown parent %#x", bytesutil.Trunc(parentRoot[:]))
		}
		// The parent is the last valid block, the reported one never made it in.
		if s.nodes[index].payloadHash == lastValidHash {
			if s.nodes[index].status == forkchoicetypes.Syncing {
				return nil, s.setNodeAndParentValidated(ctx, index)
			}
			return nil, nil
		}
		walkFrom = index
	}

	visited := make([]uint64, 0)
	foundLastValid := false
	lastValidIndex := NonExistentNode
	for i := walkFrom; i != NonExistentNode; i = s.nodes[i].parent {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if i >= uint64(len(s.nodes)) {
			return nil, errInvalidNodeIndex
		}
		if isLastValid(s.nodes[i]) {
			foundLastValid = true
			lastValidIndex = i
			break
		}
		visited = append(visited, i)
	}
	if foundLastValid && len(visited) > 0 {
		firstInvalid = visited[len(visited)-1]
	}
	if firstInvalid == NonExistentNode {
		return nil, nil
	}

	// Children come after their parents in the arena, one forward pass collects the subtree.
	inSubtree := make([]bool, len(s.nodes))
	inSubtree[firstInvalid] = true
	for i := firstInvalid + 1; i < uint64(len(s.nodes)); i++ {
		p := s.nodes[i].parent
		if p != NonExistentNode && p < uint64(len(s.nodes)) && inSubtree[p] {
			inSubtree[i] = true
		}
	}
	for i, in := range inSubtree {
		if in && s.nodes[i].status == forkchoicetypes.Valid {
			return nil, s.setStatusError(errors.Wrapf(forkchoice.ErrInvalidOptimisticStatus, "block %#x was already validated", bytesutil.Trunc(s.nodes[i].root[:])))
		}
	}

	invalidRoots := make([][32]byte, 0)
	for i, in := range inSubtree {
		n := s.nodes[i]
		if !in || n.status == forkchoicetypes.Invalid {
			continue
		}
		n.status = forkchoicetypes.Invalid
		invalidRoots = append(invalidRoots, n.root)
	}
	invalidatedNodesCount.Add(float64(len(invalidRoots)))

	if foundLastValid && s.nodes[lastValidIndex].status == forkchoicetypes.Syncing {
		if err := s.setNodeAndParentValidated(ctx, lastValidIndex); err != nil {
			return invalidRoots, err
		}
	}
	if err := s.updateBestDescendants(ctx, nil); err != nil {
		return invalidRoots, err
	}
	return invalidRoots, nil
}

package protoarray

import (
	"context"
	"fmt"

	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
	"github.com/prysmaticlabs/forkchoice/encoding/bytesutil"
	"github.com/prysmaticlabs/forkchoice/time/slots"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// NewSlot is called by the clock at the start of every slot.
//
//	def on_tick(store: Store, time: uint64) -> None:
//	    previous_slot = get_current_slot(store)
//	    store.time = time
//	    current_slot = get_current_slot(store)
//	    # Reset store.proposer_boost_root if this is a new slot
//	    if current_slot > previous_slot:
//	        store.proposer_boost_root = Root()
//	    # Not a new epoch, return
//	    if not (current_slot > previous_slot and compute_slots_since_epoch_start(current_slot) == 0):
//	        return
//	    # Update store.justified_checkpoint if a better checkpoint on the store.finalized_checkpoint chain
//	    if store.best_justified_checkpoint.epoch > store.justified_checkpoint.epoch:
//	        ...
//	    # Update store.justified_checkpoint and store.finalized_checkpoint with the pulled up tips
//	    update_checkpoints(store, store.unrealized_justified_checkpoint, store.unrealized_finalized_checkpoint)
func (f *ForkChoice) NewSlot(ctx context.Context, slot types.Slot) error {
	ctx, span := trace.StartSpan(ctx, "protoArrayForkChoice.NewSlot")
	defer span.End()

	f.votesLock.Lock()
	defer f.votesLock.Unlock()
	f.store.nodesLock.Lock()
	defer f.store.nodesLock.Unlock()

	f.store.checkpointsLock.Lock()
	previousSlot := f.store.currentSlot
	f.store.currentSlot = slot
	f.store.checkpointsLock.Unlock()

	if slot > previousSlot {
		f.store.proposerBoostLock.Lock()
		f.store.proposerBoostRoot = [32]byte{}
		f.store.proposerBoostLock.Unlock()
	}

	f.processQueuedAttestations(slot)

	if slot <= previousSlot || !slots.IsEpochStart(slot) {
		return nil
	}
	finalizedAdvanced, err := f.store.onEpochStart()
	if err != nil {
		return err
	}
	if finalizedAdvanced {
		return f.store.prune(ctx)
	}
	return nil
}

// onEpochStart promotes the best justified checkpoint and realizes the unrealized
// checkpoints of every node and of the store. It reports whether finalization advanced.
// This function assumes a lock on s.nodesLock.
func (s *Store) onEpochStart() (bool, error) {
	s.checkpointsLock.Lock()
	defer s.checkpointsLock.Unlock()

	if bj := s.bestJustifiedCheckpoint; bj != nil && bj.Epoch > s.justifiedCheckpoint.Epoch {
		finalizedSlot, err := slots.EpochStart(s.finalizedCheckpoint.Epoch)
		if err != nil {
			return false, err
		}
		if idx, ok := s.nodesIndices[s.resolveRoot(bj.Root)]; ok {
			ancestor, err := s.ancestorIndex(idx, finalizedSlot)
			if err != nil {
				return false, err
			}
			if s.nodes[ancestor].root == s.resolveRoot(s.finalizedCheckpoint.Root) {
				s.prevJustifiedCheckpoint = s.justifiedCheckpoint
				s.justifiedCheckpoint = bj.Copy()
			}
		}
	}

	s.pullUpTips()

	if uj := s.unrealizedJustifiedCheckpoint; uj.Epoch > s.justifiedCheckpoint.Epoch {
		s.prevJustifiedCheckpoint = s.justifiedCheckpoint
		s.justifiedCheckpoint = uj.Copy()
		if uj.Epoch > s.bestJustifiedCheckpoint.Epoch {
			s.bestJustifiedCheckpoint = uj.Copy()
		}
	}
	finalizedAdvanced := false
	if uf := s.unrealizedFinalizedCheckpoint; uf.Epoch > s.finalizedCheckpoint.Epoch {
		s.finalizedCheckpoint = uf.Copy()
		finalizedAdvanced = true
	}
	log.WithFields(logrus.Fields{
		"justifiedEpoch": s.justifiedCheckpoint.Epoch,
		"justifiedRoot":  fmt.Sprintf("%#x", bytesutil.Trunc(s.justifiedCheckpoint.Root[:])),
		"finalizedEpoch": s.finalizedCheckpoint.Epoch,
		"finalizedRoot":  fmt.Sprintf("%#x", bytesutil.Trunc(s.finalizedCheckpoint.Root[:])),
	}).Debug("Realized checkpoints at epoch start")
	return finalizedAdvanced, nil
}

// pullUpTips makes every node's unrealized checkpoints its realized ones. Viability
// is recomputed for the whole arena on the next weight update when anything moved.
// This function assumes a lock on s.nodesLock.
func (s *Store) pullUpTips() {
	for _, n := range s.nodes {
		if n.justified != n.unrealizedJustified || n.finalized != n.unrealizedFinalized {
			n.justified = n.unrealizedJustified
			n.finalized = n.unrealizedFinalized
			s.viabilityChanged = true
		}
	}
}

// processQueuedAttestations applies the queued gossip attestations whose slot is
// over and keeps the rest. This function assumes a lock on f.votesLock.
func (f *ForkChoice) processQueuedAttestations(slot types.Slot) {
	kept := make([]*forkchoicetypes.IndexedAttestation, 0, len(f.queuedAttestations))
	for _, att := range f.queuedAttestations {
		if att.Slot >= slot {
			kept = append(kept, att)
			continue
		}
		f.processAttestation(att.AttestingIndices, att.BeaconBlockRoot, att.Target.Epoch)
	}
	f.queuedAttestations = kept
	queuedAttestationCount.Set(float64(len(kept)))
}

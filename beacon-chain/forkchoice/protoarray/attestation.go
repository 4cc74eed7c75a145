package protoarray

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/forkchoice/config/params"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
	"github.com/prysmaticlabs/forkchoice/time/slots"
	"go.opencensus.io/trace"
)

// ProcessAttestation processes attestation for vote accounting, it iterates around validator indices
// and update their votes accordingly.
func (f *ForkChoice) ProcessAttestation(ctx context.Context, validatorIndices []uint64, blockRoot [32]byte, targetEpoch types.Epoch) {
	_, span := trace.StartSpan(ctx, "protoArrayForkChoice.ProcessAttestation")
	defer span.End()
	f.votesLock.Lock()
	defer f.votesLock.Unlock()

	f.processAttestation(validatorIndices, blockRoot, targetEpoch)
}

// processAttestation records the vote of every validator whose latest message
// this is. This function assumes a lock on f.votesLock.
func (f *ForkChoice) processAttestation(validatorIndices []uint64, blockRoot [32]byte, targetEpoch types.Epoch) {
	for _, index := range validatorIndices {
		// Validator indices will grow the vote cache.
		for index >= uint64(len(f.votes)) {
			f.votes = append(f.votes, Vote{currentRoot: params.BeaconConfig().ZeroHash, nextRoot: params.BeaconConfig().ZeroHash})
		}

		// Newly allocated vote if the root fields are untouched.
		newVote := f.votes[index].nextRoot == params.BeaconConfig().ZeroHash &&
			f.votes[index].currentRoot == params.BeaconConfig().ZeroHash

		// Vote gets updated if it's newly allocated or high target epoch.
		if newVote || targetEpoch > f.votes[index].nextEpoch {
			f.votes[index].nextEpoch = targetEpoch
			f.votes[index].nextRoot = blockRoot
		} else {
			staleAttestationCount.Inc()
		}
	}

	processedAttestationCount.Inc()
}

// OnAttestation routes an attestation to the vote tracker. Attestations included
// in blocks are applied right away. Gossip attestations are validated first and
// held back until their slot is over.
func (f *ForkChoice) OnAttestation(ctx context.Context, att *forkchoicetypes.IndexedAttestation, isFromBlock bool) error {
	_, span := trace.StartSpan(ctx, "protoArrayForkChoice.OnAttestation")
	defer span.End()

	if att == nil {
		return errNilAttestation
	}
	if att.BeaconBlockRoot == params.BeaconConfig().ZeroHash {
		return nil
	}

	f.votesLock.Lock()
	defer f.votesLock.Unlock()

	if isFromBlock {
		f.processAttestation(att.AttestingIndices, att.BeaconBlockRoot, att.Target.Epoch)
		return nil
	}

	f.store.nodesLock.RLock()
	defer f.store.nodesLock.RUnlock()
	f.store.checkpointsLock.RLock()
	currentSlot := f.store.currentSlot
	f.store.checkpointsLock.RUnlock()

	if err := f.store.validateOnAttestation(att, currentSlot); err != nil {
		return errors.Wrapf(forkchoice.ErrInvalidAttestation, "%v", err)
	}

	switch {
	case att.Slot > currentSlot:
		return errors.Wrapf(forkchoice.ErrInvalidAttestation, "attestation slot %d is in the future, current slot %d", att.Slot, currentSlot)
	case att.Slot == currentSlot:
		// Votes only count once their slot is over.
		f.queuedAttestations = append(f.queuedAttestations, att)
		queuedAttestationCount.Set(float64(len(f.queuedAttestations)))
	default:
		f.processAttestation(att.AttestingIndices, att.BeaconBlockRoot, att.Target.Epoch)
	}
	return nil
}

// validateOnAttestation runs the gossip attestation checks of on_attestation.
// This function assumes a lock on s.nodesLock.
//
//	def validate_on_attestation(store: Store, attestation: Attestation, is_from_block: bool) -> None:
//	    target = attestation.data.target
//	    # If the given attestation is not from a beacon block message, we have to check the target epoch scope.
//	    if not is_from_block:
//	        validate_target_epoch_against_current_time(store, attestation)
//	    # Check that the epoch number and slot number are matching
//	    assert target.epoch == compute_epoch_at_slot(attestation.data.slot)
//	    # Attestation target must be for a known block. If target block is unknown, delay consideration until block is found
//	    assert target.root in store.blocks
//	    # Attestations must be for a known block. If block is unknown, delay consideration until the block is found
//	    assert attestation.data.beacon_block_root in store.blocks
//	    # Attestations must not be for blocks in the future. If not, the attestation should not be considered
//	    assert store.blocks[attestation.data.beacon_block_root].slot <= attestation.data.slot
//	    # LMD vote must be consistent with FFG vote target
//	    target_slot = compute_start_slot_at_epoch(target.epoch)
//	    assert target.root == get_ancestor(store, attestation.data.beacon_block_root, target_slot)
func (s *Store) validateOnAttestation(att *forkchoicetypes.IndexedAttestation, currentSlot types.Slot) error {
	if len(att.AttestingIndices) == 0 {
		return errors.New("attestation has no attesting indices")
	}

	currentEpoch := slots.ToEpoch(currentSlot)
	previousEpoch := currentEpoch
	if currentEpoch > 0 {
		previousEpoch = currentEpoch - 1
	}
	if att.Target.Epoch != currentEpoch && att.Target.Epoch != previousEpoch {
		return errors.Errorf("target epoch %d is neither the current epoch %d nor the previous one", att.Target.Epoch, currentEpoch)
	}
	if att.Target.Epoch != slots.ToEpoch(att.Slot) {
		return errors.Errorf("target epoch %d does not match slot %d", att.Target.Epoch, att.Slot)
	}

	if _, ok := s.nodesIndices[att.Target.Root]; !ok {
		return errors.Errorf("unknown target root %#x", att.Target.Root)
	}
	headIndex, ok := s.nodesIndices[att.BeaconBlockRoot]
	if !ok {
		return errors.Errorf("unknown beacon block root %#x", att.BeaconBlockRoot)
	}
	if s.nodes[headIndex].slot > att.Slot {
		return errors.Errorf("beacon block slot %d is after attestation slot %d", s.nodes[headIndex].slot, att.Slot)
	}

	targetSlot, err := slots.EpochStart(att.Target.Epoch)
	if err != nil {
		return err
	}
	ancestor, err := s.ancestorIndex(headIndex, targetSlot)
	if err != nil {
		return err
	}
	if s.nodes[ancestor].root != att.Target.Root {
		return errors.Errorf("target root %#x is not the ancestor of the beacon block at slot %d", att.Target.Root, targetSlot)
	}
	return nil
}

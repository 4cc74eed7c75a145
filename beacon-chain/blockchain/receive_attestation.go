package blockchain

import (
	"context"
	"time"

	"github.com/pkg/errors"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/forkchoice/config/params"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"
)

// Number of slots an attestation stays eligible for gossip.
const attestationPropagationSlotRange = 32

// ReceiveAttestation is a function that defines the operations that are performed on
// an attestation received over gossip:
//  1. Check the attestation slot against the local clock, within the gossip clock disparity
//  2. Validate the attestation against fork choice and record the votes
//
// Attestations of the current slot are held by fork choice until the slot ends.
func (s *Service) ReceiveAttestation(ctx context.Context, att *forkchoicetypes.IndexedAttestation) error {
	ctx, span := trace.StartSpan(ctx, "blockChain.ReceiveAttestation")
	defer span.End()

	if att == nil {
		return errNilAttestation
	}
	if s.clock != nil {
		if err := verifyGossipSlot(att.Slot, s.clock); err != nil {
			rejectedGossipAttestations.Inc()
			return err
		}
	}
	if err := s.cfg.ForkChoiceStore.OnAttestation(ctx, att, false); err != nil {
		return errors.Wrap(err, "could not process attestation in fork choice")
	}
	log.WithFields(logrus.Fields{
		"slot":            att.Slot,
		"beaconBlockRoot": logRoot(att.BeaconBlockRoot),
		"targetEpoch":     att.Target.Epoch,
		"validators":      len(att.AttestingIndices),
	}).Trace("Processed gossip attestation")
	return nil
}

// verifyGossipSlot accepts slots from attSlot <= current slot <= attSlot +
// attestationPropagationSlotRange, with both bounds widened by the maximum
// gossip clock disparity.
func verifyGossipSlot(attSlot types.Slot, c Clock) error {
	cfg := params.BeaconConfig()
	disparity := cfg.MaximumGossipClockDisparityDuration()
	slotDur := time.Duration(cfg.SecondsPerSlot) * time.Second
	genesis := c.GenesisTime()
	now := c.Now()

	earliest := genesis.Add(time.Duration(attSlot) * slotDur).Add(-disparity)
	if now.Before(earliest) {
		return errors.Wrapf(ErrGossipClockDisparity, "attestation slot %d is in the future, current slot %d", attSlot, c.CurrentSlot())
	}
	latest := genesis.Add(time.Duration(attSlot+attestationPropagationSlotRange+1) * slotDur).Add(disparity)
	if now.After(latest) {
		return errors.Wrapf(ErrGossipClockDisparity, "attestation slot %d is too old, current slot %d", attSlot, c.CurrentSlot())
	}
	return nil
}

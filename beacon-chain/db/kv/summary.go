package kv

import (
	"fmt"

	ssz "github.com/ferranbt/fastssz"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
)

const (
	checkpointSSZSize   = 8 + hashLength
	blockSummarySSZSize = 8 + 5*hashLength + 4*checkpointSSZSize + 1
	// Registry limit of the beacon state balances list.
	balancesLimit = 1099511627776
)

// BlockSummary is everything fork choice needs to re-insert a block after a restart.
type BlockSummary struct {
	Slot                          types.Slot
	Root                          [32]byte
	ParentRoot                    [32]byte
	StateRoot                     [32]byte
	TargetRoot                    [32]byte
	PayloadHash                   [32]byte
	JustifiedCheckpoint           forkchoicetypes.Checkpoint
	FinalizedCheckpoint           forkchoicetypes.Checkpoint
	UnrealizedJustifiedCheckpoint forkchoicetypes.Checkpoint
	UnrealizedFinalizedCheckpoint forkchoicetypes.Checkpoint
	ExecutionStatus               forkchoicetypes.ExecutionStatus
}

// NewBlockSummary captures the insertion arguments of a block.
func NewBlockSummary(bc *forkchoicetypes.BlockAndCheckpoints) (*BlockSummary, error) {
	if bc == nil || bc.Block == nil {
		return nil, errNilBlockSummary
	}
	s := &BlockSummary{
		Slot:            bc.Block.Slot,
		Root:            bc.Block.Root,
		ParentRoot:      bc.Block.ParentRoot,
		StateRoot:       bc.Block.StateRoot,
		TargetRoot:      bc.Block.TargetRoot,
		PayloadHash:     bc.Block.PayloadHash,
		ExecutionStatus: bc.ExecutionStatus,
	}
	if bc.JustifiedCheckpoint != nil {
		s.JustifiedCheckpoint = *bc.JustifiedCheckpoint
	}
	if bc.FinalizedCheckpoint != nil {
		s.FinalizedCheckpoint = *bc.FinalizedCheckpoint
	}
	s.UnrealizedJustifiedCheckpoint = s.JustifiedCheckpoint
	if bc.UnrealizedJustifiedCheckpoint != nil {
		s.UnrealizedJustifiedCheckpoint = *bc.UnrealizedJustifiedCheckpoint
	}
	s.UnrealizedFinalizedCheckpoint = s.FinalizedCheckpoint
	if bc.UnrealizedFinalizedCheckpoint != nil {
		s.UnrealizedFinalizedCheckpoint = *bc.UnrealizedFinalizedCheckpoint
	}
	return s, nil
}

// BlockAndCheckpoints returns the fork choice insertion arguments of the summary.
func (s *BlockSummary) BlockAndCheckpoints() *forkchoicetypes.BlockAndCheckpoints {
	return &forkchoicetypes.BlockAndCheckpoints{
		Block: &forkchoicetypes.Block{
			Slot:        s.Slot,
			Root:        s.Root,
			ParentRoot:  s.ParentRoot,
			StateRoot:   s.StateRoot,
			TargetRoot:  s.TargetRoot,
			PayloadHash: s.PayloadHash,
		},
		JustifiedCheckpoint:           s.JustifiedCheckpoint.Copy(),
		FinalizedCheckpoint:           s.FinalizedCheckpoint.Copy(),
		UnrealizedJustifiedCheckpoint: s.UnrealizedJustifiedCheckpoint.Copy(),
		UnrealizedFinalizedCheckpoint: s.UnrealizedFinalizedCheckpoint.Copy(),
		ExecutionStatus:               s.ExecutionStatus,
	}
}

// MarshalSSZ ssz marshals the BlockSummary object
func (s *BlockSummary) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(s)
}

// MarshalSSZTo ssz marshals the BlockSummary object to a target array
func (s *BlockSummary) MarshalSSZTo(buf []byte) ([]byte, error) {
	dst := buf
	dst = ssz.MarshalUint64(dst, uint64(s.Slot))
	dst = append(dst, s.Root[:]...)
	dst = append(dst, s.ParentRoot[:]...)
	dst = append(dst, s.StateRoot[:]...)
	dst = append(dst, s.TargetRoot[:]...)
	dst = append(dst, s.PayloadHash[:]...)
	for _, c := range []forkchoicetypes.Checkpoint{
		s.JustifiedCheckpoint,
		s.FinalizedCheckpoint,
		s.UnrealizedJustifiedCheckpoint,
		s.UnrealizedFinalizedCheckpoint,
	} {
		dst = marshalCheckpoint(dst, c)
	}
	dst = append(dst, byte(s.ExecutionStatus))
	return dst, nil
}

// UnmarshalSSZ ssz unmarshals the BlockSummary object
func (s *BlockSummary) UnmarshalSSZ(buf []byte) error {
	if len(buf) != blockSummarySSZSize {
		return ssz.ErrSize
	}
	s.Slot = types.Slot(ssz.UnmarshallUint64(buf[0:8]))
	off := 8
	for _, r := range []*[32]byte{&s.Root, &s.ParentRoot, &s.StateRoot, &s.TargetRoot, &s.PayloadHash} {
		copy(r[:], buf[off:off+hashLength])
		off += hashLength
	}
	for _, c := range []*forkchoicetypes.Checkpoint{
		&s.JustifiedCheckpoint,
		&s.FinalizedCheckpoint,
		&s.UnrealizedJustifiedCheckpoint,
		&s.UnrealizedFinalizedCheckpoint,
	} {
		unmarshalCheckpoint(buf[off:off+checkpointSSZSize], c)
		off += checkpointSSZSize
	}
	status := forkchoicetypes.ExecutionStatus(buf[off])
	if status > forkchoicetypes.Invalid {
		return fmt.Errorf("unknown execution status %d", status)
	}
	s.ExecutionStatus = status
	return nil
}

// SizeSSZ returns the ssz encoded size in bytes for the BlockSummary object
func (s *BlockSummary) SizeSSZ() int {
	return blockSummarySSZSize
}

// checkpointSummary is the ssz container of a fork choice checkpoint.
type checkpointSummary forkchoicetypes.Checkpoint

func (c *checkpointSummary) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(c)
}

func (c *checkpointSummary) MarshalSSZTo(buf []byte) ([]byte, error) {
	return marshalCheckpoint(buf, forkchoicetypes.Checkpoint(*c)), nil
}

func (c *checkpointSummary) UnmarshalSSZ(buf []byte) error {
	if len(buf) != checkpointSSZSize {
		return ssz.ErrSize
	}
	unmarshalCheckpoint(buf, (*forkchoicetypes.Checkpoint)(c))
	return nil
}

func (c *checkpointSummary) SizeSSZ() int {
	return checkpointSSZSize
}

func marshalCheckpoint(dst []byte, c forkchoicetypes.Checkpoint) []byte {
	dst = ssz.MarshalUint64(dst, uint64(c.Epoch))
	return append(dst, c.Root[:]...)
}

func unmarshalCheckpoint(buf []byte, c *forkchoicetypes.Checkpoint) {
	c.Epoch = types.Epoch(ssz.UnmarshallUint64(buf[0:8]))
	copy(c.Root[:], buf[8:checkpointSSZSize])
}

// balanceList is the ssz list of the justified effective balances.
type balanceList []uint64

func (b *balanceList) MarshalSSZ() ([]byte, error) {
	return ssz.MarshalSSZ(b)
}

func (b *balanceList) MarshalSSZTo(buf []byte) ([]byte, error) {
	if uint64(len(*b)) > balancesLimit {
		return nil, ssz.ErrIncorrectListSize
	}
	dst := buf
	for _, v := range *b {
		dst = ssz.MarshalUint64(dst, v)
	}
	return dst, nil
}

func (b *balanceList) UnmarshalSSZ(buf []byte) error {
	if len(buf)%8 != 0 {
		return ssz.ErrSize
	}
	num := len(buf) / 8
	if uint64(num) > balancesLimit {
		return ssz.ErrIncorrectListSize
	}
	list := make([]uint64, num)
	for i := range list {
		list[i] = ssz.UnmarshallUint64(buf[i*8 : (i+1)*8])
	}
	*b = list
	return nil
}

func (b *balanceList) SizeSSZ() int {
	return len(*b) * 8
}

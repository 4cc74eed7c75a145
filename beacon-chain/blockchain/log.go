package blockchain

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	forkchoicetypes "github.com/prysmaticlabs/forkchoice/beacon-chain/forkchoice/types"
	"github.com/prysmaticlabs/forkchoice/encoding/bytesutil"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "blockchain")

func logRoot(root [32]byte) string {
	return hexutil.Encode(bytesutil.Trunc(root[:]))
}

// logs the block inserted into fork choice.
func logBlockInserted(b *forkchoicetypes.Block, status forkchoicetypes.ExecutionStatus) {
	fields := logrus.Fields{
		"slot":       b.Slot,
		"root":       logRoot(b.Root),
		"parentRoot": logRoot(b.ParentRoot),
	}
	if status != forkchoicetypes.PreMerge {
		fields["payloadHash"] = hexutil.Encode(bytesutil.Trunc(b.PayloadHash[:]))
		fields["execution"] = status.String()
	}
	log.WithFields(fields).Debug("Inserted block into fork choice")
}

func logCheckpoints(justified, finalized *forkchoicetypes.Checkpoint) {
	log.WithFields(logrus.Fields{
		"justifiedEpoch": justified.Epoch,
		"justifiedRoot":  logRoot(justified.Root),
		"finalizedEpoch": finalized.Epoch,
		"finalizedRoot":  logRoot(finalized.Root),
	}).Info("Checkpoints updated")
}

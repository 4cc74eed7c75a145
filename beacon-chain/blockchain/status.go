package blockchain

import (
	"time"

	"github.com/prysmaticlabs/forkchoice/config/params"
	"github.com/sirupsen/logrus"
)

// reportStatus logs a summary of the fork choice view and refreshes the tree gauges.
func (s *Service) reportStatus() {
	f := s.cfg.ForkChoiceStore
	tips, _ := f.Tips()
	tipsCount.Set(float64(len(tips)))
	log.WithFields(logrus.Fields{
		"head":           logRoot(s.HeadRoot()),
		"nodes":          f.NodeCount(),
		"tips":           len(tips),
		"justifiedEpoch": f.JustifiedCheckpoint().Epoch,
		"finalizedEpoch": f.FinalizedCheckpoint().Epoch,
	}).Info("Fork choice status")
}

func epochDuration() time.Duration {
	cfg := params.BeaconConfig()
	return time.Duration(uint64(cfg.SlotsPerEpoch)*cfg.SecondsPerSlot) * time.Second
}

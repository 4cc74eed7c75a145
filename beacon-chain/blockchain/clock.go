package blockchain

import (
	"time"

	"github.com/prysmaticlabs/forkchoice/config/params"
	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
)

// Clock translates wall clock time into slots relative to genesis.
type Clock interface {
	GenesisTime() time.Time
	CurrentSlot() types.Slot
	SecondsIntoSlot() uint64
	Now() time.Time
}

type clock struct {
	time.Time
	now Now
}

var _ Clock = &clock{}

// GenesisTime returns the genesis time the clock was built with.
func (gt clock) GenesisTime() time.Time {
	return gt.Time
}

// CurrentSlot returns the slot of the current time, 0 before genesis.
func (gt clock) CurrentSlot() types.Slot {
	now := gt.now()
	if now.Before(gt.Time) {
		return 0
	}
	return types.Slot(uint64(now.Sub(gt.Time) / slotDuration()))
}

// SecondsIntoSlot returns the number of whole seconds since the start of the current slot.
func (gt clock) SecondsIntoSlot() uint64 {
	now := gt.now()
	if now.Before(gt.Time) {
		return 0
	}
	return uint64((now.Sub(gt.Time) % slotDuration()) / time.Second)
}

// Now provides a value for time.Now() that can be overridden in tests.
func (gt clock) Now() time.Time {
	return gt.now()
}

// ClockOpt is a functional option to change the behavior of a clock value made by NewClock.
type ClockOpt func(*clock)

// WithNow allows tests in particular to inject an alternate implementation of time.Now.
func WithNow(n Now) ClockOpt {
	return func(gt *clock) {
		gt.now = n
	}
}

// NewClock constructs a clock value using the given genesis time. time.Now is
// used unless WithNow is given.
func NewClock(t time.Time, opts ...ClockOpt) Clock {
	gt := clock{Time: t}
	for _, o := range opts {
		o(&gt)
	}
	if gt.now == nil {
		gt.now = time.Now
	}
	return gt
}

// Now is a function that can return the current time.
type Now func() time.Time

func slotDuration() time.Duration {
	return time.Duration(params.BeaconConfig().SecondsPerSlot) * time.Second
}

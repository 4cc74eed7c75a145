package slots

import (
	"testing"
	"time"

	types "github.com/prysmaticlabs/forkchoice/consensus-types/primitives"
	"github.com/prysmaticlabs/forkchoice/testing/assert"
)

var _ Ticker = (*SlotTicker)(nil)

func TestSlotTicker_Start(t *testing.T) {
	genesisTime := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		since     time.Duration
		firstSlot types.Slot
	}{
		{name: "before genesis", since: -3 * time.Second, firstSlot: 0},
		{name: "right after genesis", since: 1 * time.Second, firstSlot: 0},
		{name: "in slot one", since: 9 * time.Second, firstSlot: 2},
		{name: "deep into the chain", since: 801 * time.Second, firstSlot: 101},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticker := &SlotTicker{
				c:    make(chan types.Slot),
				done: make(chan struct{}),
			}
			defer ticker.Done()

			// Buffered so the ticker goroutine never blocks on the test.
			tick := make(chan time.Time, 3)
			since := func(time.Time) time.Duration { return tt.since }
			until := func(time.Time) time.Duration { return time.Second }
			after := func(time.Duration) <-chan time.Time { return tick }
			ticker.start(genesisTime, 8, since, until, after)

			for i := types.Slot(0); i < 3; i++ {
				tick <- time.Now()
				assert.Equal(t, tt.firstSlot+i, <-ticker.C())
			}
		})
	}
}

func TestSlotTicker_Done(t *testing.T) {
	ticker := &SlotTicker{
		c:    make(chan types.Slot),
		done: make(chan struct{}),
	}
	tick := make(chan time.Time)
	ticker.start(time.Now(), 8, time.Since, time.Until, func(time.Duration) <-chan time.Time { return tick })
	ticker.Done()

	// The goroutine exits instead of emitting a slot.
	time.Sleep(50 * time.Millisecond)
	select {
	case tick <- time.Now():
		t.Fatal("ticker still running after Done")
	default:
	}
}

func TestNewSlotTicker_ZeroGenesis(t *testing.T) {
	defer func() {
		assert.NotNil(t, recover(), "expected a panic")
	}()
	NewSlotTicker(time.Time{}, 12)
}

package types

import (
	"testing"

	"github.com/prysmaticlabs/forkchoice/testing/assert"
)

func TestExecutionStatus_String(t *testing.T) {
	assert.Equal(t, "pre-merge", PreMerge.String())
	assert.Equal(t, "syncing", Syncing.String())
	assert.Equal(t, "valid", Valid.String())
	assert.Equal(t, "invalid", Invalid.String())
	assert.Equal(t, "unknown(9)", ExecutionStatus(9).String())
}

func TestCheckpoint_Copy(t *testing.T) {
	var nilCp *Checkpoint
	assert.IsNil(t, nilCp.Copy())
	cp := &Checkpoint{Epoch: 3, Root: [32]byte{'a'}}
	c := cp.Copy()
	c.Epoch = 4
	assert.Equal(t, 3, int(cp.Epoch))
}

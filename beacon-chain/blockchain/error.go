package blockchain

import "github.com/pkg/errors"

var (
	// ErrInvalidPayload is returned when the execution engine rejects a payload.
	ErrInvalidPayload = invalidBlock{error: errors.New("received an INVALID payload from execution engine")}
	// ErrGossipClockDisparity is returned for gossip attestations outside the accepted time window.
	ErrGossipClockDisparity = errors.New("attestation slot is outside the gossip clock disparity window")
	// errNilBlock is returned when a nil block is received.
	errNilBlock = errors.New("nil block")
	// errNilAttestation is returned when a nil attestation is received.
	errNilAttestation = errors.New("nil attestation")
	// errNoAnchor is returned when the database is empty and no anchor block was configured.
	errNoAnchor = errors.New("empty database and no anchor block")
	// errNilForkChoice is returned when the service is built without a fork choice store.
	errNilForkChoice = errors.New("nil fork choice store")
	// errNilDatabase is returned when the service is built without a database.
	errNilDatabase = errors.New("nil database")
)

// An invalid block is a block the execution engine deemed invalid, or one
// that descends from such a block. The node will not build on or accept any
// block that branches off an invalid block.
type invalidBlock struct {
	invalidAncestorRoots [][32]byte
	error
	root [32]byte
}

type invalidBlockError interface {
	Error() string
	InvalidAncestorRoots() [][32]byte
	BlockRoot() [32]byte
}

// BlockRoot returns the invalid block root.
func (e invalidBlock) BlockRoot() [32]byte {
	return e.root
}

// InvalidAncestorRoots returns every root that was invalidated along with the block.
func (e invalidBlock) InvalidAncestorRoots() [][32]byte {
	return e.invalidAncestorRoots
}

// Unwrap returns the cause of the invalid block.
func (e invalidBlock) Unwrap() error {
	return e.error
}

// Is matches the sentinel invalid block errors such as ErrInvalidPayload, which
// carry no roots.
func (e invalidBlock) Is(target error) bool {
	t, ok := target.(invalidBlock)
	if !ok || t.root != [32]byte{} || len(t.invalidAncestorRoots) != 0 {
		return false
	}
	return e.root == [32]byte{} && len(e.invalidAncestorRoots) == 0 && e.Error() == t.Error()
}

// IsInvalidBlock returns true if the error has `invalidBlock`.
func IsInvalidBlock(e error) bool {
	if e == nil {
		return false
	}
	_, ok := e.(invalidBlockError)
	if !ok {
		return IsInvalidBlock(errors.Unwrap(e))
	}
	return true
}

// InvalidBlockRoot returns the invalid block root. If the error
// doesn't have an invalid blockroot. [32]byte{} is returned.
func InvalidBlockRoot(e error) [32]byte {
	if e == nil {
		return [32]byte{}
	}
	d, ok := e.(invalidBlockError)
	if !ok {
		return InvalidBlockRoot(errors.Unwrap(e))
	}
	return d.BlockRoot()
}

// InvalidBlockRoots returns the roots invalidated along with the block.
func InvalidBlockRoots(e error) [][32]byte {
	if e == nil {
		return [][32]byte{}
	}
	d, ok := e.(invalidBlockError)
	if !ok {
		return InvalidBlockRoots(errors.Unwrap(e))
	}
	return d.InvalidAncestorRoots()
}

package forkchoice

import "errors"

var (
	// ErrInvalidParent is returned when a block does not extend a known block or its slot
	// does not come after its parent's.
	ErrInvalidParent = errors.New("invalid parent")
	// ErrInvalidFinalization is returned when a block conflicts with, or regresses, the
	// store's justified or finalized checkpoints.
	ErrInvalidFinalization = errors.New("block conflicts with finality")
	// ErrUnknownJustifiedRoot means the justified root is not in the store. This is a bug.
	ErrUnknownJustifiedRoot = errors.New("unknown justified root")
	// ErrJustifiedNodeInvalidated is returned once the execution engine has invalidated the
	// justified checkpoint's block. The node must resync from a safe checkpoint.
	ErrJustifiedNodeInvalidated = errors.New("justified node has been invalidated")
	ErrInvalidOptimisticStatus  = errors.New("invalid optimistic status")
	ErrInvalidAttestation       = errors.New("invalid attestation")
	ErrUnknownCommonAncestor    = errors.New("unknown common ancestor")
	ErrNilNode                  = errors.New("invalid nil or unknown node")
)

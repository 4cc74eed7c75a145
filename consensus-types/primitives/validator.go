package types

// ValidatorIndex in eth2.
type ValidatorIndex uint64

// Gwei is the denomination of effective balances.
type Gwei uint64

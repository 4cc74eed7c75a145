package db

import (
	"github.com/prysmaticlabs/forkchoice/beacon-chain/db/iface"
	"github.com/prysmaticlabs/forkchoice/beacon-chain/db/kv"
)

// ReadOnlyDatabase exposes Prysm's fork choice data prefixed by a read-only interface.
type ReadOnlyDatabase = iface.ReadOnlyDatabase

// NoHeadAccessDatabase exposes Prysm's fork choice data without checkpoint writes.
type NoHeadAccessDatabase = iface.NoHeadAccessDatabase

// HeadAccessDatabase exposes Prysm's fork choice data with checkpoint writes.
type HeadAccessDatabase = iface.HeadAccessDatabase

// Database defines Prysm's full fork choice database interface.
type Database = iface.Database

// ErrNotFoundBalances is returned when no balances were saved for a root.
var ErrNotFoundBalances = kv.ErrNotFoundBalances

package submitter

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/atomic"
)

// NonceReservation is a pending nonce fetched for one account. It signs exactly
// one transaction; callers sequencing several transactions from a key reserve
// again after each broadcast.
type NonceReservation struct {
	Account common.Address
	ChainID *big.Int
	Nonce   uint64

	used atomic.Bool
}

func (r *NonceReservation) Used() bool {
	return r.used.Load()
}

func (r *NonceReservation) consume() bool {
	return r.used.CompareAndSwap(false, true)
}

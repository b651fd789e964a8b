// Package types common blockchain types.
package types

// Transaction status values as reported by the chain clients.
const (
	TrxPending uint8 = 0
	TrxFailed  uint8 = 1
	TrxSuccess uint8 = 2
)

// Receipt contains the chain-side view of a submitted transfer. Block is zero until the
// transaction has been mined.
type Receipt struct {
	Block  uint64 `json:"block"`
	Status uint8  `json:"status"`
	Fee    uint64 `json:"fee"`
}

// Mined reports whether the transaction has at least one confirmation.
func (r Receipt) Mined() bool {
	return r.Block > 0
}

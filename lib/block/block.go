// Package block defines the interface required for all blockchain or network connections.
package block

import (
	"math/big"

	"github.com/tarancss/sweep/lib/block/ethereum"
	"github.com/tarancss/sweep/lib/block/types"
	"github.com/tarancss/sweep/lib/config"
)

// Chain is an interface that contains the methods the sweep service requires from a node
// connection. It has been designed to be as much standard as possible, however, there may be
// specific blockchains or networks that would require different types or more methods.
type Chain interface {
	Close()
	Probe() error
	Balance(address string) (*big.Int, error)
	Send(fromAddress, toAddress, amount, key string) (fee *big.Int, hash []byte, err error)
	Get(hash string) (types.Receipt, error)
}

// Dial opens the client connection for a single endpoint candidate. Only ethereum-type nodes are
// implemented so far.
func Dial(nc config.NodeConfig) (Chain, error) {
	return ethereum.Init(nc.Node, nc.Secret)
}

// Implements the chain interface for ethereum networks
package ethereum

import (
	"errors"
	"math/big"

	"github.com/tarancss/ethcli"
	"github.com/tarancss/sweep/lib/block/types"
)

// Ethereum implements a connection to an ethereum-type chain.
type Ethereum struct {
	c *ethcli.EthCli
}

// zeroAddress is the account queried by the liveness probe. Reading its balance is the cheapest
// call that exercises the full request path of the node.
const zeroAddress = "0x0000000000000000000000000000000000000000"

// Init returns a connection to an ethereum node, using secret if necessary for authentication.
func Init(node, secret string) (*Ethereum, error) {
	var c *ethcli.EthCli
	if c = ethcli.Init(node, secret); c == nil {
		return nil, errors.New("cannot connect to ethereum blockchain in " + node)
	}
	return &Ethereum{c: c}, nil
}

// Close ends a connection.
func (e *Ethereum) Close() {
	e.c.End()
}

// Probe issues a lightweight state read against the node, returning nil when the node answers.
func (e *Ethereum) Probe() error {
	var bal, tok big.Int
	return e.c.GetBalance(zeroAddress, "", &bal, &tok)
}

// Balance returns the ether balance of address in wei.
func (e *Ethereum) Balance(address string) (*big.Int, error) {
	var bal, tok big.Int
	if err := e.c.GetBalance(address, "", &bal, &tok); err != nil {
		return nil, err
	}
	return &bal, nil
}

// Send signs and submits an ether transfer of amount (hex-encoded wei, "0x..." ) from fromAddress
// to toAddress using the given hex-encoded private key. It returns the estimated fee and the
// transaction hash, or an error otherwise. Gas price and gas limit are left to the node estimates.
func (e *Ethereum) Send(fromAddress, toAddress, amount, key string) (fee *big.Int, hash []byte, err error) {
	var price, gas uint64
	price, gas, hash, err = e.c.SendTrx(fromAddress, toAddress, "", amount, nil, key, 0, false)
	fee = new(big.Int).SetUint64(price)
	fee = fee.Mul(fee, new(big.Int).SetUint64(gas))
	return
}

// Get returns the receipt of the transaction for the given hash. Until the transaction is mined
// the receipt carries a zero block number.
func (e *Ethereum) Get(hash string) (types.Receipt, error) {
	blk, _, _, _, status, fee, _, _, _, _, _, err := e.c.GetTrx(hash)
	return types.Receipt{Block: blk, Status: status, Fee: fee}, err
}

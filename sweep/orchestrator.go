package sweep

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/tarancss/sweep/lib/block/types"
	"github.com/tarancss/sweep/lib/metrics"
	"github.com/tarancss/sweep/lib/msg"
	"github.com/tarancss/sweep/lib/util"
)

// Core failure conditions surfaced to clients. Each is machine-stable; the REST layer maps them
// to a kind string and status code (see kindOf in handlers.go).
var (
	ErrNoEndpoint   = errors.New("no endpoint reachable")
	ErrNoSigner     = errors.New("signer not configured")
	ErrNoDest       = errors.New("no destination address: request and treasury both empty")
	ErrFeeBalance   = errors.New("insufficient balance for fees")
	ErrAfterReserve = errors.New("insufficient balance after reserve")
	ErrSubmit       = errors.New("transfer submission failed")
	ErrConfirm      = errors.New("transfer confirmation failed")
)

// Request is one inbound transfer order. Amount is a decimal ether string; when absent or
// unparsable the configured default amount is sent. To falls back to the configured treasury.
type Request struct {
	ID     string
	Amount string
	To     string
}

// Result is the normalized outcome of a submitted-and-confirmed transfer.
type Result struct {
	Hash   string `json:"hash"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"` // decimal ether actually sent
	Block  uint64 `json:"block"`  // block of the first confirmation
	Fee    uint64 `json:"fee"`    // fee paid, in wei, as reported by the receipt
}

// Transfer converts a Request into exactly one submitted-and-confirmed transfer, or fails with a
// precise reason. It bootstraps the session lazily, reads the signer balance, withholds the fee
// reserve, clamps the requested amount, submits and blocks until one confirmation is observed.
// The pipeline holds the transfer mutex end-to-end so at most one transfer is in flight per
// signer: both reads and the submit would otherwise race concurrent requests into a double-spend
// attempt or a nonce conflict.
func (s *Sweeper) Transfer(req Request) (*Result, error) {
	sess, err := s.Bootstrap(false)
	if err != nil {
		return nil, err
	}
	if sess.Addr == "" {
		return nil, ErrNoSigner
	}

	// resolve defaults
	amount, err := util.EthToWei(req.Amount)
	if err != nil || amount.Sign() == 0 {
		amount = new(big.Int).Set(s.defAmount)
	}
	to := req.To
	if to == "" {
		to = s.treasury
	}
	if to == "" {
		return nil, ErrNoDest
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	// Step 1: point-in-time balance read, no locking against concurrent external spends
	bal, err := sess.chain.Balance(sess.Addr)
	if err != nil {
		return nil, fmt.Errorf("balance read: %w", err)
	}
	metrics.SignerBalance.Set(util.EthFloat(bal))

	// Step 2: the reserve is a heuristic buffer, not an exact fee computation; slight fee
	// variance at broadcast time is absorbed by it
	if bal.Cmp(s.reserve) < 0 {
		return nil, fmt.Errorf("%w: balance %s", ErrFeeBalance, util.WeiToEth(bal))
	}

	// Step 3: clamp so the account never attempts to spend more than it can afford once fees
	// are deducted
	max := new(big.Int).Sub(bal, s.reserve)
	if amount.Cmp(max) < 0 {
		max.Set(amount)
	}
	if max.Sign() <= 0 {
		return nil, fmt.Errorf("%w: balance %s", ErrAfterReserve, util.WeiToEth(bal))
	}

	// Step 4: submit, fees settle on the network during this step
	estFee, hash, err := sess.chain.Send(sess.Addr, to, "0x"+max.Text(16), sess.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSubmit, err)
	}

	res := &Result{
		Hash:   "0x" + hex.EncodeToString(hash),
		From:   sess.Addr,
		To:     to,
		Amount: util.WeiToEth(max),
	}
	log.Printf("[%s] %s submitted %s to %s hash:%s estimated fee:%s wei",
		sess.Name, req.ID, res.Amount, to, res.Hash, estFee.String())

	// Step 5: exactly one confirmation
	start := time.Now()
	rcpt, err := s.confirm(sess, res.Hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfirm, err)
	}
	metrics.ConfirmLatency.Observe(time.Since(start).Seconds())
	res.Block = rcpt.Block
	res.Fee = rcpt.Fee

	metrics.SweepsTotal.Inc()
	s.publish(sess.Name, req.ID, res)

	return res, nil
}

// confirm polls the submitted transaction until it is mined, bounded by the confirm timeout.
// Lookup errors are treated as transient since most nodes do not index a transaction until it
// leaves their mempool.
func (s *Sweeper) confirm(sess *Session, hash string) (types.Receipt, error) {
	deadline := time.Now().Add(s.confirmTimeout)

	for {
		rcpt, err := sess.chain.Get(hash)
		if err == nil && rcpt.Mined() {
			if rcpt.Status == types.TrxFailed {
				return rcpt, errors.New("transaction reverted in block " +
					new(big.Int).SetUint64(rcpt.Block).String())
			}
			return rcpt, nil
		}
		if err != nil {
			log.Printf("[%s] receipt lookup for %s: %v", sess.Name, hash, err)
		}

		if time.Now().After(deadline) {
			return types.Receipt{}, errors.New("no confirmation for " + hash + " within deadline")
		}
		time.Sleep(s.poll)
	}
}

// Balance exposes the orchestrator balance read on its own, for status reporting. It returns the
// signer balance in wei together with the signer address.
func (s *Sweeper) Balance() (*big.Int, string, error) {
	sess, err := s.Bootstrap(false)
	if err != nil {
		return nil, "", err
	}
	if sess.Addr == "" {
		return nil, "", ErrNoSigner
	}

	bal, err := sess.chain.Balance(sess.Addr)
	if err != nil {
		return nil, sess.Addr, fmt.Errorf("balance read: %w", err)
	}
	metrics.SignerBalance.Set(util.EthFloat(bal))

	return bal, sess.Addr, nil
}

// publish sends the confirmed sweep to the message broker, when one is configured. Publishing is
// fire-and-forget: a broker failure never fails an already-confirmed transfer.
func (s *Sweeper) publish(net, id string, res *Result) {
	if s.mb == nil {
		return
	}
	eve := msg.SweepEvent{
		ID:     id,
		Hash:   res.Hash,
		From:   res.From,
		To:     res.To,
		Amount: res.Amount,
		Block:  res.Block,
		Fee:    res.Fee,
	}
	if err := s.mb.SendSweep(net, eve); err != nil {
		log.Printf("[%s] Error publishing sweep event %s:%v", net, res.Hash, err)
	}
}

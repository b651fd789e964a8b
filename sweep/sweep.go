// Package sweep implements the funds-sweep microservice.
//
// This microservice implements a RESTful API for clients to move the funds held by a single
// signing identity to a destination address while keeping back a fee reserve, over the first
// responsive node of a prioritized endpoint list.
package sweep

import (
	"context"
	"encoding/hex"
	"errors"
	"log"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/tarancss/hd"

	"github.com/tarancss/sweep/lib/config"
	"github.com/tarancss/sweep/lib/msg"
	"github.com/tarancss/sweep/lib/util"
)

// confirmPoll is the pace at which a submitted transfer is polled for its first confirmation.
const confirmPoll = 3 * time.Second

// Sweeper contains the data necessary to deliver the service.
type Sweeper struct {
	nodes      []config.NodeConfig // endpoint candidates, priority = slice order
	mb         msg.EventSink       // nil when eventing is disabled
	signerAddr string              // "" when no seed is configured (read-only)
	signerKey  string
	treasury   string   // fallback destination
	defAmount  *big.Int // wei sent when a request carries no valid amount
	reserve    *big.Int // wei withheld to cover fees

	probeTimeout   time.Duration
	confirmTimeout time.Duration
	poll           time.Duration

	bootMu  sync.Mutex // guards session lifecycle
	session *Session

	txMu sync.Mutex // serializes the transfer pipeline end-to-end per signer

	s  *http.Server  // http server
	ss *http.Server  // https server
	sc chan struct{} // http server channel used for graceful shutdowns
}

// New returns a pointer to a new Sweeper service. hdw may be nil, in which case the service runs
// read-only and rejects transfers until a seed is configured.
func New(conf config.ServiceConfig, mb msg.EventSink, hdw *hd.HdWallet) (*Sweeper, error) {
	if len(conf.Nodes) == 0 {
		return nil, errors.New("no endpoint candidates configured")
	}

	reserve, err := util.EthToWei(conf.FeeReserve)
	if err != nil {
		return nil, errors.New("invalid fee reserve: " + conf.FeeReserve)
	}

	defAmount, err := util.EthToWei(conf.DefaultAmount)
	if err != nil {
		return nil, errors.New("invalid default amount: " + conf.DefaultAmount)
	}

	s := &Sweeper{
		nodes:          conf.Nodes,
		mb:             mb,
		treasury:       conf.Treasury,
		defAmount:      defAmount,
		reserve:        reserve,
		probeTimeout:   time.Duration(conf.ProbeTimeout) * time.Second,
		confirmTimeout: time.Duration(conf.ConfirmTimeout) * time.Second,
		poll:           confirmPoll,
	}

	// derive the signing identity once; it is bound to the winning endpoint at bootstrap
	if hdw != nil {
		addr, key, _, err := hdw.Address(0, hd.External, 0)
		if err != nil {
			return nil, err
		}
		s.signerAddr = "0x" + hex.EncodeToString(addr)
		s.signerKey = hex.EncodeToString(key)
	}

	return s, nil
}

// Stop shuts down the http servers implementing the RESTful API and closes gracefully the
// connections to the message broker and the bound node.
func (s *Sweeper) Stop() {
	var err error
	// shutdown http server
	if s.s != nil {
		if err = s.s.Shutdown(context.Background()); err != nil {
			log.Printf("Error in http server shutdown:%v", err)
		}
	}
	if s.ss != nil {
		if err = s.ss.Shutdown(context.Background()); err != nil {
			log.Printf("Error in https server shutdown:%v", err)
		}
	}
	if s.sc != nil {
		close(s.sc) // close server channel to indicate shutdowns have finished
	}
	// close message broker
	if s.mb != nil {
		if err = s.mb.Close(); err != nil {
			log.Printf("Error closing message broker:%v", err)
		}
	}
	// close the bound node connection
	s.bootMu.Lock()
	if s.session != nil {
		s.session.chain.Close()
		s.session = nil
	}
	s.bootMu.Unlock()
}

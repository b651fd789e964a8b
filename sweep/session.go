package sweep

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tarancss/sweep/lib/block"
	"github.com/tarancss/sweep/lib/config"
	"github.com/tarancss/sweep/lib/metrics"
)

// Session binds one live node connection with the signing identity. At most one Session is live
// per process; it is created lazily on first use and replaced only when a rebind is forced.
type Session struct {
	Name     string // candidate name, used to tag events and logs
	Endpoint string
	Addr     string // signer address, "" for a read-only session
	key      string // signer private key, hex
	chain    block.Chain
}

// ErrTimedOut is returned by a single candidate probe that did not answer in time.
var ErrTimedOut = errors.New("probe timed out")

// Bootstrap produces the live Session, probing the endpoint candidates strictly in priority order
// until one answers its liveness check within the probe timeout. Later candidates are never
// contacted. An already-live Session is reused unless force is set, in which case the whole pass
// runs again and the old connection is closed. Only one pass is made; callers may re-invoke
// Bootstrap to retry.
func (s *Sweeper) Bootstrap(force bool) (*Session, error) {
	s.bootMu.Lock()
	defer s.bootMu.Unlock()

	if s.session != nil && !force {
		return s.session, nil
	}

	for _, nc := range s.nodes {
		c, err := probe(nc, s.probeTimeout)
		if err != nil {
			log.Printf("[%s] endpoint %s failed liveness probe: %v", nc.Name, nc.Node, err)
			metrics.ProbeAttempts.WithLabelValues(nc.Node, "fail").Inc()

			continue
		}
		metrics.ProbeAttempts.WithLabelValues(nc.Node, "ok").Inc()

		if s.session != nil {
			s.session.chain.Close()
		}
		s.session = &Session{
			Name:     nc.Name,
			Endpoint: nc.Node,
			Addr:     s.signerAddr,
			key:      s.signerKey,
			chain:    c,
		}
		log.Printf("[%s] session bound to %s, signer:%s", nc.Name, nc.Node, s.signerAddr)

		return s.session, nil
	}

	return nil, fmt.Errorf("%w: %d candidates probed", ErrNoEndpoint, len(s.nodes))
}

// probe opens a connection to one candidate and races its liveness check against the timeout.
// The node client is not context-aware, so a probe that loses the race keeps running in its own
// goroutine until the transport call returns, and only then is the connection closed.
func probe(nc config.NodeConfig, timeout time.Duration) (block.Chain, error) {
	c, err := block.Dial(nc)
	if err != nil {
		return nil, err
	}

	done := make(chan error, 1)
	go func() { done <- c.Probe() }()

	select {
	case err = <-done:
		if err != nil {
			c.Close()
			return nil, err
		}
		return c, nil
	case <-time.After(timeout):
		go func() {
			<-done
			c.Close()
		}()
		return nil, ErrTimedOut
	}
}

package sweep

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/tarancss/sweep/lib/metrics"
	"github.com/tarancss/sweep/lib/util"
)

// sweepReq is the transfer request body. It accepts the field aliases of the original API, so
// amount/amountETH and to/toAddress/treasury all work.
type sweepReq struct {
	Amount    string `json:"amount"`
	AmountETH string `json:"amountETH"`
	To        string `json:"to"`
	ToAddress string `json:"toAddress"`
	Treasury  string `json:"treasury"`
}

// ErrBadRequest is returned to clients whose request body cannot be decoded.
var ErrBadRequest = errors.New("bad request")

// Response defines the data structure returned to the client making the http request. Kind is a
// machine-stable error identifier, set only on failures.
type Response struct {
	Body  string `json:"body,omitempty"`
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// kindOf maps a core error to its stable kind and the http status code to reply with. Request and
// precondition failures are 4xx; anything that died in the network layer is a bad gateway.
func kindOf(err error) (string, int) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return "bad_request", http.StatusBadRequest
	case errors.Is(err, ErrNoDest):
		return "bad_request", http.StatusBadRequest
	case errors.Is(err, ErrNoEndpoint):
		return "endpoint_unreachable", http.StatusBadGateway
	case errors.Is(err, ErrNoSigner):
		return "signer_not_configured", http.StatusConflict
	case errors.Is(err, ErrFeeBalance):
		return "insufficient_balance_for_fees", http.StatusBadRequest
	case errors.Is(err, ErrAfterReserve):
		return "insufficient_balance_after_reserve", http.StatusBadRequest
	case errors.Is(err, ErrSubmit):
		return "submission_failed", http.StatusBadGateway
	case errors.Is(err, ErrConfirm):
		return "confirmation_failed", http.StatusBadGateway
	default:
		return "network_error", http.StatusBadGateway
	}
}

// homeHandler just replies a welcome message to the client.
func (s *Sweeper) homeHandler(rw http.ResponseWriter, r *http.Request) {
	var res Response
	// log request
	log.Printf("httpreq from %v %s\n", r.RemoteAddr, r.RequestURI)
	// just reply a welcome message
	res.Body = "Hello, this is your funds sweeper!"
	// reply
	rw.Header().Set("Content-Type", "application/json;charset=utf8")
	_ = json.NewEncoder(rw).Encode(res)
}

// healthHandler replies a bare OK so orchestrators can probe the process.
func (s *Sweeper) healthHandler(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json;charset=utf8")
	rw.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(rw).Encode(Response{Body: "OK"})
}

// statusInfo is the body of the status reply.
type statusInfo struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Signer   string `json:"signer,omitempty"`
	Live     bool   `json:"live"`
}

// statusHandler replies the bound endpoint, the signer address and whether the node still answers.
// It bootstraps the session if none exists yet.
func (s *Sweeper) statusHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Response

	var st statusInfo

	defer func() {
		// reply to requester accordingly
		rw.Header().Set("Content-Type", "application/json;charset=utf8")
		if err != nil {
			res.Error = fmt.Sprintf("%s", err)
			res.Kind, _ = kindOf(err)

			rw.WriteHeader(http.StatusBadGateway)
		} else {
			tmp, _ := json.Marshal(st)
			res.Body = string(tmp)

			rw.WriteHeader(http.StatusOK)
		}
		// log request and status
		log.Printf("httpreq from %v %s status:%+v err:%v\n", r.RemoteAddr, r.RequestURI, st, err)
		// reply
		_ = json.NewEncoder(rw).Encode(&res)
	}()

	var sess *Session
	if sess, err = s.Bootstrap(false); err != nil {
		return
	}

	st = statusInfo{
		Name:     sess.Name,
		Endpoint: sess.Endpoint,
		Signer:   sess.Addr,
		Live:     sess.chain.Probe() == nil,
	}
}

// balInfo is the body of the balance reply.
type balInfo struct {
	Address string `json:"address"`
	Balance string `json:"balance"` // decimal ether
}

// balanceHandler replies the current balance of the signer address.
func (s *Sweeper) balanceHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Response

	var bi balInfo

	defer func() {
		// reply to requester accordingly
		rw.Header().Set("Content-Type", "application/json;charset=utf8")
		if err != nil {
			var code int
			res.Error = fmt.Sprintf("%s", err)
			res.Kind, code = kindOf(err)

			rw.WriteHeader(code)
		} else {
			tmp, _ := json.Marshal(bi)
			res.Body = string(tmp)

			rw.WriteHeader(http.StatusOK)
		}
		// log request and balance
		log.Printf("httpreq from %v %s bal:%+v err:%v\n", r.RemoteAddr, r.RequestURI, bi, err)
		// reply
		_ = json.NewEncoder(rw).Encode(&res)
	}()

	bal, addr, err := s.Balance()
	if err != nil {
		return
	}

	bi = balInfo{Address: addr, Balance: util.WeiToEth(bal)}
}

// sweepHandler runs the transfer pipeline for a client request and replies the confirmed transfer
// or a structured error. /send, /transfer and /withdraw are aliases of this handler.
func (s *Sweeper) sweepHandler(rw http.ResponseWriter, r *http.Request) {
	var err error

	var res Response

	var out *Result

	id := uuid.NewString()

	defer func() {
		// reply to requester accordingly
		rw.Header().Set("Content-Type", "application/json;charset=utf8")
		if err != nil {
			var code int
			res.Error = fmt.Sprintf("%s", err)
			res.Kind, code = kindOf(err)
			metrics.SweepFailures.WithLabelValues(res.Kind).Inc()

			rw.WriteHeader(code)
		} else {
			tmp, _ := json.Marshal(out)
			res.Body = string(tmp)

			rw.WriteHeader(http.StatusOK)
		}
		// log request and result
		log.Printf("httpreq %s from %v %s res:%+v err:%v\n", id, r.RemoteAddr, r.RequestURI, out, err)
		// reply
		_ = json.NewEncoder(rw).Encode(&res)
	}()

	// get request; an empty body sweeps the default amount to the treasury
	var req sweepReq
	if r.ContentLength != 0 {
		if errDec := json.NewDecoder(r.Body).Decode(&req); errDec != nil {
			err = fmt.Errorf("%w: %v", ErrBadRequest, errDec)

			return
		}
	}

	amount := req.Amount
	if amount == "" {
		amount = req.AmountETH
	}
	to := req.To
	if to == "" {
		to = req.ToAddress
	}
	if to == "" {
		to = req.Treasury
	}

	out, err = s.Transfer(Request{ID: id, Amount: amount, To: to})
}

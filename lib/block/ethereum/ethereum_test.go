package ethereum

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tarancss/hd"

	"github.com/tarancss/sweep/lib/block/types"
)

// test seed for the HD wallet used to sign the mock transactions
const testSeed = "642ce4e20f09c9f4d285c2b336063eaafbe4cb06dece8134f3a64bdd8f8c0c24df73e1a2e7056359b6db61e179ff45e5ada51d14f07b30becb6d92b961d35df4"

type rpcRequest struct {
	Version string           `json:"jsonrpc"`
	Method  string           `json:"method"`
	Params  []interface{}    `json:"params"`
	ID      *json.RawMessage `json:"id"`
}

type rpcResponse struct {
	Version string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id"`
	Result  interface{}      `json:"result,omitempty"`
}

// mockNode answers JSON-RPC requests per method, echoing the requested transaction hash so the
// client-side hash check passes.
func mockNode(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("mock node: bad request body: %v", err)
		}
		res := rpcResponse{Version: "2.0", ID: req.ID}

		switch req.Method {
		case "eth_getBalance":
			if len(req.Params) > 0 && req.Params[0] == zeroAddress {
				res.Result = "0x0"
			} else {
				res.Result = "0x166c761c586733c0"
			}
		case "eth_getTransactionCount":
			res.Result = "0x10"
		case "eth_gasPrice":
			res.Result = "0x100000"
		case "eth_estimateGas":
			res.Result = "0x5208"
		case "eth_sendRawTransaction":
			res.Result = "0x"
		case "eth_getTransactionByHash":
			hash, _ := req.Params[0].(string)
			res.Result = map[string]interface{}{
				"blockHash": "0xd44a255e40eee23bd90a54a792f7a35c175400958de22a9bbfe08a7b2c244ed6",
				"blockNumber": "0x29bf9b", "from": "0xf4cefc8d1afaa51d5a5e7f57d214b60429ca4378",
				"gas": "0xff59", "gasPrice": "0x98bca5a00", "hash": hash, "input": "0x",
				"nonce": "0x10", "to": "0x357dd3856d856197c1a000bbAb4aBCB97Dfc92c4",
				"transactionIndex": "0x1", "value": "0x565656",
			}
		case "eth_getTransactionReceipt":
			hash, _ := req.Params[0].(string)
			res.Result = map[string]interface{}{
				"blockHash": "0xd44a255e40eee23bd90a54a792f7a35c175400958de22a9bbfe08a7b2c244ed6",
				"blockNumber": "0x29bf9b", "cumulativeGasUsed": "0x4fa3d", "gasUsed": "0xf67f",
				"status": "0x1", "transactionHash": hash, "transactionIndex": "0x1",
			}
		case "eth_getBlockByNumber":
			res.Result = map[string]interface{}{
				"hash":       "0xd44a255e40eee23bd90a54a792f7a35c175400958de22a9bbfe08a7b2c244ed6",
				"parentHash": "0x89cde9ba035de527c0fc03dd816e8205cb9c52bd9b7dc79567e72adce2460686",
				"number":     "0x29bf9b", "timestamp": "0x5dfeaab3",
				"transactions": []string{},
			}
		default:
			t.Errorf("mock node: unexpected method %s", req.Method)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(res)
	}))
}

func TestEthereum(t *testing.T) {
	mock := mockNode(t)
	defer mock.Close()

	e, err := Init(mock.URL, "")
	if err != nil {
		t.Fatalf("Error connecting to mock node:%v", err)
	}
	defer e.Close()

	// derive a signing identity so SendTrx can sign for real
	seed, _ := hex.DecodeString(testSeed)
	hdw, err := hd.Init(seed)
	if err != nil {
		t.Fatalf("Error initialising HD wallet:%v", err)
	}
	addr, key, _, err := hdw.Address(0, hd.External, 0)
	if err != nil {
		t.Fatalf("Error obtaining HD wallet address:%v", err)
	}
	from := "0x" + hex.EncodeToString(addr)

	// liveness probe
	if err = e.Probe(); err != nil {
		t.Errorf("Probe failed against a live node:%v", err)
	}

	// balance read
	bal, err := e.Balance(from)
	if err != nil {
		t.Errorf("Balance failed:%v", err)
	} else if bal.String() != "1615796230433485760" {
		t.Errorf("Balance got %s expected 1615796230433485760", bal.String())
	}

	// send a transfer and check a 32-byte hash comes back
	fee, hash, err := e.Send(from, "0x357dd3856d856197c1a000bbAb4aBCB97Dfc92c4", "0x565656",
		hex.EncodeToString(key))
	if err != nil {
		t.Errorf("Send failed:%v", err)
	}
	if len(hash) != 32 {
		t.Errorf("Send returned a %d-byte hash, expected 32", len(hash))
	}
	if fee == nil || fee.Sign() <= 0 {
		t.Errorf("Send returned fee %v, expected > 0", fee)
	}

	// receipt of a mined transaction
	rcpt, err := e.Get("0x2ba030485e79b5a98275b45d940e6fdd07b40dea593ef3b2a69b0a02a68a5872")
	if err != nil {
		t.Errorf("Get failed:%v", err)
	}
	if !rcpt.Mined() || rcpt.Block != 0x29bf9b {
		t.Errorf("Get got block %d expected %d", rcpt.Block, 0x29bf9b)
	}
	if rcpt.Status == types.TrxPending {
		t.Errorf("Get got status %d for a mined transaction", rcpt.Status)
	}
}

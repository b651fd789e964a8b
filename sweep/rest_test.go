package sweep

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// callAPI places an http request and returns the status code plus the decoded Response fields.
func callAPI(t *testing.T, method, uri, body string) (int, Response) {
	t.Helper()

	var resp *http.Response
	var err error

	switch method {
	case http.MethodGet:
		resp, err = http.Get(uri)
	case http.MethodPost:
		resp, err = http.Post(uri, "application/json;charset=utf8", bytes.NewBufferString(body))
	default:
		req, _ := http.NewRequest(method, uri, nil)
		resp, err = (&http.Client{}).Do(req)
	}
	if err != nil {
		t.Fatalf("Error in http request %s %s:%v", method, uri, err)
	}
	defer resp.Body.Close()

	var res Response
	_ = json.NewDecoder(resp.Body).Decode(&res)

	return resp.StatusCode, res
}

// TestAPI runs the table of client requests against the RESTful API backed by a fake chain.
func TestAPI(t *testing.T) {
	fc := &fakeChain{balance: mustWei(t, "1"), fee: 21000}
	s := preBound(t, fc)

	srv := httptest.NewServer(s.router())
	defer srv.Close()

	cases := []struct {
		name, method, uri, body string
		status                  int
		kind                    string // expected error kind, "" on success
	}{
		{"home_1", http.MethodGet, "/", "", http.StatusOK, ""},
		{"home_2", http.MethodPost, "/", "", http.StatusOK, ""},
		{"health_1", http.MethodGet, "/health", "", http.StatusOK, ""},
		{"health_2", http.MethodPost, "/health", "", http.StatusMethodNotAllowed, ""},
		{"status_1", http.MethodGet, "/status", "", http.StatusOK, ""},
		{"balance_1", http.MethodGet, "/balance", "", http.StatusOK, ""},
		{"balance_2", http.MethodPost, "/balance", "", http.StatusMethodNotAllowed, ""},
		{"sweep_1", http.MethodPost, "/sweep", `{"amount":"0.01"}`, http.StatusOK, ""},
		{"sweep_2", http.MethodGet, "/sweep", "", http.StatusMethodNotAllowed, ""},
		{"sweep_3", http.MethodPost, "/sweep", `{"amount":`, http.StatusBadRequest, "bad_request"},
		{"alias_send", http.MethodPost, "/send", `{"amountETH":"0.02"}`, http.StatusOK, ""},
		{"alias_transfer", http.MethodPost, "/transfer", `{"amount":"0.02"}`, http.StatusOK, ""},
		{"alias_withdraw", http.MethodPost, "/withdraw", "", http.StatusOK, ""},
	}

	for _, c := range cases {
		status, res := callAPI(t, c.method, srv.URL+c.uri, c.body)
		if status != c.status {
			t.Errorf("[%s] StatusCode:%d expected:%d (error:%s)", c.name, status, c.status, res.Error)
			continue
		}
		if res.Kind != c.kind {
			t.Errorf("[%s] kind:%s expected:%s", c.name, res.Kind, c.kind)
		}
	}
}

// TestAPISweepResult checks the normalized transfer result returned on success.
func TestAPISweepResult(t *testing.T) {
	fc := &fakeChain{balance: mustWei(t, "1"), fee: 21000}
	s := preBound(t, fc)

	srv := httptest.NewServer(s.router())
	defer srv.Close()

	status, res := callAPI(t, http.MethodPost, srv.URL+"/sweep",
		`{"amountETH":"0.02","toAddress":"0x1cd434711fbae1f2d9c70001409fd82d71fdccaa"}`)
	if status != http.StatusOK {
		t.Fatalf("StatusCode:%d error:%s", status, res.Error)
	}

	var out Result
	if err := json.Unmarshal([]byte(res.Body), &out); err != nil {
		t.Fatalf("Error unmarshaling body:%s error:%v", res.Body, err)
	}
	if out.Amount != "0.02" || out.Block != 42 || out.Fee != 21000 {
		t.Errorf("unexpected result %+v", out)
	}
	if out.From != testSigner || out.To != "0x1cd434711fbae1f2d9c70001409fd82d71fdccaa" {
		t.Errorf("unexpected endpoints in result %+v", out)
	}
	if !strings.HasPrefix(out.Hash, "0x") || len(out.Hash) != 66 {
		t.Errorf("unexpected hash %s", out.Hash)
	}
}

// TestAPIBalance checks the read-only balance reply.
func TestAPIBalance(t *testing.T) {
	fc := &fakeChain{balance: mustWei(t, "0.0015")}
	s := preBound(t, fc)

	srv := httptest.NewServer(s.router())
	defer srv.Close()

	status, res := callAPI(t, http.MethodGet, srv.URL+"/balance", "")
	if status != http.StatusOK {
		t.Fatalf("StatusCode:%d error:%s", status, res.Error)
	}

	var bi balInfo
	if err := json.Unmarshal([]byte(res.Body), &bi); err != nil {
		t.Fatalf("Error unmarshaling body:%s error:%v", res.Body, err)
	}
	if bi.Address != testSigner || bi.Balance != "0.0015" {
		t.Errorf("unexpected balance reply %+v", bi)
	}
}

// TestAPIStatus checks the status reply of a bound session.
func TestAPIStatus(t *testing.T) {
	fc := &fakeChain{balance: mustWei(t, "1")}
	s := preBound(t, fc)

	srv := httptest.NewServer(s.router())
	defer srv.Close()

	status, res := callAPI(t, http.MethodGet, srv.URL+"/status", "")
	if status != http.StatusOK {
		t.Fatalf("StatusCode:%d error:%s", status, res.Error)
	}

	var st statusInfo
	if err := json.Unmarshal([]byte(res.Body), &st); err != nil {
		t.Fatalf("Error unmarshaling body:%s error:%v", res.Body, err)
	}
	if st.Endpoint != "http://mock.node" || st.Signer != testSigner || !st.Live {
		t.Errorf("unexpected status reply %+v", st)
	}
}

// TestAPIFailureKinds checks the machine-stable kinds surfaced on precondition failures.
func TestAPIFailureKinds(t *testing.T) {
	// balance below the fee reserve
	fc := &fakeChain{balance: mustWei(t, "0.0015")}
	s := preBound(t, fc)

	srv := httptest.NewServer(s.router())
	defer srv.Close()

	status, res := callAPI(t, http.MethodPost, srv.URL+"/sweep", `{"amount":"1.0"}`)
	if status != http.StatusBadRequest || res.Kind != "insufficient_balance_for_fees" {
		t.Errorf("StatusCode:%d kind:%s expected 400 insufficient_balance_for_fees", status, res.Kind)
	}
	if !strings.Contains(res.Error, "0.0015") {
		t.Errorf("error %q does not report the observed balance", res.Error)
	}

	// no signer configured
	s2 := preBound(t, &fakeChain{balance: mustWei(t, "1")})
	s2.signerAddr = ""
	s2.session.Addr = ""

	srv2 := httptest.NewServer(s2.router())
	defer srv2.Close()

	status, res = callAPI(t, http.MethodPost, srv2.URL+"/sweep", "")
	if status != http.StatusConflict || res.Kind != "signer_not_configured" {
		t.Errorf("StatusCode:%d kind:%s expected 409 signer_not_configured", status, res.Kind)
	}
}

package handlers_test

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/ethpool/app/services/pool/handlers"
	"github.com/ardanlabs/ethpool/business/sys/metrics"
	"github.com/ardanlabs/ethpool/foundation/ether"
	"github.com/ardanlabs/ethpool/foundation/events"
	"github.com/ardanlabs/ethpool/foundation/genesis"
	"github.com/ardanlabs/ethpool/foundation/nameservice"
	"github.com/ardanlabs/ethpool/foundation/pool"
	"github.com/ardanlabs/ethpool/foundation/state"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	teamECDSA  = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	aliceECDSA = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
	bobECDSA   = "9f332e3700d8fc2446eaf6d15034cf96e0c2745e40353deef032a5dbf1dfed93"
	teamID     = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
)

type app struct {
	public http.Handler
	debug  http.Handler
	keys   map[string]*ecdsa.PrivateKey
}

func newApp(t *testing.T) app {
	log := zap.NewNop().Sugar()

	st, err := state.New(state.Config{
		Genesis: genesis.Genesis{ChainID: 1, Team: teamID},
	})
	if err != nil {
		t.Fatalf("unable to construct state: %v", err)
	}

	ns, err := nameservice.New("../../../../zpool/accounts")
	if err != nil {
		t.Fatalf("unable to load name service: %v", err)
	}

	keys := make(map[string]*ecdsa.PrivateKey)
	for name, hex := range map[string]string{"team": teamECDSA, "alice": aliceECDSA, "bob": bobECDSA} {
		pk, err := crypto.HexToECDSA(hex)
		if err != nil {
			t.Fatalf("unable to load key %s: %v", name, err)
		}
		keys[name] = pk
	}

	m := metrics.New()
	m.TrackPool(st.RetrieveStats)

	a := app{
		public: handlers.PublicMux(handlers.MuxConfig{
			Shutdown:   make(chan os.Signal, 1),
			Log:        log,
			State:      st,
			NS:         ns,
			Evts:       events.New(),
			Metrics:    m,
			CORSOrigin: "*",
		}),
		debug: handlers.DebugMux("test", log, st, m),
		keys:  keys,
	}

	return a
}

func (a app) submit(t *testing.T, name string, nonce uint64, kind state.Kind, value string) *httptest.ResponseRecorder {
	in, err := state.NewInstruction(1, nonce, kind, ether.MustParse(value))
	if err != nil {
		t.Fatalf("unable to construct instruction: %v", err)
	}

	si, err := in.Sign(a.keys[name])
	if err != nil {
		t.Fatalf("unable to sign instruction: %v", err)
	}

	body, err := json.Marshal(si)
	if err != nil {
		t.Fatalf("unable to marshal instruction: %v", err)
	}

	w := httptest.NewRecorder()
	a.public.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/pool/instruction", bytes.NewReader(body)))

	return w
}

func (a app) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.public.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (a app) post(path string, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.public.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return w
}

func decode(t *testing.T, r io.Reader, v any) {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		t.Fatalf("unable to decode response: %v", err)
	}
}

// =============================================================================

func Test_Instructions(t *testing.T) {
	a := newApp(t)

	t.Log("Given the need to run the pool through the web api.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen alice and bob deposit and the team injects rewards.", testID)
		{
			steps := []struct {
				name  string
				nonce uint64
				kind  state.Kind
				value string
			}{
				{"alice", 1, state.KindDeposit, "100"},
				{"bob", 1, state.KindDeposit, "300"},
				{"team", 1, state.KindRewards, "200"},
			}

			for _, s := range steps {
				if w := a.submit(t, s.name, s.nonce, s.kind, s.value); w.Code != http.StatusOK {
					t.Fatalf("\t%s\tTest %d:\tShould be able to %s %s for %s: %d %s", failed, testID, s.kind, s.value, s.name, w.Code, w.Body)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould be able to apply every instruction.", success, testID)

			for name, exp := range map[string]string{"alice": "150", "bob": "450"} {
				w := a.get("/v1/pool/balance/" + name)
				if w.Code != http.StatusOK {
					t.Fatalf("\t%s\tTest %d:\tShould be able to read the balance of %s: %d", failed, testID, name, w.Code)
				}

				var resp struct {
					Name    string `json:"name"`
					Balance struct {
						Ether string `json:"ether"`
					} `json:"balance"`
				}
				decode(t, w.Body, &resp)

				if resp.Name != name || resp.Balance.Ether != exp {
					t.Fatalf("\t%s\tTest %d:\tShould have %s ether for %s, got %s for %s.", failed, testID, exp, name, resp.Balance.Ether, resp.Name)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould split the rewards by principal.", success, testID)

			w := a.submit(t, "alice", 2, state.KindWithdraw, "150")
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould be able to withdraw everything: %d %s", failed, testID, w.Code, w.Body)
			}
			if w := a.get("/v1/pool/accounts/alice"); w.Code != http.StatusNotFound {
				t.Fatalf("\t%s\tTest %d:\tShould purge the account, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould purge an account that withdraws everything.", success, testID)

			var journal []json.RawMessage
			decode(t, a.get("/v1/pool/journal").Body, &journal)
			if len(journal) != 4 {
				t.Fatalf("\t%s\tTest %d:\tShould journal every instruction, got %d.", failed, testID, len(journal))
			}
			t.Logf("\t%s\tTest %d:\tShould journal every instruction.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen instructions are refused.", testID)
		{
			tt := []struct {
				name   string
				w      func() *httptest.ResponseRecorder
				status int
			}{
				{"non-team rewards", func() *httptest.ResponseRecorder { return a.submit(t, "bob", 2, state.KindRewards, "1") }, http.StatusForbidden},
				{"used nonce", func() *httptest.ResponseRecorder { return a.submit(t, "bob", 1, state.KindDeposit, "1") }, http.StatusBadRequest},
				{"too much", func() *httptest.ResponseRecorder { return a.submit(t, "bob", 3, state.KindWithdraw, "1000") }, http.StatusBadRequest},
				{"bad account", func() *httptest.ResponseRecorder { return a.get("/v1/pool/balance/bill") }, http.StatusBadRequest},
			}

			for _, tst := range tt {
				if w := tst.w(); w.Code != tst.status {
					t.Fatalf("\t%s\tTest %d:\tShould refuse %s with %d, got %d: %s", failed, testID, tst.name, tst.status, w.Code, w.Body)
				}
				t.Logf("\t%s\tTest %d:\tShould refuse %s with %d.", success, testID, tst.name, tst.status)
			}

			w := httptest.NewRecorder()
			a.public.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/pool/instruction", strings.NewReader(`{"chain_id":1,"kind":"steal","value":"1"}`)))

			var resp struct {
				Fields map[string]string `json:"fields"`
			}
			decode(t, w.Body, &resp)

			if w.Code != http.StatusBadRequest || resp.Fields["kind"] == "" || resp.Fields["v"] == "" {
				t.Fatalf("\t%s\tTest %d:\tShould report the invalid fields, got %d %v.", failed, testID, w.Code, resp.Fields)
			}
			t.Logf("\t%s\tTest %d:\tShould report the invalid fields.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the debug endpoints are checked.", testID)
		{
			w := httptest.NewRecorder()
			a.debug.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/readiness", nil))
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould be ready with balanced books, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould be ready with balanced books.", success, testID)

			w = httptest.NewRecorder()
			a.debug.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			if !strings.Contains(w.Body.String(), `ethpool_instructions_total{kind="deposit",result="applied"} 2`) {
				t.Fatalf("\t%s\tTest %d:\tShould count the applied deposits.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould count the applied deposits.", success, testID)
		}
	}
}

func Test_Stats(t *testing.T) {
	a := newApp(t)

	t.Log("Given the need to report the pool totals.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the pool is empty.", testID)
		{
			var resp struct {
				Team     string `json:"team"`
				TeamName string `json:"team_name"`
				Accounts int    `json:"accounts"`
				Dust     struct {
					Wei string `json:"wei"`
				} `json:"dust"`
			}
			decode(t, a.get("/v1/pool/stats").Body, &resp)

			if resp.Accounts != 0 || resp.Dust.Wei != "0" {
				t.Fatalf("\t%s\tTest %d:\tShould report an empty pool, got %+v.", failed, testID, resp)
			}
			t.Logf("\t%s\tTest %d:\tShould report an empty pool.", success, testID)

			if resp.Team != teamID || resp.TeamName != "team" {
				t.Fatalf("\t%s\tTest %d:\tShould report the team account, got %s %s.", failed, testID, resp.Team, resp.TeamName)
			}
			t.Logf("\t%s\tTest %d:\tShould report the team account.", success, testID)

			if w := a.submit(t, "team", 1, state.KindRewards, "1"); w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould refuse rewards with no depositors, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse rewards with no depositors.", success, testID)

			var unknown pool.AccountID = "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"
			if w := a.get("/v1/pool/accounts/" + string(unknown)); w.Code != http.StatusNotFound {
				t.Fatalf("\t%s\tTest %d:\tShould not find an unknown account, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould not find an unknown account.", success, testID)
		}
	}
}

func Test_Preview(t *testing.T) {
	a := newApp(t)
	alice := pool.PublicKeyToAccountID(a.keys["alice"].PublicKey)

	t.Log("Given the need to preview instructions before signing them.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen alice previews a withdrawal after rewards.", testID)
		{
			for _, s := range []struct {
				name  string
				kind  state.Kind
				value string
			}{
				{"alice", state.KindDeposit, "100"},
				{"bob", state.KindDeposit, "300"},
				{"team", state.KindRewards, "200"},
			} {
				if w := a.submit(t, s.name, 1, s.kind, s.value); w.Code != http.StatusOK {
					t.Fatalf("\t%s\tTest %d:\tShould be able to %s for %s: %d %s", failed, testID, s.kind, s.name, w.Code, w.Body)
				}
			}

			w := a.post("/v1/pool/preview", `{"account":"`+string(alice)+`","kind":"withdraw","value":"50"}`)
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest %d:\tShould be able to preview: %d %s", failed, testID, w.Code, w.Body)
			}

			var resp struct {
				Name    string `json:"name"`
				Nonce   uint64 `json:"nonce"`
				Balance struct {
					Ether string `json:"ether"`
				} `json:"balance"`
			}
			decode(t, w.Body, &resp)

			if resp.Name != "alice" || resp.Nonce != 2 || resp.Balance.Ether != "100" {
				t.Fatalf("\t%s\tTest %d:\tShould leave alice 100 at nonce 2, got %+v.", failed, testID, resp)
			}
			t.Logf("\t%s\tTest %d:\tShould report what the withdrawal would leave.", success, testID)

			var bal struct {
				Balance struct {
					Ether string `json:"ether"`
				} `json:"balance"`
			}
			decode(t, a.get("/v1/pool/balance/alice").Body, &bal)
			if bal.Balance.Ether != "150" {
				t.Fatalf("\t%s\tTest %d:\tShould not change the balance, got %s.", failed, testID, bal.Balance.Ether)
			}
			t.Logf("\t%s\tTest %d:\tShould not change the balance.", success, testID)

			if w := a.post("/v1/pool/preview", `{"account":"`+string(alice)+`","kind":"rewards","value":"1"}`); w.Code != http.StatusForbidden {
				t.Fatalf("\t%s\tTest %d:\tShould refuse rewards from alice, got %d.", failed, testID, w.Code)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse rewards from alice.", success, testID)
		}

		testID++
		t.Logf("\tTest %d:\tWhen the preview request is malformed.", testID)
		{
			w := a.post("/v1/pool/preview", `{"account":"alice","kind":"deposit","value":"-1"}`)

			var resp struct {
				Fields map[string]string `json:"fields"`
			}
			decode(t, w.Body, &resp)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest %d:\tShould refuse the request, got %d.", failed, testID, w.Code)
			}
			if resp.Fields["account"] != "account must be a hex encoded account" || resp.Fields["value"] != "value must be a positive ether amount" {
				t.Fatalf("\t%s\tTest %d:\tShould report the account and value fields, got %v.", failed, testID, resp.Fields)
			}
			t.Logf("\t%s\tTest %d:\tShould report the account and value fields.", success, testID)
		}
	}
}

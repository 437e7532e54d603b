// Package poolgrp maintains the group of handlers for pool access.
package poolgrp

import (
	"context"
	"net/http"
	"time"

	"github.com/ardanlabs/ethpool/business/sys/metrics"
	"github.com/ardanlabs/ethpool/business/web/errs"
	"github.com/ardanlabs/ethpool/foundation/ether"
	"github.com/ardanlabs/ethpool/foundation/events"
	"github.com/ardanlabs/ethpool/foundation/nameservice"
	"github.com/ardanlabs/ethpool/foundation/pool"
	"github.com/ardanlabs/ethpool/foundation/state"
	"github.com/ardanlabs/ethpool/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// rules maps the errors of the pool and the node state to responses.
var rules = []errs.Rule{
	{Target: pool.ErrUnknownAccount, Status: http.StatusNotFound},
	{Target: pool.ErrInvalidAccount, Status: http.StatusBadRequest},
	{Target: pool.ErrInvalidAmount, Status: http.StatusBadRequest},
	{Target: pool.ErrInsufficientBalance, Status: http.StatusBadRequest},
	{Target: pool.ErrNoDepositors, Status: http.StatusBadRequest},
	{Target: pool.ErrOverflow, Status: http.StatusBadRequest},
	{Target: state.ErrSignature, Status: http.StatusBadRequest},
	{Target: state.ErrChainID, Status: http.StatusBadRequest},
	{Target: state.ErrNonce, Status: http.StatusBadRequest},
	{Target: state.ErrNotTeam, Status: http.StatusForbidden},
}

// Handlers manages the set of pool endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	State   *state.State
	NS      *nameservice.NameService
	Evts    *events.Events
	Metrics *metrics.Metrics
	WS      websocket.Upgrader
}

// SubmitInstruction applies a signed deposit, withdraw or rewards
// instruction to the pool.
func (h Handlers) SubmitInstruction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var in instruction
	if err := web.Decode(r, &in); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	si := in.toSignedInstruction()

	h.Log.Infow("submit instruction", "traceid", v.TraceID, "from:nonce", si, "kind", si.Kind, "value", si.Value)

	rcpt, err := h.State.SubmitInstruction(si)
	h.Metrics.Instruction(in.Kind, err)
	if err != nil {
		return errs.Classify(err, rules...)
	}

	resp := receipt{
		Account: rcpt.Account,
		Name:    h.NS.Lookup(rcpt.Account),
		Kind:    rcpt.Kind,
		Nonce:   rcpt.Nonce,
		Amount:  toAmount(rcpt.Amount),
		Balance: toAmount(rcpt.Balance),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Preview reports what a deposit, withdraw or rewards instruction would do
// right now without applying it.
func (h Handlers) Preview(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var p preview
	if err := web.Decode(r, &p); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	accountID, err := pool.ToAccountID(p.Account)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	amount, err := ether.Parse(p.Value)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	rcpt, err := h.State.Preview(accountID, state.Kind(p.Kind), amount)
	if err != nil {
		return errs.Classify(err, rules...)
	}

	resp := receipt{
		Account: rcpt.Account,
		Name:    h.NS.Lookup(rcpt.Account),
		Kind:    rcpt.Kind,
		Nonce:   rcpt.Nonce,
		Amount:  toAmount(rcpt.Amount),
		Balance: toAmount(rcpt.Balance),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Balance returns the total balance for an account. Accounts the pool does
// not know have a zero balance.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID, err := h.NS.Resolve(web.Param(r, "account"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := balance{
		Account: accountID,
		Name:    h.NS.Lookup(accountID),
		Balance: toAmount(h.State.QueryBalance(accountID)),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Account returns the settled account information.
func (h Handlers) Account(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID, err := h.NS.Resolve(web.Param(r, "account"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	acct, err := h.State.QueryAccount(accountID)
	if err != nil {
		return errs.Classify(err, rules...)
	}

	resp := toAccount(acct, h.NS.Lookup(accountID), h.State.QueryNonce(accountID))

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Nonce returns the last nonce the account used so a wallet can pick the
// next one. It is kept after the account leaves the pool.
func (h Handlers) Nonce(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID, err := h.NS.Resolve(web.Param(r, "account"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := nonce{
		Account: accountID,
		Nonce:   h.State.QueryNonce(accountID),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Accounts returns every account in the pool.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accts := h.State.RetrieveAccounts()

	resp := make([]account, len(accts))
	for i, acct := range accts {
		resp[i] = toAccount(acct, h.NS.Lookup(acct.AccountID), h.State.QueryNonce(acct.AccountID))
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Stats returns the pool totals.
func (h Handlers) Stats(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := toStats(h.State.RetrieveStats())
	resp.Team = h.State.Team()
	resp.TeamName = h.NS.Lookup(resp.Team)

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Journal returns every operation applied to the pool.
func (h Handlers) Journal(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	journal := h.State.RetrieveJournal()

	resp := make([]op, len(journal))
	for i, o := range journal {
		resp[i] = op{
			Kind:    o.Kind,
			Account: o.Account,
			Amount:  toAmount(o.Amount),
		}
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveGenesis(), http.StatusOK)
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Subscribe(v.TraceID)
	defer h.Evts.Unsubscribe(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, open := <-ch:
			if !open {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

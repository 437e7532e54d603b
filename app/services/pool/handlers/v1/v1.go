// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/ethpool/app/services/pool/handlers/v1/poolgrp"
	"github.com/ardanlabs/ethpool/business/sys/metrics"
	"github.com/ardanlabs/ethpool/foundation/events"
	"github.com/ardanlabs/ethpool/foundation/nameservice"
	"github.com/ardanlabs/ethpool/foundation/state"
	"github.com/ardanlabs/ethpool/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log     *zap.SugaredLogger
	State   *state.State
	NS      *nameservice.NameService
	Evts    *events.Events
	Metrics *metrics.Metrics
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	pgh := poolgrp.Handlers{
		Log:     cfg.Log,
		State:   cfg.State,
		NS:      cfg.NS,
		Evts:    cfg.Evts,
		Metrics: cfg.Metrics,
		WS:      websocket.Upgrader{},
	}

	app.Handle(http.MethodGet, version, "/events", pgh.Events)
	app.Handle(http.MethodGet, version, "/genesis", pgh.Genesis)
	app.Handle(http.MethodPost, version, "/pool/instruction", pgh.SubmitInstruction)
	app.Handle(http.MethodPost, version, "/pool/preview", pgh.Preview)
	app.Handle(http.MethodGet, version, "/pool/balance/:account", pgh.Balance)
	app.Handle(http.MethodGet, version, "/pool/nonce/:account", pgh.Nonce)
	app.Handle(http.MethodGet, version, "/pool/accounts", pgh.Accounts)
	app.Handle(http.MethodGet, version, "/pool/accounts/:account", pgh.Account)
	app.Handle(http.MethodGet, version, "/pool/stats", pgh.Stats)
	app.Handle(http.MethodGet, version, "/pool/journal", pgh.Journal)
}

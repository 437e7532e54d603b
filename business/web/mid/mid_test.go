package mid_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/ethpool/business/sys/metrics"
	"github.com/ardanlabs/ethpool/business/web/errs"
	"github.com/ardanlabs/ethpool/business/web/mid"
	"github.com/ardanlabs/ethpool/foundation/web"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newApp() *web.App {
	log := zap.NewNop().Sugar()
	m := metrics.New()

	app := web.NewApp(
		make(chan os.Signal, 1),
		mid.Logger(log),
		mid.Metrics(m),
		mid.Errors(log),
		mid.Cors("*"),
		mid.Panics(m),
	)

	app.Handle(http.MethodGet, "v1", "/trusted", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errs.NewTrusted(errors.New("insufficient balance"), http.StatusBadRequest)
	})
	app.Handle(http.MethodGet, "v1", "/untrusted", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errors.New("disk on fire")
	})
	app.Handle(http.MethodGet, "v1", "/panic", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("boom")
	})

	return app
}

func TestErrors(t *testing.T) {
	tt := []struct {
		name   string
		path   string
		status int
		msg    string
	}{
		{name: "trusted", path: "/v1/trusted", status: http.StatusBadRequest, msg: "insufficient balance"},
		{name: "untrusted", path: "/v1/untrusted", status: http.StatusInternalServerError, msg: "Internal Server Error"},
		{name: "panic", path: "/v1/panic", status: http.StatusInternalServerError, msg: "Internal Server Error"},
	}

	app := newApp()

	for _, tst := range tt {
		t.Run(tst.name, func(t *testing.T) {
			require := require.New(t)

			w := httptest.NewRecorder()
			app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tst.path, nil))

			require.Equal(tst.status, w.Code)
			require.Equal("*", w.Header().Get("Access-Control-Allow-Origin"))

			var resp errs.Response
			require.NoError(json.NewDecoder(w.Body).Decode(&resp))
			require.Equal(tst.msg, resp.Error)
		})
	}
}

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ardanlabs/ethpool/foundation/ether"
	"github.com/ardanlabs/ethpool/foundation/pool"
	"github.com/ardanlabs/ethpool/foundation/state"
	"github.com/cenkalti/backoff/v4"
)

// maxRetryTime bounds how long a request keeps retrying when the node
// can't be reached.
const maxRetryTime = 30 * time.Second

type amount struct {
	Wei   string `json:"wei"`
	Ether string `json:"ether"`
}

type receipt struct {
	Account string `json:"account"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Nonce   uint64 `json:"nonce"`
	Amount  amount `json:"amount"`
	Balance amount `json:"balance"`
}

type balance struct {
	Account string `json:"account"`
	Name    string `json:"name"`
	Balance amount `json:"balance"`
}

type nonce struct {
	Account string `json:"account"`
	Nonce   uint64 `json:"nonce"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// client talks to the pool node. Transport failures and server errors are
// retried, the node refusing a request is not.
type client struct {
	url  string
	http *http.Client
	bo   func() backoff.BackOff
}

func newClient(url string) *client {
	return &client{
		url:  url,
		http: &http.Client{Timeout: 10 * time.Second},
		bo: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = maxRetryTime
			return b
		},
	}
}

// submit sends the signed instruction to the node. A retried submission
// the node refuses for its nonce may have been applied by an earlier
// attempt whose response was lost, so the nonce is checked before failing.
func (c *client) submit(ctx context.Context, si state.SignedInstruction) (receipt, error) {
	var retried bool
	notify := func(error, time.Duration) {
		retried = true
	}

	var rcpt receipt
	err := c.do(ctx, http.MethodPost, "/v1/pool/instruction", si, &rcpt, notify)
	if err == nil {
		return rcpt, nil
	}

	if !retried || !isNonceRefusal(err) {
		return receipt{}, err
	}

	from, ferr := si.FromAccount()
	if ferr != nil {
		return receipt{}, err
	}

	last, nerr := c.nonce(ctx, from)
	if nerr != nil || last != si.Nonce {
		return receipt{}, err
	}

	bal, berr := c.balance(ctx, from)
	if berr != nil {
		return receipt{}, err
	}

	rcpt = receipt{
		Account: string(from),
		Name:    bal.Name,
		Kind:    string(si.Kind),
		Nonce:   si.Nonce,
		Balance: bal.Balance,
	}

	// The node's receipt was lost so the requested value is reported.
	if amt, err := si.Amount(); err == nil {
		rcpt.Amount = amount{Wei: amt.Dec(), Ether: ether.Format(amt)}
	}

	return rcpt, nil
}

func (c *client) balance(ctx context.Context, accountID pool.AccountID) (balance, error) {
	var bal balance
	if err := c.do(ctx, http.MethodGet, "/v1/pool/balance/"+string(accountID), nil, &bal, nil); err != nil {
		return balance{}, err
	}
	return bal, nil
}

func (c *client) nonce(ctx context.Context, accountID pool.AccountID) (uint64, error) {
	var n nonce
	if err := c.do(ctx, http.MethodGet, "/v1/pool/nonce/"+string(accountID), nil, &n, nil); err != nil {
		return 0, err
	}
	return n.Nonce, nil
}

func (c *client) do(ctx context.Context, method string, path string, body any, result any, notify backoff.Notify) error {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	call := func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.url+path, bytes.NewReader(data))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("node responded %s", resp.Status)

		case resp.StatusCode >= http.StatusBadRequest:
			return backoff.Permanent(decodeError(resp))
		}

		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding response: %w", err))
		}

		return nil
	}

	return backoff.RetryNotify(call, backoff.WithContext(c.bo(), ctx), notify)
}

// refusal is the node refusing a request with a 4xx status.
type refusal struct {
	msg    string
	fields map[string]string
}

func (r *refusal) Error() string {
	if len(r.fields) > 0 {
		return fmt.Sprintf("%s: %v", r.msg, r.fields)
	}
	return r.msg
}

// isNonceRefusal reports whether the node refused the request because the
// nonce was already used.
func isNonceRefusal(err error) bool {
	var r *refusal
	return errors.As(err, &r) && strings.Contains(r.msg, state.ErrNonce.Error())
}

func decodeError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("node responded %s", resp.Status)
	}

	var er errorResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Error == "" {
		return fmt.Errorf("node responded %s", resp.Status)
	}

	return &refusal{
		msg:    er.Error,
		fields: er.Fields,
	}
}

// Package errs carries expected request failures through the handlers so
// the errors middleware can respond with the right status.
package errs

import "errors"

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is an error the handler expected, so its message is safe to
// return to the client with the given status.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap gives errors.Is access to the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if a trusted error exists in the chain.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns the trusted error in the chain or nil.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// =============================================================================

// Rule maps a sentinel error to the status it should respond with.
type Rule struct {
	Target error
	Status int
}

// Classify returns the error as trusted with the status of the first rule
// whose target is in the chain. Errors matching no rule are returned as is.
func Classify(err error, rules ...Rule) error {
	if err == nil || IsTrusted(err) {
		return err
	}

	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			return NewTrusted(err, rule.Status)
		}
	}

	return err
}

package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/ethpool/business/web/errs"
	"github.com/stretchr/testify/require"
)

var (
	errMissing = errors.New("missing")
	errBad     = errors.New("bad")
)

func TestClassify(t *testing.T) {
	require := require.New(t)

	rules := []errs.Rule{
		{Target: errMissing, Status: http.StatusNotFound},
		{Target: errBad, Status: http.StatusBadRequest},
	}

	err := errs.Classify(fmt.Errorf("account 0x01: %w", errMissing), rules...)
	te := errs.GetTrusted(err)
	require.NotNil(te, "trusted")
	require.Equal(http.StatusNotFound, te.Status)
	require.ErrorIs(err, errMissing)

	err = errs.Classify(errors.New("disk on fire"), rules...)
	require.False(errs.IsTrusted(err), "untrusted")

	require.NoError(errs.Classify(nil, rules...))
}

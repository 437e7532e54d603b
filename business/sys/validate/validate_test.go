package validate_test

import (
	"testing"

	"github.com/ardanlabs/ethpool/business/sys/validate"
	"github.com/stretchr/testify/require"
)

type deposit struct {
	Account string `json:"account" validate:"required,account"`
	Value   string `json:"value" validate:"required,ether"`
}

func TestCheck(t *testing.T) {
	require := require.New(t)

	err := validate.Check(deposit{Account: "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", Value: "1.5"})
	require.NoError(err, "valid model")

	err = validate.Check(deposit{Account: "bill", Value: "0"})
	require.True(validate.IsFieldErrors(err), "field errors")

	fields := validate.GetFieldErrors(err).Fields()
	require.Equal("account must be a hex encoded account", fields["account"])
	require.Equal("value must be a positive ether amount", fields["value"])

	err = validate.Check(deposit{})
	require.Contains(validate.GetFieldErrors(err).Fields()["account"], "required")
}

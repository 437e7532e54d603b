package ether_test

import (
	"testing"

	"github.com/ardanlabs/ethpool/foundation/ether"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	require := require.New(t)

	wei, err := ether.Parse("150")
	require.NoError(err, "Parse(150)")
	require.Equal("150000000000000000000", wei.Dec(), "Parse(150) value")

	wei, err = ether.Parse("0.000000000000000001")
	require.NoError(err, "Parse(1 wei)")
	require.True(wei.Eq(uint256.NewInt(1)), "Parse(1 wei) value")

	wei, err = ether.Parse("381.2")
	require.NoError(err, "Parse(381.2)")
	require.Equal("381200000000000000000", wei.Dec(), "Parse(381.2) value")

	_, err = ether.Parse("-1")
	require.Error(err, "Parse(-1)")

	_, err = ether.Parse("0.0000000000000000001")
	require.Error(err, "Parse(19 decimals)")

	_, err = ether.Parse("ten")
	require.Error(err, "Parse(ten)")

	_, err = ether.Parse("1e80")
	require.Error(err, "Parse(1e80)")
}

func TestFormat(t *testing.T) {
	require := require.New(t)

	require.Equal("150", ether.Format(ether.MustParse("150")), "Format(150)")
	require.Equal("0.5", ether.Format(ether.MustParse("0.5")), "Format(0.5)")
	require.Equal("0", ether.Format(uint256.NewInt(0)), "Format(0)")
	require.Equal("0", ether.Format(nil), "Format(nil)")
	require.Equal("199.999999999999999999", ether.Format(uint256.MustFromDecimal("199999999999999999999")), "Format(dust)")
}

func TestFloat(t *testing.T) {
	require := require.New(t)

	require.InDelta(1.5, ether.Float(ether.MustParse("1.5")), 1e-12, "Float(1.5)")
	require.Zero(ether.Float(nil), "Float(nil)")
}

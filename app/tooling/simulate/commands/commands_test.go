package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ethpool/app/tooling/simulate/commands"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testdata = "../../../../foundation/scenario/testdata"

func TestRun(t *testing.T) {
	require := require.New(t)

	var out bytes.Buffer
	require.NoError(commands.Run(&out, zap.NewNop().Sugar(), testdata))

	require.Contains(out.String(), "PASS  challenge-first")
	require.Contains(out.String(), "SKIP  solution-example")
}

func TestRunFailures(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	bad := "name: bad\nsteps:\n  - op: withdraw\n    account: A\n    value: \"1\"\n"
	require.NoError(os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(bad), 0600))

	var out bytes.Buffer
	err := commands.Run(&out, zap.NewNop().Sugar(), dir)
	require.Error(err)
	require.Contains(out.String(), "FAIL  bad")
}

func TestList(t *testing.T) {
	require := require.New(t)

	var out bytes.Buffer
	require.NoError(commands.List(&out, filepath.Join(testdata, "solution-example.yaml")))
	require.Contains(out.String(), "solution-example (unsupported)")
}

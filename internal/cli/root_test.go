package cli

import (
	"bytes"
	"testing"

	clitestutil "github.com/leapstack-labs/tiersql/internal/cli/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd_Commands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"version", "names", "classify", "ping", "query", "tables", "catalog", "completion"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "target", "schema-file", "state", "env", "verbose", "output"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
	assert.Equal(t, "t", root.PersistentFlags().Lookup("target").Shorthand)
}

func TestRootCmd_NamesThroughConfig(t *testing.T) {
	dir := clitestutil.SetupTestProject(t)
	t.Chdir(dir)

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"names", "--tier", "lookup", "-o", "markdown", "-v"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "#species")
	assert.NotContains(t, out.String(), "animal__session")
	// verbose logging goes to stderr
	assert.Contains(t, errOut.String(), "using config file")
}

func TestRootCmd_TargetOverride(t *testing.T) {
	dir := clitestutil.SetupTestProject(t)
	t.Chdir(dir)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"ping", "--target", "scratch"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "| scratch | sqlite | ok |")
}

func TestRootCmd_UnknownTarget(t *testing.T) {
	dir := clitestutil.SetupTestProject(t)
	t.Chdir(dir)

	root := NewRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"ping", "--target", "prod"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown target environment "prod"`)
}

func TestCompletionCommand(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"completion", "bash"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "tiersql")
}

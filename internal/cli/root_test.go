package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k12ops/rosterreport/internal/cli"
)

func writeFile(path string, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

func executeCommand(args ...string) error {
	cmd := cli.NewRootCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)

	return cmd.Execute()
}

func Test_RootCommand_HasTheExpectedSubcommands(t *testing.T) {
	cmd := cli.NewRootCommand()

	names := make([]string, 0)
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.Contains(t, names, "run")
	assert.Contains(t, names, "check")
}

func Test_RunCommand_When_TheConfigFileIsMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	err := executeCommand("run", "--config", missing)

	require.Error(t, err)
}

func Test_CheckCommand_When_TheConfigFileIsMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	err := executeCommand("check", "--config", missing)

	require.Error(t, err)
}

func Test_RunCommand_When_TheFormatFlagIsInvalid(t *testing.T) {
	// config parses fine; the bogus format must be rejected before any
	// collaborator is built
	path := filepath.Join(t.TempDir(), "rosterreport.yaml")
	writeErr := writeFile(path, `
database:
  url: postgres://reports@localhost/sis
email:
  host: smtp.district.example
  from: reports@district.example
  recipients: [health@district.example]
`)
	require.NoError(t, writeErr)

	err := executeCommand("run", "--config", path, "--format", "pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf")
}

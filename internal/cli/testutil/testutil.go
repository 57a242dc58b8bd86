// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/csvview/internal/cli/config"
	roottestutil "github.com/leapstack-labs/csvview/internal/testutil"
)

// NewConfig returns the default configuration reading from dataDir.
func NewConfig(dataDir string) *config.Config {
	cfg := config.Default()
	cfg.DataDir = dataDir
	return cfg
}

// CommandResult holds the captured output of a command run.
type CommandResult struct {
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// Output returns the captured stdout.
func (r CommandResult) Output() string {
	return r.Out.String()
}

// ErrorOutput returns the captured stderr.
func (r CommandResult) ErrorOutput() string {
	return r.ErrOut.String()
}

// ExecuteCommand runs cmd with args, cfg, and a test logger in its context,
// the way the root command would after loading configuration.
func ExecuteCommand(t *testing.T, cmd *cobra.Command, cfg *config.Config, args ...string) (CommandResult, error) {
	t.Helper()

	res := CommandResult{Out: &bytes.Buffer{}, ErrOut: &bytes.Buffer{}}
	cmd.SetOut(res.Out)
	cmd.SetErr(res.ErrOut)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)

	ctx := config.WithConfig(context.Background(), cfg)
	ctx = config.WithLogger(ctx, roottestutil.NewTestLogger(t))

	err := cmd.ExecuteContext(ctx)
	return res, err
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

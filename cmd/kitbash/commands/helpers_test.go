package commands

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/kitbash/internal/printer"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// cliResult holds everything one CLI invocation wrote.
type cliResult struct {
	Out     string // command output (cmd.OutOrStdout)
	Printed string // printer stdout
	Errors  string // printer stderr
}

// runCLI executes rootCmd with args, resetting all flags first so package-level
// flag variables do not leak between invocations.
func runCLI(t *testing.T, args ...string) (cliResult, error) {
	t.Helper()

	resetFlags(rootCmd)

	var out, printed, errs bytes.Buffer
	restore := printer.SetOutput(&printed, &errs)
	defer restore()
	defer log.SetOutput(os.Stderr)

	// A nil slice makes cobra fall back to os.Args
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errs)
	defer rootCmd.SetOut(nil)
	defer rootCmd.SetErr(nil)

	err := Execute()
	return cliResult{Out: out.String(), Printed: printed.String(), Errors: errs.String()}, err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// setupRedis starts miniredis and points the CLI at it through the environment.
func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr := miniredis.RunT(t)
	t.Setenv(envRedisURL, "redis://"+mr.Addr())
	t.Setenv(envInstance, "")
	return mr
}

const testConfig = `version: "1.0"
characters:
  - id: knight
    name: Knight
    pieces:
      - {id: helm, level: 1}
      - {id: sword, level: 2}
      - {id: teapot, level: 1, fake: true}
  - id: dragon
    name: Dragon
    pieces:
      - {id: wing, level: 4, special: true}
players:
  - id: p1
    name: Pat
    unlocked: [knight]
`

func writeConfig(t *testing.T) string {
	t.Helper()

	path := t.TempDir() + "/kitbash.yml"
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0644))
	return path
}

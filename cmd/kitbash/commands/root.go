package commands

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

const (
	envInstance = "KITBASH_INSTANCE"
	envRedisURL = "KITBASH_REDIS_URL"
)

var (
	version string
	commit  string
	date    string

	instanceFlag string
	redisURLFlag string
	verboseFlag  bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kitbash",
	Short: "kitbash - build, validate and score character models",
	Long: `kitbash runs the build workshop: players start a build of a character,
place pieces, and submit it for validation and scoring.

State lives in Redis, namespaced by instance. Use 'kitbash up' for a local
Redis container or point at an existing server with --redis-url.`,
	Version: version,
	// Show help rather than silently succeeding without a subcommand
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if !verboseFlag {
			log.SetOutput(io.Discard)
		} else {
			log.SetOutput(os.Stderr)
		}
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	// Errors are printed by the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&instanceFlag, "instance", "n", "", "Instance name (default $"+envInstance+" or 'default')")
	rootCmd.PersistentFlags().StringVar(&redisURLFlag, "redis-url", "", "Redis URL, skips Docker discovery (default $"+envRedisURL+")")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Write engine log events to stderr")
}

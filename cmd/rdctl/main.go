// Command rdctl loads datasets into a restaurant store and runs ad-hoc searches.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/config"
	logpkg "github.com/Violetta147/Restaurant-Directory-sub001/internal/logger"
)

var (
	env     string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "rdctl",
	Short:         "Restaurant directory maintenance tool",
	Long:          `Load restaurant datasets into the configured store and query it from the command line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", config.GetEnv(), "Config environment (local, dev, docker, prod)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(newLoadCmd(), newSearchCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads config and builds a logger. Without --verbose only warnings are logged.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	level := "warn"
	if verbose {
		level = "debug"
	}
	logger, err := logpkg.NewLogger(env, level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

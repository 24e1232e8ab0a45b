// tigermcp exposes the ck3-tiger mod validator as MCP tools over stdio,
// plus a small CLI for direct use.
//
// Usage:
//
//	tigermcp serve                      # MCP server over stdio
//	tigermcp validate <mod> [flags]     # one-shot validation
//	tigermcp check [--all | <mods...>]  # batch validation
//	tigermcp mods                       # list available mods
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tigermcp/internal/config"
	"tigermcp/internal/logging"
	"tigermcp/internal/tiger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagConfigFile string
	flagLogLevel   string
	flagLogFormat  string

	// cfg is loaded once in the root PersistentPreRunE and read by every
	// subcommand. No other global state.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tigermcp",
	Short: "ck3-tiger mod validator as MCP tools",
	Long: "Tigermcp wraps the ck3-tiger static validator for Crusader Kings III mods\nand exposes it as callable tools over the Model Context Protocol.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(flagConfigFile)
	if err != nil {
		return err
	}

	level := c.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	format := c.LogFormat
	if flagLogFormat != "" {
		format = flagLogFormat
	}
	slogLevel, err := logging.ParseLevel(level)
	if err != nil {
		return err
	}
	logging.Init(slogLevel, format)

	cfg = c
	return nil
}

// newInvoker builds the invoker every subcommand shares, refusing to proceed
// without a tiger executable path.
func newInvoker() (*tiger.Invoker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return tiger.NewInvoker(tiger.Config{
		TigerPath: cfg.TigerPath,
		ModsBase:  cfg.ModsBase,
	}, nil), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "Path to tigermcp config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format (text, json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(modsCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

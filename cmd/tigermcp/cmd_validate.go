package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tigermcp/internal/tiger"
)

var (
	flagShowVanilla bool
	flagShowMods    bool
	flagTigerConfig string
	flagJSONOut     bool
	flagSyntaxOnly  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <mod>",
	Short: "Validate a single mod and print a severity summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&flagShowVanilla, "show-vanilla", false, "Include errors from base game files")
	validateCmd.Flags().BoolVar(&flagShowMods, "show-mods", false, "Include errors from other enabled mods")
	validateCmd.Flags().StringVar(&flagTigerConfig, "tiger-config", "", "Path to a custom tiger .conf file")
	validateCmd.Flags().BoolVar(&flagJSONOut, "json", false, "Print the raw diagnostic array instead of a summary")
	validateCmd.Flags().BoolVar(&flagSyntaxOnly, "syntax-only", false, "Quick syntax-only check (shorter timeout)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	inv, err := newInvoker()
	if err != nil {
		return err
	}
	mod := args[0]

	var diags []tiger.Diagnostic
	switch {
	case flagSyntaxOnly:
		diags, err = inv.CheckSyntax(cmd.Context(), mod)
	case flagTigerConfig != "":
		diags, err = inv.ValidateWithConfig(cmd.Context(), mod, flagTigerConfig)
	default:
		diags, err = inv.Validate(cmd.Context(), mod, tiger.ValidateOptions{
			ShowVanilla: flagShowVanilla,
			ShowMods:    flagShowMods,
		})
	}
	if err != nil {
		return describeFailure(err)
	}

	if flagJSONOut {
		data, err := json.MarshalIndent(diags, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal diagnostics: %w", err)
		}
		fmt.Println(string(data))
	} else {
		printSummary(mod, diags)
	}

	rep := tiger.BucketBySeverity(diags)
	if len(rep.Buckets["fatal"]) > 0 || len(rep.Buckets["error"]) > 0 {
		os.Exit(1)
	}
	return nil
}

func printSummary(mod string, diags []tiger.Diagnostic) {
	rep := tiger.BucketBySeverity(diags)
	if rep.Valid {
		color.Green("%s: no problems found", mod)
		return
	}

	fmt.Printf("%s: %d problem(s)\n", mod, rep.Total)
	severities := make([]string, 0, len(rep.Buckets))
	for sev := range rep.Buckets {
		severities = append(severities, sev)
	}
	sort.Strings(severities)
	for _, sev := range severities {
		severityColor(sev).Printf("  %-8s %d\n", sev, len(rep.Buckets[sev]))
	}
}

func severityColor(sev string) *color.Color {
	switch sev {
	case "fatal", "error":
		return color.New(color.FgRed)
	case "warning":
		return color.New(color.FgYellow)
	case "info", "tips":
		return color.New(color.FgCyan)
	case "untidy":
		return color.New(color.FgBlue)
	default:
		return color.New(color.FgWhite)
	}
}

// describeFailure turns a typed invocation failure into a CLI error, keeping
// the tool's own stderr visible.
func describeFailure(err error) error {
	if te, ok := tiger.AsError(err); ok && te.Stderr != "" {
		fmt.Fprint(os.Stderr, te.Stderr)
	}
	return err
}

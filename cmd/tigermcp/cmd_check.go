package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tigermcp/internal/tiger"
)

var (
	flagCheckAll      bool
	flagCheckParallel int
)

var checkCmd = &cobra.Command{
	Use:   "check [mods...]",
	Short: "Validate several mods and print a pass/fail line per mod",
	Long: `Runs a full validation for each named mod (or every mod under the mods base
with --all) and prints one summary line per mod. Mods are validated in
parallel; each run keeps its own timeout.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&flagCheckAll, "all", false, "Check every mod under the mods base")
	checkCmd.Flags().IntVar(&flagCheckParallel, "parallel", 4, "Max concurrent validations")
}

type checkResult struct {
	mod   string
	diags []tiger.Diagnostic
	err   error
}

func runCheck(cmd *cobra.Command, args []string) error {
	inv, err := newInvoker()
	if err != nil {
		return err
	}

	mods := args
	if flagCheckAll {
		mods, err = inv.ListMods()
		if err != nil {
			return err
		}
	}
	if len(mods) == 0 {
		return fmt.Errorf("no mods to check (name some or pass --all)")
	}

	results := make([]checkResult, len(mods))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(flagCheckParallel)
	for i, mod := range mods {
		g.Go(func() error {
			diags, err := inv.Validate(ctx, mod, tiger.ValidateOptions{})
			results[i] = checkResult{mod: mod, diags: diags, err: err}
			// Per-mod failures are reported in the summary, not fatal to
			// the batch.
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		switch {
		case r.err != nil:
			color.Red("FAIL  %-30s %v", r.mod, r.err)
			failed++
		case len(r.diags) == 0:
			color.Green("ok    %-30s clean", r.mod)
		default:
			rep := tiger.BucketBySeverity(r.diags)
			color.Yellow("warn  %-30s %d problem(s)", r.mod, rep.Total)
			if len(rep.Buckets["fatal"]) > 0 || len(rep.Buckets["error"]) > 0 {
				failed++
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d mod(s) failed validation", failed, len(mods))
	}
	return nil
}

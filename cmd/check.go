package cmd

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/cmmoran/collectiongen/pkg/action/check"
)

// ErrStale is returned by check when generated files are out of date.
var ErrStale = errors.New("generated files are out of date")

func init() {
	rootCmd.AddCommand(NewCheckCommand())
}

func NewCheckCommand() *cobra.Command {
	var quiet bool

	var checkCmd = &cobra.Command{
		Use:   "check [packages]",
		Short: "verify generated collections are up to date",
		Long:  "Regenerate in memory and fail when any generated file differs from what is on disk",
		RunE: func(c *cobra.Command, args []string) error {
			options, err := generateOptions(args)
			if err != nil {
				return err
			}
			report, err := check.Check(c.Context(), options)
			if report == nil {
				return err
			}
			printDiagnostics(c.ErrOrStderr(), report.Result.Fset, report.Result.Module.Dir, report.Result.Diagnostics(), false)
			if err != nil {
				return err
			}
			if report.Clean() {
				return nil
			}
			if !quiet {
				printDrift(c.OutOrStdout(), report.Drift)
			}
			return errors.WithHint(
				errors.Wrapf(ErrStale, "%d file(s)", len(report.Drift)),
				"run collectiongen generate",
			)
		},
	}
	checkCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only report whether files are stale")

	return checkCmd
}

package cmd

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/cmmoran/collectiongen/internal/diag"
	"github.com/cmmoran/collectiongen/internal/fixes"
	"github.com/cmmoran/collectiongen/internal/generator"
)

func init() {
	rootCmd.AddCommand(NewFixCommand())
}

func NewFixCommand() *cobra.Command {
	var (
		ids    []string
		dryRun bool
	)

	var fixCmd = &cobra.Command{
		Use:   "fix [packages]",
		Short: "apply suggested fixes",
		Long:  "Validate directives and apply the fixes offered by fixable diagnostics (ENH006, ENH008)",
		RunE: func(c *cobra.Command, args []string) error {
			options, err := generateOptions(args)
			if err != nil {
				return err
			}
			options.DryRun = true
			options.FailOnError = false

			res, err := generator.FromOptions(options).Run(c.Context())
			if res == nil {
				return err
			}
			if err != nil {
				printDiagnostics(c.ErrOrStderr(), res.Fset, res.Module.Dir, res.Diagnostics(), false)
				return err
			}

			fopts := fixes.Options{DryRun: dryRun}
			for _, id := range ids {
				if !diag.Lookup(diag.ID(id)).Fixable {
					return errors.Newf("fix: %q has no suggested fixes", id)
				}
				fopts.IDs = append(fopts.IDs, diag.ID(id))
			}

			applied, applyErr := fixes.Apply(res.Fset, res.Diagnostics(), fopts)
			if applied == nil {
				return applyErr
			}
			out := c.OutOrStdout()
			printApplyResult(out, applied)
			if dryRun {
				for _, change := range applied.FileChanges {
					src, err := os.ReadFile(change.Path)
					if err != nil {
						return errors.Wrapf(err, "read %s", change.Path)
					}
					_, _ = fmt.Fprintf(out, "--- %s\n%s\n", change.Path, cmp.Diff(string(src), string(change.Content)))
				}
			}

			if applyErr != nil {
				if errors.Is(applyErr, fixes.ErrNoFixes) && len(applied.Applied) == 0 {
					_, _ = fmt.Fprintln(out, "No applicable fixes found.")
					return nil
				}
				return applyErr
			}
			if !dryRun {
				_, _ = fmt.Fprintln(out, "Run collectiongen generate to refresh the generated files.")
			}
			return nil
		},
	}
	fixCmd.Flags().StringSliceVar(&ids, "id", nil, "only apply fixes for these diagnostic ids")
	fixCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print the changes without writing them")

	return fixCmd
}

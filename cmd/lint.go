package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/cmmoran/collectiongen/internal/diag"
	"github.com/cmmoran/collectiongen/internal/generator"
)

func init() {
	rootCmd.AddCommand(NewLintCommand())
}

func NewLintCommand() *cobra.Command {
	var (
		strict  bool
		listIDs bool
	)

	var lintCmd = &cobra.Command{
		Use:   "lint [packages]",
		Short: "report directive diagnostics",
		Long:  "Discover and validate directives without writing anything. Each diagnostic names the analyzer reporting it under go vet",
		RunE: func(c *cobra.Command, args []string) error {
			if listIDs {
				for _, d := range diag.All() {
					_, _ = fmt.Fprintf(c.OutOrStdout(), "%s\t%s\t%s\n", d.ID, d.Severity, d.Title)
				}
				return nil
			}
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
			ds := res.Diagnostics()
			printDiagnostics(c.OutOrStdout(), res.Fset, res.Module.Dir, ds, true)
			if err != nil {
				return err
			}

			var bag diag.Bag
			bag.Add(ds...)
			if bag.HasErrors() || (strict && bag.Count(diag.SevWarning) > 0) {
				return errors.Wrapf(generator.ErrDiagnostics, "%d error(s), %d warning(s)",
					bag.Count(diag.SevError), bag.Count(diag.SevWarning))
			}
			return nil
		},
	}
	lintCmd.Flags().BoolVar(&strict, "strict", false, "fail on warnings too")
	lintCmd.Flags().BoolVar(&listIDs, "list", false, "list every diagnostic ID and exit")

	return lintCmd
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cmmoran/collectiongen/internal/generator"
	"github.com/cmmoran/collectiongen/pkg/action/generate"
	"github.com/cmmoran/collectiongen/pkg/action/watch"
)

func init() {
	rootCmd.AddCommand(NewWatchCommand())
}

func NewWatchCommand() *cobra.Command {
	var debounce = watch.DefaultDebounce

	var watchCmd = &cobra.Command{
		Use:   "watch [packages]",
		Short: "regenerate on change",
		Long:  "Generate once, then regenerate whenever Go sources below the directory change",
		RunE: func(c *cobra.Command, args []string) error {
			options, err := generateOptions(args)
			if err != nil {
				return err
			}
			options.DryRun = false
			options.FailOnError = false

			w, err := watch.New(options, debounce)
			if err != nil {
				return err
			}
			w.OnRun(func(res *generator.Result, err error) {
				if res == nil {
					printError(c.ErrOrStderr(), err)
					return
				}
				s := generate.Summarize(res)
				if s.Written+s.Deleted+s.Orphans > 0 || res.HasErrors() {
					printDiagnostics(c.ErrOrStderr(), res.Fset, res.Module.Dir, res.Diagnostics(), false)
				}
			})
			return w.Run(c.Context())
		},
	}
	watchCmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period after a change before regenerating")

	return watchCmd
}

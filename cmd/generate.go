package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cmmoran/collectiongen/pkg/action/generate"
)

func init() {
	rootCmd.AddCommand(NewGenerateCommand())
}

func NewGenerateCommand() *cobra.Command {
	var generateCmd = &cobra.Command{
		Use:   "generate [packages]",
		Short: "generate collections",
		Long:  "Generate the collections file of every package holding //enum: or //type: directives",
		RunE: func(c *cobra.Command, args []string) error {
			options, err := generateOptions(args)
			if err != nil {
				return err
			}
			res, err := generate.Generate(c.Context(), options)
			if res != nil {
				printDiagnostics(c.ErrOrStderr(), res.Fset, res.Module.Dir, res.Diagnostics(), false)
			}
			return err
		},
	}
	generateCmd.Flags().BoolP("dry-run", "n", false, "report what would change without writing")
	if err := viper.BindPFlag("generate.dry_run", generateCmd.Flags().Lookup("dry-run")); err != nil {
		panic(err)
	}

	return generateCmd
}

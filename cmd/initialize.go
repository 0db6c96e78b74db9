package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmmoran/collectiongen/pkg/action/initialize"
)

func init() {
	var initializeCmd = NewInitCommand()
	rootCmd.AddCommand(initializeCmd)
}

func NewInitCommand() *cobra.Command {
	var force bool

	// initCmd represents the collectiongen init command
	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "write a starter configuration",
		Long:  "Write " + initialize.ConfigName + " holding the current generate settings into the directory",
		RunE: func(c *cobra.Command, args []string) error {
			options, err := generateOptions(nil)
			if err != nil {
				return err
			}
			path, err := initialize.Generate(options.Dir, options, force)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(c.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration")

	return initCmd
}

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/vibeframe/vibeframe/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize vibeframe configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the vibeframe host and generates a .vibeframe.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

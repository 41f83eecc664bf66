package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "vibeframe",
	Short: "AI-assisted app building host with live sandboxed preview",
	Long: `Vibeframe hosts an AI-assisted app builder: a chat panel drives
streaming code generation while a second panel renders the generated app
live inside a sandboxed execution context, alongside its source code and
document database.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".vibeframe.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

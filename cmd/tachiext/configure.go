package main

import (
	"github.com/dikkadev/tachiext/pkg/config"
	"github.com/dikkadev/tachiext/pkg/selector"
	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure [operation] [args...]",
	Short: "Configure tachiext settings",
	Long: `Change a configuration value. Without arguments the operations are offered
in an interactive menu.

Operations:
  show                    Show current configuration
  repo <url>              Set the extension repository URL
  lib-range <min> <max>   Set the supported extension library versions
  token [token]           Set or clear the GitHub API token
  root <dir>              Change root directory`,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	name := ""
	if len(args) > 0 {
		name, args = args[0], args[1:]
	} else {
		ops := config.GetOperations()
		options := make([]selector.Option, len(ops))
		for i, op := range ops {
			options[i] = selector.Option{Name: op.Name, Desc: op.Description}
		}

		choice, err := selector.SelectOption("Configure tachiext", options)
		if err != nil || choice == nil {
			return err
		}
		name = choice.Name
	}

	op, err := config.FindOperation(name)
	if err != nil {
		return err
	}
	return op.Handler(cfg, args, cmd.OutOrStdout())
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dikkadev/tachiext/pkg/debug"
	"github.com/dikkadev/tachiext/pkg/selector"
	"github.com/dikkadev/tachiext/pkg/storage"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Run library maintenance functions",
	Long: `Run maintenance functions directly against the library database.
Without a subcommand an interactive menu is shown.`,
	Args: cobra.NoArgs,
	RunE: runDebugMenu,
}

var debugListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the debug functions",
	Args:  cobra.NoArgs,
	RunE:  runDebugList,
}

var debugRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a debug function by name",
	Args:  cobra.ExactArgs(1),
	RunE:  runDebugRun,
}

func init() {
	debugCmd.AddCommand(debugListCmd, debugRunCmd)
	rootCmd.AddCommand(debugCmd)
}

func newDebugFunctions(a *app) *debug.Functions {
	return debug.New(a.store, a.store, storage.NewMigrator(a.store, a.store))
}

func runDebugMenu(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	funcs := newDebugFunctions(a)
	entries := funcs.Entries()
	options := make([]selector.Option, len(entries))
	for i, e := range entries {
		options[i] = selector.Option{Name: e.Name, Desc: e.Description}
	}

	choice, err := selector.SelectOption("Debug functions", options)
	if err != nil || choice == nil {
		return err
	}

	return runDebugEntry(cmd, funcs, choice.Name)
}

func runDebugList(cmd *cobra.Command, args []string) error {
	// Listing needs no database
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	for _, e := range debug.New(nil, nil, nil).Entries() {
		fmt.Fprintf(tw, "%s\t%s\n", e.Name, e.Description)
	}
	return tw.Flush()
}

func runDebugRun(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	return runDebugEntry(cmd, newDebugFunctions(a), args[0])
}

func runDebugEntry(cmd *cobra.Command, funcs *debug.Functions, name string) error {
	entry, err := funcs.Find(name)
	if err != nil {
		return err
	}

	out, err := entry.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("%s failed: %w", entry.Name, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Finished: %s\n", entry.Name)
	if out != "" {
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}
	return nil
}

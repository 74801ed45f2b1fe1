package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dikkadev/tachiext/pkg/github"
	"github.com/dikkadev/tachiext/pkg/locale"
	"github.com/dikkadev/tachiext/pkg/selector"
	"github.com/dikkadev/tachiext/pkg/storage"
	"github.com/dikkadev/tachiext/pkg/updater"
	"github.com/spf13/cobra"
)

var (
	outputFormat   string
	allLanguages   bool
	includeNSFW    bool
	dryRun         bool
	nonInteractive bool
)

var availableCmd = &cobra.Command{
	Use:   "available",
	Short: "List extensions available in the repository",
	Long: `List the extensions of the configured repository that are compatible with the
supported library versions, filtered to the preferred languages.`,
	Args: cobra.NoArgs,
	RunE: runAvailable,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check installed extensions for updates",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

var installCmd = &cobra.Command{
	Use:   "install <name|package>",
	Short: "Install an extension",
	Args:  cobra.ExactArgs(1),
	RunE:  runInstall,
}

var updateCmd = &cobra.Command{
	Use:   "update [package...]",
	Short: "Update installed extensions",
	Long:  `Update the given extensions, or every extension with an update available.`,
	RunE:  runUpdate,
}

var removeCmd = &cobra.Command{
	Use:   "remove <package>",
	Short: "Remove an installed extension",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed extensions",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	availableCmd.Flags().StringVarP(&outputFormat, "output", "o", formatTable, "Output format (table, json, yaml)")
	availableCmd.Flags().BoolVar(&allLanguages, "all-languages", false, "Do not filter by preferred languages")
	availableCmd.Flags().BoolVar(&includeNSFW, "nsfw", false, "Include NSFW extensions")

	listCmd.Flags().StringVarP(&outputFormat, "output", "o", formatTable, "Output format (table, json, yaml)")

	installCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without making changes")
	installCmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Pick the best language match instead of prompting")
	updateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without making changes")
	removeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without making changes")

	rootCmd.AddCommand(availableCmd, checkCmd, installCmd, updateCmd, removeCmd, listCmd)
}

func runAvailable(cmd *cobra.Command, args []string) error {
	if err := checkFormat(outputFormat); err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	exts, err := a.client.FindExtensions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to fetch extensions: %w", err)
	}

	if !allLanguages {
		exts = locale.FilterExtensions(exts, locale.Preferred(cfg.Languages))
	}
	if !includeNSFW {
		filtered := exts[:0]
		for _, ext := range exts {
			if !ext.IsNSFW {
				filtered = append(filtered, ext)
			}
		}
		exts = filtered
	}

	return printAvailable(cmd.OutOrStdout(), outputFormat, exts)
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	checker := updater.NewChecker(a.client, a.store, a.store, cfg.Blacklist)
	updates, err := checker.CheckForUpdates(cmd.Context())
	if err != nil {
		return err
	}

	printUpdates(cmd.OutOrStdout(), updates)
	return nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ext, err := selector.SelectExtension(ctx, a.client, args[0], locale.Preferred(cfg.Languages), nonInteractive)
	if err != nil {
		return err
	}

	opts := updater.Options{NonInteractive: nonInteractive, DryRun: dryRun}
	return updater.Install(ctx, ext.PackageName, cfg, a.store, a.client, opts)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var (
		targets   []*storage.Extension
		available []github.Extension
	)
	if len(args) > 0 {
		for _, pkg := range args {
			ext, err := a.store.GetExtension(ctx, pkg)
			if err != nil {
				return fmt.Errorf("failed to get extension: %w", err)
			}
			if ext == nil {
				return fmt.Errorf("extension not installed: %s", pkg)
			}
			targets = append(targets, ext)
		}
		if available, err = a.client.FindExtensions(ctx); err != nil {
			return fmt.Errorf("failed to fetch extensions: %w", err)
		}
	} else {
		checker := updater.NewChecker(a.client, a.store, a.store, cfg.Blacklist)
		if targets, available, err = checker.CheckWithCatalog(ctx); err != nil {
			return err
		}
		if len(targets) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "All extensions are up to date")
			return nil
		}
	}

	return applyUpdates(ctx, targets, available, a.store, a.client, updater.Options{DryRun: dryRun})
}

// applyUpdates updates every target and reports all failures together
func applyUpdates(ctx context.Context, targets []*storage.Extension, available []github.Extension, store storage.Storage, client github.Client, opts updater.Options) error {
	var errs []error
	for _, ext := range targets {
		if err := updater.Update(ctx, ext, available, cfg, store, client, opts); err != nil {
			errs = append(errs, fmt.Errorf("failed to update %s: %w", ext.PackageName, err))
		}
	}
	return errors.Join(errs...)
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	ext, err := a.store.GetExtension(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get extension: %w", err)
	}
	if ext == nil {
		return fmt.Errorf("extension not installed: %s", args[0])
	}

	return updater.Remove(ctx, ext, a.store, updater.Options{DryRun: dryRun})
}

func runList(cmd *cobra.Command, args []string) error {
	if err := checkFormat(outputFormat); err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	exts, err := a.store.ListExtensions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list extensions: %w", err)
	}

	if len(exts) == 0 && outputFormat == formatTable {
		fmt.Fprintln(cmd.OutOrStdout(), "No extensions installed")
		return nil
	}
	return printInstalled(cmd.OutOrStdout(), outputFormat, exts)
}

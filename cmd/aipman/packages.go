package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/provide-io/aipman/pkg/aip/lifecycle"
)

var mutating = map[string]string{mutatingAnnotation: "true"}

var installCmd = &cobra.Command{
	Use:         "install <package>",
	Short:       "Install an AppImage from the package catalog",
	Long:        "Install an AppImage from the package catalog, or upgrade it when the catalog has a newer version.",
	Args:        cobra.ExactArgs(1),
	Annotations: mutating,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := application.orch.Install(cmd.Context(), args[0])
		if err != nil {
			if result.Status == lifecycle.StatusUpgraded {
				report(cmd.OutOrStdout(), result)
			}
			return err
		}
		report(cmd.OutOrStdout(), result)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:         "remove <package>",
	Aliases:     []string{"uninstall", "rm"},
	Short:       "Remove an installed AppImage",
	Args:        cobra.ExactArgs(1),
	Annotations: mutating,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := application.orch.Remove(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		report(cmd.OutOrStdout(), result)
		return nil
	},
}

var upgradeCmd = &cobra.Command{
	Use:         "upgrade",
	Short:       "Upgrade installed packages",
	Args:        cobra.NoArgs,
	Annotations: mutating,
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := application.orch.Upgrade(cmd.Context())

		out := cmd.OutOrStdout()
		for _, result := range results {
			report(out, result)
		}
		if err != nil {
			return err
		}
		if len(results) == 0 {
			noticeColor.Fprintln(out, "Everything is up to date")
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run <app> [-- args...]",
	Short: "Run an installed application",
	Long: `Run an installed application. Everything after the application name is
passed to it unchanged; aipman exits with the application's exit code.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appArgs := args[1:]
		if len(appArgs) > 0 && appArgs[0] == "--" {
			appArgs = appArgs[1:]
		}

		result, err := application.orch.Run(cmd.Context(), args[0], appArgs)
		if err != nil {
			return err
		}
		if result.Status == lifecycle.StatusNotInstalled {
			return fmt.Errorf("package %s is not installed", args[0])
		}
		exitCode = result.ExitCode
		return nil
	},
}

func init() {
	// Flags after the application name belong to the application.
	runCmd.Flags().SetInterspersed(false)
}

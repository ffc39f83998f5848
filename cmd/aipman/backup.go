package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/provide-io/aipman/pkg/aip/lifecycle"
)

var restoreYes bool

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the application directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := application.cfg.BackupPath()
		if err != nil {
			return err
		}
		if err := application.archiver.Create(application.paths.Root(), archive); err != nil {
			return err
		}
		successColor.Fprintf(cmd.OutOrStdout(), "Backed up %s to %s\n", application.paths.Root(), archive)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the application directory from backup",
	Long: `Restore the application directory from the backup archive. The current
directory and everything in it is replaced.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := application.cfg.BackupPath()
		if err != nil {
			return err
		}

		if !restoreYes {
			prompter := lifecycle.NewPrompter(os.Stdin, cmd.OutOrStdout())
			ok, err := prompter.Confirm("Replace " + application.paths.Root() + " with " + archive + "?")
			if err != nil {
				return err
			}
			if !ok {
				noticeColor.Fprintln(cmd.OutOrStdout(), "Restore cancelled")
				return nil
			}
		}

		if err := application.archiver.Restore(application.paths.Root(), archive); err != nil {
			return err
		}
		successColor.Fprintf(cmd.OutOrStdout(), "Restored %s from %s\n", application.paths.Root(), archive)
		return nil
	},
}

func init() {
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "Restore without asking")
}

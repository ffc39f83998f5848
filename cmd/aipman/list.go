package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/provide-io/aipman/internal/render"
)

var outputFormat string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List installed packages",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := render.ParseFormat(outputFormat)
		if err != nil {
			return err
		}

		installed, err := application.orch.List()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(installed) == 0 && (format == render.FormatTable || format == render.FormatDetail) {
			noticeColor.Fprintln(out, "No packages installed")
			return nil
		}

		width := 0
		if out == os.Stdout {
			width = render.TerminalWidth(os.Stdout)
		}
		return render.Packages(out, installed, format, width)
	},
}

func init() {
	listCmd.Flags().StringVarP(&outputFormat, "output", "o", string(render.FormatTable), "Output format (table, detail, json, yaml)")
}

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/provide-io/aipman/pkg/aip/lifecycle"
)

var (
	successColor = color.New(color.FgGreen)
	noticeColor  = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

func printError(w io.Writer, err error) {
	errorColor.Fprint(w, "Error: ")
	fmt.Fprintln(w, err)
}

// report prints the outcome of one orchestrator operation.
func report(w io.Writer, result lifecycle.Result) {
	pkg := result.Package
	switch result.Status {
	case lifecycle.StatusInstalled:
		successColor.Fprintf(w, "Installed %s %s\n", pkg.Name, pkg.Version)
	case lifecycle.StatusUpgraded:
		successColor.Fprintf(w, "Upgraded %s %s -> %s\n", pkg.Name, result.Previous.Version, pkg.Version)
	case lifecycle.StatusCurrent:
		noticeColor.Fprintf(w, "%s %s is already up to date\n", pkg.Name, pkg.Version)
	case lifecycle.StatusNotFound:
		noticeColor.Fprintf(w, "Package %s not found in the catalog\n", pkg.Name)
		if len(result.Suggestions) > 0 {
			fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(result.Suggestions, ", "))
		}
	case lifecycle.StatusNotInstalled:
		noticeColor.Fprintf(w, "Package %s is not installed\n", pkg.Name)
	case lifecycle.StatusDeclined:
		noticeColor.Fprintf(w, "Skipped %s\n", pkg.Name)
	case lifecycle.StatusRemoved:
		successColor.Fprintf(w, "Removed %s %s\n", pkg.Name, pkg.Version)
	}
}

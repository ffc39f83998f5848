// Package render prints package lists for the command line.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/provide-io/aipman/pkg/aip"
)

// Format selects how package lists are printed
type Format string

const (
	FormatTable  Format = "table"
	FormatDetail Format = "detail"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
)

// DefaultWidth is used when the output is not a terminal
const DefaultWidth = 100

const columnGap = 2

// Formats lists the accepted format names
func Formats() []string {
	return []string{string(FormatTable), string(FormatDetail), string(FormatJSON), string(FormatYAML)}
}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatDetail, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (want one of: %s)", s, strings.Join(Formats(), ", "))
}

// TerminalWidth returns the column count of f, or DefaultWidth when f is not
// a terminal.
func TerminalWidth(f *os.File) int {
	if f == nil {
		return DefaultWidth
	}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
		return width
	}
	return DefaultWidth
}

// Packages writes pkgs to w in format. width limits table rows; zero means
// unlimited.
func Packages(w io.Writer, pkgs []aip.Package, format Format, width int) error {
	if pkgs == nil {
		pkgs = []aip.Package{}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pkgs)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(pkgs); err != nil {
			return err
		}
		return enc.Close()
	case FormatDetail:
		for _, pkg := range pkgs {
			if err := Detail(w, pkg); err != nil {
				return err
			}
		}
		return nil
	case FormatTable, "":
		return table(w, pkgs, width)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// Detail writes one package as a labelled block.
func Detail(w io.Writer, pkg aip.Package) error {
	_, err := fmt.Fprintf(w, "Package:\n| Name: %s\n| Description: %s\n| Version: %s\n| Url: %s\n",
		pkg.Name, pkg.Description, pkg.Version, pkg.URL)
	return err
}

func table(w io.Writer, pkgs []aip.Package, width int) error {
	headers := [3]string{"NAME", "VERSION", "DESCRIPTION"}

	nameWidth := runewidth.StringWidth(headers[0])
	versionWidth := runewidth.StringWidth(headers[1])
	for _, pkg := range pkgs {
		nameWidth = max(nameWidth, runewidth.StringWidth(pkg.Name))
		versionWidth = max(versionWidth, runewidth.StringWidth(pkg.Version))
	}

	descWidth := 0
	if width > 0 {
		descWidth = max(width-nameWidth-versionWidth-2*columnGap, runewidth.StringWidth(headers[2]))
	}

	row := func(name, version, desc string) error {
		if descWidth > 0 {
			desc = runewidth.Truncate(desc, descWidth, "…")
		}
		line := runewidth.FillRight(name, nameWidth+columnGap) +
			runewidth.FillRight(version, versionWidth+columnGap) +
			desc
		_, err := fmt.Fprintln(w, strings.TrimRight(line, " "))
		return err
	}

	if err := row(headers[0], headers[1], headers[2]); err != nil {
		return err
	}
	for _, pkg := range pkgs {
		if err := row(pkg.Name, pkg.Version, pkg.Description); err != nil {
			return err
		}
	}
	return nil
}

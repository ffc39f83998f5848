package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/provide-io/aipman/pkg/aip"
)

var samplePackages = []aip.Package{
	{Name: "foo", Version: "2.0", Description: "A tool that does foo things very thoroughly", URL: "https://example.com/foo.AppImage"},
	{Name: "krita", Version: "5.2.1", Description: "Digital painting", URL: "https://example.com/krita.zip", Compressed: true},
}

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		input    string
		expected Format
	}{
		{"table", FormatTable},
		{"JSON", FormatJSON},
		{" yaml ", FormatYAML},
		{"yml", FormatYAML},
		{"detail", FormatDetail},
	}
	for _, tt := range testCases {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestTable(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Packages(&out, samplePackages, FormatTable, 0))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "NAME   VERSION  DESCRIPTION", lines[0])
	assert.Equal(t, "foo    2.0      A tool that does foo things very thoroughly", lines[1])
	assert.Equal(t, "krita  5.2.1    Digital painting", lines[2])
}

func TestTableTruncatesToWidth(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Packages(&out, samplePackages, FormatTable, 40))

	for _, line := range strings.Split(strings.TrimRight(out.String(), "\n"), "\n") {
		assert.LessOrEqual(t, runewidth.StringWidth(line), 40, line)
	}
	assert.Contains(t, out.String(), "…")
}

func TestJSONAndYAML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Packages(&out, samplePackages, FormatJSON, 0))
	var decoded []aip.Package
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, samplePackages, decoded)

	out.Reset()
	require.NoError(t, Packages(&out, samplePackages, FormatYAML, 0))
	decoded = nil
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, samplePackages, decoded)

	out.Reset()
	require.NoError(t, Packages(&out, nil, FormatJSON, 0))
	assert.Equal(t, "[]\n", out.String())
}

func TestDetail(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Packages(&out, samplePackages[:1], FormatDetail, 0))
	assert.Equal(t, "Package:\n| Name: foo\n| Description: A tool that does foo things very thoroughly\n| Version: 2.0\n| Url: https://example.com/foo.AppImage\n", out.String())
}

func TestTerminalWidthFallback(t *testing.T) {
	assert.Equal(t, DefaultWidth, TerminalWidth(nil))
}

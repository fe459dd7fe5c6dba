// Package output renders command results as tables, JSON, YAML or the
// plain-text reports of the stats package.
package output

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"

	"github.com/mieux-choisir/foodmap/pkg/errors"
)

// Format names an output encoding.
type Format string

// Output formats.
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatText  Format = "text"
)

// Formatter writes data in one format.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(io.Writer, any) error

// Format calls f.
func (f FormatterFunc) Format(w io.Writer, data any) error { return f(w, data) }

// Tabular is implemented by results that choose their own table rows.
type Tabular interface {
	Rows() (headers []string, rows [][]string)
}

// TextWriter is implemented by results with a plain-text report.
type TextWriter interface {
	WriteText(w io.Writer) error
}

// NewFormatter returns the formatter for format. Unknown formats render
// tables.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return FormatterFunc(writeJSON)
	case FormatYAML:
		return FormatterFunc(writeYAML)
	case FormatText:
		return FormatterFunc(writeText)
	default:
		return FormatterFunc(writeTable)
	}
}

// ParseFormat validates a format name. The empty name is accepted and
// means auto-detection.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML, FormatText, "":
		return f, nil
	}
	return "", errors.NewValidationError("format", s, "must be one of: table, json, yaml, text")
}

// DetectFormat returns explicit when set. Otherwise stdout on a terminal
// gets a table and pipes get JSON.
func DetectFormat(explicit string) Format {
	if explicit != "" {
		return Format(strings.ToLower(explicit))
	}
	fd := os.Stdout.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return FormatTable
	}
	return FormatJSON
}

// Print writes data to stdout.
func Print(format string, data any) error {
	return Write(os.Stdout, format, data)
}

// Write validates format and writes data to w.
func Write(w io.Writer, format string, data any) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	return NewFormatter(DetectFormat(string(f))).Format(w, data)
}

func writeJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func writeYAML(w io.Writer, data any) error {
	b, err := yaml.MarshalWithOptions(data, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return errors.WrapParse("yaml", "", err)
	}
	_, err = w.Write(b)
	return err
}

func writeText(w io.Writer, data any) error {
	if t, ok := data.(TextWriter); ok {
		return t.WriteText(w)
	}
	return writeTable(w, data)
}

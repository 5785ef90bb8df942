package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Formatter renders a batch of findings to a writer.
type Formatter interface {
	Format(w io.Writer, findings []Finding) error
}

// NewFormatter picks the formatter for the requested format; unknown
// formats fall back to text.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatSARIF:
		return &SARIFFormatter{}
	default:
		return &TextFormatter{}
	}
}

// TextFormatter prints one colored line per finding.
type TextFormatter struct{}

func (f *TextFormatter) Format(w io.Writer, findings []Finding) error {
	if len(findings) == 0 {
		fmt.Fprintln(w, "no findings")
		return nil
	}
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	for _, finding := range findings {
		fmt.Fprintf(w, "%s @%s: %s\n", yellow(finding.RuleID), green(finding.Function), finding.Message)
	}
	return nil
}

// JSONFormatter emits the findings as one JSON document.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, findings []Finding) error {
	results := map[string]interface{}{
		"result_set": findings,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

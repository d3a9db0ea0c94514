package diagnostic

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/twigls/pkg/position"
)

// Report is the diagnostics of one file.
type Report struct {
	URI         string       `json:"uri" yaml:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// Formatter formats diagnostics into different output formats
type Formatter interface {
	Format(reports []Report) ([]byte, error)
}

// NewFormatter returns the formatter registered under name.
func NewFormatter(name string, colored bool) (Formatter, error) {
	switch name {
	case "", "text":
		return &TextFormatter{Color: colored}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "yaml":
		return &YAMLFormatter{}, nil
	}
	return nil, errors.Errorf("unknown format %q", name)
}

type JSONFormatter struct{}

func (f *JSONFormatter) Format(reports []Report) ([]byte, error) {
	if reports == nil {
		reports = []Report{}
	}
	out, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return nil, errors.Errorf("encoding diagnostics: %w", err)
	}
	return append(out, '\n'), nil
}

type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(reports []Report) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(reports); err != nil {
		return nil, errors.Errorf("encoding diagnostics: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Errorf("encoding diagnostics: %w", err)
	}
	return buf.Bytes(), nil
}

// TextFormatter prints one compiler style line per diagnostic with 1-based
// line and column numbers.
type TextFormatter struct {
	Color bool
}

func (f *TextFormatter) Format(reports []Report) ([]byte, error) {
	severities := map[Severity]*color.Color{
		SeverityError:       color.New(color.FgRed, color.Bold),
		SeverityWarning:     color.New(color.FgYellow),
		SeverityInformation: color.New(color.FgBlue),
		SeverityHint:        color.New(color.FgCyan),
	}
	for _, c := range severities {
		if f.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var buf bytes.Buffer
	for _, report := range reports {
		path := position.PathFromURI(report.URI)
		for _, d := range report.Diagnostics {
			label := d.Severity.String()
			if c, ok := severities[d.Severity]; ok {
				label = c.Sprint(label)
			}
			fmt.Fprintf(&buf, "%s:%d:%d: %s: %s", path, d.Range.Start.Line+1, d.Range.Start.Character+1, label, d.Message)
			if d.Source != "" {
				fmt.Fprintf(&buf, " (%s)", d.Source)
			}
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}

package diagnostic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"gitlab.com/tozd/go/errors"
)

// Formatter formats diagnostics into different output formats
type Formatter interface {
	// Format formats diagnostics into a specific output format
	Format(diagnostics *Diagnostics) ([]byte, error)
}

// NewFormatter picks a formatter by name, "text" or "vscode".
func NewFormatter(name string, withColor bool) (Formatter, error) {
	switch name {
	case "", "text":
		return NewTextFormatter(withColor), nil
	case "vscode":
		return NewVSCodeFormatter(), nil
	}
	return nil, errors.Errorf("unknown format %q", name)
}

// VSCodeFormatter formats diagnostics into VSCode-compatible format
type VSCodeFormatter struct{}

// NewVSCodeFormatter creates a new VSCodeFormatter
func NewVSCodeFormatter() *VSCodeFormatter {
	return &VSCodeFormatter{}
}

type vscodePosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type vscodeRange struct {
	Start vscodePosition `json:"start"`
	End   vscodePosition `json:"end"`
}

type vscodeDiagnostic struct {
	Severity int         `json:"severity"`
	Message  string      `json:"message"`
	Source   string      `json:"source"`
	Code     string      `json:"code,omitempty"`
	File     string      `json:"file,omitempty"`
	Range    vscodeRange `json:"range"`
}

func vscodeSeverity(s DiagnosticSeverity) int {
	if s == Warning {
		return 2
	}
	return 1
}

// Format implements Formatter
func (f *VSCodeFormatter) Format(diagnostics *Diagnostics) ([]byte, error) {
	if diagnostics == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}

	// VSCode positions are 0-based
	result := []vscodeDiagnostic{}
	for _, d := range append(append([]Diagnostic{}, diagnostics.Errors...), diagnostics.Warnings...) {
		result = append(result, vscodeDiagnostic{
			Severity: vscodeSeverity(d.Severity),
			Message:  d.Message,
			Source:   "eqldoc",
			Code:     string(d.Category),
			File:     d.File,
			Range: vscodeRange{
				Start: vscodePosition{Line: max(d.Line-1, 0), Character: max(d.Column-1, 0)},
				End:   vscodePosition{Line: max(d.EndLine-1, 0), Character: max(d.EndCol-1, 0)},
			},
		})
	}

	return json.Marshal(result)
}

// TextFormatter prints one block per diagnostic in the compiler style
// "file:line:col: error[category]: message".
type TextFormatter struct {
	WithColor bool
}

func NewTextFormatter(withColor bool) *TextFormatter {
	return &TextFormatter{WithColor: withColor}
}

func (f *TextFormatter) paint(attr color.Attribute, s string) string {
	if !f.WithColor {
		return s
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(s)
}

// Format implements Formatter
func (f *TextFormatter) Format(diagnostics *Diagnostics) ([]byte, error) {
	if diagnostics == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}

	var buf bytes.Buffer
	write := func(d Diagnostic) {
		place := d.File
		if place == "" {
			place = "<build>"
		}
		if d.Line > 0 {
			place = fmt.Sprintf("%s:%d:%d", place, d.Line, d.Column)
		}

		attr := color.FgRed
		if d.Severity == Warning {
			attr = color.FgYellow
		}
		label := fmt.Sprintf("%s[%s]", d.Severity, d.Category)

		lines := strings.Split(d.Message, "\n")
		fmt.Fprintf(&buf, "%s: %s: %s\n", f.paint(color.Bold, place), f.paint(attr, label), lines[0])
		for _, l := range lines[1:] {
			if l == "" {
				buf.WriteString("\n")
				continue
			}
			fmt.Fprintf(&buf, "    %s\n", f.paint(color.Faint, l))
		}
	}

	for _, d := range diagnostics.Errors {
		write(d)
	}
	for _, d := range diagnostics.Warnings {
		write(d)
	}

	if n := diagnostics.Len(); n > 0 {
		fmt.Fprintf(&buf, "%s\n", f.paint(color.FgRed, fmt.Sprintf("%d problem(s) found", n)))
	}

	return buf.Bytes(), nil
}

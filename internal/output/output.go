// Package output renders consultation results and persona listings for the
// terminal. It supports text, JSON, and table formats.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bimmerbailey/soudan/internal/consult"
	"github.com/bimmerbailey/soudan/internal/prompt"
)

// Format represents an output format type.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// AnswerHeading introduces the answer in text mode.
const AnswerHeading = "LLMからの回答"

// ParseFormat converts a string to a Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}

// Writer handles writing formatted output.
type Writer struct {
	w      io.Writer
	format Format
	color  ColorMode
}

// New creates a new output Writer. Colors are auto-detected.
func New(w io.Writer, format Format) *Writer {
	return &Writer{w: w, format: format, color: ColorAuto}
}

// WithColor sets the color mode and returns the writer.
func (wr *Writer) WithColor(mode ColorMode) *Writer {
	wr.color = mode
	return wr
}

// WriteAnswer outputs a consultation answer in the configured format.
func (wr *Writer) WriteAnswer(a *consult.Answer) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(a)
	case FormatTable:
		return wr.writeAnswerTable(a)
	default:
		return wr.writeAnswerText(a)
	}
}

// WritePersonas outputs the selectable personas in the configured format.
func (wr *Writer) WritePersonas(opts []prompt.Option) error {
	switch wr.format {
	case FormatJSON:
		return wr.WriteJSON(opts)
	case FormatTable:
		return wr.writePersonasTable(opts)
	default:
		for _, o := range opts {
			if _, err := fmt.Fprintf(wr.w, "%s\t%s\n", o.ID, o.Label); err != nil {
				return err
			}
		}
		return nil
	}
}

// WriteWarning prints a user-facing warning, yellow on a terminal.
func (wr *Writer) WriteWarning(msg string) error {
	if wr.format == FormatJSON {
		return wr.WriteJSON(map[string]string{"warning": msg})
	}
	_, err := fmt.Fprintln(wr.w, Warning(msg, shouldColorize(wr.color, wr.w)))
	return err
}

// WriteFailure prints a user-facing error, red on a terminal.
func (wr *Writer) WriteFailure(msg string) error {
	if wr.format == FormatJSON {
		return wr.WriteJSON(map[string]string{"error": msg})
	}
	_, err := fmt.Fprintln(wr.w, Failure(msg, shouldColorize(wr.color, wr.w)))
	return err
}

// WriteStatus prints a progress line. JSON output stays machine-readable, so
// nothing is written in that format.
func (wr *Writer) WriteStatus(msg string) error {
	if wr.format == FormatJSON {
		return nil
	}
	_, err := fmt.Fprintln(wr.w, msg)
	return err
}

// WriteJSON outputs any value as indented JSON.
func (wr *Writer) WriteJSON(v any) error {
	enc := json.NewEncoder(wr.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func (wr *Writer) writeAnswerText(a *consult.Answer) error {
	colorize := shouldColorize(wr.color, wr.w)
	if _, err := fmt.Fprintf(wr.w, "%s\n\n", Heading(AnswerHeading, colorize)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(wr.w, a.Text)
	return err
}

func (wr *Writer) writeAnswerTable(a *consult.Answer) error {
	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	fmt.Fprintln(tw, "-----\t-----")
	fmt.Fprintf(tw, "ID\t%s\n", a.ID)
	fmt.Fprintf(tw, "PERSONA\t%s\n", a.Persona.Label())
	if a.Model != "" {
		fmt.Fprintf(tw, "MODEL\t%s\n", a.Model)
	}
	if a.Elapsed > 0 {
		fmt.Fprintf(tw, "ELAPSED\t%s\n", a.Elapsed.Round(time.Millisecond))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(wr.w, "\n%s\n", a.Text)
	return err
}

func (wr *Writer) writePersonasTable(opts []prompt.Option) error {
	tw := tabwriter.NewWriter(wr.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL")
	fmt.Fprintln(tw, "--\t-----")
	for _, o := range opts {
		fmt.Fprintf(tw, "%s\t%s\n", o.ID, o.Label)
	}
	return tw.Flush()
}

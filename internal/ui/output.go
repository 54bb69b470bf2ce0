package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Output handles styled terminal output.
type Output struct {
	out     io.Writer
	err     io.Writer
	noColor bool
}

// NewOutput creates a new Output instance writing to stdout and stderr.
func NewOutput() *Output {
	return &Output{out: os.Stdout, err: os.Stderr, noColor: os.Getenv("NO_COLOR") != ""}
}

// NewOutputTo creates an Output writing to the given writers without color.
func NewOutputTo(out, err io.Writer) *Output {
	return &Output{out: out, err: err, noColor: true}
}

// SetNoColor disables colored output.
func (o *Output) SetNoColor(v bool) {
	if v {
		o.noColor = true
	}
}

// Writer returns the standard output writer.
func (o *Output) Writer() io.Writer {
	return o.out
}

// Success prints a success message with a green checkmark.
func (o *Output) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if o.noColor {
		fmt.Fprintf(o.out, "OK %s\n", msg)
	} else {
		fmt.Fprintln(o.out, SuccessStyle.Render("✓")+" "+msg)
	}
}

// Error prints an error message with a red X.
func (o *Output) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if o.noColor {
		fmt.Fprintf(o.err, "FAIL %s\n", msg)
	} else {
		fmt.Fprintln(o.err, ErrorStyle.Render("✗")+" "+msg)
	}
}

// Warning prints a warning message with a yellow exclamation.
func (o *Output) Warning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if o.noColor {
		fmt.Fprintf(o.err, "WARN %s\n", msg)
	} else {
		fmt.Fprintln(o.err, WarningStyle.Render("!")+" "+msg)
	}
}

// Info prints an informational message.
func (o *Output) Info(format string, args ...any) {
	fmt.Fprintf(o.out, format+"\n", args...)
}

// Println prints a line to stdout.
func (o *Output) Println(format string, args ...any) {
	fmt.Fprintf(o.out, format+"\n", args...)
}

// Dim prints a de-emphasized line.
func (o *Output) Dim(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if o.noColor {
		fmt.Fprintln(o.out, msg)
	} else {
		fmt.Fprintln(o.out, DimStyle.Render(msg))
	}
}

// Title prints a section heading.
func (o *Output) Title(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if o.noColor {
		fmt.Fprintf(o.out, "\n%s\n", msg)
	} else {
		fmt.Fprintf(o.out, "\n%s\n", TitleStyle.Render(msg))
	}
}

// Box prints lines inside a rounded border.
func (o *Output) Box(lines []string) {
	content := strings.Join(lines, "\n")
	if o.noColor {
		fmt.Fprintln(o.out, content)
		return
	}
	fmt.Fprintln(o.out, BoxStyle.Render(content))
}

// Table prints a simple aligned table.
func (o *Output) Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(cells []string) {
		parts := make([]string, 0, len(widths))
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts = append(parts, fmt.Sprintf("%-*s", w, cell))
		}
		fmt.Fprintln(o.out, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	printRow(headers)
	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	printRow(seps)
	for _, row := range rows {
		printRow(row)
	}
}

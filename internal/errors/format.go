package errors

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
)

// style is an ANSI escape sequence.
type style string

const (
	styleReset   style = "\033[0m"
	styleError   style = "\033[1;31m"
	styleHeading style = "\033[1;37m"
	styleText    style = "\033[37m"
	styleCause   style = "\033[33m"
	styleHint    style = "\033[36m"
	styleMuted   style = "\033[90m"
	styleLink    style = "\033[34m"
)

// detailWidth is the column at which Detail text is wrapped.
const detailWidth = 70

var colorsOff atomic.Bool

// DisableColors turns off ANSI styling in Format and Fprint.
func DisableColors() {
	colorsOff.Store(true)
}

// EnableColors turns ANSI styling back on.
func EnableColors() {
	colorsOff.Store(false)
}

func paint(s style, text string) string {
	if colorsOff.Load() {
		return text
	}
	return string(s) + text + string(styleReset)
}

// Format renders e for a terminal: a header, then indented sections for
// detail, cause, hint, example and documentation link.
func (e *KireiError) Format() string {
	var b strings.Builder

	label := "ERROR: "
	if e.Code != "" {
		label = "ERROR " + e.Code + ": "
	}
	fmt.Fprintf(&b, "\n%s%s\n\n", paint(styleError, label), paint(styleText, e.Message))

	if lines := wrapText(e.Detail, detailWidth); len(lines) > 0 {
		writeIndented(&b, "  ", lines)
		b.WriteString("\n")
	}
	if e.Wrapped != nil {
		fmt.Fprintf(&b, "  %s%s\n\n", paint(styleCause, "Cause: "), e.Wrapped.Error())
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "  %s%s\n\n", paint(styleHint, "Hint: "), e.Suggestion)
	}
	if e.Example != "" {
		fmt.Fprintf(&b, "  %s\n", paint(styleHint, "Example:"))
		writeIndented(&b, "    ", strings.Split(e.Example, "\n"))
		b.WriteString("\n")
	}
	if e.DocURL != "" {
		fmt.Fprintf(&b, "  %s%s\n", paint(styleMuted, "Learn more: "), paint(styleLink, e.DocURL))
	}

	return b.String()
}

func writeIndented(b *strings.Builder, indent string, lines []string) {
	for _, line := range lines {
		b.WriteString(indent)
		b.WriteString(line)
		b.WriteString("\n")
	}
}

// FormatCompact renders e on one line: "CODE: message (detail)".
func (e *KireiError) FormatCompact() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// wrapText greedily packs the words of text into lines of at most width
// columns. A single word longer than width gets a line of its own.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	lines := []string{words[0]}
	for _, word := range words[1:] {
		last := &lines[len(lines)-1]
		if len(*last)+1+len(word) > width {
			lines = append(lines, word)
			continue
		}
		*last += " " + word
	}
	return lines
}

// PrintError prints a formatted error to stderr.
func PrintError(err error) {
	Fprint(os.Stderr, err)
}

// Fprint writes err to w, using Format for a *KireiError.
func Fprint(w io.Writer, err error) {
	if ke, ok := err.(*KireiError); ok {
		fmt.Fprint(w, ke.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", paint(styleError, "ERROR:"), err.Error())
}

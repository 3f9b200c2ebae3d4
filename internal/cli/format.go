// Package cli provides shared formatting helpers for CLI output.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/codigovinario/vinario/internal/render"
	"github.com/codigovinario/vinario/internal/review"
)

// ANSI color constants.
const (
	Green = "\033[32m"
	Wine  = "\033[38;5;89m"
	Dim   = "\033[2m"
	Bold  = "\033[1m"
	Reset = "\033[0m"
)

// Box width is the inner content width (between the border characters).
const boxWidth = 40

// Margin is the left indent for all branded output.
const margin = "  "

// ShortenHome replaces $HOME prefix with ~.
func ShortenHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}

// FormatNumber adds comma separators (1234 -> "1,234").
func FormatNumber(n int) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return FormatNumber(n/1000) + "," + fmt.Sprintf("%03d", n%1000)
}

// Header prints a small heavy-border box with a title. Used by `vinario serve`.
func Header(w io.Writer, title string) {
	fmt.Fprintln(w)
	heavyTop := margin + "\u250f" + strings.Repeat("\u2501", boxWidth) + "\u2513"
	heavyBottom := margin + "\u2517" + strings.Repeat("\u2501", boxWidth) + "\u251b"

	padded := padRight("  "+title, boxWidth)

	fmt.Fprintf(w, "%s%s%s\n", Wine, heavyTop, Reset)
	fmt.Fprintf(w, "%s%s\u2503%s\u2503%s\n", Wine, margin, padded, Reset)
	fmt.Fprintf(w, "%s%s%s\n", Wine, heavyBottom, Reset)
}

// Box prints a light-border box around content lines.
func Box(w io.Writer, lines []string) {
	lightTop := margin + "\u250c" + strings.Repeat("\u2500", boxWidth) + "\u2510"
	lightBottom := margin + "\u2514" + strings.Repeat("\u2500", boxWidth) + "\u2518"

	fmt.Fprintln(w, lightTop)
	for _, line := range lines {
		fmt.Fprintf(w, "%s\u2502%s\u2502\n", margin, padRight("  "+line, boxWidth))
	}
	fmt.Fprintln(w, lightBottom)
}

// CountLine is the listing's "Mostrando N de M" line.
func CountLine(visible, total int) string {
	return fmt.Sprintf("Mostrando %s de %s", FormatNumber(visible), FormatNumber(total))
}

// ReviewTable writes one aligned row per review: score, date, title and
// byline. Unscored reviews show a dash.
func ReviewTable(w io.Writer, reviews []review.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PUNTAJE\tFECHA\tTÍTULO\tBODEGA · UVA · REGIÓN\tSLUG")
	for _, r := range reviews {
		score := render.Score(r)
		if score == "" {
			score = "-"
		}
		date := r.Date
		if date == "" {
			date = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", score, date, r.Title, render.Byline(r), r.Slug)
	}
	return tw.Flush()
}

// padRight pads s with spaces to exactly width characters.
// If s is longer than width, it is truncated.
func padRight(s string, width int) string {
	n := runeLen(s)
	if n >= width {
		r := []rune(s)
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-n)
}

// runeLen counts the display width in runes.
func runeLen(s string) int {
	return len([]rune(s))
}

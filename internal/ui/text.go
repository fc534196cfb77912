// Package ui holds terminal presentation helpers: semantic text formatters
// and the progress spinner.
package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter applies semantic formatting to text.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

// Sprint formats the arguments and returns the resulting string.
func (f Formatter) Sprint(a ...interface{}) string {
	text := fmt.Sprint(a...)
	if NoColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// Sprintf formats according to a format specifier and returns the resulting string.
func (f Formatter) Sprintf(format string, a ...interface{}) string {
	return f.Sprint(fmt.Sprintf(format, a...))
}

// NoColor reports whether color output is disabled, either through NO_COLOR,
// --no-color or fatih/color's own terminal detection.
func NoColor() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

// DisableColor turns off color for the rest of the process.
func DisableColor() {
	color.NoColor = true
}

var (
	// Code formats runnable commands. Yellow with color, `backticks` without.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	// Path formats file paths.
	Path = Formatter{color.New(color.FgYellow), "", ""}

	// Key formats secret keys and names.
	Key = Formatter{color.New(color.FgCyan, color.Bold), "", ""}

	// Added formats additions and success markers.
	Added = Formatter{color.New(color.FgGreen), "", ""}

	// Changed formats modifications and warnings.
	Changed = Formatter{color.New(color.FgYellow), "", ""}

	// Removed formats removals and failures.
	Removed = Formatter{color.New(color.FgRed), "", ""}

	// Muted formats secondary text. Gray with color, (parentheses) without.
	Muted = Formatter{color.New(color.FgHiBlack), "(", ")"}
)

// Package prompt reads answers for the interactive setup wizard.
package prompt

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when input ends before an answer is given.
var ErrNoInput = errors.New("no input available")

// maxAttempts bounds re-prompting after invalid answers.
const maxAttempts = 3

// Prompter asks questions on out and reads answers from in.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	passFd int
}

// New creates a Prompter. Passwords are read with echo disabled when in is a
// terminal; otherwise they are read as plain lines.
func New(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, passFd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.passFd = int(f.Fd())
	}
	return p
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Input asks for a line of text. An empty answer takes def. When validate
// is set, invalid answers are reported and asked again.
func (p *Prompter) Input(label, def string, validate func(string) error) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if def != "" {
			fmt.Fprintf(p.out, "? %s (%s): ", label, def)
		} else {
			fmt.Fprintf(p.out, "? %s: ", label)
		}

		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			answer = def
		}
		if validate == nil {
			return answer, nil
		}
		if err := validate(answer); err != nil {
			fmt.Fprintf(p.out, "  %s\n", err)
			continue
		}
		return answer, nil
	}
	return "", fmt.Errorf("too many invalid answers for %q", label)
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		fmt.Fprintf(p.out, "? %s (%s): ", label, hint)
		answer, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "  Please answer y or n")
	}
	return false, fmt.Errorf("too many invalid answers for %q", label)
}

// Select asks the user to pick one of options by number and returns its
// index. An empty answer takes def.
func (p *Prompter) Select(label string, options []string, def int) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("no options to choose from for %q", label)
	}
	if def < 0 || def >= len(options) {
		def = 0
	}

	fmt.Fprintf(p.out, "? %s\n", label)
	for i, opt := range options {
		marker := " "
		if i == def {
			marker = ">"
		}
		fmt.Fprintf(p.out, "  %s %d) %s\n", marker, i+1, opt)
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		fmt.Fprintf(p.out, "  Choose 1-%d (%d): ", len(options), def+1)
		answer, err := p.readLine()
		if err != nil {
			return -1, err
		}
		if answer == "" {
			return def, nil
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		// Accept the option text itself.
		for i, opt := range options {
			if strings.EqualFold(opt, answer) {
				return i, nil
			}
		}
		fmt.Fprintf(p.out, "  Please enter a number between 1 and %d\n", len(options))
	}
	return -1, fmt.Errorf("too many invalid answers for %q", label)
}

// Password asks for a secret without echoing it. The caller owns the
// returned slice and should wipe it after use.
func (p *Prompter) Password(label string) ([]byte, error) {
	fmt.Fprintf(p.out, "? %s: ", label)

	if p.passFd >= 0 {
		secret, err := term.ReadPassword(p.passFd)
		fmt.Fprintln(p.out)
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
		return bytes.TrimSpace(secret), nil
	}

	line, err := p.in.ReadBytes('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoInput
		}
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return bytes.TrimSpace(line), nil
}

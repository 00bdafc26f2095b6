// Package prompt provides interactive prompts for the fmelink CLI.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/fmelink-dev/fmelink/internal/output"
)

// errCanceled marks a prompt the user aborted.
var errCanceled = errors.New("prompt canceled")

// IsCanceled reports whether err is a user-aborted prompt.
func IsCanceled(err error) bool {
	return errors.Is(err, errCanceled)
}

// Prompter handles interactive prompts.
type Prompter struct {
	out    *output.Writer
	reader *bufio.Reader
}

// New creates a new Prompter reading from stdin.
func New(out *output.Writer) *Prompter {
	return &Prompter{
		out:    out,
		reader: bufio.NewReader(os.Stdin),
	}
}

// NewWithReader creates a Prompter reading from r, used by tests.
func NewWithReader(out *output.Writer, r io.Reader) *Prompter {
	return &Prompter{
		out:    out,
		reader: bufio.NewReader(r),
	}
}

// CanPrompt returns true if interactive prompts are available.
func (p *Prompter) CanPrompt() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && !p.out.NoInput
}

// Input prompts for a single line of input with an optional default.
func (p *Prompter) Input(label, defaultValue string) (string, error) {
	if defaultValue != "" {
		p.out.Print("%s [%s]: ", label, defaultValue)
	} else {
		p.out.Print("%s: ", label)
	}

	input, err := p.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue, nil
	}

	return input, nil
}

// Confirm prompts for a yes/no confirmation.
func (p *Prompter) Confirm(message string, defaultValue bool) (bool, error) {
	defaultStr := "y/N"
	if defaultValue {
		defaultStr = "Y/n"
	}

	p.out.Print("%s [%s]: ", message, defaultStr)

	input, err := p.reader.ReadString('\n')
	if err != nil {
		return defaultValue, fmt.Errorf("failed to read input: %w", err)
	}

	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return defaultValue, nil
	}

	return input == "y" || input == "yes", nil
}

// Token prompts for an API token with hidden input.
func (p *Prompter) Token(prompt string) (string, error) {
	p.out.Print("%s: ", prompt)

	token, err := term.ReadPassword(int(os.Stdin.Fd()))
	p.out.Println() // newline after the hidden input

	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	return strings.TrimSpace(string(token)), nil
}

// Select prompts the user to select from a list of options and returns
// the chosen index.
func (p *Prompter) Select(message string, options []string) (int, error) {
	p.out.Println(message)
	for i, opt := range options {
		p.out.Print("  [%d] %s\n", i+1, opt)
	}
	p.out.Println()

	for {
		p.out.Print("Select [1-%d]: ", len(options))

		input, err := p.reader.ReadString('\n')
		if err != nil {
			return -1, fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.EqualFold(input, "q") {
			return -1, errCanceled
		}

		num, err := strconv.Atoi(input)
		if err != nil || num < 1 || num > len(options) {
			p.out.Warning("Invalid selection. Please enter a number between 1 and %d", len(options))
			continue
		}

		return num - 1, nil
	}
}

// SelectRepository prompts the user to pick a repository from the loaded
// list. The current selection, when present in the list, becomes the
// default on an empty answer.
func (p *Prompter) SelectRepository(repos []string, current string) (string, error) {
	p.out.Println()
	p.out.Print("Available repositories:\n\n")

	defaultIdx := -1

	for i, name := range repos {
		marker := ""
		if name == current {
			marker = "(current)"
			defaultIdx = i
		}

		p.out.Print("  [%d] %-24s %s\n", i+1, name, marker)
	}

	p.out.Println()

	for {
		if defaultIdx >= 0 {
			p.out.Print("Select repository [1-%d, default %d]: ", len(repos), defaultIdx+1)
		} else {
			p.out.Print("Select repository [1-%d]: ", len(repos))
		}

		input, err := p.reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			if defaultIdx >= 0 {
				return repos[defaultIdx], nil
			}

			continue
		}

		num, err := strconv.Atoi(input)
		if err != nil || num < 1 || num > len(repos) {
			p.out.Warning("Invalid selection. Please enter a number between 1 and %d", len(repos))
			continue
		}

		return repos[num-1], nil
	}
}

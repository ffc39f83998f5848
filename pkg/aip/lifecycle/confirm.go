package lifecycle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirmer decides whether a mutating step may proceed.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// AlwaysYes approves every step without asking.
type AlwaysYes struct{}

// Confirm implements Confirmer.
func (AlwaysYes) Confirm(string) (bool, error) {
	return true, nil
}

// Prompter asks on out and reads a y/N answer from in. Anything other than
// "y" or "yes" declines, including end of input.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a Prompter. The reader is buffered once so several
// questions can be answered from the same piped input.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Confirm implements Confirmer.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N] ", question)

	input, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read input: %w", err)
	}
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out)
	}

	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes", nil
}

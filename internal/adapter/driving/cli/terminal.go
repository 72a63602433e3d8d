package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/ericfisherdev/detectpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Interaction = (*Terminal)(nil)

// Terminal implements the Interaction port on a line-oriented terminal.
// Dialogs read from in; success and info notices go to out, errors to errOut.
type Terminal struct {
	in     *bufio.Reader
	inFile *os.File // set when in is a real file, for hidden password input
	out    io.Writer
	errOut io.Writer

	assumeYes bool
	answers   []string
}

// NewTerminal creates a Terminal over the given streams.
func NewTerminal(in io.Reader, out, errOut io.Writer) *Terminal {
	t := &Terminal{
		in:     bufio.NewReader(in),
		out:    out,
		errOut: errOut,
	}
	if f, ok := in.(*os.File); ok {
		t.inFile = f
	}
	return t
}

// AssumeYes makes every confirmation succeed without asking.
func (t *Terminal) AssumeYes() {
	t.assumeYes = true
}

// Answer queues an answer for the next prompt, so a flag can stand in for
// interactive input.
func (t *Terminal) Answer(answer string) {
	t.answers = append(t.answers, answer)
}

// Confirm asks a yes/no question. Anything but "y" or "yes" is a no.
func (t *Terminal) Confirm(_ context.Context, question string) (bool, error) {
	if t.assumeYes {
		return true, nil
	}
	fmt.Fprintf(t.out, "%s [y/N]: ", question)
	line, ok, err := t.readLine()
	if err != nil || !ok {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Prompt asks for a line of text. End of input counts as cancel.
func (t *Terminal) Prompt(_ context.Context, question string) (string, bool, error) {
	if len(t.answers) > 0 {
		answer := t.answers[0]
		t.answers = t.answers[1:]
		return answer, true, nil
	}
	fmt.Fprintf(t.out, "%s ", question)
	return t.readLine()
}

// ReadSecret asks for a line without echo when in is a terminal.
func (t *Terminal) ReadSecret(question string) (string, error) {
	fmt.Fprintf(t.out, "%s ", question)
	if t.inFile != nil && term.IsTerminal(int(t.inFile.Fd())) {
		b, err := term.ReadPassword(int(t.inFile.Fd()))
		fmt.Fprintln(t.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	line, _, err := t.readLine()
	return line, err
}

// Notify prints a notice. Errors go to errOut.
func (t *Terminal) Notify(_ context.Context, n driven.Notice) {
	if n.Level == driven.NoticeError {
		fmt.Fprintln(t.errOut, "Error: "+n.Message)
		return
	}
	fmt.Fprintln(t.out, n.Message)
}

// readLine returns ok=false at end of input with nothing read.
func (t *Terminal) readLine() (string, bool, error) {
	line, err := t.in.ReadString('\n')
	if errors.Is(err, io.EOF) {
		if line == "" {
			return "", false, nil
		}
		err = nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), true, nil
}

// Where: internal/interaction/interaction.go
// What: Interactive primitives for CLI prompts and TTY detection.
// Why: Keep destructive commands from prompting when stdin is not a terminal.
package interaction

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ErrNotInteractive is returned when a confirmation is needed but no
// terminal is attached.
var ErrNotInteractive = errors.New("confirmation required but stdin is not a terminal (use --yes)")

// Prompter asks the user to confirm an action.
type Prompter interface {
	Confirm(title, description string) (bool, error)
}

// IsTerminal reports whether the file refers to a terminal device.
var IsTerminal = func(file *os.File) bool {
	if file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// LinePrompter reads a y/N answer from In, for terminals huh cannot drive.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer
}

func (p LinePrompter) Confirm(title, description string) (bool, error) {
	in := p.In
	if in == nil {
		in = os.Stdin
	}
	out := p.Out
	if out == nil {
		out = os.Stderr
	}
	if description != "" {
		fmt.Fprintln(out, description)
	}
	fmt.Fprintf(out, "%s [y/N]: ", title)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	trimmed := strings.TrimSpace(strings.ToLower(line))
	return trimmed == "y" || trimmed == "yes", nil
}

// ConfirmOrRefuse skips the prompt when assumeYes is set and refuses with
// ErrNotInteractive when stdin is not a terminal.
func ConfirmOrRefuse(p Prompter, assumeYes bool, title, description string) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if p == nil || !IsTerminal(os.Stdin) {
		return false, ErrNotInteractive
	}
	return p.Confirm(title, description)
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/calvinalkan/batchsync/internal/syncer"
)

// ErrNoInput is returned when --confirm is used without an input stream.
var ErrNoInput = errors.New("--confirm needs an input stream")

type prompter interface {
	Prompt(prompt string) (string, error)
}

// newPrompter uses liner when reading from the process terminal and a plain
// line reader otherwise. The returned func releases the terminal.
func newPrompter(stdin io.Reader, out io.Writer) (prompter, func(), error) {
	if stdin == nil {
		return nil, nil, ErrNoInput
	}

	if f, ok := stdin.(*os.File); ok && f == os.Stdin && liner.TerminalSupported() {
		state := liner.NewLiner()
		state.SetCtrlCAborts(true)

		return state, func() { _ = state.Close() }, nil
	}

	return &linePrompter{r: bufio.NewReader(stdin), out: out}, func() {}, nil
}

type linePrompter struct {
	r   *bufio.Reader
	out io.Writer
}

func (p *linePrompter) Prompt(prompt string) (string, error) {
	_, _ = io.WriteString(p.out, prompt)

	line, err := p.r.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// promptConfirmer asks before each write. End of input and Ctrl-C quit.
type promptConfirmer struct {
	p prompter
	o *IO
}

func (c *promptConfirmer) Confirm(slug, title string) (syncer.Decision, error) {
	prompt := fmt.Sprintf("  Write %s (%s)? [y]es/[n]o/[a]ll/[q]uit: ", slug, title)

	for {
		answer, err := c.p.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return syncer.Quit, nil
		}

		if err != nil {
			return syncer.Quit, fmt.Errorf("reading input: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return syncer.Yes, nil
		case "n", "no":
			return syncer.No, nil
		case "a", "all":
			return syncer.All, nil
		case "q", "quit":
			return syncer.Quit, nil
		default:
			c.o.Println("  Please answer y, n, a or q.")
		}
	}
}

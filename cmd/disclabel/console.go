package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-isatty"
)

type lineResult struct {
	line string
	err  error
}

// terminalConsole prompts on out and reads answers from in. Reads happen on a
// single background goroutine so a cancelled prompt never races the next one.
type terminalConsole struct {
	in          io.Reader
	out         io.Writer
	interactive bool

	startOnce sync.Once
	lines     chan lineResult

	mu  sync.Mutex
	err error
}

func newTerminalConsole(in io.Reader, out io.Writer) *terminalConsole {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &terminalConsole{
		in:          in,
		out:         out,
		interactive: isInteractive(in),
		lines:       make(chan lineResult),
	}
}

// isInteractive reports false for a stdin that is a pipe or regular file.
// Readers that are not files are scripted input and count as interactive.
func isInteractive(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return true
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c *terminalConsole) Interactive() bool {
	return c.interactive
}

func (c *terminalConsole) ReadLine(ctx context.Context, prompt string) (string, error) {
	if !c.interactive {
		return "", io.EOF
	}
	c.mu.Lock()
	err := c.err
	c.mu.Unlock()
	if err != nil {
		return "", err
	}

	c.startOnce.Do(func() { go c.readLoop() })
	fmt.Fprint(c.out, prompt)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-c.lines:
		if res.err != nil {
			c.mu.Lock()
			c.err = res.err
			c.mu.Unlock()
			if res.line == "" {
				return "", res.err
			}
		}
		return strings.TrimRight(res.line, "\r\n"), nil
	}
}

func (c *terminalConsole) readLoop() {
	reader := bufio.NewReader(c.in)
	for {
		line, err := reader.ReadString('\n')
		c.lines <- lineResult{line: line, err: err}
		if err != nil {
			return
		}
	}
}

func (c *terminalConsole) Println(line string) {
	fmt.Fprintln(c.out, line)
}

type systemClipboard struct{}

func (systemClipboard) ReadClipboard() (string, error) {
	if clipboard.Unsupported {
		return "", errors.New("clipboard unsupported on this system")
	}
	return clipboard.ReadAll()
}

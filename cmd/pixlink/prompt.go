package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

type lineResult struct {
	line string
	err  error
}

// prompter reads answers from one long-lived reader goroutine so a pending
// read never blocks cancellation.
type prompter struct {
	out   io.Writer
	lines chan lineResult
	in    *bufio.Reader
	once  sync.Once
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{
		out:   out,
		in:    bufio.NewReader(in),
		lines: make(chan lineResult),
	}
}

func (p *prompter) ask(ctx context.Context, label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)

	p.once.Do(func() { go p.readLoop() })

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	case r := <-p.lines:
		return strings.TrimSpace(r.line), r.err
	}
}

// askDefault returns current when it is already set.
func (p *prompter) askDefault(ctx context.Context, label, current string) (string, error) {
	if strings.TrimSpace(current) != "" {
		return current, nil
	}
	return p.ask(ctx, label)
}

func (p *prompter) confirm(ctx context.Context, label string) (bool, error) {
	answer, err := p.ask(ctx, label+" [s/N]")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "s", "sim", "y", "yes":
		return true, nil
	}
	return false, nil
}

func (p *prompter) readLoop() {
	for {
		line, err := p.in.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			// every later ask sees the same error
			for {
				p.lines <- lineResult{err: err}
			}
		}
		p.lines <- lineResult{line: line}
	}
}

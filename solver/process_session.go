package solver

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "solver")

// ProcessSession drives a real SMT solver binary as a subprocess, piping
// line-oriented SMT-LIB2 text over its stdin and reading responses off its
// stdout. Every public method takes procMu before touching the pipes, so
// calls from different goroutines serialize exactly like the single-writer
// discipline spec'd for the solver protocol.
type ProcessSession struct {
	procMu sync.Mutex

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	closed bool
}

// NewProcessSession launches cmdPath with args and wires its stdio pipes.
// The solver is expected to speak the SMT-LIB2 interactive protocol
// (one response line, or one parenthesized s-expression, per command).
func NewProcessSession(ctx context.Context, cmdPath string, args ...string) (*ProcessSession, error) {
	cmd := exec.CommandContext(ctx, cmdPath, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(err, "opening solver stdin")
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "opening solver stdout")
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "starting solver %q", cmdPath)
	}
	log.WithFields(logrus.Fields{"cmd": cmdPath, "args": args}).Info("solver process started")
	return &ProcessSession{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}, nil
}

func (p *ProcessSession) writeLine(text string) error {
	if _, err := io.WriteString(p.stdin, text+"\n"); err != nil {
		return errors.Wrap(err, "writing to solver")
	}
	return nil
}

// readSExpr reads one balanced-parenthesis response, or a single bare token
// line (e.g. "sat"), whichever the solver sends next.
func (p *ProcessSession) readSExpr() (string, error) {
	var buf strings.Builder
	depth := 0
	started := false
	for {
		b, err := p.stdout.ReadByte()
		if err != nil {
			return "", errors.Wrap(err, "reading from solver")
		}
		switch b {
		case '(':
			depth++
			started = true
			buf.WriteByte(b)
		case ')':
			depth--
			buf.WriteByte(b)
			if depth == 0 {
				return buf.String(), nil
			}
		case '\n', '\r', ' ', '\t':
			if !started {
				continue
			}
			if depth == 0 {
				return buf.String(), nil
			}
			buf.WriteByte(b)
		default:
			started = true
			buf.WriteByte(b)
		}
	}
}

func (p *ProcessSession) Write(ctx context.Context, text string) error {
	p.procMu.Lock()
	defer p.procMu.Unlock()
	return p.writeLine(text)
}

func (p *ProcessSession) CheckSat(ctx context.Context) (SatResult, error) {
	p.procMu.Lock()
	defer p.procMu.Unlock()
	if err := p.writeLine("(check-sat)"); err != nil {
		return Unknown, err
	}
	resp, err := p.readSExpr()
	if err != nil {
		return Unknown, err
	}
	switch strings.TrimSpace(resp) {
	case "sat":
		return Sat, nil
	case "unsat":
		return Unsat, nil
	default:
		return Unknown, nil
	}
}

func (p *ProcessSession) Push(ctx context.Context, n int) error {
	p.procMu.Lock()
	defer p.procMu.Unlock()
	return p.writeLine(fmt.Sprintf("(push %d)", n))
}

func (p *ProcessSession) Pop(ctx context.Context, n int) error {
	p.procMu.Lock()
	defer p.procMu.Unlock()
	return p.writeLine(fmt.Sprintf("(pop %d)", n))
}

func (p *ProcessSession) Get(ctx context.Context, expr string) (string, error) {
	p.procMu.Lock()
	defer p.procMu.Unlock()
	if err := p.writeLine(fmt.Sprintf("(get-value (%s))", expr)); err != nil {
		return "", err
	}
	resp, err := p.readSExpr()
	if err != nil {
		return "", err
	}
	return parseGetValueSingle(resp)
}

func (p *ProcessSession) GetList(ctx context.Context, exprs []string) ([]string, error) {
	p.procMu.Lock()
	defer p.procMu.Unlock()
	if err := p.writeLine(fmt.Sprintf("(get-value (%s))", strings.Join(exprs, " "))); err != nil {
		return nil, err
	}
	resp, err := p.readSExpr()
	if err != nil {
		return nil, err
	}
	return parseGetValueList(resp, len(exprs))
}

// Close always sends (exit) and waits for the child, on every call, even
// if a previous command already failed; a half-closed solver process left
// behind after a failed check would otherwise leak across windows.
func (p *ProcessSession) Close() error {
	p.procMu.Lock()
	defer p.procMu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	writeErr := p.writeLine("(exit)")
	_ = p.stdin.Close()
	waitErr := p.cmd.Wait()
	if writeErr != nil {
		return errors.Wrap(writeErr, "sending exit to solver")
	}
	if waitErr != nil {
		return errors.Wrap(waitErr, "waiting for solver to exit")
	}
	return nil
}

// parseGetValueSingle extracts the single value from a
// "((expr value))"-shaped get-value response.
func parseGetValueSingle(resp string) (string, error) {
	vals, err := parseGetValueList(resp, 1)
	if err != nil {
		return "", err
	}
	return vals[0], nil
}

// parseGetValueList splits a "((e1 v1) (e2 v2) ...)" response into its
// value tokens, tolerating nested-parenthesis values (e.g. bit-vector
// literals like "#b0110" need no nesting, but "(_ bv3 8)" does).
func parseGetValueList(resp string, want int) ([]string, error) {
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "(")
	resp = strings.TrimSuffix(resp, ")")

	var vals []string
	depth := 0
	start := -1
	for i := 0; i < len(resp); i++ {
		switch resp[i] {
		case '(':
			if depth == 0 {
				start = i
			}
			depth++
		case ')':
			depth--
			if depth == 0 {
				pair := resp[start+1 : i]
				val, err := splitPairValue(pair)
				if err != nil {
					return nil, err
				}
				vals = append(vals, val)
			}
		}
	}
	if len(vals) != want {
		return nil, fmt.Errorf("get-value: expected %d values, got %d in %q", want, len(vals), resp)
	}
	return vals, nil
}

// splitPairValue splits one "expr value" pair on its top-level boundary:
// the value is everything after the first top-level space that is not
// nested inside the expression's own parentheses or a |quoted| symbol.
func splitPairValue(pair string) (string, error) {
	depth := 0
	quoted := false
	for i := 0; i < len(pair); i++ {
		switch pair[i] {
		case '|':
			quoted = !quoted
		case '(':
			depth++
		case ')':
			depth--
		case ' ':
			if depth == 0 && !quoted {
				return strings.TrimSpace(pair[i+1:]), nil
			}
		}
	}
	return "", fmt.Errorf("malformed get-value pair %q", pair)
}

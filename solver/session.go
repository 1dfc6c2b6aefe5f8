// Package solver is the external-solver collaborator (C3): it owns the
// single subprocess handle, writes declarations and assertions, runs
// check-sat queries, and reads back models. Every other package treats it
// as a write-once, serialized text channel — no package outside solver is
// allowed to reason about the child process directly.
package solver

import "context"

// SatResult is the three-valued answer to a check-sat query.
type SatResult int

const (
	Unknown SatResult = iota
	Sat
	Unsat
)

func (r SatResult) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	default:
		return "unknown"
	}
}

// Session is the C3 contract. The driver must not assume commutativity of
// declarations: every declare-fun must precede any assertion referencing
// it, and on any Get* call the session returns values consistent with the
// last CheckSat answer within the current push/pop scope. Implementations
// must serialize every method against the others — at most one command is
// ever in flight.
type Session interface {
	// Write sends raw solver text (a declaration or assertion) verbatim.
	Write(ctx context.Context, text string) error
	// CheckSat issues (check-sat) and classifies the response.
	CheckSat(ctx context.Context) (SatResult, error)
	// Push opens n nested assertion scopes.
	Push(ctx context.Context, n int) error
	// Pop closes n nested assertion scopes.
	Pop(ctx context.Context, n int) error
	// Get evaluates a single expression against the last sat model.
	Get(ctx context.Context, expr string) (string, error)
	// GetList evaluates multiple expressions in one round trip.
	GetList(ctx context.Context, exprs []string) ([]string, error)
	// Close sends a shutdown command and waits for the subprocess to exit.
	// It must run to completion on every return path, sat or not.
	Close() error
}

// Package prover is the verification core: the BMC driver (C5), the
// temporal-induction driver (C6), and the counterexample-attribution
// walks (C8 assertion locator, C9 free-value reporter) that run once a
// driver's check-sat call comes back sat.
package prover

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/offchainlabs/smtbmc/constraint"
	"github.com/offchainlabs/smtbmc/modelinfo"
	"github.com/offchainlabs/smtbmc/solver"
)

var log = logrus.WithField("prefix", "prover")

// FrameExpr renders the solver frame variable name for an absolute step.
func FrameExpr(step int) string { return fmt.Sprintf("s%d", step) }

// frames tracks which steps have already been declared to the solver, so
// a driver never re-declares or re-asserts a frame it has already built.
// Invariant: every declared step is fully constrained (u, h, transition-or-
// initial, assumptions) before DeclareInitial, DeclareForward,
// DeclareBackwardBad or DeclareBackwardGood returns.
type frames struct {
	module string
	acc    modelinfo.Accessor
	res    *constraint.Resolver
	db     *constraint.Database

	declared map[int]bool
}

func newFrames(module string, acc modelinfo.Accessor, res *constraint.Resolver, db *constraint.Database) *frames {
	return &frames{module: module, acc: acc, res: res, db: db, declared: make(map[int]bool)}
}

func (f *frames) isDeclared(step int) bool { return f.declared[step] }

// declareBase writes the declare-fun, well-formedness, and hierarchy
// predicates common to every frame, plus its assumption conjunction.
func (f *frames) declareBase(ctx context.Context, sess solver.Session, step int) error {
	s := FrameExpr(step)
	if err := sess.Write(ctx, fmt.Sprintf("(declare-fun %s () %s_s)", s, f.module)); err != nil {
		return errors.Wrapf(err, "declaring frame %d", step)
	}
	if err := sess.Write(ctx, fmt.Sprintf("(assert %s)", f.acc.WellFormed(f.module, s))); err != nil {
		return errors.Wrapf(err, "asserting well-formedness at frame %d", step)
	}
	if err := sess.Write(ctx, fmt.Sprintf("(assert %s)", f.acc.Hier(f.module, s))); err != nil {
		return errors.Wrapf(err, "asserting hierarchy at frame %d", step)
	}
	if err := f.assertAssumes(ctx, sess, step); err != nil {
		return err
	}
	f.declared[step] = true
	return nil
}

func (f *frames) assertAssumes(ctx context.Context, sess solver.Session, step int) error {
	for _, c := range f.db.AssumesAt(constraint.StepKey(fmt.Sprintf("%d", step))) {
		expr, err := f.res.Resolve(c.Expr, step)
		if err != nil {
			return errors.Wrapf(err, "resolving assume at %s", c.Source)
		}
		if err := sess.Write(ctx, fmt.Sprintf("(assert %s)", expr)); err != nil {
			return errors.Wrapf(err, "asserting assume at %s", c.Source)
		}
	}
	return nil
}

// DeclareInitial declares step 0 as the BMC initial frame: i(s0) and is(s0).
func (f *frames) DeclareInitial(ctx context.Context, sess solver.Session) error {
	if f.isDeclared(0) {
		return nil
	}
	if err := f.declareBase(ctx, sess, 0); err != nil {
		return err
	}
	s0 := FrameExpr(0)
	if err := sess.Write(ctx, fmt.Sprintf("(assert %s)", f.acc.Initial(f.module, s0))); err != nil {
		return errors.Wrap(err, "asserting initial predicate")
	}
	if err := sess.Write(ctx, fmt.Sprintf("(assert %s)", f.acc.IsInitialTag(f.module, s0))); err != nil {
		return errors.Wrap(err, "asserting is-initial tag")
	}
	return nil
}

// DeclareForward declares step as the successor of prevStep, asserting the
// transition relation and ¬is(step), per the BMC forward-unrolling rule.
func (f *frames) DeclareForward(ctx context.Context, sess solver.Session, prevStep, step int) error {
	if f.isDeclared(step) {
		return nil
	}
	if err := f.declareBase(ctx, sess, step); err != nil {
		return err
	}
	if err := sess.Write(ctx, fmt.Sprintf("(assert %s)", f.acc.Transition(f.module, FrameExpr(prevStep), FrameExpr(step)))); err != nil {
		return errors.Wrapf(err, "asserting transition %d->%d", prevStep, step)
	}
	if err := sess.Write(ctx, fmt.Sprintf("(assert (not %s))", f.acc.IsInitialTag(f.module, FrameExpr(step)))); err != nil {
		return errors.Wrapf(err, "asserting not-initial at frame %d", step)
	}
	return nil
}

// DeclareBackwardBad declares the top induction frame (step == numSteps):
// u, h, ¬is, and ¬a(s) (the "bad" frame whose unreachability we are trying
// to prove).
func (f *frames) DeclareBackwardBad(ctx context.Context, sess solver.Session, step int) error {
	if f.isDeclared(step) {
		return nil
	}
	if err := f.declareBase(ctx, sess, step); err != nil {
		return err
	}
	if err := sess.Write(ctx, fmt.Sprintf("(assert (not %s))", f.acc.IsInitialTag(f.module, FrameExpr(step)))); err != nil {
		return errors.Wrapf(err, "asserting not-initial at frame %d", step)
	}
	if err := sess.Write(ctx, fmt.Sprintf("(assert (not %s))", f.acc.AssertAll(f.module, FrameExpr(step)))); err != nil {
		return errors.Wrapf(err, "asserting bad-frame negation at %d", step)
	}
	return nil
}

// DeclareBackwardGood declares an interior induction frame: u, h, ¬is,
// t(s, s+1), and a(s) (every later frame satisfies all obligations).
func (f *frames) DeclareBackwardGood(ctx context.Context, sess solver.Session, step int) error {
	if f.isDeclared(step) {
		return nil
	}
	if err := f.declareBase(ctx, sess, step); err != nil {
		return err
	}
	if err := sess.Write(ctx, fmt.Sprintf("(assert (not %s))", f.acc.IsInitialTag(f.module, FrameExpr(step)))); err != nil {
		return errors.Wrapf(err, "asserting not-initial at frame %d", step)
	}
	if err := sess.Write(ctx, fmt.Sprintf("(assert %s)", f.acc.Transition(f.module, FrameExpr(step), FrameExpr(step+1)))); err != nil {
		return errors.Wrapf(err, "asserting transition %d->%d", step, step+1)
	}
	if err := sess.Write(ctx, fmt.Sprintf("(assert %s)", f.acc.AssertAll(f.module, FrameExpr(step)))); err != nil {
		return errors.Wrapf(err, "asserting good-frame obligation at %d", step)
	}
	return nil
}

// CommitAsserts asserts a(s_i) and every resolved user assert for i,
// outside any push/pop scope, so it holds unconditionally from here on.
func (f *frames) CommitAsserts(ctx context.Context, sess solver.Session, step int) error {
	s := FrameExpr(step)
	if err := sess.Write(ctx, fmt.Sprintf("(assert %s)", f.acc.AssertAll(f.module, s))); err != nil {
		return errors.Wrapf(err, "committing module asserts at %d", step)
	}
	for _, c := range f.db.AssertsAt(constraint.StepKey(fmt.Sprintf("%d", step))) {
		expr, err := f.res.Resolve(c.Expr, step)
		if err != nil {
			return errors.Wrapf(err, "resolving assert at %s", c.Source)
		}
		if err := sess.Write(ctx, fmt.Sprintf("(assert %s)", expr)); err != nil {
			return errors.Wrapf(err, "committing assert at %s", c.Source)
		}
	}
	return nil
}

// negatedObligationExpr builds the (not (and a(s_i) user-asserts(i) ...))
// expression checked inside the push(1) scope, over every step in the
// window [first, last].
func (f *frames) negatedObligationExpr(first, last int) (string, error) {
	var terms []string
	for i := first; i <= last; i++ {
		s := FrameExpr(i)
		terms = append(terms, f.acc.AssertAll(f.module, s))
		for _, c := range f.db.AssertsAt(constraint.StepKey(fmt.Sprintf("%d", i))) {
			expr, err := f.res.Resolve(c.Expr, i)
			if err != nil {
				return "", errors.Wrapf(err, "resolving assert at %s", c.Source)
			}
			terms = append(terms, expr)
		}
	}
	return fmt.Sprintf("(not (and %s))", strings.Join(terms, " ")), nil
}

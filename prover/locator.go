package prover

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/offchainlabs/smtbmc/bitvec"
	"github.com/offchainlabs/smtbmc/constraint"
	"github.com/offchainlabs/smtbmc/modelinfo"
	"github.com/offchainlabs/smtbmc/solver"
)

// LocateFailedAsserts walks the module hierarchy rooted at (module, frame)
// in the current model, short-circuiting any subtree whose module-wide
// assert conjunction already evaluates true, and reports every leaf
// assertion predicate that evaluates false (C8).
func LocateFailedAsserts(ctx context.Context, sess solver.Session, acc modelinfo.Accessor, module, frameExpr, instPath string) ([]FailedObligation, error) {
	ok, err := evalBool(ctx, sess, acc.AssertAll(module, frameExpr))
	if err != nil {
		return nil, errors.Wrapf(err, "evaluating module assert conjunction at %s", instPath)
	}
	if ok {
		return nil, nil
	}

	mi, err := acc.Module(module)
	if err != nil {
		return nil, err
	}

	var failed []FailedObligation
	for _, a := range mi.Asserts {
		leafOK, err := evalBool(ctx, sess, fmt.Sprintf("(%s %s)", a.FuncName, frameExpr))
		if err != nil {
			return nil, errors.Wrapf(err, "evaluating leaf assert %s", a.FuncName)
		}
		if !leafOK {
			failed = append(failed, FailedObligation{Path: instPath, SourceLoc: a.Source})
		}
	}

	for _, cell := range mi.Cells {
		childFrame := acc.CellFrameExpr(module, frameExpr, cell.InstanceName)
		childPath := instPath + "." + cell.InstanceName
		childFailed, err := LocateFailedAsserts(ctx, sess, acc, cell.ModuleName, childFrame, childPath)
		if err != nil {
			return nil, err
		}
		failed = append(failed, childFailed...)
	}
	return failed, nil
}

// LocateFailedUserAsserts evaluates every resolved user assert bound to
// step in the current model and reports those returning false.
func LocateFailedUserAsserts(ctx context.Context, sess solver.Session, res *constraint.Resolver, db *constraint.Database, step int) ([]FailedObligation, error) {
	var failed []FailedObligation
	for _, c := range db.AssertsAt(constraint.StepKey(fmt.Sprintf("%d", step))) {
		expr, err := res.Resolve(c.Expr, step)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving assert at %s", c.Source)
		}
		ok, err := evalBool(ctx, sess, expr)
		if err != nil {
			return nil, errors.Wrapf(err, "evaluating user assert at %s", c.Source)
		}
		if !ok {
			failed = append(failed, FailedObligation{Path: "(constraint)", SourceLoc: c.Source})
		}
	}
	return failed, nil
}

// evalBool evaluates a Bool- or 1-bit-vector-sorted expression in the
// current model. Most solvers answer Bool-sorted asserts with "true"/
// "false" directly, but some report them as `#b1`/`#b0` bit-vector
// literals, so the response is run through the same #b/#x normalization
// layer used for net and memory readback before being compared.
func evalBool(ctx context.Context, sess solver.Session, expr string) (bool, error) {
	val, err := sess.Get(ctx, expr)
	if err != nil {
		return false, err
	}
	norm, err := bitvec.NormalizeLiteral(val)
	if err != nil {
		return false, err
	}
	return norm == "true" || norm == "1", nil
}

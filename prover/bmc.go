package prover

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/offchainlabs/smtbmc/config"
	"github.com/offchainlabs/smtbmc/constraint"
	"github.com/offchainlabs/smtbmc/modelinfo"
	"github.com/offchainlabs/smtbmc/solver"
)

// WitnessSink is the narrow interface the drivers need from a witness
// writer: materialize the trace over [start, stop), tagging multi-dump
// output paths with indexTag. witness.MultiWriter and the individual
// sinks all satisfy this structurally.
type WitnessSink interface {
	WriteTrace(ctx context.Context, start, stop int, indexTag string) error
}

// RunBMC implements the forward bounded-model-checking loop of C5: frame
// preparation, skip pacing, window extension up to step_size, obligation
// checking inside push(1)/pop(1), commit of asserts outside that scope,
// and final-state obligation checks.
func RunBMC(ctx context.Context, cfg *config.Config, sess solver.Session, acc modelinfo.Accessor, db *constraint.Database, res *constraint.Resolver, sink WitnessSink) (*Result, error) {
	f := newFrames(cfg.TopModule, acc, res, db)

	step := 0
	for step < cfg.NumSteps {
		if err := declareWindowStart(ctx, f, sess, step); err != nil {
			return nil, err
		}

		if step < cfg.SkipSteps {
			if cfg.AssumeSkipped != nil && step >= *cfg.AssumeSkipped {
				if err := f.CommitAsserts(ctx, sess, step); err != nil {
					return nil, err
				}
			}
			step++
			continue
		}

		last := step
		for j := 1; j < cfg.StepSize; j++ {
			if step+j >= cfg.NumSteps {
				break
			}
			if err := f.DeclareForward(ctx, sess, step+j-1, step+j); err != nil {
				return nil, err
			}
			last = step + j
		}

		if cfg.Mode != config.ModeGenTrace {
			if !cfg.FinalOnly {
				result, err := checkObligationWindow(ctx, f, sess, acc, res, db, step, last, sink)
				if err != nil || result != nil {
					return result, err
				}
			}

			for i := step; i <= last; i++ {
				if err := f.CommitAsserts(ctx, sess, i); err != nil {
					return nil, err
				}
			}

			if db.FinalStart != nil {
				for i := step; i <= last; i++ {
					if i < *db.FinalStart {
						continue
					}
					result, err := checkFinalStateWindow(ctx, f, sess, res, db, i, sink)
					if err != nil || result != nil {
						return result, err
					}
				}
			}
		} else {
			// gentrace: commit this window's obligations as hard asserts,
			// then check-sat to establish a model for the window before any
			// dumpall write reads values out of it.
			for i := step; i <= last; i++ {
				if err := f.CommitAsserts(ctx, sess, i); err != nil {
					return nil, err
				}
			}

			sat, err := sess.CheckSat(ctx)
			if err != nil {
				return nil, err
			}
			if sat != solver.Sat {
				log.WithField("step", step).Warn("gentrace: no satisfying trace within horizon")
				return &Result{Verified: false, Depth: step}, nil
			}

			if cfg.DumpAll && sink != nil {
				if err := sink.WriteTrace(ctx, 0, last+1, strconv.Itoa(step)); err != nil {
					return nil, errors.Wrap(err, "dumping gentrace window")
				}
			}
		}

		step += cfg.StepSize
	}

	if cfg.Mode == config.ModeGenTrace {
		if sink != nil {
			if err := sink.WriteTrace(ctx, 0, cfg.NumSteps, ""); err != nil {
				return nil, errors.Wrap(err, "dumping final gentrace")
			}
		}
		return &Result{Verified: true, Depth: cfg.NumSteps}, nil
	}

	log.WithField("depth", cfg.NumSteps).Info("bmc: no obligation violated within horizon")
	return &Result{Verified: true, Depth: cfg.NumSteps}, nil
}

func declareWindowStart(ctx context.Context, f *frames, sess solver.Session, step int) error {
	if step == 0 {
		return f.DeclareInitial(ctx, sess)
	}
	return f.DeclareForward(ctx, sess, step-1, step)
}

// checkObligationWindow runs the push(1)/negate/check_sat/pop(1) obligation
// check over [step, last]. It returns a non-nil *Result only when the
// window is sat (a counterexample was found); a nil Result with nil error
// means the caller should continue the loop.
func checkObligationWindow(ctx context.Context, f *frames, sess solver.Session, acc modelinfo.Accessor, res *constraint.Resolver, db *constraint.Database, step, last int, sink WitnessSink) (*Result, error) {
	negated, err := f.negatedObligationExpr(step, last)
	if err != nil {
		return nil, err
	}
	if err := sess.Push(ctx, 1); err != nil {
		return nil, err
	}
	// pop(1) must run on every return path out of this scope, including
	// the sat (failure) path, so the outer final-state checks run in a
	// well-defined scope.
	defer func() {
		if err := sess.Pop(ctx, 1); err != nil {
			log.WithError(err).Error("failed to pop obligation scope")
		}
	}()

	if err := sess.Write(ctx, "(assert "+negated+")"); err != nil {
		return nil, err
	}
	sat, err := sess.CheckSat(ctx)
	if err != nil {
		return nil, err
	}
	if sat != solver.Sat {
		return nil, nil
	}

	log.WithFields(logrus.Fields{"step": step, "last": last}).Warn("bmc: counterexample found")
	freeVals, err := ReportFreeValues(ctx, sess, acc, f.module, FrameExpr(step), f.module)
	if err != nil {
		return nil, err
	}
	var failed []FailedObligation
	for i := step; i <= last; i++ {
		modFailed, err := LocateFailedAsserts(ctx, sess, acc, f.module, FrameExpr(i), f.module)
		if err != nil {
			return nil, err
		}
		userFailed, err := LocateFailedUserAsserts(ctx, sess, res, db, i)
		if err != nil {
			return nil, err
		}
		failed = append(failed, modFailed...)
		failed = append(failed, userFailed...)
	}
	if sink != nil {
		if err := sink.WriteTrace(ctx, 0, last+1, ""); err != nil {
			return nil, errors.Wrap(err, "dumping counterexample trace")
		}
	}
	return &Result{
		Verified:     false,
		Depth:        last,
		Failed:       failed,
		FreeValues:   freeVals,
		WitnessStart: 0,
		WitnessStop:  last + 1,
	}, nil
}

func checkFinalStateWindow(ctx context.Context, f *frames, sess solver.Session, res *constraint.Resolver, db *constraint.Database, i int, sink WitnessSink) (*Result, error) {
	key := constraint.StepKey("final-" + strconv.Itoa(i))
	if err := sess.Push(ctx, 1); err != nil {
		return nil, err
	}
	defer func() {
		if err := sess.Pop(ctx, 1); err != nil {
			log.WithError(err).Error("failed to pop final-state scope")
		}
	}()

	for _, c := range db.AssumesAt(key) {
		expr, err := res.Resolve(c.Expr, i)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving final-state assume at %s", c.Source)
		}
		if err := sess.Write(ctx, "(assert "+expr+")"); err != nil {
			return nil, err
		}
	}

	var asserts []string
	for _, c := range db.AssertsAt(key) {
		expr, err := res.Resolve(c.Expr, i)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving final-state assert at %s", c.Source)
		}
		asserts = append(asserts, expr)
	}
	if len(asserts) == 0 {
		return nil, nil
	}
	negated := "(not (and " + strings.Join(asserts, " ") + "))"
	if err := sess.Write(ctx, "(assert "+negated+")"); err != nil {
		return nil, err
	}

	sat, err := sess.CheckSat(ctx)
	if err != nil {
		return nil, err
	}
	if sat != solver.Sat {
		return nil, nil
	}

	log.WithField("step", i).Warn("bmc: final-state obligation violated")
	userFailed, err := LocateFailedUserAsserts(ctx, sess, res, db, i)
	if err != nil {
		return nil, err
	}
	if sink != nil {
		if err := sink.WriteTrace(ctx, 0, i+1, ""); err != nil {
			return nil, errors.Wrap(err, "dumping final-state counterexample")
		}
	}
	return &Result{
		Verified:     false,
		Depth:        i,
		Failed:       userFailed,
		WitnessStart: 0,
		WitnessStop:  i + 1,
	}, nil
}

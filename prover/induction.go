package prover

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/offchainlabs/smtbmc/config"
	"github.com/offchainlabs/smtbmc/constraint"
	"github.com/offchainlabs/smtbmc/modelinfo"
	"github.com/offchainlabs/smtbmc/solver"
)

// RunInduction implements the backward k-induction search of C6: from
// step = num_steps down to 0, looking for the shallowest depth at which
// "every later frame satisfies every assert, and the assert-negation at
// this frame is unsatisfiable" (induction closes).
func RunInduction(ctx context.Context, cfg *config.Config, sess solver.Session, acc modelinfo.Accessor, db *constraint.Database, res *constraint.Resolver, sink WitnessSink) (*Result, error) {
	f := newFrames(cfg.TopModule, acc, res, db)

	// skipCounter mirrors the original's downward pacing: primed at
	// step_size so the first non-skipped depth is tried immediately, then
	// incremented per depth and reset to 0 whenever a check actually runs.
	skipCounter := cfg.StepSize

	for step := cfg.NumSteps; ; step-- {
		if step == cfg.NumSteps {
			if err := f.DeclareBackwardBad(ctx, sess, step); err != nil {
				return nil, err
			}
		} else {
			if err := f.DeclareBackwardGood(ctx, sess, step); err != nil {
				return nil, err
			}
		}

		if step > 0 && step > cfg.NumSteps-cfg.SkipSteps {
			continue
		}

		skipCounter++
		if step > 0 && skipCounter < cfg.StepSize {
			continue
		}
		skipCounter = 0

		sat, err := sess.CheckSat(ctx)
		if err != nil {
			return nil, err
		}

		switch {
		case sat == solver.Unsat:
			log.WithField("depth", step).Info("induction: closed")
			return &Result{Verified: true, Depth: step}, nil

		case step > 0:
			log.WithField("depth", step).Debug("induction: inconclusive at this depth")
			if cfg.DumpAll && sink != nil {
				if err := sink.WriteTrace(ctx, step, cfg.NumSteps+1, strconv.Itoa(step)); err != nil {
					return nil, errors.Wrap(err, "dumping induction diagnostic trace")
				}
			}
			continue

		default:
			log.WithFields(logrus.Fields{"depth": cfg.NumSteps}).Warn("induction: failed at depth 0")
			freeVals, err := ReportFreeValues(ctx, sess, acc, f.module, FrameExpr(cfg.NumSteps), f.module)
			if err != nil {
				return nil, err
			}
			failed, err := LocateFailedAsserts(ctx, sess, acc, f.module, FrameExpr(cfg.NumSteps), f.module)
			if err != nil {
				return nil, err
			}
			if sink != nil {
				if err := sink.WriteTrace(ctx, 0, cfg.NumSteps+1, ""); err != nil {
					return nil, errors.Wrap(err, "dumping induction counterexample")
				}
			}
			return &Result{
				Verified:     false,
				Depth:        0,
				Failed:       failed,
				FreeValues:   freeVals,
				WitnessStart: 0,
				WitnessStop:  cfg.NumSteps + 1,
			}, nil
		}
	}
}

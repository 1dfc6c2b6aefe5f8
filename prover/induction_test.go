package prover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/offchainlabs/smtbmc/config"
	"github.com/offchainlabs/smtbmc/constraint"
	"github.com/offchainlabs/smtbmc/modelinfo"
	"github.com/offchainlabs/smtbmc/solver"
)

// TestRunInductionClosesImmediately mirrors seed scenario S3: the bad frame
// at num_steps is immediately unsat, so induction closes at depth num_steps
// without ever declaring an interior frame.
func TestRunInductionClosesImmediately(t *testing.T) {
	ctx := context.Background()
	acc := modelinfo.NewSimulated(modelinfo.WithModule(&modelinfo.ModuleInfo{Name: "top"}))
	db := &constraint.Database{Asserts: map[constraint.StepKey][]constraint.Constraint{}, Assumes: map[constraint.StepKey][]constraint.Constraint{}}
	res := constraint.NewResolver(acc, "top")
	cfg := config.New("design.smt2", config.WithTopModule("top"))
	cfg.Mode = config.ModeInduction
	cfg.NumSteps = 10
	cfg.StepSize = 1
	cfg.SkipSteps = 0

	sess := new(solver.MockSession)
	sess.On("Write", ctx, "(declare-fun s10 () top_s)").Return(nil)
	sess.On("Write", ctx, "(assert (top_u s10))").Return(nil)
	sess.On("Write", ctx, "(assert (top_h s10))").Return(nil)
	sess.On("Write", ctx, "(assert (not (top_is s10)))").Return(nil)
	sess.On("Write", ctx, "(assert (not (top_a s10)))").Return(nil)
	sess.On("CheckSat", ctx).Return(solver.Unsat, nil)

	result, err := RunInduction(ctx, cfg, sess, acc, db, res, nil)
	require.NoError(t, err)
	require.True(t, result.Verified)
	require.Equal(t, 10, result.Depth)
	sess.AssertExpectations(t)
}

// TestRunInductionFailsAtDepthZero scripts sat all the way down to depth 0,
// where the driver must report a counterexample.
func TestRunInductionFailsAtDepthZero(t *testing.T) {
	ctx := context.Background()
	acc := modelinfo.NewSimulated(modelinfo.WithModule(&modelinfo.ModuleInfo{
		Name:    "top",
		Asserts: []modelinfo.SourceAssert{{FuncName: "top_a0", Source: "design.v:4"}},
	}))
	db := &constraint.Database{Asserts: map[constraint.StepKey][]constraint.Constraint{}, Assumes: map[constraint.StepKey][]constraint.Constraint{}}
	res := constraint.NewResolver(acc, "top")
	cfg := config.New("design.smt2", config.WithTopModule("top"))
	cfg.Mode = config.ModeInduction
	cfg.NumSteps = 1
	cfg.StepSize = 1
	cfg.SkipSteps = 0

	sess := new(solver.MockSession)
	sess.On("Write", ctx, "(declare-fun s1 () top_s)").Return(nil)
	sess.On("Write", ctx, "(assert (top_u s1))").Return(nil)
	sess.On("Write", ctx, "(assert (top_h s1))").Return(nil)
	sess.On("Write", ctx, "(assert (not (top_is s1)))").Return(nil)
	sess.On("Write", ctx, "(assert (not (top_a s1)))").Return(nil)
	sess.On("CheckSat", ctx).Return(solver.Sat, nil).Once()

	sess.On("Write", ctx, "(declare-fun s0 () top_s)").Return(nil)
	sess.On("Write", ctx, "(assert (top_u s0))").Return(nil)
	sess.On("Write", ctx, "(assert (top_h s0))").Return(nil)
	sess.On("Write", ctx, "(assert (not (top_is s0)))").Return(nil)
	sess.On("Write", ctx, "(assert (top_t s0 s1))").Return(nil)
	sess.On("Write", ctx, "(assert (top_a s0))").Return(nil)
	sess.On("CheckSat", ctx).Return(solver.Sat, nil).Once()
	sess.On("Get", ctx, "(top_a s1)").Return("false", nil)
	sess.On("Get", ctx, "(top_a0 s1)").Return("false", nil)

	result, err := RunInduction(ctx, cfg, sess, acc, db, res, nil)
	require.NoError(t, err)
	require.False(t, result.Verified)
	require.Equal(t, 0, result.Depth)
	require.Len(t, result.Failed, 1)
	sess.AssertExpectations(t)
}

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

type stubSink struct {
	calls [][3]int
	tags  []string
}

func (s *stubSink) WriteTrace(ctx context.Context, start, stop int, indexTag string) error {
	s.calls = append(s.calls, [3]int{start, stop, 0})
	s.tags = append(s.tags, indexTag)
	return nil
}

func trivialAccessor() *modelinfo.Simulated {
	return modelinfo.NewSimulated(modelinfo.WithModule(&modelinfo.ModuleInfo{Name: "top"}))
}

// TestRunBMCTrivialPassUnsatEveryWindow scripts every solver interaction of
// a two-step horizon where every obligation check comes back unsat, per
// seed scenario S1: the driver must declare frame 0 as initial, frame 1 as
// a forward successor, and commit asserts after each unsat window without
// ever reporting a counterexample.
func TestRunBMCTrivialPassUnsatEveryWindow(t *testing.T) {
	ctx := context.Background()
	acc := trivialAccessor()
	db := &constraint.Database{Asserts: map[constraint.StepKey][]constraint.Constraint{}, Assumes: map[constraint.StepKey][]constraint.Constraint{}}
	res := constraint.NewResolver(acc, "top")
	cfg := config.New("design.smt2", config.WithTopModule("top"))
	cfg.NumSteps = 2
	cfg.StepSize = 1
	cfg.SkipSteps = 0

	sess := new(solver.MockSession)
	sess.On("Write", ctx, "(declare-fun s0 () top_s)").Return(nil)
	sess.On("Write", ctx, "(assert (top_u s0))").Return(nil)
	sess.On("Write", ctx, "(assert (top_h s0))").Return(nil)
	sess.On("Write", ctx, "(assert (top_i s0))").Return(nil)
	sess.On("Write", ctx, "(assert (top_is s0))").Return(nil)
	sess.On("Push", ctx, 1).Return(nil)
	sess.On("Pop", ctx, 1).Return(nil)
	sess.On("Write", ctx, "(assert (not (and (top_a s0))))").Return(nil)
	sess.On("CheckSat", ctx).Return(solver.Unsat, nil)
	sess.On("Write", ctx, "(assert (top_a s0))").Return(nil)

	sess.On("Write", ctx, "(declare-fun s1 () top_s)").Return(nil)
	sess.On("Write", ctx, "(assert (top_u s1))").Return(nil)
	sess.On("Write", ctx, "(assert (top_h s1))").Return(nil)
	sess.On("Write", ctx, "(assert (top_t s0 s1))").Return(nil)
	sess.On("Write", ctx, "(assert (not (top_is s1)))").Return(nil)
	sess.On("Write", ctx, "(assert (not (and (top_a s1))))").Return(nil)
	sess.On("Write", ctx, "(assert (top_a s1))").Return(nil)

	res2, err := RunBMC(ctx, cfg, sess, acc, db, res, nil)
	require.NoError(t, err)
	require.True(t, res2.Verified)
	require.Equal(t, 2, res2.Depth)
	sess.AssertExpectations(t)
}

// TestRunBMCCounterexampleReportsFailure scripts a sat result at step 0 and
// checks the driver reports a counterexample with the located failed
// assertion, mirroring S2.
func TestRunBMCCounterexampleReportsFailure(t *testing.T) {
	ctx := context.Background()
	acc := modelinfo.NewSimulated(modelinfo.WithModule(&modelinfo.ModuleInfo{
		Name:    "top",
		Asserts: []modelinfo.SourceAssert{{FuncName: "top_a0", Source: "design.v:1"}},
	}))
	db := &constraint.Database{Asserts: map[constraint.StepKey][]constraint.Constraint{}, Assumes: map[constraint.StepKey][]constraint.Constraint{}}
	res := constraint.NewResolver(acc, "top")
	cfg := config.New("design.smt2", config.WithTopModule("top"))
	cfg.NumSteps = 1
	cfg.StepSize = 1
	cfg.SkipSteps = 0

	sess := new(solver.MockSession)
	sess.On("Write", ctx, "(declare-fun s0 () top_s)").Return(nil)
	sess.On("Write", ctx, "(assert (top_u s0))").Return(nil)
	sess.On("Write", ctx, "(assert (top_h s0))").Return(nil)
	sess.On("Write", ctx, "(assert (top_i s0))").Return(nil)
	sess.On("Write", ctx, "(assert (top_is s0))").Return(nil)
	sess.On("Push", ctx, 1).Return(nil)
	sess.On("Pop", ctx, 1).Return(nil)
	sess.On("Write", ctx, "(assert (not (and (top_a s0))))").Return(nil)
	sess.On("CheckSat", ctx).Return(solver.Sat, nil)
	sess.On("Get", ctx, "(top_a s0)").Return("false", nil)
	sess.On("Get", ctx, "(top_a0 s0)").Return("false", nil)

	result, err := RunBMC(ctx, cfg, sess, acc, db, res, nil)
	require.NoError(t, err)
	require.False(t, result.Verified)
	require.Equal(t, 0, result.Depth)
	require.Len(t, result.Failed, 1)
	require.Equal(t, "design.v:1", result.Failed[0].SourceLoc)
	sess.AssertExpectations(t)
}

// TestRunBMCGenTraceDumpAllChecksSatBeforeDump scripts a two-step gentrace
// horizon with --dump-all and verifies a check-sat runs (establishing a
// model) before each window's witness dump, rather than the dump reading
// an unconstrained model.
func TestRunBMCGenTraceDumpAllChecksSatBeforeDump(t *testing.T) {
	ctx := context.Background()
	acc := trivialAccessor()
	db := &constraint.Database{Asserts: map[constraint.StepKey][]constraint.Constraint{}, Assumes: map[constraint.StepKey][]constraint.Constraint{}}
	res := constraint.NewResolver(acc, "top")
	cfg := config.New("design.smt2", config.WithTopModule("top"))
	cfg.Mode = config.ModeGenTrace
	cfg.NumSteps = 2
	cfg.StepSize = 1
	cfg.SkipSteps = 0
	cfg.DumpAll = true

	sess := new(solver.MockSession)
	sess.On("Write", ctx, "(declare-fun s0 () top_s)").Return(nil)
	sess.On("Write", ctx, "(assert (top_u s0))").Return(nil)
	sess.On("Write", ctx, "(assert (top_h s0))").Return(nil)
	sess.On("Write", ctx, "(assert (top_i s0))").Return(nil)
	sess.On("Write", ctx, "(assert (top_is s0))").Return(nil)
	sess.On("Write", ctx, "(assert (top_a s0))").Return(nil)
	sess.On("CheckSat", ctx).Return(solver.Sat, nil)

	sess.On("Write", ctx, "(declare-fun s1 () top_s)").Return(nil)
	sess.On("Write", ctx, "(assert (top_u s1))").Return(nil)
	sess.On("Write", ctx, "(assert (top_h s1))").Return(nil)
	sess.On("Write", ctx, "(assert (top_t s0 s1))").Return(nil)
	sess.On("Write", ctx, "(assert (not (top_is s1)))").Return(nil)
	sess.On("Write", ctx, "(assert (top_a s1))").Return(nil)

	sink := &stubSink{}
	result, err := RunBMC(ctx, cfg, sess, acc, db, res, sink)
	require.NoError(t, err)
	require.True(t, result.Verified)
	sess.AssertExpectations(t)
	sess.AssertNumberOfCalls(t, "CheckSat", 2)
	require.Len(t, sink.calls, 3)
	require.Equal(t, [3]int{0, 1, 0}, sink.calls[0])
	require.Equal(t, [3]int{0, 2, 0}, sink.calls[1])
	require.Equal(t, [3]int{0, 2, 0}, sink.calls[2])
}

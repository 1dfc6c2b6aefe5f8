package prover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/offchainlabs/smtbmc/modelinfo"
	"github.com/offchainlabs/smtbmc/solver"
)

func fixtureModule() *modelinfo.Simulated {
	return modelinfo.NewSimulated(
		modelinfo.WithModule(&modelinfo.ModuleInfo{
			Name:    "top",
			Asserts: []modelinfo.SourceAssert{{FuncName: "top_a0", Source: "design.v:3"}},
			Cells:   []modelinfo.Cell{{InstanceName: "sub", ModuleName: "subm"}},
		}),
		modelinfo.WithModule(&modelinfo.ModuleInfo{
			Name:    "subm",
			Asserts: []modelinfo.SourceAssert{{FuncName: "subm_a0", Source: "design.v:9"}},
		}),
	)
}

func TestLocateFailedAssertsShortCircuitsOnTrue(t *testing.T) {
	acc := fixtureModule()
	sess := new(solver.MockSession)
	sess.On("Get", context.Background(), "(top_a s0)").Return("true", nil)

	failed, err := LocateFailedAsserts(context.Background(), sess, acc, "top", "s0", "top")
	require.NoError(t, err)
	require.Empty(t, failed)
	sess.AssertExpectations(t)
}

// TestLocateFailedAssertsAcceptsBitVectorBoolLiteral covers a solver that
// answers a Bool-sorted query with a `#b1`/`#b0` bit-vector literal instead
// of `true`/`false`.
func TestLocateFailedAssertsAcceptsBitVectorBoolLiteral(t *testing.T) {
	acc := fixtureModule()
	sess := new(solver.MockSession)
	sess.On("Get", context.Background(), "(top_a s0)").Return("#b1", nil)

	failed, err := LocateFailedAsserts(context.Background(), sess, acc, "top", "s0", "top")
	require.NoError(t, err)
	require.Empty(t, failed)
	sess.AssertExpectations(t)
}

func TestLocateFailedAssertsDescendsOnFalse(t *testing.T) {
	acc := fixtureModule()
	sess := new(solver.MockSession)
	ctx := context.Background()
	sess.On("Get", ctx, "(top_a s0)").Return("false", nil)
	sess.On("Get", ctx, "(top_a0 s0)").Return("false", nil)
	sess.On("Get", ctx, "(subm_a (|top_h sub| s0))").Return("false", nil)
	sess.On("Get", ctx, "(subm_a0 (|top_h sub| s0))").Return("true", nil)

	failed, err := LocateFailedAsserts(ctx, sess, acc, "top", "s0", "top")
	require.NoError(t, err)
	require.Len(t, failed, 1)
	require.Equal(t, "top", failed[0].Path)
	require.Equal(t, "design.v:3", failed[0].SourceLoc)
	sess.AssertExpectations(t)
}

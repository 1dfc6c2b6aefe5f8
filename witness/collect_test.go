package witness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/offchainlabs/smtbmc/modelinfo"
	"github.com/offchainlabs/smtbmc/solver"
)

func fixtureAccessor() *modelinfo.Simulated {
	return modelinfo.NewSimulated(
		modelinfo.WithModule(&modelinfo.ModuleInfo{
			Name: "top",
			Nets: []modelinfo.Net{{Name: "r", Width: 4}, {Name: "$hidden", Width: 1}},
		}),
	)
}

func TestCollectTraceSkipsHiddenNets(t *testing.T) {
	ctx := context.Background()
	acc := fixtureAccessor()
	sess := new(solver.MockSession)
	sess.On("Get", ctx, "(|top_n r| s0)").Return("#b0011", nil)

	trace, err := CollectTrace(ctx, sess, acc, "top", 0, 1)
	require.NoError(t, err)
	val, ok := trace.NetAt(0, "r")
	require.True(t, ok)
	require.Equal(t, "0011", string(val))
	_, ok = trace.NetAt(0, "$hidden")
	require.False(t, ok)
	sess.AssertExpectations(t)
}

func TestCollectTraceWalksCells(t *testing.T) {
	ctx := context.Background()
	acc := modelinfo.NewSimulated(
		modelinfo.WithModule(&modelinfo.ModuleInfo{
			Name:  "top",
			Cells: []modelinfo.Cell{{InstanceName: "sub", ModuleName: "subm"}},
		}),
		modelinfo.WithModule(&modelinfo.ModuleInfo{
			Name: "subm",
			Nets: []modelinfo.Net{{Name: "y", Width: 1}},
		}),
	)
	sess := new(solver.MockSession)
	sess.On("Get", ctx, "(|subm_n y| (|top_h sub| s2))").Return("#b1", nil)

	trace, err := CollectTrace(ctx, sess, acc, "top", 2, 3)
	require.NoError(t, err)
	val, ok := trace.NetAt(2, "sub.y")
	require.True(t, ok)
	require.Equal(t, "1", string(val))
}

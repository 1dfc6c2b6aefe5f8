package prover

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/offchainlabs/smtbmc/modelinfo"
	"github.com/offchainlabs/smtbmc/solver"
)

func TestReportFreeValuesNormalizesBitVectorLiterals(t *testing.T) {
	acc := modelinfo.NewSimulated(
		modelinfo.WithModule(&modelinfo.ModuleInfo{
			Name:          "top",
			FreeConstants: []modelinfo.FreeConstant{{FuncName: "top_free0", Tag: "x"}},
			Cells:         []modelinfo.Cell{{InstanceName: "sub", ModuleName: "subm"}},
		}),
		modelinfo.WithModule(&modelinfo.ModuleInfo{
			Name:          "subm",
			FreeConstants: []modelinfo.FreeConstant{{FuncName: "subm_free0", Tag: "y"}},
		}),
	)
	ctx := context.Background()
	sess := new(solver.MockSession)
	sess.On("Get", ctx, "(top_free0 s0)").Return("#b0011", nil)
	sess.On("Get", ctx, "(subm_free0 (|top_h sub| s0))").Return("#xb", nil)

	values, err := ReportFreeValues(ctx, sess, acc, "top", "s0", "top")
	require.NoError(t, err)
	require.Len(t, values, 2)
	require.Equal(t, "0011", values[0].Value)
	require.Equal(t, "1011", values[1].Value)
	sess.AssertExpectations(t)
}

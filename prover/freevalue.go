package prover

import (
	"context"
	"fmt"

	"github.com/offchainlabs/smtbmc/bitvec"
	"github.com/offchainlabs/smtbmc/modelinfo"
	"github.com/offchainlabs/smtbmc/solver"
)

// ReportFreeValues walks the same module hierarchy as LocateFailedAsserts
// and, for every registered free symbolic constant at every instance,
// queries its value in the current model (C9).
func ReportFreeValues(ctx context.Context, sess solver.Session, acc modelinfo.Accessor, module, frameExpr, instPath string) ([]FreeValue, error) {
	mi, err := acc.Module(module)
	if err != nil {
		return nil, err
	}

	var values []FreeValue
	for _, fc := range mi.FreeConstants {
		raw, err := sess.Get(ctx, fmt.Sprintf("(%s %s)", fc.FuncName, frameExpr))
		if err != nil {
			return nil, err
		}
		val, err := bitvec.NormalizeLiteral(raw)
		if err != nil {
			return nil, err
		}
		values = append(values, FreeValue{Path: instPath, Tag: fc.Tag, Value: val})
	}

	for _, cell := range mi.Cells {
		childFrame := acc.CellFrameExpr(module, frameExpr, cell.InstanceName)
		childPath := instPath + "." + cell.InstanceName
		childValues, err := ReportFreeValues(ctx, sess, acc, cell.ModuleName, childFrame, childPath)
		if err != nil {
			return nil, err
		}
		values = append(values, childValues...)
	}
	return values, nil
}

package witness

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/offchainlabs/smtbmc/bitvec"
	"github.com/offchainlabs/smtbmc/modelinfo"
	"github.com/offchainlabs/smtbmc/solver"
)

// frameExpr mirrors prover.FrameExpr without importing prover (witness is
// a leaf collaborator driven by the provers, never the reverse).
func frameExpr(step int) string { return fmt.Sprintf("s%d", step) }

// CollectTrace queries the current solver model at every step in
// [start, stop) and materializes a Trace: every non-hidden net's value,
// and every memory word actually read through a port's address net during
// the window. It issues solver queries directly, so it must run before
// any further push/pop scope invalidates the model.
func CollectTrace(ctx context.Context, sess solver.Session, acc modelinfo.Accessor, module string, start, stop int) (*Trace, error) {
	trace := &Trace{Module: module, Start: start, Stop: stop, Steps: make(map[int]StepValuation)}
	for step := start; step < stop; step++ {
		sv := StepValuation{Nets: make(map[string]bitvec.Value), Memories: make(map[string][]MemWord)}
		if err := collectModule(ctx, sess, acc, module, frameExpr(step), nil, &sv); err != nil {
			return nil, errors.Wrapf(err, "collecting witness at step %d", step)
		}
		trace.Steps[step] = sv
	}
	return trace, nil
}

func collectModule(ctx context.Context, sess solver.Session, acc modelinfo.Accessor, module, frame string, instPath []string, sv *StepValuation) error {
	mi, err := acc.Module(module)
	if err != nil {
		return err
	}

	for _, n := range mi.Nets {
		if n.Hidden() {
			continue
		}
		expr, err := acc.NetExpr(module, frame, []string{n.Name})
		if err != nil {
			return err
		}
		raw, err := sess.Get(ctx, expr)
		if err != nil {
			return err
		}
		val, err := bitvec.ParseSMTLiteral(strings.TrimSpace(raw))
		if err != nil {
			return errors.Wrapf(err, "net %s", n.Name)
		}
		sv.Nets[fullPath(instPath, n.Name)] = val.PadTo(n.Width)
	}

	for _, m := range mi.Memories {
		memPath := fullPath(instPath, m.Name)
		for port := 0; port < len(m.AddrNets); port++ {
			addrNet := m.AddrNets[port]
			if len(addrNet) == 0 {
				continue
			}
			addrExpr, err := acc.NetExpr(module, frame, addrNet)
			if err != nil {
				return err
			}
			rawAddr, err := sess.Get(ctx, addrExpr)
			if err != nil {
				return err
			}
			addrVal, err := bitvec.ParseSMTLiteral(strings.TrimSpace(rawAddr))
			if err != nil {
				return errors.Wrapf(err, "memory %s port %d address", m.Name, port)
			}

			dataExpr, err := acc.MemExpr(module, frame, []string{m.Name}, port, addrExpr)
			if err != nil {
				return err
			}
			rawData, err := sess.Get(ctx, dataExpr)
			if err != nil {
				return err
			}
			dataVal, err := bitvec.ParseSMTLiteral(strings.TrimSpace(rawData))
			if err != nil {
				return errors.Wrapf(err, "memory %s port %d data", m.Name, port)
			}

			word := MemWord{Addr: addrVal.PadTo(m.AddrWidth), Value: dataVal.PadTo(m.DataWidth)}
			if !containsWord(sv.Memories[memPath], word.Addr) {
				sv.Memories[memPath] = append(sv.Memories[memPath], word)
			}
		}
	}

	for _, c := range mi.Cells {
		childFrame := acc.CellFrameExpr(module, frame, c.InstanceName)
		childPath := make([]string, len(instPath), len(instPath)+1)
		copy(childPath, instPath)
		childPath = append(childPath, c.InstanceName)
		if err := collectModule(ctx, sess, acc, c.ModuleName, childFrame, childPath, sv); err != nil {
			return err
		}
	}
	return nil
}

func fullPath(instPath []string, leaf string) string {
	if len(instPath) == 0 {
		return leaf
	}
	return strings.Join(instPath, ".") + "." + leaf
}

func containsWord(words []MemWord, addr bitvec.Value) bool {
	for _, w := range words {
		if w.Addr == addr {
			return true
		}
	}
	return false
}

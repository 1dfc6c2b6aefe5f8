package witness

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/offchainlabs/smtbmc/modelinfo"
)

// ReplayConstraintWriter emits a constraint script (parseable by
// constraint.ParseFiles) that, if replayed in gentrace mode against the
// same input, forces the same trace: an "initial" preamble (when the trace
// starts at step 0) or a "state start" preamble, assuming every non-hidden
// net's value and every referenced memory word at that step, then one
// "state k" block per subsequent step assuming every primary input's value.
type ReplayConstraintWriter struct {
	Trace        *Trace
	Accessor     modelinfo.Accessor
	PathTemplate string
}

func NewReplayConstraintWriter(trace *Trace, acc modelinfo.Accessor, pathTemplate string) *ReplayConstraintWriter {
	return &ReplayConstraintWriter{Trace: trace, Accessor: acc, PathTemplate: pathTemplate}
}

func (w *ReplayConstraintWriter) WriteTrace(ctx context.Context, start, stop int, indexTag string) error {
	nets, err := EnumerateNets(w.Accessor, w.Trace.Module)
	if err != nil {
		return errors.Wrap(err, "enumerating nets for replay constraints")
	}
	mems, err := EnumerateMemories(w.Accessor, w.Trace.Module)
	if err != nil {
		return errors.Wrap(err, "enumerating memories for replay constraints")
	}
	inputs, err := inputNets(w.Accessor, w.Trace.Module)
	if err != nil {
		return errors.Wrap(err, "enumerating primary inputs for replay constraints")
	}

	var b strings.Builder
	if start == 0 {
		b.WriteString("initial\n")
	} else {
		fmt.Fprintf(&b, "state %d\n", start)
	}
	for _, n := range nets {
		if val, ok := w.Trace.NetAt(start, n.FullPath()); ok {
			fmt.Fprintf(&b, "assume (= [%s] #b%s)\n", n.FullPath(), string(val))
		}
	}
	for _, m := range mems {
		for _, word := range w.Trace.MemWordsAt(start, m.FullPath()) {
			fmt.Fprintf(&b, "assume (= (select [%s] #b%s) #b%s)\n", m.FullPath(), string(word.Addr), string(word.Value))
		}
	}

	for step := start + 1; step < stop; step++ {
		fmt.Fprintf(&b, "\nstate %d\n", step)
		for _, n := range inputs {
			if val, ok := w.Trace.NetAt(step, n.FullPath()); ok {
				fmt.Fprintf(&b, "assume (= [%s] #b%s)\n", n.FullPath(), string(val))
			}
		}
	}

	path := resolvePath(w.PathTemplate, indexTag)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return errors.Wrapf(err, "writing replay constraints to %q", path)
	}
	return nil
}

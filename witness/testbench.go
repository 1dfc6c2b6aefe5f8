package witness

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/offchainlabs/smtbmc/modelinfo"
)

// TestBenchWriter emits a self-checking Verilog test bench that replays a
// materialized trace: primary inputs are driven as registers (a toggling
// clock for clock-named inputs), the top module is instantiated, and an
// initial block seeds every register and referenced memory word with its
// value at the trace's first step.
type TestBenchWriter struct {
	Trace        *Trace
	Accessor     modelinfo.Accessor
	PathTemplate string
}

func NewTestBenchWriter(trace *Trace, acc modelinfo.Accessor, pathTemplate string) *TestBenchWriter {
	return &TestBenchWriter{Trace: trace, Accessor: acc, PathTemplate: pathTemplate}
}

func (w *TestBenchWriter) WriteTrace(ctx context.Context, start, stop int, indexTag string) error {
	inputs, err := inputNets(w.Accessor, w.Trace.Module)
	if err != nil {
		return errors.Wrap(err, "enumerating primary inputs for test bench")
	}
	regs, err := registerNets(w.Accessor, w.Trace.Module)
	if err != nil {
		return errors.Wrap(err, "enumerating registers for test bench")
	}
	mems, err := EnumerateMemories(w.Accessor, w.Trace.Module)
	if err != nil {
		return errors.Wrap(err, "enumerating memories for test bench")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "module %s_tb;\n", w.Trace.Module)

	var clockName string
	for _, n := range inputs {
		if isClockNet(n.Name) {
			clockName = n.Name
			fmt.Fprintf(&b, "  reg %s = 0;\n", n.Name)
			continue
		}
		if decl := widthDecl(n.Width); decl != "" {
			fmt.Fprintf(&b, "  reg %s %s;\n", decl, n.Name)
		} else {
			fmt.Fprintf(&b, "  reg %s;\n", n.Name)
		}
	}

	fmt.Fprintf(&b, "  %s uut(", w.Trace.Module)
	portConns := make([]string, 0, len(inputs))
	for _, n := range inputs {
		portConns = append(portConns, fmt.Sprintf(".%s(%s)", n.Name, n.Name))
	}
	b.WriteString(strings.Join(portConns, ", "))
	b.WriteString(");\n\n")

	if clockName != "" {
		fmt.Fprintf(&b, "  always #5 %s = ~%s;\n\n", clockName, clockName)
	}

	b.WriteString("  initial begin\n")
	for _, n := range inputs {
		if isClockNet(n.Name) {
			continue
		}
		if val, ok := w.Trace.NetAt(start, n.FullPath()); ok {
			fmt.Fprintf(&b, "    %s = %d'b%s;\n", n.Name, n.Width, string(val))
		}
	}
	for _, r := range regs {
		if val, ok := w.Trace.NetAt(start, r.FullPath()); ok {
			fmt.Fprintf(&b, "    uut.%s = %d'b%s;\n", r.FullPath(), r.Width, string(val))
		}
	}
	for _, m := range mems {
		for _, word := range w.Trace.MemWordsAt(start, m.FullPath()) {
			fmt.Fprintf(&b, "    %s[%d'b%s] = %d'b%s;\n", m.Name, m.AddrWidth, string(word.Addr), m.DataWidth, string(word.Value))
		}
	}
	b.WriteString("  end\n\n")

	if clockName != "" {
		b.WriteString("  integer step = 0;\n")
		fmt.Fprintf(&b, "  always @(posedge %s) begin\n", clockName)
		b.WriteString("    case (step)\n")
		for step := start; step < stop; step++ {
			fmt.Fprintf(&b, "      %d: begin\n", step-start)
			for _, n := range inputs {
				if isClockNet(n.Name) {
					continue
				}
				if val, ok := w.Trace.NetAt(step, n.FullPath()); ok {
					fmt.Fprintf(&b, "        %s = %d'b%s;\n", n.Name, n.Width, string(val))
				}
			}
			b.WriteString("      end\n")
		}
		b.WriteString("    endcase\n")
		b.WriteString("    step = step + 1;\n")
		b.WriteString("  end\n")
	}

	b.WriteString("endmodule\n")

	path := resolvePath(w.PathTemplate, indexTag)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return errors.Wrapf(err, "writing test bench to %q", path)
	}
	return nil
}

func widthDecl(width int) string {
	if width <= 1 {
		return ""
	}
	return fmt.Sprintf("[%d:0]", width-1)
}

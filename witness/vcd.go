package witness

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/offchainlabs/smtbmc/modelinfo"
)

// VCDWriter emits a value-change dump of every non-hidden net across a
// materialized trace. It reads only from Trace — no solver interaction —
// so it is safe to run concurrently with the other sinks.
type VCDWriter struct {
	Trace        *Trace
	Accessor     modelinfo.Accessor
	PathTemplate string
}

func NewVCDWriter(trace *Trace, acc modelinfo.Accessor, pathTemplate string) *VCDWriter {
	return &VCDWriter{Trace: trace, Accessor: acc, PathTemplate: pathTemplate}
}

func (w *VCDWriter) WriteTrace(ctx context.Context, start, stop int, indexTag string) error {
	nets, err := EnumerateNets(w.Accessor, w.Trace.Module)
	if err != nil {
		return errors.Wrap(err, "enumerating nets for vcd")
	}

	var b strings.Builder
	b.WriteString("$timescale 1ns $end\n")
	b.WriteString("$scope module " + w.Trace.Module + " $end\n")

	idents := make(map[string]string, len(nets))
	nextIdent := 0
	identFor := func() string {
		id := vcdIdent(nextIdent)
		nextIdent++
		return id
	}

	// Nets arrive in EnumerateNets' depth-first order, so the cell-instance
	// scope a net belongs to only ever grows or shrinks by a common prefix
	// from the previous net — open/close $scope blocks to mirror that
	// instance hierarchy instead of flattening every net into one scope.
	var curPath []string
	for _, n := range nets {
		common := commonPrefixLen(curPath, n.Path)
		for len(curPath) > common {
			b.WriteString("$upscope $end\n")
			curPath = curPath[:len(curPath)-1]
		}
		for i := common; i < len(n.Path); i++ {
			fmt.Fprintf(&b, "$scope module %s $end\n", n.Path[i])
			curPath = append(curPath, n.Path[i])
		}
		id := identFor()
		idents[n.FullPath()] = id
		fmt.Fprintf(&b, "$var wire %d %s %s $end\n", n.Width, id, n.Name)
	}
	for range curPath {
		b.WriteString("$upscope $end\n")
	}
	b.WriteString("$upscope $end\n$enddefinitions $end\n")

	for step := start; step < stop; step++ {
		fmt.Fprintf(&b, "#%d\n", step)
		for _, n := range nets {
			val, ok := w.Trace.NetAt(step, n.FullPath())
			if !ok {
				continue
			}
			if n.Width == 1 {
				fmt.Fprintf(&b, "%s%s\n", string(val), idents[n.FullPath()])
			} else {
				fmt.Fprintf(&b, "b%s %s\n", string(val), idents[n.FullPath()])
			}
		}
	}
	fmt.Fprintf(&b, "#%d\n", stop)

	path := resolvePath(w.PathTemplate, indexTag)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return errors.Wrapf(err, "writing vcd to %q", path)
	}
	return nil
}

func commonPrefixLen(a, b []string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// vcdIdent renders a VCD short identifier from a dense counter, using the
// printable-ASCII alphabet VCD readers expect (! through ~).
func vcdIdent(n int) string {
	const alphabet = "!\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~"
	if n < len(alphabet) {
		return string(alphabet[n])
	}
	return string(alphabet[n%len(alphabet)]) + strconv.Itoa(n/len(alphabet))
}

package witness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/offchainlabs/smtbmc/bitvec"
	"github.com/offchainlabs/smtbmc/modelinfo"
)

func sinkFixture() (*Trace, modelinfo.Accessor) {
	acc := modelinfo.NewSimulated(
		modelinfo.WithModule(&modelinfo.ModuleInfo{
			Name: "top",
			Nets: []modelinfo.Net{
				{Name: "clk", Width: 1, Kind: modelinfo.NetInput},
				{Name: "r", Width: 4, Kind: modelinfo.NetRegister},
			},
		}),
	)
	trace := &Trace{
		Module: "top",
		Start:  0,
		Stop:   2,
		Steps: map[int]StepValuation{
			0: {Nets: map[string]bitvec.Value{"clk": "0", "r": "0000"}, Memories: map[string][]MemWord{}},
			1: {Nets: map[string]bitvec.Value{"clk": "1", "r": "0001"}, Memories: map[string][]MemWord{}},
		},
	}
	return trace, acc
}

func TestVCDWriterProducesTimestampedDump(t *testing.T) {
	trace, acc := sinkFixture()
	dir := t.TempDir()
	path := filepath.Join(dir, "out.vcd")
	w := NewVCDWriter(trace, acc, path)
	require.NoError(t, w.WriteTrace(context.Background(), 0, 2, ""))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "$var wire 4")
	require.Contains(t, string(contents), "#0")
	require.Contains(t, string(contents), "#2")
}

func TestTestBenchWriterDrivesClock(t *testing.T) {
	trace, acc := sinkFixture()
	dir := t.TempDir()
	path := filepath.Join(dir, "out_tb.v")
	w := NewTestBenchWriter(trace, acc, path)
	require.NoError(t, w.WriteTrace(context.Background(), 0, 2, ""))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "always #5 clk = ~clk;")
	require.Contains(t, string(contents), "top_tb")
	require.Contains(t, string(contents), "uut.r = 4'b0000;")
}

func TestReplayConstraintWriterEmitsInitialBlock(t *testing.T) {
	trace, acc := sinkFixture()
	dir := t.TempDir()
	path := filepath.Join(dir, "out.smtc")
	w := NewReplayConstraintWriter(trace, acc, path)
	require.NoError(t, w.WriteTrace(context.Background(), 0, 2, ""))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "initial")
	require.Contains(t, string(contents), "assume (= [r] #b0000)")
	require.Contains(t, string(contents), "state 1")
}

func TestResolvePathSubstitutesIndexTag(t *testing.T) {
	require.Equal(t, "trace_3.vcd", resolvePath("trace_%.vcd", "3"))
	require.Equal(t, "trace.vcd", resolvePath("trace.vcd", "3"))
}

func TestMultiWriterFansOutToAllSinks(t *testing.T) {
	trace, acc := sinkFixture()
	dir := t.TempDir()
	vcdPath := filepath.Join(dir, "a.vcd")
	smtcPath := filepath.Join(dir, "a.smtc")
	mw := NewMultiWriter(
		NewVCDWriter(trace, acc, vcdPath),
		NewReplayConstraintWriter(trace, acc, smtcPath),
	)
	require.NoError(t, mw.WriteTrace(context.Background(), 0, 2, ""))

	_, err := os.Stat(vcdPath)
	require.NoError(t, err)
	_, err = os.Stat(smtcPath)
	require.NoError(t, err)
}

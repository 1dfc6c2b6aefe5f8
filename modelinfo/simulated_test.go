package modelinfo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildFixture() *Simulated {
	return NewSimulated(
		WithModule(&ModuleInfo{
			Name: "top",
			Nets: []Net{{Name: "clk", Width: 1}},
			Cells: []Cell{
				{InstanceName: "subinst", ModuleName: "sub"},
			},
		}),
		WithModule(&ModuleInfo{
			Name:     "sub",
			Nets:     []Net{{Name: "y", Width: 4}},
			Memories: []Memory{{Name: "mem", AddrWidth: 4, DataWidth: 8, Ports: 2}},
		}),
	)
}

func TestSimulatedNetExpr(t *testing.T) {
	s := buildFixture()
	expr, err := s.NetExpr("top", "s0", []string{"clk"})
	require.NoError(t, err)
	require.Equal(t, "(|top_n clk| s0)", expr)

	expr, err = s.NetExpr("top", "s2", []string{"subinst", "y"})
	require.NoError(t, err)
	require.Equal(t, "(|sub_n y| (|top_h subinst| s2))", expr)
}

func TestSimulatedMemExpr(t *testing.T) {
	s := buildFixture()
	expr, err := s.MemExpr("top", "s0", []string{"subinst", "mem"}, 1, "a")
	require.NoError(t, err)
	require.Equal(t, "(select (|sub_m1 mem| (|top_h subinst| s0)) a)", expr)
}

func TestSimulatedUnknownModule(t *testing.T) {
	s := buildFixture()
	_, err := s.Module("ghost")
	require.Error(t, err)
}

func TestRenderHierarchyDOT(t *testing.T) {
	s := buildFixture()
	out, err := RenderHierarchyDOT(s, "top")
	require.NoError(t, err)
	require.Contains(t, out, "digraph")
	require.Contains(t, out, "top")
	require.Contains(t, out, "subinst")
}

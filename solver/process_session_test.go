package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseGetValueSingle(t *testing.T) {
	v, err := parseGetValueSingle("((|top_n clk| #b1))")
	require.NoError(t, err)
	require.Equal(t, "#b1", v)
}

func TestParseGetValueList(t *testing.T) {
	vals, err := parseGetValueList("((a #b0) (b #b1) (c #b10))", 3)
	require.NoError(t, err)
	require.Equal(t, []string{"#b0", "#b1", "#b10"}, vals)
}

func TestParseGetValueListNestedExpr(t *testing.T) {
	vals, err := parseGetValueList("(((select mem a) (_ bv3 8)))", 1)
	require.NoError(t, err)
	require.Equal(t, "(_ bv3 8)", vals[0])
}

func TestParseGetValueListWrongCount(t *testing.T) {
	_, err := parseGetValueList("((a #b0))", 2)
	require.Error(t, err)
}

func TestSatResultString(t *testing.T) {
	require.Equal(t, "sat", Sat.String())
	require.Equal(t, "unsat", Unsat.String())
	require.Equal(t, "unknown", Unknown.String())
}

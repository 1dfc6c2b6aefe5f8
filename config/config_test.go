package config

import "testing"

import "github.com/stretchr/testify/require"

func TestParseHorizon(t *testing.T) {
	cases := []struct {
		in   string
		want Horizon
	}{
		{"20", Horizon{0, 1, 20}},
		{"3:5", Horizon{3, 1, 5}},
		{"3:5:20", Horizon{3, 5, 20}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseHorizon(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseHorizonInvalid(t *testing.T) {
	for _, in := range []string{"1:2:3:4", "abc", "1:0:5", "-1:5"} {
		_, err := ParseHorizon(in)
		require.Error(t, err, in)
	}
}

func TestValidateRejectsInductionWithConstraints(t *testing.T) {
	c := New("design.smt2")
	c.Mode = ModeInduction
	c.SMTCFiles = []string{"a.smtc"}
	require.Error(t, Validate(c))
}

func TestParseFlags(t *testing.T) {
	cfg, err := Parse([]string{"-t", "0:2:10", "-i", "design.smt2"})
	require.NoError(t, err)
	require.Equal(t, ModeInduction, cfg.Mode)
	require.Equal(t, 2, cfg.StepSize)
	require.Equal(t, 10, cfg.NumSteps)
}

func TestParseRejectsModeConflict(t *testing.T) {
	_, err := Parse([]string{"-i", "--smtc", "a.smtc", "design.smt2"})
	require.Error(t, err)
}

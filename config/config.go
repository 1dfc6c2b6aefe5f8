// Package config parses and validates the immutable run configuration for
// the prover: the horizon (skip/step/num steps), the mode (BMC, induction,
// or trace generation), and the set of dump sinks to exercise once a run
// concludes.
package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Mode selects which driver runs.
type Mode int

const (
	// ModeBMC unrolls frames forward and checks obligations per window.
	ModeBMC Mode = iota
	// ModeInduction searches backward for a minimal k-induction depth.
	ModeInduction
	// ModeGenTrace asserts every obligation and dumps a single witness.
	ModeGenTrace
)

func (m Mode) String() string {
	switch m {
	case ModeBMC:
		return "bmc"
	case ModeInduction:
		return "induction"
	case ModeGenTrace:
		return "gentrace"
	default:
		return "unknown"
	}
}

// Horizon is the skip_steps:step_size:num_steps triple from spec §3, parsed
// from the -t flag in one of its three forms.
type Horizon struct {
	SkipSteps int
	StepSize  int
	NumSteps  int
}

// DefaultHorizon mirrors the documented defaults (0:1:20).
func DefaultHorizon() Horizon {
	return Horizon{SkipSteps: 0, StepSize: 1, NumSteps: 20}
}

// ParseHorizon accepts "N", "S:N", or "S:K:N".
func ParseHorizon(s string) (Horizon, error) {
	h := DefaultHorizon()
	parts := strings.Split(s, ":")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Horizon{}, errors.Wrapf(err, "invalid -t component %q", p)
		}
		nums = append(nums, n)
	}
	switch len(nums) {
	case 1:
		h.NumSteps = nums[0]
	case 2:
		h.SkipSteps = nums[0]
		h.NumSteps = nums[1]
	case 3:
		h.SkipSteps = nums[0]
		h.StepSize = nums[1]
		h.NumSteps = nums[2]
	default:
		return Horizon{}, fmt.Errorf("invalid -t value %q: expected N, S:N, or S:K:N", s)
	}
	if h.StepSize <= 0 {
		return Horizon{}, fmt.Errorf("invalid -t value %q: step_size must be positive", s)
	}
	if h.SkipSteps < 0 || h.NumSteps < 0 {
		return Horizon{}, fmt.Errorf("invalid -t value %q: components must be non-negative", s)
	}
	return h, nil
}

// DumpPaths holds output sink paths; each may contain a '%' placeholder
// that the witness writer substitutes with a per-window index tag.
type DumpPaths struct {
	VCD     string
	VlogTB  string
	SMTC    string
	HierDOT string
}

func (d DumpPaths) AnyEnabled() bool {
	return d.VCD != "" || d.VlogTB != "" || d.SMTC != ""
}

// Config is the immutable run configuration, built once by Parse and never
// mutated afterward; every driver step reads it through a *Config receiver.
type Config struct {
	Horizon
	Mode Mode

	TopModule string
	InputFile string

	SMTCFiles      []string
	FinalOnly      bool
	AssumeSkipped  *int
	DumpAll        bool
	Dump           DumpPaths
	SolverCmd      string
	SolverArgs     []string
}

// Opt configures a Config under construction.
type Opt func(*Config)

// WithTopModule sets the top module name. The input file is not searched
// for one, so a run with no top module set stops with an error.
func WithTopModule(name string) Opt {
	return func(c *Config) { c.TopModule = name }
}

// WithSMTCFile appends a constraint file to the run.
func WithSMTCFile(path string) Opt {
	return func(c *Config) { c.SMTCFiles = append(c.SMTCFiles, path) }
}

// WithAssumeSkipped sets the step index from which skipped steps are assumed
// rather than left free.
func WithAssumeSkipped(k int) Opt {
	return func(c *Config) { v := k; c.AssumeSkipped = &v }
}

func New(inputFile string, opts ...Opt) *Config {
	c := &Config{
		Horizon:   DefaultHorizon(),
		Mode:      ModeBMC,
		InputFile: inputFile,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Parse builds a Config from a CLI-style argument slice (excluding argv[0]),
// mirroring the flag surface of spec §6.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("smtbmc", flag.ContinueOnError)

	var (
		tFlag         = fs.String("t", "0:1:20", "horizon: skip_steps:step_size:num_steps")
		gentrace      = fs.Bool("g", false, "gentrace mode")
		induction     = fs.Bool("i", false, "induction mode")
		topModule     = fs.String("m", "", "top module name (required)")
		finalOnly     = fs.Bool("final-only", false, "only check final-state obligations")
		assumeSkipped = fs.Int("assume-skipped", -1, "assume module asserts for skipped steps >= K")
		dumpVCD       = fs.String("dump-vcd", "", "write VCD trace")
		dumpVlogTB    = fs.String("dump-vlogtb", "", "write test-bench trace")
		dumpSMTC      = fs.String("dump-smtc", "", "write replay-constraint trace")
		dumpHierDOT   = fs.String("dump-hierarchy-dot", "", "write module hierarchy as graphviz dot")
		dumpAll       = fs.Bool("dump-all", false, "with -g/-i, dump after every window")
		solverCmd     = fs.String("solver-cmd", "yices-smt2", "external solver executable")
	)
	var smtcFiles stringList
	fs.Var(&smtcFiles, "smtc", "constraint file (repeatable)")
	var solverOpts stringList
	fs.Var(&solverOpts, "solver-opt", "extra solver argument (repeatable)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("usage: smtbmc [flags] <input-file>")
	}

	horizon, err := ParseHorizon(*tFlag)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Horizon:    horizon,
		InputFile:  fs.Arg(0),
		TopModule:  *topModule,
		SMTCFiles:  []string(smtcFiles),
		FinalOnly:  *finalOnly,
		DumpAll:    *dumpAll,
		SolverCmd:  *solverCmd,
		SolverArgs: []string(solverOpts),
		Dump: DumpPaths{
			VCD:     *dumpVCD,
			VlogTB:  *dumpVlogTB,
			SMTC:    *dumpSMTC,
			HierDOT: *dumpHierDOT,
		},
	}
	if *assumeSkipped >= 0 {
		cfg.AssumeSkipped = assumeSkipped
	}

	switch {
	case *gentrace && *induction:
		return nil, fmt.Errorf("-g and -i are mutually exclusive")
	case *gentrace:
		cfg.Mode = ModeGenTrace
	case *induction:
		cfg.Mode = ModeInduction
	default:
		cfg.Mode = ModeBMC
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the cross-flag usage rules of spec §4.5/§7: induction
// proves unconditional safety, so externally supplied constraints would
// silently weaken it.
func Validate(c *Config) error {
	if c.Mode == ModeInduction && len(c.SMTCFiles) > 0 {
		return fmt.Errorf("induction mode (-i) is incompatible with --smtc constraint files")
	}
	if c.StepSize <= 0 {
		return fmt.Errorf("step_size must be positive")
	}
	return nil
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

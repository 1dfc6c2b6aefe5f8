package prover

// FailedObligation is one failing assert found by the locator (C8): its
// dotted instance path from the top module and its human-readable source
// annotation (for module-wide asserts) or file:line origin (for user
// asserts).
type FailedObligation struct {
	Path      string
	SourceLoc string
}

// FreeValue is one solver-chosen symbolic constant reported by the
// free-value reporter (C9).
type FreeValue struct {
	Path  string
	Tag   string
	Value string
}

// Result is the outcome of a complete BMC or induction run.
type Result struct {
	// Verified is true when the property held throughout the run (BMC:
	// no obligation violated within the horizon; induction: closed at
	// some depth).
	Verified bool

	// Depth is the step at which the run concluded: the right edge of the
	// failing window for a BMC counterexample, the failing step for a
	// final-state violation, the window start for an unsatisfiable gentrace
	// window, num_steps for a BMC or gentrace run that completes, and the
	// induction depth at which the search concluded.
	Depth int

	Failed     []FailedObligation
	FreeValues []FreeValue

	// WitnessStart/WitnessStop bound the materialized trace range, valid
	// only when Verified is false.
	WitnessStart int
	WitnessStop  int
}

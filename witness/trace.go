// Package witness materializes counterexample and gentrace witnesses from
// a solver model and emits them as VCD, Verilog test-bench, or
// replay-constraint output (C7).
package witness

import "github.com/offchainlabs/smtbmc/bitvec"

// MemWord is one observed (address, value) pair at a memory port.
type MemWord struct {
	Addr  bitvec.Value
	Value bitvec.Value
}

// StepValuation is everything observed about one frame: every non-hidden
// net's binary value, keyed by its full dotted path, and every memory
// word actually read at any port during the dumped window, keyed by the
// memory's full dotted path.
type StepValuation struct {
	Nets      map[string]bitvec.Value
	Memories  map[string][]MemWord
}

// Trace is a materialized witness over [Start, Stop): the range the
// drivers determined was relevant to a counterexample or a gentrace run.
// Once built, a Trace is read-only — every sink renders from it rather
// than issuing further solver queries, which is what lets MultiWriter fan
// the sinks out concurrently.
type Trace struct {
	Module string
	Start  int
	Stop   int
	Steps  map[int]StepValuation
}

// NetAt returns the binary value of net at step, or false if never
// observed (not referenced, or step out of range).
func (t *Trace) NetAt(step int, netPath string) (bitvec.Value, bool) {
	sv, ok := t.Steps[step]
	if !ok {
		return "", false
	}
	v, ok := sv.Nets[netPath]
	return v, ok
}

// MemWordsAt returns the memory words observed at step for the given
// memory path.
func (t *Trace) MemWordsAt(step int, memPath string) []MemWord {
	sv, ok := t.Steps[step]
	if !ok {
		return nil
	}
	return sv.Memories[memPath]
}

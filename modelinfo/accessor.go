// Package modelinfo provides the module-metadata accessor contract (C4):
// hierarchy, widths, assertion/assumption predicates, and memory geometry
// for a module under verification. The accessor is an external collaborator
// in production (answered by the synthesis pipeline's sideband comments),
// but its contract and a simulated, in-memory test implementation live here.
package modelinfo

import "fmt"

// Net kinds, taken verbatim from the sideband directive name that declared
// the net ("yosys-smt2-input/output/register/wire").
const (
	NetInput    = "input"
	NetOutput   = "output"
	NetRegister = "register"
	NetWire     = "wire"
)

// Net describes one hierarchical net of a module.
type Net struct {
	// Path is the dotted path of cell instance names leading to the net,
	// not including the net's own leaf name.
	Path []string
	Name string
	// Width is the bit width of the net.
	Width int
	// Kind is one of the Net* constants above.
	Kind string
}

// IsRegister reports whether the net was declared as a register.
func (n Net) IsRegister() bool { return n.Kind == NetRegister }

// IsInput reports whether the net was declared as a primary input.
func (n Net) IsInput() bool { return n.Kind == NetInput }

// FullPath returns Path + Name joined with '.'.
func (n Net) FullPath() string {
	if len(n.Path) == 0 {
		return n.Name
	}
	p := ""
	for _, seg := range n.Path {
		p += seg + "."
	}
	return p + n.Name
}

// Hidden reports whether the net's leaf name begins with '$', per spec's
// "non-hidden net" rule for VCD/witness enumeration.
func (n Net) Hidden() bool {
	return len(n.Name) > 0 && n.Name[0] == '$'
}

// Memory describes one memory cell's addressing geometry.
type Memory struct {
	Path      []string
	Name      string
	Ports     int
	AddrWidth int
	DataWidth int
	// AddrNets holds, for each port in [0, Ports), the net path whose
	// value at a given frame is that port's current address. Witness
	// collection reads this net rather than guessing at addresses, so
	// only addresses actually exercised during the dumped window are
	// ever queried or materialized.
	AddrNets [][]string
}

func (m Memory) FullPath() string {
	n := Net{Path: m.Path, Name: m.Name}
	return n.FullPath()
}

// SourceAssert is one leaf assertion predicate inside a module, with its
// human-readable source annotation (e.g. "design.v:42").
type SourceAssert struct {
	// FuncName is the solver function name for this single assertion
	// predicate (yields a 1-bit boolean given the module's state sort).
	FuncName string
	Source   string
}

// FreeConstant is a designer-declared, solver-chosen symbolic constant.
type FreeConstant struct {
	FuncName string
	Tag      string
}

// Cell is one child-module instantiation within a parent module.
type Cell struct {
	InstanceName string
	ModuleName   string
}

// ModuleInfo is everything the accessor knows about one module definition.
type ModuleInfo struct {
	Name          string
	Nets          []Net
	Memories      []Memory
	Cells         []Cell
	Asserts       []SourceAssert
	FreeConstants []FreeConstant
}

// NetByName finds a direct (non-hierarchical) net by its leaf name.
func (mi *ModuleInfo) NetByName(name string) (Net, bool) {
	for _, n := range mi.Nets {
		if n.Name == name {
			return n, true
		}
	}
	return Net{}, false
}

// Accessor is the module-metadata accessor contract (C4). Every method is
// pure with respect to the solver transcript: it only produces solver-ready
// *text*, it never issues commands itself (that is C3's job).
type Accessor interface {
	// Module returns the parsed metadata for a module definition.
	Module(name string) (*ModuleInfo, error)

	// WellFormed returns the solver text for u(s) at the given frame
	// expression (e.g. "s3").
	WellFormed(module, frameExpr string) string
	// Hier returns h(s).
	Hier(module, frameExpr string) string
	// Initial returns i(s).
	Initial(module, frameExpr string) string
	// IsInitialTag returns is(s).
	IsInitialTag(module, frameExpr string) string
	// Transition returns t(s, s').
	Transition(module, prevExpr, nextExpr string) string
	// AssertAll returns a(s), the module-wide assert conjunction.
	AssertAll(module, frameExpr string) string

	// CellFrameExpr returns the scoped state-selector expression for a
	// child cell's sub-state within a parent frame, h-indexed by cell name.
	CellFrameExpr(module, parentFrameExpr, cellName string) string

	// NetExpr returns the solver-ground expression reading a (possibly
	// hierarchical) net path within a module at a given frame expression.
	NetExpr(module, frameExpr string, path []string) (string, error)
	// MemExpr returns the solver-ground expression reading a memory word
	// at a given port and address expression.
	MemExpr(module, frameExpr string, memPath []string, port int, addrExpr string) (string, error)
}

// ErrUnknownModule is returned by Module for an unregistered name.
type ErrUnknownModule string

func (e ErrUnknownModule) Error() string {
	return fmt.Sprintf("no metadata for module %q", string(e))
}

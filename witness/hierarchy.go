package witness

import "github.com/offchainlabs/smtbmc/modelinfo"

// EnumerateNets walks module's hierarchy and returns every non-hidden net
// with its Path populated to the instance path from the top, so
// net.FullPath() matches the keys CollectTrace stores values under.
func EnumerateNets(acc modelinfo.Accessor, module string) ([]modelinfo.Net, error) {
	var nets []modelinfo.Net
	if err := walkNets(acc, module, nil, &nets); err != nil {
		return nil, err
	}
	return nets, nil
}

func walkNets(acc modelinfo.Accessor, module string, instPath []string, out *[]modelinfo.Net) error {
	mi, err := acc.Module(module)
	if err != nil {
		return err
	}
	for _, n := range mi.Nets {
		if n.Hidden() {
			continue
		}
		*out = append(*out, modelinfo.Net{Path: instPath, Name: n.Name, Width: n.Width})
	}
	for _, c := range mi.Cells {
		childPath := append(append([]string{}, instPath...), c.InstanceName)
		if err := walkNets(acc, c.ModuleName, childPath, out); err != nil {
			return err
		}
	}
	return nil
}

// EnumerateMemories walks module's hierarchy and returns every memory with
// its Path populated the same way.
func EnumerateMemories(acc modelinfo.Accessor, module string) ([]modelinfo.Memory, error) {
	var mems []modelinfo.Memory
	if err := walkMemories(acc, module, nil, &mems); err != nil {
		return nil, err
	}
	return mems, nil
}

func walkMemories(acc modelinfo.Accessor, module string, instPath []string, out *[]modelinfo.Memory) error {
	mi, err := acc.Module(module)
	if err != nil {
		return err
	}
	for _, m := range mi.Memories {
		*out = append(*out, modelinfo.Memory{Path: instPath, Name: m.Name, Ports: m.Ports, AddrWidth: m.AddrWidth, DataWidth: m.DataWidth})
	}
	for _, c := range mi.Cells {
		childPath := append(append([]string{}, instPath...), c.InstanceName)
		if err := walkMemories(acc, c.ModuleName, childPath, out); err != nil {
			return err
		}
	}
	return nil
}

// inputNets returns the top module's primary inputs only (depth 0, not
// descending into cells) — the test-bench and replay-constraint sinks
// drive these directly and treat everything else as derived state.
func inputNets(acc modelinfo.Accessor, module string) ([]modelinfo.Net, error) {
	mi, err := acc.Module(module)
	if err != nil {
		return nil, err
	}
	var nets []modelinfo.Net
	for _, n := range mi.Nets {
		if n.Hidden() || !n.IsInput() {
			continue
		}
		nets = append(nets, n)
	}
	return nets, nil
}

// registerNets walks module's full hierarchy and returns every non-hidden
// register, with Path populated from the top — the test-bench sink force-
// initializes these at the trace's first step, since registers (unlike
// primary inputs) aren't driven by the bench itself.
func registerNets(acc modelinfo.Accessor, module string) ([]modelinfo.Net, error) {
	var regs []modelinfo.Net
	if err := walkRegisters(acc, module, nil, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

func walkRegisters(acc modelinfo.Accessor, module string, instPath []string, out *[]modelinfo.Net) error {
	mi, err := acc.Module(module)
	if err != nil {
		return err
	}
	for _, n := range mi.Nets {
		if n.Hidden() || !n.IsRegister() {
			continue
		}
		*out = append(*out, modelinfo.Net{Path: instPath, Name: n.Name, Width: n.Width, Kind: n.Kind})
	}
	for _, c := range mi.Cells {
		childPath := append(append([]string{}, instPath...), c.InstanceName)
		if err := walkRegisters(acc, c.ModuleName, childPath, out); err != nil {
			return err
		}
	}
	return nil
}

func isClockNet(name string) bool {
	switch name {
	case "clk", "clock", "CLK", "CLOCK":
		return true
	default:
		return false
	}
}

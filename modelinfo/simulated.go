package modelinfo

import "fmt"

// Simulated is an in-memory Accessor test double: callers register module
// metadata directly instead of parsing a sideband comment stream, so driver
// and witness tests can exercise small hand-built hierarchies without a
// running solver.
type Simulated struct {
	modules map[string]*ModuleInfo
}

// SimOpt configures a Simulated under construction.
type SimOpt func(*Simulated)

// WithModule registers one module's metadata.
func WithModule(mi *ModuleInfo) SimOpt {
	return func(s *Simulated) { s.modules[mi.Name] = mi }
}

// NewSimulated builds a Simulated accessor from the given options.
func NewSimulated(opts ...SimOpt) *Simulated {
	s := &Simulated{modules: make(map[string]*ModuleInfo)}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Simulated) Module(name string) (*ModuleInfo, error) {
	mi, ok := s.modules[name]
	if !ok {
		return nil, ErrUnknownModule(name)
	}
	return mi, nil
}

func (s *Simulated) WellFormed(module, frameExpr string) string {
	return fmt.Sprintf("(%s_u %s)", module, frameExpr)
}

func (s *Simulated) Hier(module, frameExpr string) string {
	return fmt.Sprintf("(%s_h %s)", module, frameExpr)
}

func (s *Simulated) Initial(module, frameExpr string) string {
	return fmt.Sprintf("(%s_i %s)", module, frameExpr)
}

func (s *Simulated) IsInitialTag(module, frameExpr string) string {
	return fmt.Sprintf("(%s_is %s)", module, frameExpr)
}

func (s *Simulated) Transition(module, prevExpr, nextExpr string) string {
	return fmt.Sprintf("(%s_t %s %s)", module, prevExpr, nextExpr)
}

func (s *Simulated) AssertAll(module, frameExpr string) string {
	return fmt.Sprintf("(%s_a %s)", module, frameExpr)
}

func (s *Simulated) CellFrameExpr(module, parentFrameExpr, cellName string) string {
	return fmt.Sprintf("(|%s_h %s| %s)", module, cellName, parentFrameExpr)
}

func (s *Simulated) NetExpr(module, frameExpr string, path []string) (string, error) {
	if len(path) == 0 {
		return "", fmt.Errorf("empty net path")
	}
	curModule, curFrame := module, frameExpr
	for i, seg := range path {
		mi, err := s.Module(curModule)
		if err != nil {
			return "", err
		}
		if i == len(path)-1 {
			if _, ok := mi.NetByName(seg); !ok {
				return "", fmt.Errorf("module %q has no net %q", curModule, seg)
			}
			return fmt.Sprintf("(|%s_n %s| %s)", curModule, seg, curFrame), nil
		}
		found := false
		for _, c := range mi.Cells {
			if c.InstanceName == seg {
				curFrame = s.CellFrameExpr(curModule, curFrame, seg)
				curModule = c.ModuleName
				found = true
				break
			}
		}
		if !found {
			return "", fmt.Errorf("module %q has no cell %q", curModule, seg)
		}
	}
	return "", fmt.Errorf("empty net path")
}

func (s *Simulated) MemExpr(module, frameExpr string, memPath []string, port int, addrExpr string) (string, error) {
	if len(memPath) == 0 {
		return "", fmt.Errorf("empty memory path")
	}
	leaf := memPath[len(memPath)-1]
	parentModule, parentFrame := module, frameExpr
	for _, seg := range memPath[:len(memPath)-1] {
		mi, err := s.Module(parentModule)
		if err != nil {
			return "", err
		}
		found := false
		for _, c := range mi.Cells {
			if c.InstanceName == seg {
				parentFrame = s.CellFrameExpr(parentModule, parentFrame, seg)
				parentModule = c.ModuleName
				found = true
				break
			}
		}
		if !found {
			return "", fmt.Errorf("module %q has no cell %q", parentModule, seg)
		}
	}
	mi, err := s.Module(parentModule)
	if err != nil {
		return "", err
	}
	found := false
	for _, m := range mi.Memories {
		if m.Name == leaf {
			found = true
			break
		}
	}
	if !found {
		return "", fmt.Errorf("module %q has no memory %q", parentModule, leaf)
	}
	return fmt.Sprintf("(select (|%s_m%d %s| %s) %s)", parentModule, port, leaf, parentFrame, addrExpr), nil
}

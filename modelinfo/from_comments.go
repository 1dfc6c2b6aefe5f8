package modelinfo

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FromComments is the production Accessor: it scans the sideband
// "; yosys-smt2-*" comment stream embedded in the solver-ready input file
// (spec §6: "populates itself by parsing sideband comments in the same
// stream") and builds the per-module hierarchy, width, and memory tables
// once at startup.
type FromComments struct {
	modules map[string]*ModuleInfo
	order   []string
}

// ParseComments reads r line by line, collecting every "; yosys-smt2-..."
// directive into per-module metadata. Non-comment lines (the actual
// solver declarations) are ignored here; C3 is responsible for replaying
// them to the solver verbatim.
func ParseComments(r io.Reader) (*FromComments, error) {
	fc := &FromComments{modules: make(map[string]*ModuleInfo)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var cur *ModuleInfo
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "; yosys-smt2-") {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, ";"))
		if len(fields) == 0 {
			continue
		}
		directive := strings.TrimPrefix(fields[0], "yosys-smt2-")
		args := fields[1:]
		// A leading |quoted symbol| may contain spaces; rejoin it into args[0].
		if len(args) > 1 && strings.HasPrefix(args[0], "|") {
			for end := range args {
				if (end > 0 || len(args[0]) > 1) && strings.HasSuffix(args[end], "|") {
					args = append([]string{strings.Join(args[:end+1], " ")}, args[end+1:]...)
					break
				}
			}
		}

		switch directive {
		case "module":
			if len(args) != 1 {
				return nil, fmt.Errorf("line %d: malformed module directive", lineNo)
			}
			cur = &ModuleInfo{Name: args[0]}
			fc.modules[cur.Name] = cur
			fc.order = append(fc.order, cur.Name)
		case "input", "output", "register", "wire":
			if cur == nil || len(args) != 2 {
				return nil, fmt.Errorf("line %d: %s directive outside module or malformed", lineNo, directive)
			}
			width, err := strconv.Atoi(args[1])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: bad width", lineNo)
			}
			cur.Nets = append(cur.Nets, Net{Name: args[0], Width: width, Kind: directive})
		case "memory":
			if cur == nil || len(args) != 5 {
				return nil, fmt.Errorf("line %d: malformed memory directive", lineNo)
			}
			abits, err := strconv.Atoi(args[1])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: bad abits", lineNo)
			}
			width, err := strconv.Atoi(args[2])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: bad width", lineNo)
			}
			rdPorts, err := strconv.Atoi(args[3])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: bad rdports", lineNo)
			}
			wrPorts, err := strconv.Atoi(args[4])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: bad wrports", lineNo)
			}
			cur.Memories = append(cur.Memories, Memory{
				Name:      args[0],
				AddrWidth: abits,
				DataWidth: width,
				Ports:     rdPorts + wrPorts,
			})
		case "cell":
			if cur == nil || len(args) != 2 {
				return nil, fmt.Errorf("line %d: malformed cell directive", lineNo)
			}
			cur.Cells = append(cur.Cells, Cell{ModuleName: args[0], InstanceName: args[1]})
		case "assert":
			if cur == nil || len(args) < 2 {
				return nil, fmt.Errorf("line %d: malformed assert directive", lineNo)
			}
			cur.Asserts = append(cur.Asserts, SourceAssert{
				FuncName: args[0],
				Source:   strings.Join(args[1:], " "),
			})
		case "anyconst", "anyseq":
			if cur == nil || len(args) < 1 {
				return nil, fmt.Errorf("line %d: malformed %s directive", lineNo, directive)
			}
			tag := ""
			if len(args) > 1 {
				tag = strings.Join(args[1:], " ")
			}
			cur.FreeConstants = append(cur.FreeConstants, FreeConstant{FuncName: args[0], Tag: tag})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning solver input for sideband metadata")
	}
	return fc, nil
}

func (fc *FromComments) Module(name string) (*ModuleInfo, error) {
	mi, ok := fc.modules[name]
	if !ok {
		return nil, ErrUnknownModule(name)
	}
	return mi, nil
}

func (fc *FromComments) WellFormed(module, frameExpr string) string {
	return fmt.Sprintf("(%s_u %s)", module, frameExpr)
}

func (fc *FromComments) Hier(module, frameExpr string) string {
	return fmt.Sprintf("(%s_h %s)", module, frameExpr)
}

func (fc *FromComments) Initial(module, frameExpr string) string {
	return fmt.Sprintf("(%s_i %s)", module, frameExpr)
}

func (fc *FromComments) IsInitialTag(module, frameExpr string) string {
	return fmt.Sprintf("(%s_is %s)", module, frameExpr)
}

func (fc *FromComments) Transition(module, prevExpr, nextExpr string) string {
	return fmt.Sprintf("(%s_t %s %s)", module, prevExpr, nextExpr)
}

func (fc *FromComments) AssertAll(module, frameExpr string) string {
	return fmt.Sprintf("(%s_a %s)", module, frameExpr)
}

func (fc *FromComments) CellFrameExpr(module, parentFrameExpr, cellName string) string {
	return fmt.Sprintf("(|%s_h %s| %s)", module, cellName, parentFrameExpr)
}

func (fc *FromComments) NetExpr(module, frameExpr string, path []string) (string, error) {
	mi, err := fc.Module(module)
	if err != nil {
		return "", err
	}
	curModule, curFrame := module, frameExpr
	curInfo := mi
	for i, seg := range path {
		if i == len(path)-1 {
			if _, ok := curInfo.NetByName(seg); !ok {
				return "", fmt.Errorf("module %q has no net %q", curModule, seg)
			}
			return fmt.Sprintf("(|%s_n %s| %s)", curModule, seg, curFrame), nil
		}
		var next Cell
		found := false
		for _, c := range curInfo.Cells {
			if c.InstanceName == seg {
				next, found = c, true
				break
			}
		}
		if !found {
			return "", fmt.Errorf("module %q has no cell %q", curModule, seg)
		}
		curFrame = fc.CellFrameExpr(curModule, curFrame, seg)
		curModule = next.ModuleName
		curInfo, err = fc.Module(curModule)
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("empty net path")
}

func (fc *FromComments) MemExpr(module, frameExpr string, memPath []string, port int, addrExpr string) (string, error) {
	if len(memPath) == 0 {
		return "", fmt.Errorf("empty memory path")
	}
	leaf := memPath[len(memPath)-1]
	parentModule, parentFrame := module, frameExpr
	var err error
	for _, seg := range memPath[:len(memPath)-1] {
		mi, merr := fc.Module(parentModule)
		if merr != nil {
			return "", merr
		}
		found := false
		for _, c := range mi.Cells {
			if c.InstanceName == seg {
				parentFrame = fc.CellFrameExpr(parentModule, parentFrame, seg)
				parentModule = c.ModuleName
				found = true
				break
			}
		}
		if !found {
			return "", fmt.Errorf("module %q has no cell %q", parentModule, seg)
		}
	}
	mi, err := fc.Module(parentModule)
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

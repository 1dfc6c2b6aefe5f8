package modelinfo

import (
	"fmt"

	"github.com/emicklei/dot"
)

// RenderHierarchyDOT walks the cell instantiation tree rooted at topModule
// and renders it as a graphviz graph, one node per instance path. It is the
// implementation behind the --dump-hierarchy-dot CLI enrichment; nothing in
// the proving path depends on it.
func RenderHierarchyDOT(acc Accessor, topModule string) (string, error) {
	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "LR")

	var walk func(module, instPath string) (dot.Node, error)
	walk = func(module, instPath string) (dot.Node, error) {
		mi, err := acc.Module(module)
		if err != nil {
			return dot.Node{}, err
		}
		label := fmt.Sprintf("%s\\n(%s)", instPath, module)
		node := g.Node(instPath).Label(label)
		for _, c := range mi.Cells {
			childPath := instPath + "." + c.InstanceName
			childNode, err := walk(c.ModuleName, childPath)
			if err != nil {
				return dot.Node{}, err
			}
			g.Edge(node, childNode)
		}
		return node, nil
	}

	if _, err := walk(topModule, topModule); err != nil {
		return "", err
	}
	return g.String(), nil
}

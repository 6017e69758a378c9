package demo

import (
	"fmt"
	"strings"

	"github.com/m1gwings/treedrawer/tree"

	"github.com/go-drift/lifecycle/pkg/core"
)

// TreeNode is a detached copy of one element.
type TreeNode struct {
	Component string
	ID        string
	Hooks     []string
	Children  []*TreeNode
}

// hookLister is implemented by states that want their hooks shown in the
// tree output.
type hookLister interface {
	HookNames() []string
}

// Snapshot copies the subtree rooted at e. It returns nil for nil.
func Snapshot(e *core.StatefulElement) *TreeNode {
	if e == nil {
		return nil
	}
	node := &TreeNode{
		Component: componentName(e.Component()),
		ID:        e.ID(),
	}
	if hl, ok := e.State().(hookLister); ok {
		node.Hooks = hl.HookNames()
	}
	e.VisitChildren(func(child *core.StatefulElement) bool {
		node.Children = append(node.Children, Snapshot(child))
		return true
	})
	return node
}

// Label is the text drawn for the node.
func (n *TreeNode) Label() string {
	label := n.Component
	if len(n.ID) >= 8 {
		label += " #" + n.ID[:8]
	}
	if len(n.Hooks) > 0 {
		label += " [" + strings.Join(n.Hooks, ", ") + "]"
	}
	return label
}

// Draw renders the tree as box-drawing text.
func (n *TreeNode) Draw() string {
	if n == nil {
		return ""
	}
	t := tree.NewTree(tree.NodeString(n.Label()))
	for _, child := range n.Children {
		child.drawInto(t)
	}
	return t.String()
}

func (n *TreeNode) drawInto(parent *tree.Tree) {
	t := parent.AddChild(tree.NodeString(n.Label()))
	for _, child := range n.Children {
		child.drawInto(t)
	}
}

func componentName(c core.Component) string {
	name := fmt.Sprintf("%T", c)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimPrefix(name, "*")
}

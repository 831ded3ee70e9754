package doctree

import (
	"errors"

	"github.com/dgallion1/designmark/internal/errs"
)

// Limits bounds traversal of untrusted trees.
type Limits struct {
	MaxDepth int `toml:"max_depth"`
	MaxNodes int `toml:"max_nodes"`
}

// DefaultLimits returns ceilings generous enough for real design files.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth: 128,
		MaxNodes: 50000,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxDepth <= 0 {
		l.MaxDepth = d.MaxDepth
	}
	if l.MaxNodes <= 0 {
		l.MaxNodes = d.MaxNodes
	}
	return l
}

// Visit is one step of a traversal.
type Visit struct {
	Node   *Node
	Parent *Node // nil for the root
	Depth  int   // root is 0
	Index  int   // position among Parent's children
}

// SkipChildren may be returned by a walk callback to prune the subtree below
// the visited node.
var SkipChildren = errors.New("skip children")

// Walk visits root and its descendants in pre-order using an explicit stack.
// A node reached twice yields CYCLIC_STRUCTURE; exceeding lim yields
// LIMIT_EXCEEDED. Both abort the walk.
func Walk(root *Node, lim Limits, fn func(Visit) error) error {
	if root == nil {
		return nil
	}
	lim = lim.withDefaults()

	seen := make(map[*Node]struct{})
	stack := []Visit{{Node: root}}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if v.Node == nil {
			return errs.New(errs.CodeInvalidInput, "nil child at index %d of %s", v.Index, v.Parent.ID)
		}
		if _, dup := seen[v.Node]; dup {
			return errs.New(errs.CodeCyclicStructure, "node %q reached twice", v.Node.ID)
		}
		seen[v.Node] = struct{}{}
		if len(seen) > lim.MaxNodes {
			return errs.New(errs.CodeLimitExceeded, "tree exceeds %d nodes", lim.MaxNodes)
		}
		if v.Depth > lim.MaxDepth {
			return errs.New(errs.CodeLimitExceeded, "node %q nested deeper than %d", v.Node.ID, lim.MaxDepth)
		}

		err := fn(v)
		if errors.Is(err, SkipChildren) {
			continue
		}
		if err != nil {
			return err
		}

		kids := v.Node.Children
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, Visit{Node: kids[i], Parent: v.Node, Depth: v.Depth + 1, Index: i})
		}
	}
	return nil
}

// BottomUp returns the visits of Walk in an order where every node comes
// after all of its descendants.
func BottomUp(root *Node, lim Limits) ([]Visit, error) {
	var pre []Visit
	if err := Walk(root, lim, func(v Visit) error {
		pre = append(pre, v)
		return nil
	}); err != nil {
		return nil, err
	}
	for i, j := 0, len(pre)-1; i < j; i, j = i+1, j-1 {
		pre[i], pre[j] = pre[j], pre[i]
	}
	return pre, nil
}

// Validate checks the structural invariants the reader must guarantee:
// a group root, non-empty unique ids, childless leaves, no cycles, and a
// non-negative canvas.
func Validate(doc *Document, lim Limits) error {
	if doc == nil || doc.Root == nil {
		return errs.New(errs.CodeInvalidInput, "document has no root")
	}
	if !doc.Root.IsGroup() {
		return errs.New(errs.CodeInvalidInput, "root %q is not a group", doc.Root.ID)
	}
	if doc.Width < 0 || doc.Height < 0 {
		return errs.New(errs.CodeInvalidInput, "negative canvas %gx%g", doc.Width, doc.Height)
	}

	ids := make(map[string]struct{})
	return Walk(doc.Root, lim, func(v Visit) error {
		n := v.Node
		if n.ID == "" {
			return errs.New(errs.CodeInvalidInput, "node %q has no id", n.Name)
		}
		if _, dup := ids[n.ID]; dup {
			return errs.New(errs.CodeInvalidInput, "duplicate node id %q", n.ID)
		}
		ids[n.ID] = struct{}{}
		if n.IsLeaf() && len(n.Children) > 0 {
			return errs.New(errs.CodeInvalidInput, "leaf %q has %d children", n.ID, len(n.Children))
		}
		return nil
	})
}

// Index maps ids to nodes.
func Index(doc *Document) map[string]*Node {
	out := make(map[string]*Node)
	_ = Walk(doc.Root, Limits{}, func(v Visit) error {
		out[v.Node.ID] = v.Node
		return nil
	})
	return out
}

// VisibleGroups counts the groups whose whole ancestor chain is visible.
func VisibleGroups(doc *Document) int {
	count := 0
	_ = Walk(doc.Root, Limits{}, func(v Visit) error {
		if !v.Node.Visible {
			return SkipChildren
		}
		if v.Node.IsGroup() {
			count++
		}
		return nil
	})
	return count
}

package lower

import (
	"github.com/raymyers/ralph-pl0/pkg/ir"
)

// Flatten splices every statement list nested directly in another statement
// list into its parent, innermost first. A labeled list hands its label to a
// new leading nop so branches to it stay resolvable.
func Flatten(tree *ir.Tree) error {
	for _, id := range tree.PostOrder(tree.Root) {
		n := tree.Node(id)
		list, ok := n.Payload.(*ir.StatList)
		if !ok {
			continue
		}
		if _, ok := tree.Payload(n.Parent).(*ir.StatList); !ok {
			continue
		}
		if n.Label != nil {
			nop := tree.Add(n.Scope, &ir.EmptyStat{})
			tree.Node(nop).Parent = id
			list.Children = append([]ir.NodeID{nop}, list.Children...)
			if err := tree.Relabel(n.Label, nop); err != nil {
				return err
			}
		}
		if err := tree.Inline(id); err != nil {
			return err
		}
	}
	return nil
}

package projection

import (
	"chat-core/domain"
	"iter"
)

// Node is one message of an assembled thread. It is plain data: walking it
// twice yields the same result.
type Node struct {
	Message  domain.Message
	Sender   *domain.Profile
	Children []*Node
}

// All walks the subtree in pre-order, children in their stored order.
func (n *Node) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if n == nil {
			return
		}
		stack := []*Node{n}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(cur) {
				return
			}
			for i := len(cur.Children) - 1; i >= 0; i-- {
				stack = append(stack, cur.Children[i])
			}
		}
	}
}

// Count is the number of nodes of the subtree, n included.
func (n *Node) Count() int {
	count := 0
	for range n.All() {
		count++
	}
	return count
}

// NodeView is the serializable form of a thread.
type NodeView struct {
	domain.Message
	Sender  *domain.Profile `json:"sender,omitempty"`
	Replies []NodeView      `json:"replies"`
}

func (n *Node) View() NodeView {
	view := NodeView{Message: n.Message, Sender: n.Sender, Replies: make([]NodeView, 0, len(n.Children))}
	for _, child := range n.Children {
		view.Replies = append(view.Replies, child.View())
	}
	return view
}

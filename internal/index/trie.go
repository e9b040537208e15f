package index

import "github.com/emiliopalmerini/fpstudy/internal/domain"

// Node is one level of a Trie. Count is the number of rows whose leading
// levels match the path from the root to this node.
type Node struct {
	count    int
	children map[int]*Node
}

// Child returns the node one level below n for value v, or nil when no row
// continues the path with v. Calling Child on a nil node returns nil.
func (n *Node) Child(v int) *Node {
	if n == nil {
		return nil
	}
	return n.children[v]
}

// Count returns the number of rows below n. A nil node counts zero.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	return n.count
}

func (n *Node) insert(v int) *Node {
	if n.children == nil {
		n.children = make(map[int]*Node)
	}
	c, ok := n.children[v]
	if !ok {
		c = &Node{}
		n.children[v] = c
	}
	c.count++
	return c
}

// Trie is a prefix-count index. Every row contributes one to the count of
// each node on its path, so a prefix exists iff its node is reachable.
type Trie struct {
	root  *Node
	depth int
}

// NewTrie builds a trie over the keys projected from rows. Duplicate rows
// are counted once per occurrence.
func NewTrie[K Key](rows []domain.DecisionRow, project func(domain.DecisionRow) K) *Trie {
	var zero K
	t := &Trie{root: &Node{}, depth: zero.Depth()}
	for _, r := range rows {
		k := project(r)
		n := t.root
		n.count++
		for i := 0; i < t.depth; i++ {
			n = n.insert(k.Level(i))
		}
	}
	return t
}

// Root returns the top node; its count is the number of rows.
func (t *Trie) Root() *Node {
	return t.root
}

// Depth returns the number of levels of the indexed key.
func (t *Trie) Depth() int {
	return t.depth
}

// HasPrefix reports whether at least one row starts with prefix. The empty
// prefix matches iff the trie holds any row. Prefixes longer than the key
// never match.
func (t *Trie) HasPrefix(prefix ...int) bool {
	return t.Count(prefix...) > 0
}

// Count returns the number of rows starting with prefix.
func (t *Trie) Count(prefix ...int) int {
	if len(prefix) > t.depth {
		return 0
	}
	n := t.root
	for _, v := range prefix {
		n = n.Child(v)
		if n == nil {
			return 0
		}
	}
	return n.Count()
}

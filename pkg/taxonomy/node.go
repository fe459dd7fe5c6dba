package taxonomy

import "sort"

// Node is one canonical category with its synonyms and direct parents.
// Nodes are owned by a Graph and never change once the Graph is built.
type Node struct {
	Term     string
	synonyms map[string]struct{}
	parents  map[string]struct{}
}

func newNode(term string) *Node {
	return &Node{
		Term:     term,
		synonyms: map[string]struct{}{term: {}},
		parents:  make(map[string]struct{}),
	}
}

// HasSynonym reports whether label identifies this node.
func (n *Node) HasSynonym(label string) bool {
	_, ok := n.synonyms[label]
	return ok
}

// HasParent reports whether term is a direct parent of this node.
func (n *Node) HasParent(term string) bool {
	_, ok := n.parents[term]
	return ok
}

// Synonyms returns the synonym set in ascending order. It includes Term.
func (n *Node) Synonyms() []string {
	return sortedKeys(n.synonyms)
}

// Parents returns the direct parent terms in ascending order.
func (n *Node) Parents() []string {
	return sortedKeys(n.parents)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

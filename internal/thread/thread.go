// Package thread turns the flat, creation-ordered comment list of a
// discussion into a reply tree and back.
package thread

// Item is anything that can be placed into a reply tree.
type Item interface {
	ThreadID() string
	// ThreadParentID is empty for top-level items.
	ThreadParentID() string
}

// Tree is one node of an assembled thread.
type Tree[T Item] struct {
	Item    T
	Replies []*Tree[T]
}

// Assemble links items to their parents in two passes. Items without a parent,
// whose parent is not in the list (for example a deleted comment), or whose
// parent chain loops back to themselves become roots. Replies keep the
// relative order of the input. If an id appears more than once only its first
// occurrence is used.
func Assemble[T Item](items []T) []*Tree[T] {
	nodes := make(map[string]*Tree[T], len(items))
	parents := make(map[string]string, len(items))
	for _, it := range items {
		id := it.ThreadID()
		if _, dup := nodes[id]; dup {
			continue
		}
		nodes[id] = &Tree[T]{Item: it, Replies: []*Tree[T]{}}
		parents[id] = it.ThreadParentID()
	}

	roots := make([]*Tree[T], 0)
	placed := make(map[string]bool, len(nodes))
	for _, it := range items {
		id := it.ThreadID()
		if placed[id] {
			continue
		}
		placed[id] = true

		node := nodes[id]
		if pid := parents[id]; pid != "" && !inCycle(id, parents) {
			if parent, ok := nodes[pid]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// inCycle reports whether following parents from id comes back to id.
// A chain that runs into some other loop stops after len(parents) steps.
func inCycle(id string, parents map[string]string) bool {
	cur := id
	for range len(parents) {
		pid, ok := parents[cur]
		if !ok || pid == "" {
			return false
		}
		if pid == id {
			return true
		}
		cur = pid
	}
	return false
}

// Flatten walks the trees depth first, parents before their replies.
func Flatten[T Item](roots []*Tree[T]) []T {
	out := make([]T, 0, Size(roots))
	var walk func(nodes []*Tree[T])
	walk = func(nodes []*Tree[T]) {
		for _, n := range nodes {
			out = append(out, n.Item)
			walk(n.Replies)
		}
	}
	walk(roots)
	return out
}

// Size counts every node in the trees.
func Size[T Item](roots []*Tree[T]) int {
	n := 0
	for _, r := range roots {
		n += 1 + Size(r.Replies)
	}
	return n
}

// Depth returns the number of ancestors of id. parent reports the parent of
// an id, or "" for a root. The walk stops after limit+1 steps, so any result
// greater than limit only means "too deep".
func Depth(id string, limit int, parent func(id string) (string, error)) (int, error) {
	depth := 0
	cur := id
	for depth <= limit {
		pid, err := parent(cur)
		if err != nil {
			return 0, err
		}
		if pid == "" {
			return depth, nil
		}
		depth++
		cur = pid
	}
	return depth, nil
}

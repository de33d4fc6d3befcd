// Copyright 2022 Princess B33f Heavy Industries / Dave Shanley
// SPDX-License-Identifier: MIT

package refgraph

// Tarjan's algorithm, iterative with an explicit stack so that a
// pathologically deep or cyclic reference chain cannot blow the Go call
// stack (spec.md §9: "SCC detection on the resulting edge set is
// iterative (explicit stack) to avoid deep-recursion failures").

type tarjanState struct {
	index   map[string]int
	low     map[string]int
	onStack map[string]bool
	stack   []string
	nextIdx int
	sccOf   map[string]int
	nextSCC int
}

// computeSCC runs Tarjan over every node reachable via forward edges and
// returns a map from node key to SCC id, along with the set of nodes that
// have a direct self-loop (A -> A), which also counts as a cycle per
// spec.md §8 even though Tarjan alone would put a self-loop node in its
// own singleton SCC. The caller must hold g.mu.
func (g *Graph) computeSCC() (map[string]int, map[string]bool) {
	nodes := map[string]Node{}
	forward := map[string][]string{}
	selfLoop := map[string]bool{}
	for from, edges := range g.forwardByNode {
		for _, e := range edges {
			nodes[from] = e.From
			to := e.To.Key()
			nodes[to] = e.To
			forward[from] = append(forward[from], to)
			if from == to {
				selfLoop[from] = true
			}
		}
	}

	st := &tarjanState{
		index:   map[string]int{},
		low:     map[string]int{},
		onStack: map[string]bool{},
		sccOf:   map[string]int{},
	}

	for key := range nodes {
		if _, seen := st.index[key]; !seen {
			st.strongConnect(key, forward)
		}
	}
	return st.sccOf, selfLoop
}

type frame struct {
	node     string
	children []string
	ci       int
}

// strongConnect runs the classic Tarjan DFS for the component containing
// start, using an explicit stack of frames instead of recursion.
func (st *tarjanState) strongConnect(start string, forward map[string][]string) {
	var call []*frame
	push := func(v string) {
		st.index[v] = st.nextIdx
		st.low[v] = st.nextIdx
		st.nextIdx++
		st.stack = append(st.stack, v)
		st.onStack[v] = true
		call = append(call, &frame{node: v, children: forward[v]})
	}
	push(start)

	for len(call) > 0 {
		top := call[len(call)-1]
		if top.ci < len(top.children) {
			w := top.children[top.ci]
			top.ci++
			if _, seen := st.index[w]; !seen {
				push(w)
				continue
			}
			if st.onStack[w] {
				if st.index[w] < st.low[top.node] {
					st.low[top.node] = st.index[w]
				}
			}
			continue
		}

		// children exhausted: pop and propagate low-link to caller
		call = call[:len(call)-1]
		if st.low[top.node] == st.index[top.node] {
			for {
				n := len(st.stack) - 1
				w := st.stack[n]
				st.stack = st.stack[:n]
				st.onStack[w] = false
				st.sccOf[w] = st.nextSCC
				if w == top.node {
					break
				}
			}
			st.nextSCC++
		}
		if len(call) > 0 {
			parent := call[len(call)-1]
			if st.low[top.node] < st.low[parent.node] {
				st.low[parent.node] = st.low[top.node]
			}
		}
	}
}

// HasCycle reports whether node lies on an SCC of size >= 2 or has a
// direct self-loop, per spec.md §8.
func (g *Graph) HasCycle(node Node) bool {
	g.mu.Lock()
	if !g.sccValid {
		g.sccOf, g.selfLoop = g.computeSCC()
		g.sccValid = true
	}
	sccOf, selfLoop := g.sccOf, g.selfLoop
	g.mu.Unlock()

	key := node.Key()
	if selfLoop[key] {
		return true
	}
	id, ok := sccOf[key]
	if !ok {
		return false
	}
	count := 0
	for _, other := range sccOf {
		if other == id {
			count++
			if count > 1 {
				return true
			}
		}
	}
	return false
}

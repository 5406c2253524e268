// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package graph

// Strategy selects the traversal algorithm.
type Strategy string

const (
	StrategyBFS Strategy = "bfs"
	StrategyDFS Strategy = "dfs"
)

// Direction selects which edges a traversal follows.
type Direction string

const (
	DirectionForward Direction = "forward"
	DirectionReverse Direction = "reverse"
	DirectionBoth    Direction = "both"
)

// TraverseOptions configures a single traversal (C7).
type TraverseOptions struct {
	Strategy   Strategy
	Direction  Direction
	Depth      int
	KindFilter map[Kind]bool // nil/empty means no filter
	BatchLoad  bool           // BFS-only hint
}

// TraversalResult is one node encountered during a traversal, tagged with
// its distance from the start and the direction it was reached by.
type TraversalResult struct {
	Node      map[string]any
	Depth     int
	Direction Direction
}

// neighbors returns the node ids adjacent to id in the requested direction.
// FORWARD always returns empty — forward edges are not stored; the engine
// documents this and offers get_calls (C8) as the on-demand alternative
// (§4.6).
func (g *Graph) neighbors(id string, dir Direction) []string {
	switch dir {
	case DirectionReverse:
		return g.DependentsOf(id)
	case DirectionBoth:
		return g.DependentsOf(id)
	default:
		return nil
	}
}

// Traverse implements BFS/DFS over the dependency index starting at
// startID, per §4.6.
func (g *Graph) Traverse(startID string, opts TraverseOptions) []TraversalResult {
	if opts.Depth < 1 {
		return nil
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyBFS
	}
	if opts.Direction == "" {
		opts.Direction = DirectionReverse
	}

	visited := map[string]bool{startID: true}
	var out []TraversalResult

	include := func(id string, depth int, dir Direction) {
		n, ok := g.NodeByID(id)
		if !ok {
			return
		}
		if len(opts.KindFilter) > 0 && !opts.KindFilter[n.Kind] {
			return
		}
		out = append(out, TraversalResult{
			Node:      Serialize(n, SerializeOptions{Level: LevelSkeleton, Format: FormatStandard}),
			Depth:     depth,
			Direction: dir,
		})
	}

	if opts.Strategy == StrategyDFS {
		g.dfs(startID, 0, opts, visited, include)
		return out
	}

	// BFS, grouped by increasing depth; batch_load resolves a full level
	// against the graph before moving to the next.
	frontier := []string{startID}
	for depth := 1; depth <= opts.Depth && len(frontier) > 0; depth++ {
		var next []string
		var levelIDs []string
		for _, id := range frontier {
			for _, nb := range g.neighbors(id, opts.Direction) {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				levelIDs = append(levelIDs, nb)
				next = append(next, nb)
			}
		}
		if opts.BatchLoad {
			for _, id := range levelIDs {
				_, _ = g.NodeByID(id) // resolved as a batch; loaded nodes come from memory only
			}
		}
		for _, id := range levelIDs {
			include(id, depth, opts.Direction)
		}
		frontier = next
	}
	return out
}

func (g *Graph) dfs(id string, depth int, opts TraverseOptions, visited map[string]bool, include func(string, int, Direction)) {
	if depth >= opts.Depth {
		return
	}
	for _, nb := range g.neighbors(id, opts.Direction) {
		if visited[nb] {
			continue
		}
		visited[nb] = true
		include(nb, depth+1, opts.Direction)
		g.dfs(nb, depth+1, opts, visited, include)
	}
}

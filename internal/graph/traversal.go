package graph

import "github.com/example/tutorcore/pkg/models"

// PrerequisiteChain returns all transitive prerequisites of id, each after
// its own prerequisites. id itself is not included.
func PrerequisiteChain(g *models.Graph, id string) []string {
	c, ok := g.Concept(id)
	if !ok {
		return nil
	}
	visited := map[string]bool{id: true}
	var order []string

	var visit func(cid string)
	visit = func(cid string) {
		if visited[cid] {
			return
		}
		visited[cid] = true
		pc, ok := g.Concept(cid)
		if !ok {
			return
		}
		for _, pre := range pc.Prerequisites {
			visit(pre)
		}
		order = append(order, cid)
	}

	for _, pre := range c.Prerequisites {
		visit(pre)
	}
	return order
}

// Dependents returns every concept that transitively requires id, in
// declaration order.
func Dependents(g *models.Graph, id string) []string {
	direct := make(map[string][]string, g.Len())
	for _, c := range g.Concepts() {
		for _, pre := range c.Prerequisites {
			direct[pre] = append(direct[pre], c.ID)
		}
	}

	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range direct[cur] {
			if !seen[dep] {
				seen[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	var out []string
	for _, cid := range g.IDs() {
		if cid != id && seen[cid] {
			out = append(out, cid)
		}
	}
	return out
}

// Depth returns the number of edges on the longest prerequisite path below
// id. Edges that close a cycle are not followed.
func Depth(g *models.Graph, id string) int {
	return depths(g)[id]
}

func depths(g *models.Graph) map[string]int {
	memo := make(map[string]int, g.Len())
	onStack := make(map[string]bool)

	var walk func(cid string) int
	walk = func(cid string) int {
		if d, ok := memo[cid]; ok {
			return d
		}
		c, ok := g.Concept(cid)
		if !ok || onStack[cid] {
			return -1
		}
		onStack[cid] = true
		best := 0
		for _, pre := range c.Prerequisites {
			if d := walk(pre); d >= 0 && d+1 > best {
				best = d + 1
			}
		}
		onStack[cid] = false
		memo[cid] = best
		return best
	}

	for _, cid := range g.IDs() {
		walk(cid)
	}
	return memo
}

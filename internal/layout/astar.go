package layout

import "container/heap"

// astar runs A* over the node arena from start to goal (node ids), using the
// Euclidean distance to the goal as the heuristic. Edge costs are at least
// the Euclidean distance between their endpoints, so the heuristic is
// admissible. Returns the node id path including both endpoints, the total
// cost, and whether a path exists.
func astar(nodes []node, start, goal int) ([]int, float64, bool) {
	if start == goal {
		return []int{start}, 0, true
	}

	goalPos := nodes[goal].pos
	open := &openHeap{}
	heap.Init(open)
	heap.Push(open, &openItem{id: start, fScore: nodes[start].pos.Distance(goalPos)})

	cameFrom := make(map[int]int)
	gScore := map[int]float64{start: 0}
	closed := make(map[int]bool)

	for open.Len() > 0 {
		current := heap.Pop(open).(*openItem)
		if current.id == goal {
			return rebuild(cameFrom, start, goal), gScore[goal], true
		}
		if closed[current.id] {
			continue
		}
		closed[current.id] = true

		for _, e := range nodes[current.id].edges {
			if closed[e.to] {
				continue
			}
			tentative := gScore[current.id] + e.cost
			if old, seen := gScore[e.to]; !seen || tentative < old {
				cameFrom[e.to] = current.id
				gScore[e.to] = tentative
				heap.Push(open, &openItem{
					id:     e.to,
					fScore: tentative + nodes[e.to].pos.Distance(goalPos),
				})
			}
		}
	}

	return nil, 0, false
}

func rebuild(cameFrom map[int]int, start, goal int) []int {
	path := []int{goal}
	for current := goal; current != start; {
		current = cameFrom[current]
		path = append(path, current)
	}
	// Reverse into start-to-goal order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// --- Priority Queue Implementation ---

type openItem struct {
	id     int
	fScore float64
}

type openHeap []*openItem

func (h openHeap) Len() int           { return len(h) }
func (h openHeap) Less(i, j int) bool { return h[i].fScore < h[j].fScore }
func (h openHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *openHeap) Push(x any)        { *h = append(*h, x.(*openItem)) }
func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

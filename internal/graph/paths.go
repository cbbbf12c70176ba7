package graph

import "container/heap"

// HopsFrom returns every node reachable from origin within maxHops edges,
// mapped to its hop count. maxHops < 0 means no limit.
func (t *Tree) HopsFrom(origin int, maxHops int) map[int]int {
	result := make(map[int]int)
	if _, ok := t.Nodes[origin]; !ok {
		return result
	}
	result[origin] = 0

	queue := []int{origin}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		dist := result[current]
		if maxHops >= 0 && dist >= maxHops {
			continue
		}
		for _, neighbor := range t.Adj[current] {
			if _, visited := result[neighbor]; !visited {
				result[neighbor] = dist + 1
				queue = append(queue, neighbor)
			}
		}
	}
	return result
}

// ShortestPath returns the fewest edges between origin and dest using
// Dijkstra. Ascendancy nodes are not traversed unless they are an endpoint.
// Returns -1 if no path exists.
func (t *Tree) ShortestPath(origin, dest int) int {
	if _, ok := t.Nodes[origin]; !ok {
		return -1
	}
	if _, ok := t.Nodes[dest]; !ok {
		return -1
	}
	if origin == dest {
		return 0
	}

	dist := make(map[int]int)
	dist[origin] = 0

	pq := &priorityQueue{{nodeID: origin, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)
		if item.nodeID == dest {
			return item.dist
		}
		if d, ok := dist[item.nodeID]; ok && item.dist > d {
			continue
		}
		for _, neighbor := range t.Adj[item.nodeID] {
			if neighbor != dest && t.Nodes[neighbor].IsAscendancy {
				continue
			}
			nd := item.dist + 1
			if d, ok := dist[neighbor]; !ok || nd < d {
				dist[neighbor] = nd
				heap.Push(pq, pqItem{nodeID: neighbor, dist: nd})
			}
		}
	}
	return -1
}

// Priority queue for Dijkstra
type pqItem struct {
	nodeID int
	dist   int
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	return pq[i].nodeID < pq[j].nodeID
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)   { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

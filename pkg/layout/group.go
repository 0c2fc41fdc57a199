package layout

import (
	"slices"

	"github.com/habitflow/scheduler/pkg/event"
)

// Overlaps reports whether two events share a stretch of time. Events that only touch
// (one ends exactly when the other starts) do not overlap, and neither do events
// without valid times.
func Overlaps(a, b event.Event) bool {
	if !a.HasValidTimes() || !b.HasValidTimes() {
		return false
	}
	return a.StartDate.Before(b.EndDate) && b.StartDate.Before(a.EndDate)
}

// GroupOverlapping partitions events into groups of transitively overlapping events.
// Groups are ordered by their earliest event and each group is sorted by start time.
// Events with equal start times keep their input order.
func GroupOverlapping(events []event.Event) [][]event.Event {
	groups := make([][]event.Event, 0)
	for _, indices := range groupIndices(events) {
		group := make([]event.Event, 0, len(indices))
		for _, i := range indices {
			group = append(group, events[i])
		}
		groups = append(groups, group)
	}
	return groups
}

// groupIndices returns the connected components of the overlap graph as indices into events.
func groupIndices(events []event.Event) [][]int {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]int, len(events))
	for i := range sorted {
		sorted[i] = i
	}
	slices.SortStableFunc(sorted, func(a, b int) int {
		return events[a].StartDate.Compare(events[b].StartDate)
	})

	adjacency := make([][]int, len(sorted))
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if Overlaps(events[sorted[i]], events[sorted[j]]) {
				adjacency[i] = append(adjacency[i], j)
				adjacency[j] = append(adjacency[j], i)
			}
		}
	}

	visited := make([]bool, len(sorted))
	components := make([][]int, 0)
	for root := range sorted {
		if visited[root] {
			continue
		}
		component := make([]int, 0, 1)
		stack := []int{root}
		visited[root] = true
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, node)
			for _, next := range adjacency[node] {
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}
		// positions in the sorted list, so ordering them restores start order with stable ties
		slices.Sort(component)
		for k, pos := range component {
			component[k] = sorted[pos]
		}
		components = append(components, component)
	}
	return components
}

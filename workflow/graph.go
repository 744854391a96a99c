package workflow

import "strings"

// findCycle searches the dependency graph for a cycle and returns the
// step names along it (first name repeated at the end), or nil if the
// graph is acyclic. Unknown dependencies are ignored here; Validate
// reports them separately before cycle detection runs.
func findCycle(steps []Step) []string {
	deps := make(map[string][]string, len(steps))
	for _, s := range steps {
		deps[s.Name] = s.Dependencies
	}

	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(steps))

	var stack []string
	var walk func(name string) []string
	walk = func(name string) []string {
		state[name] = inStack
		stack = append(stack, name)

		for _, dep := range deps[name] {
			if _, known := deps[dep]; !known {
				continue
			}
			switch state[dep] {
			case inStack:
				// Found a back edge; slice out the cycle path.
				for i, n := range stack {
					if n == dep {
						cycle := append([]string{}, stack[i:]...)
						return append(cycle, dep)
					}
				}
			case unvisited:
				if cycle := walk(dep); cycle != nil {
					return cycle
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[name] = done
		return nil
	}

	for _, s := range steps {
		if state[s.Name] == unvisited {
			if cycle := walk(s.Name); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// joinCycle renders a cycle path as "a -> b -> a".
func joinCycle(cycle []string) string {
	return strings.Join(cycle, " -> ")
}

// topoOrder returns the steps in a topological order of the dependency
// graph using Kahn's algorithm. Among the steps that are ready at any
// point, the one declared earliest runs first, so the order is
// deterministic and degenerates to declaration order when that order is
// already topological. The caller must have validated the graph: every
// dependency resolves and no cycle exists.
func topoOrder(steps []Step) []Step {
	indegree := make([]int, len(steps))
	dependents := make(map[string][]int, len(steps))
	for i, s := range steps {
		indegree[i] = len(s.Dependencies)
		for _, dep := range s.Dependencies {
			dependents[dep] = append(dependents[dep], i)
		}
	}

	scheduled := make([]bool, len(steps))
	order := make([]Step, 0, len(steps))
	for len(order) < len(steps) {
		// Pick the earliest-declared step with no unscheduled dependencies.
		next := -1
		for i := range steps {
			if !scheduled[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			// Unreachable on a validated DAG.
			break
		}

		scheduled[next] = true
		order = append(order, steps[next])
		for _, dep := range dependents[steps[next].Name] {
			indegree[dep]--
		}
	}
	return order
}

// Package dag compiles a flat list of step declarations into a topological
// execution order using Kahn's algorithm.
package dag

import (
	"fmt"
	"sort"

	stacerrors "github.com/stacflow/stacflow/pkg/errors"
)

// Node is one step's graph-relevant shape: its id and the ids it depends on.
type Node struct {
	ID        string
	DependsOn []string
}

// Compile validates nodes (unique ids, declared dependencies, acyclic) and
// returns a topological ordering of their ids, ties broken lexicographically
// for determinism. It also enforces linearity: the compiled graph must be a
// single chain (one root, one leaf, every other node with exactly one
// predecessor and one successor), matching the executor's single lazy pull
// chain.
func Compile(nodes []Node) ([]string, error) {
	if len(nodes) == 0 {
		return nil, stacerrors.NewConfigurationError("steps", "workflow must declare at least one step", nil)
	}

	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		if _, exists := byID[n.ID]; exists {
			return nil, stacerrors.NewConfigurationError("steps", fmt.Sprintf("duplicate step id %q", n.ID), nil)
		}
		byID[n.ID] = n
	}

	for _, n := range nodes {
		for _, dep := range n.DependsOn {
			if _, ok := byID[dep]; !ok {
				return nil, stacerrors.NewConfigurationError(
					fmt.Sprintf("steps[%s].depends_on", n.ID),
					fmt.Sprintf("references unknown step %q", dep),
					nil,
				)
			}
		}
	}

	order, err := topologicalSort(nodes, byID)
	if err != nil {
		return nil, err
	}

	if err := assertLinear(nodes, byID); err != nil {
		return nil, err
	}

	return order, nil
}

// topologicalSort implements Kahn's algorithm: repeatedly emit the
// lexicographically smallest zero-in-degree node, decrementing its
// successors' in-degree. A non-empty residual queue after emission stalls
// means a cycle.
func topologicalSort(nodes []Node, byID map[string]Node) ([]string, error) {
	inDegree := make(map[string]int, len(nodes))
	successors := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		if _, ok := inDegree[n.ID]; !ok {
			inDegree[n.ID] = 0
		}
		for _, dep := range n.DependsOn {
			inDegree[n.ID]++
			successors[dep] = append(successors[dep], n.ID)
		}
	}

	var ready []string
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(nodes))
	for len(ready) > 0 {
		sort.Strings(ready)
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		next := append([]string(nil), successors[id]...)
		sort.Strings(next)
		for _, succ := range next {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				ready = append(ready, succ)
			}
		}
	}

	if len(order) != len(nodes) {
		remaining := make([]string, 0, len(nodes)-len(order))
		emitted := make(map[string]bool, len(order))
		for _, id := range order {
			emitted[id] = true
		}
		for _, n := range nodes {
			if !emitted[n.ID] {
				remaining = append(remaining, n.ID)
			}
		}
		sort.Strings(remaining)
		return nil, stacerrors.NewConfigurationError(
			"steps",
			fmt.Sprintf("cycle detected among steps: %v", remaining),
			nil,
		)
	}

	return order, nil
}

// assertLinear rejects any graph that is not a single chain: exactly one
// node with zero dependencies, exactly one with zero dependents, and every
// other node with exactly one of each.
func assertLinear(nodes []Node, byID map[string]Node) error {
	dependents := make(map[string]int, len(nodes))
	for _, n := range nodes {
		for _, dep := range n.DependsOn {
			dependents[dep]++
		}
		if len(n.DependsOn) > 1 {
			return stacerrors.NewConfigurationError(
				fmt.Sprintf("steps[%s].depends_on", n.ID),
				"non-linear graph: a step may depend on at most one predecessor",
				nil,
			)
		}
	}

	roots, leaves := 0, 0
	for _, n := range nodes {
		if len(n.DependsOn) == 0 {
			roots++
		}
		if dependents[n.ID] == 0 {
			leaves++
		}
		if dependents[n.ID] > 1 {
			return stacerrors.NewConfigurationError(
				fmt.Sprintf("steps[%s]", n.ID),
				"non-linear graph: a step may have at most one dependent",
				nil,
			)
		}
	}

	if roots != 1 {
		return stacerrors.NewConfigurationError("steps", fmt.Sprintf("expected exactly one step with no dependencies, found %d", roots), nil)
	}
	if leaves != 1 {
		return stacerrors.NewConfigurationError("steps", fmt.Sprintf("expected exactly one step with no dependents, found %d", leaves), nil)
	}

	return nil
}

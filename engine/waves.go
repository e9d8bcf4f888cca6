package engine

import (
	"cmp"
	"slices"

	"github.com/broady/commonizer/cir"
)

// schedule splits groups into waves. A group is placed in a later wave than
// every group it references, except for groups on the same reference cycle,
// which share a wave. Indices within a wave are sorted by group ID, then by
// input position.
func schedule(groups []*Group) [][]int {
	byID := make(map[cir.ClassifierID][]int, len(groups))
	for i, g := range groups {
		if g != nil {
			byID[g.ID] = append(byID[g.ID], i)
		}
	}

	deps := make([][]int, len(groups))
	for i, g := range groups {
		if g == nil {
			continue
		}
		for id := range g.references() {
			deps[i] = append(deps[i], byID[id]...)
		}
		slices.Sort(deps[i])
		deps[i] = slices.Compact(deps[i])
	}

	components := stronglyConnected(deps)

	// Tarjan emits a component only after every component it depends on,
	// so one pass in emission order assigns final levels.
	level := make([]int, len(groups))
	var waves [][]int
	for _, comp := range components {
		lvl := 0
		for _, i := range comp {
			for _, j := range deps[i] {
				if !slices.Contains(comp, j) {
					lvl = max(lvl, level[j]+1)
				}
			}
		}
		for _, i := range comp {
			level[i] = lvl
		}
		for len(waves) <= lvl {
			waves = append(waves, nil)
		}
		waves[lvl] = append(waves[lvl], comp...)
	}

	id := func(i int) cir.ClassifierID {
		if groups[i] == nil {
			return cir.ClassifierID{}
		}
		return groups[i].ID
	}
	for _, wave := range waves {
		slices.SortFunc(wave, func(a, b int) int {
			if c := id(a).Compare(id(b)); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})
	}
	return waves
}

// stronglyConnected returns the strongly connected components of the graph
// with edges i -> deps[i], dependencies first.
func stronglyConnected(deps [][]int) [][]int {
	var (
		index    = 0
		indices  = make([]int, len(deps))
		lowlinks = make([]int, len(deps))
		onStack  = make([]bool, len(deps))
		stack    []int
		out      [][]int
	)
	for i := range indices {
		indices[i] = -1
	}

	var visit func(v int)
	visit = func(v int) {
		indices[v] = index
		lowlinks[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range deps[v] {
			switch {
			case indices[w] < 0:
				visit(w)
				lowlinks[v] = min(lowlinks[v], lowlinks[w])
			case onStack[w]:
				lowlinks[v] = min(lowlinks[v], indices[w])
			}
		}

		if lowlinks[v] == indices[v] {
			var comp []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			out = append(out, comp)
		}
	}

	for v := range deps {
		if indices[v] < 0 {
			visit(v)
		}
	}
	return out
}

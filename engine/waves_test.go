package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/broady/commonizer/cir"
)

func TestSchedule(t *testing.T) {
	box := cir.ClassRef("shared", "Box")
	ref := func(name string) cir.ClassOrTypeAliasType { return cir.ClassRef("lib", name) }

	tests := []struct {
		name   string
		groups []*Group
		want   [][]int
	}{
		{
			name:   "independent groups share a wave",
			groups: []*Group{aliasGroup("lib", "B", box), aliasGroup("lib", "A", box)},
			want:   [][]int{{1, 0}},
		},
		{
			name: "chain",
			groups: []*Group{
				aliasGroup("lib", "C", ref("B")),
				aliasGroup("lib", "B", ref("A")),
				aliasGroup("lib", "A", box),
			},
			want: [][]int{{2}, {1}, {0}},
		},
		{
			name: "cycle shares a wave",
			groups: []*Group{
				aliasGroup("lib", "Top", ref("P")),
				aliasGroup("lib", "Q", ref("P")),
				aliasGroup("lib", "P", ref("Q")),
			},
			want: [][]int{{2, 1}, {0}},
		},
		{
			name: "reference through type argument",
			groups: []*Group{
				aliasGroup("lib", "L", cir.ClassRef("shared", "List", cir.Arg(ref("E")))),
				aliasGroup("lib", "E", box),
			},
			want: [][]int{{1}, {0}},
		},
		{
			name: "self reference",
			groups: []*Group{
				aliasGroup("lib", "S", cir.ClassRef("shared", "List", cir.Arg(ref("S")))),
			},
			want: [][]int{{0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schedule(tt.groups))
		})
	}
}

func TestStronglyConnected(t *testing.T) {
	// 0 -> 1 -> 2 -> 1, 3 alone
	deps := [][]int{{1}, {2}, {1}, nil}
	got := stronglyConnected(deps)
	assert.Len(t, got, 3)
	assert.ElementsMatch(t, []int{1, 2}, got[0], "dependencies come first")
	assert.Equal(t, []int{0}, got[1])
	assert.Equal(t, []int{3}, got[2])
}

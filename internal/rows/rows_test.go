package rows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func row(key, title string) Row {
	return Row{Key: key, Title: title}
}

func kinds(ops []Op) []string {
	out := make([]string, 0, len(ops))
	for _, op := range ops {
		out = append(out, op.Kind.String()+":"+op.Key)
	}
	return out
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		old  []Row
		next []Row
		want []string
	}{
		{
			name: "empty to rows",
			old:  nil,
			next: []Row{row("a", "A"), row("b", "B")},
			want: []string{"insert:a", "insert:b"},
		},
		{
			name: "rows to empty",
			old:  []Row{row("a", "A"), row("b", "B")},
			next: nil,
			want: []string{"remove:a", "remove:b"},
		},
		{
			name: "unchanged",
			old:  []Row{row("a", "A"), row("b", "B")},
			next: []Row{row("a", "A"), row("b", "B")},
			want: []string{"keep:a", "keep:b"},
		},
		{
			name: "content update",
			old:  []Row{row("a", "A"), row("b", "B")},
			next: []Row{row("a", "A"), row("b", "B2")},
			want: []string{"keep:a", "update:b"},
		},
		{
			name: "repost moves to head",
			old:  []Row{row("a", "A"), row("b", "B"), row("c", "C")},
			next: []Row{row("c", "C2"), row("a", "A"), row("b", "B")},
			want: []string{"update:c", "keep:a", "keep:b"},
		},
		{
			name: "insert and remove",
			old:  []Row{row("a", "A"), row("b", "B")},
			next: []Row{row("new", "N"), row("a", "A")},
			want: []string{"remove:b", "insert:new", "keep:a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := Diff(tt.old, tt.next)
			assert.Equal(t, tt.want, kinds(ops))

			if len(tt.next) == 0 {
				assert.Empty(t, Apply(tt.old, ops))
			} else {
				assert.Equal(t, tt.next, Apply(tt.old, ops))
			}
		})
	}
}

func TestDiff_AfterChain(t *testing.T) {
	ops := Diff(nil, []Row{row("a", ""), row("b", ""), row("c", "")})

	assert.Equal(t, "", ops[0].After)
	assert.Equal(t, "a", ops[1].After)
	assert.Equal(t, "b", ops[2].After)
}

func TestApply_Reverse(t *testing.T) {
	old := []Row{row("a", "A"), row("b", "B"), row("c", "C"), row("d", "D")}
	next := []Row{row("d", "D"), row("c", "C"), row("b", "B"), row("a", "A")}

	assert.Equal(t, next, Apply(old, Diff(old, next)))
}

func TestChanged(t *testing.T) {
	a := []Row{row("a", "A"), row("b", "B")}

	assert.False(t, Changed(a, Diff(a, a)))
	assert.True(t, Changed(a, Diff(a, []Row{row("b", "B"), row("a", "A")})))
	assert.True(t, Changed(a, Diff(a, []Row{row("a", "A")})))
	assert.True(t, Changed(a, Diff(a, []Row{row("a", "A"), row("b", "B2")})))
	assert.False(t, Changed(nil, Diff(nil, nil)))
}

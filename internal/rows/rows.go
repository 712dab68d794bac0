// Package rows renders menu lists as immutable row snapshots and computes the
// patch needed to move a widget list from one snapshot to the next.
package rows

import "slices"

// Row is one rendered list item.
type Row struct {
	Key      string
	Title    string
	Subtitle string
	Detail   string // right-aligned text, e.g. the notification time
	Icon     string
}

// OpKind is the kind of patch operation.
type OpKind int

const (
	OpRemove OpKind = iota
	OpInsert
	OpUpdate
	OpKeep
)

func (k OpKind) String() string {
	switch k {
	case OpRemove:
		return "remove"
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpKeep:
		return "keep"
	default:
		return "unknown"
	}
}

// Op is one patch step. For insert, update and keep, the row must end up
// directly after the row keyed After; an empty After means first position.
type Op struct {
	Kind  OpKind
	Key   string
	After string
	Row   Row
}

// Diff compares old and next by key, then by content. Removes come first,
// followed by one op per row of next in display order.
// Keys are expected to be unique within each snapshot.
func Diff(old, next []Row) []Op {
	prev := make(map[string]Row, len(old))
	for _, r := range old {
		prev[r.Key] = r
	}
	want := make(map[string]bool, len(next))
	for _, r := range next {
		want[r.Key] = true
	}

	ops := make([]Op, 0, len(old)+len(next))
	for _, r := range old {
		if !want[r.Key] {
			ops = append(ops, Op{Kind: OpRemove, Key: r.Key})
		}
	}

	after := ""
	for _, r := range next {
		op := Op{Key: r.Key, After: after, Row: r}
		switch p, ok := prev[r.Key]; {
		case !ok:
			op.Kind = OpInsert
		case p != r:
			op.Kind = OpUpdate
		default:
			op.Kind = OpKeep
		}
		ops = append(ops, op)
		after = r.Key
	}
	return ops
}

// Changed reports whether ops alter content or order relative to old.
func Changed(old []Row, ops []Op) bool {
	pos := 0
	for _, op := range ops {
		switch op.Kind {
		case OpRemove, OpInsert, OpUpdate:
			return true
		case OpKeep:
			if pos >= len(old) || old[pos].Key != op.Key {
				return true
			}
			pos++
		}
	}
	return pos != len(old)
}

// Apply replays ops against old and returns the resulting rows. It mirrors
// what a widget list does when patched and is used to validate patches.
func Apply(old []Row, ops []Op) []Row {
	out := slices.Clone(old)
	indexOf := func(key string) int {
		return slices.IndexFunc(out, func(r Row) bool { return r.Key == key })
	}

	for _, op := range ops {
		if op.Kind == OpRemove {
			if i := indexOf(op.Key); i >= 0 {
				out = slices.Delete(out, i, i+1)
			}
			continue
		}

		if i := indexOf(op.Key); i >= 0 {
			out = slices.Delete(out, i, i+1)
		}
		at := 0
		if op.After != "" {
			at = indexOf(op.After) + 1
		}
		out = slices.Insert(out, at, op.Row)
	}
	return out
}

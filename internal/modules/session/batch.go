package session

import "github.com/google/uuid"

// MergePolicy decides how a new quantity for an already-seen product combines
// with the accumulated one.
type MergePolicy int

const (
	// MergeAdditive sums quantities. A weekly count may be split across
	// several photos (bar section, kitchen section) and the same product can
	// appear on more than one of them.
	MergeAdditive MergePolicy = iota
	// MergeReplace keeps the latest quantity. Base-target edits are
	// corrections, not counts to be summed.
	MergeReplace
)

// Line is one resolved quantity entering or leaving the batch.
type Line struct {
	ProductID uuid.UUID
	Qty       float64
}

// Batch accumulates resolved quantities across messages before commit. It
// holds at most one quantity per product; merging never removes entries.
type Batch struct {
	policy  MergePolicy
	qty     map[uuid.UUID]float64
	rawSeen int
}

// NewBatch creates an empty batch with the given merge policy.
func NewBatch(policy MergePolicy) *Batch {
	return &Batch{policy: policy, qty: make(map[uuid.UUID]float64)}
}

// Merge folds resolved lines into the batch according to the policy.
func (b *Batch) Merge(lines []Line) {
	for _, l := range lines {
		if b.policy == MergeAdditive {
			b.qty[l.ProductID] += l.Qty
		} else {
			b.qty[l.ProductID] = l.Qty
		}
	}
	b.rawSeen += len(lines)
}

// Lines returns one entry per distinct product touched, in no guaranteed
// order. Callers must not depend on ordering.
func (b *Batch) Lines() []Line {
	out := make([]Line, 0, len(b.qty))
	for id, q := range b.qty {
		out = append(out, Line{ProductID: id, Qty: q})
	}
	return out
}

// Len is the number of distinct products in the batch.
func (b *Batch) Len() int { return len(b.qty) }

// RawSeen is the count of lines merged so far, duplicates included.
func (b *Batch) RawSeen() int { return b.rawSeen }

// Empty reports whether nothing has been accumulated.
func (b *Batch) Empty() bool { return len(b.qty) == 0 }

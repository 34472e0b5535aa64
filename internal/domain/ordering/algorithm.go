package ordering

import "math"

// Placement is the outcome of positioning one task in a column.
type Placement struct {
	// Key is the sort key for the placed task.
	Key float64

	// Position is the clamped index the task occupies among its siblings.
	Position int

	// Rebalanced is true when the siblings had to be renumbered first.
	Rebalanced bool

	// SiblingKeys holds the renumbered sibling keys, in the same order as
	// the input, when Rebalanced is true. It is nil otherwise.
	SiblingKeys []float64
}

// clampPosition limits position to the range [0, n].
func clampPosition(position, n int) int {
	if position < 0 {
		return 0
	}
	if position > n {
		return n
	}
	return position
}

// keyAt computes the key for slot position among ascending sibling keys.
//
// Parameters:
//   - position: A slot index already clamped to [0, len(siblings)]
//   - siblings: The other keys in the column, ascending
//   - gap: The spacing used at the column ends
//
// Returns:
//   - gap when the column is empty
//   - first - gap when inserting at the head
//   - last + gap when inserting at the tail
//   - the midpoint of the two neighbours otherwise
func keyAt(position int, siblings []float64, gap float64) float64 {
	n := len(siblings)
	switch {
	case n == 0:
		return gap
	case position == 0:
		return siblings[0] - gap
	case position == n:
		return siblings[n-1] + gap
	default:
		lower, upper := siblings[position-1], siblings[position]
		return lower + (upper-lower)/2
	}
}

// fits reports whether key can be stored at position without breaking the
// strict ordering of the column.
//
// Head and tail keys only need to sit outside the existing range. An
// interior key needs neighbours at least minGap apart and must land strictly
// between them; the second check catches float64 midpoints that round onto a
// neighbour.
func fits(key float64, position int, siblings []float64, minGap float64) bool {
	if isInvalidFloat(key) {
		return false
	}
	n := len(siblings)
	switch {
	case n == 0:
		return true
	case position == 0:
		return key < siblings[0]
	case position == n:
		return key > siblings[n-1]
	default:
		lower, upper := siblings[position-1], siblings[position]
		if upper-lower < minGap {
			return false
		}
		return key > lower && key < upper
	}
}

// isHealthy reports whether siblings form a strictly ascending sequence of
// finite keys. Columns written before keys were enforced unique can hold
// duplicates; those are repaired by renumbering.
func isHealthy(siblings []float64) bool {
	for i, k := range siblings {
		if isInvalidFloat(k) {
			return false
		}
		if i > 0 && !(k > siblings[i-1]) {
			return false
		}
	}
	return true
}

// renumber returns n evenly spaced keys: gap, 2*gap, ... n*gap.
func renumber(n int, gap float64) []float64 {
	keys := make([]float64, n)
	for i := range keys {
		keys[i] = float64(i+1) * gap
	}
	return keys
}

// place computes the key for a task inserted at position among siblings.
//
// This is the core of the ordering engine. It first tries the cheap path
// where only the placed task receives a new key. If the neighbours are too
// close, the computed key rounds onto a neighbour, or the column itself is
// out of order, it renumbers every sibling to multiples of params.Gap
// (preserving their relative order) and recomputes the key against the new
// sequence. A rebalanced column always has room, so a second renumber is
// never needed.
//
// Parameters:
//   - position: The requested slot. Values <= 0 mean first and values past
//     the end mean last.
//   - siblings: The keys of the other live tasks in the column, ascending
//   - params: Gap and MinGap
func place(position int, siblings []float64, params *Params) Placement {
	pos := clampPosition(position, len(siblings))

	if isHealthy(siblings) {
		key := keyAt(pos, siblings, params.Gap)
		if fits(key, pos, siblings, params.MinGap) {
			return Placement{Key: key, Position: pos}
		}
	}

	renumbered := renumber(len(siblings), params.Gap)
	return Placement{
		Key:         keyAt(pos, renumbered, params.Gap),
		Position:    pos,
		Rebalanced:  true,
		SiblingKeys: renumbered,
	}
}

func isInvalidFloat(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

// Package ordering computes fractional sort keys for tasks within a status
// column.
//
// Keys are float64 values. A new key normally lands at the midpoint of its
// neighbours, or one gap beyond the first or last key, so inserting a task
// touches only that task. When neighbouring keys get too close to subdivide,
// the whole column is renumbered to evenly spaced multiples of the gap and
// the key is recomputed. Everything here is pure: callers supply the
// sibling keys and persist the result.
package ordering

// Package service implements the task board's business operations on top
// of the store layer.
//
// TaskService is owner-scoped throughout: a task that belongs to another
// user is reported exactly like one that does not exist. Every write runs in
// a single transaction that first takes the destination column's lock, then
// reads the column, computes keys with the ordering engine, and writes the
// result. Transactions that lose a race are retried a bounded number of
// times before the caller sees ErrConflict.
package service

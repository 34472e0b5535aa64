// Package postgres provides the PostgreSQL implementation of the store
// interfaces. It owns the SQL, the mapping between rows and domain
// entities, and the translation of driver errors into store errors.
//
// Schema migrations live in the migrations subpackage and are embedded into
// the binary.
package postgres

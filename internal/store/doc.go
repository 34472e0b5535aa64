// Package store defines interfaces for task persistence and the error
// vocabulary shared by their implementations.
//
// Stores never decide business outcomes. They report what the database
// said (not found, invalid entity, conflict) and leave the interpretation
// to the service layer.
package store

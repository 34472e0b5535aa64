// Package domain defines the core entities of the task board and the rules
// that govern them: the Task record, the Status lifecycle with its
// soft-delete overlay, and the validation errors those rules produce.
//
// Nothing in this package touches persistence or transport. Sort keys are
// assigned by the ordering package and stored verbatim here.
package domain

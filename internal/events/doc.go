// Package events carries board change notifications from the task service
// to interested components.
//
// The service emits a BoardEvent after each committed change. Handlers run
// synchronously in registration order and never affect the outcome of the
// change that produced the event.
package events

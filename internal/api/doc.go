// Package api is the HTTP adapter over service.TaskService. Handlers decode
// and validate requests, take the owner id from the request context and map
// service error kinds to status codes. No business rules live here.
package api

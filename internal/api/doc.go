// Package api handles incoming HTTP requests, request validation and response
// formatting for the task, notification and account endpoints. It translates
// HTTP concerns to service operations and maps service errors to status codes
// in one place (errors.go).
package api

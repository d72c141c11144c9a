// Package api handles incoming HTTP requests, request decoding and response
// formatting for the study endpoints. It translates HTTP concerns into calls
// on the study service and maps service errors back to status codes without
// leaking internal details.
package api

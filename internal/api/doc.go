// Package api handles incoming HTTP requests, request validation and
// response formatting. It adapts the card review service to JSON over HTTP;
// routing lives with the server binary.
package api

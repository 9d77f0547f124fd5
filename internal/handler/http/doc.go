// Package http implements the HTTP transport layer of the demo service.
//
// It exposes route wiring, request handlers and middleware. Requests pass
// through tracing, the request auditor and token authentication before they
// are delegated to the service layer.
package http

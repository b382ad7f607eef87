// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and the internal application services, translating HTTP concerns to
// business operations.
//
// Errors are mapped to status codes in one place (MapErrorToStatusCode) and
// clients only ever see the messages from GetSafeErrorMessage. Full error
// text is logged after passing through the redact package.
package api

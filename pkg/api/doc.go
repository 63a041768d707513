// Package api defines the shared error taxonomy and response envelopes
// used across the vestibule gateway.
//
// Every failed response carries an APIError with a type, an HTTP status,
// and a message. Unauthorized and forbidden errors are decided locally by
// the authorization gate; upstream errors are classified by the proxy from
// backend responses before per-endpoint normalization policy is applied.
package api

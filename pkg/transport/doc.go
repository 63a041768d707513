// Package transport provides HTTP middleware (request ID, logging,
// recovery) and JSON response helpers shared by the gateway's handlers.
package transport

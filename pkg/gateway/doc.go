// Package gateway assembles the HTTP surface of vestibule: the static route
// table with per-operation authorization requirements, the per-endpoint
// error-normalization policies, and the identity delegation controller.
//
// Control flow per request: session resolution, authorization gate, rate
// limit, proxy call, normalization. Authorization denials surface as 401/403
// regardless of the endpoint's policy.
package gateway

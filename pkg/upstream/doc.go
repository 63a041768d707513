// Package upstream implements the tenant-scoped proxy that issues calls to
// the identity-governance backend on behalf of an authenticated session.
//
// Every outbound call carries the session's access token as a bearer
// authorization header and the tenant identifier as X-Tenant-ID. The proxy
// performs a single round trip per call: no retries and no caching, so a
// non-idempotent backend operation is never duplicated by this layer.
// Backend failures are classified into the api error taxonomy before
// per-endpoint normalization policy is applied by the gateway.
package upstream

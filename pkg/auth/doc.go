// Package auth implements the authorization gate applied uniformly to
// every gateway operation, plus per-principal rate limiting.
//
// Each route declares a static Requirement in the gateway's route table;
// the gate is a single pure function so that role enforcement cannot be
// skipped or drift between endpoints. The requirement is data, not code:
// the security posture of the gateway is auditable by reading the table.
package auth

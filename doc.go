// Package users implements account management over an authenticated HTTP
// API: create, query, mutate, revoke (soft delete), restore and hard delete
// account records, plus bearer-token issuance for subsequent calls.
//
// The package is organized around a small set of collaborators:
//
//   - Users: the account store, backed by bun and go-repository-bun.
//   - Auther/TokenService: credential issuance and validation (HS256 JWT).
//   - Policy: the per-operation allow/deny table.
//   - AccountLifecycle: the Active/Revoked state machine.
//   - AccountService: orchestrates the fixed check order for every operation.
//   - AccountsController: the JSON HTTP surface over go-router.
//
// Wire-up for a running service lives in cmd/users-api.
package users

// Package auth consumes an already-authenticated identity for the
// authorization pipeline.
//
// Authentication itself (login, session issuance, token rotation) lives
// outside this service. The IdentityResolver interface turns a request into a
// resolved user id; the store-backed SessionResolver looks up session records
// that the external authentication system wrote.
package auth

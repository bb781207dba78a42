// Package audit records authorization decisions as an append-only trail.
//
// Recording is best effort: a failed write never blocks or fails the request
// that produced the decision. Events are keyed per tenant with a lexically
// sortable id, so listing a tenant's trail is a prefix scan in time order.
package audit

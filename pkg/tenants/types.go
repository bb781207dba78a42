package tenants

import "time"

// Tenant is an isolated customer scope. Identity (ID, Slug) is immutable once
// created; the authorization core only ever reads tenant records.
type Tenant struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Hostname    string    `json:"hostname,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

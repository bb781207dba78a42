package authz

import "net/http"

// Error is an authorization-kind failure with a machine-readable code and an
// HTTP status mapping. The Message is what clients see; for infrastructure
// faults it stays generic so store internals never leak.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

// The five error kinds the authorization core produces. The first four are
// specific so clients can react (redirect to login, show a 404 page); the
// store fault is deliberately opaque.
var (
	ErrCSRFMissing = &Error{
		Code:    "csrf_missing",
		Message: "Missing CSRF token",
		Status:  http.StatusForbidden,
	}
	ErrAuthenticationRequired = &Error{
		Code:    "authentication_required",
		Message: "Authentication required",
		Status:  http.StatusUnauthorized,
	}
	ErrTenantNotFound = &Error{
		Code:    "tenant_not_found",
		Message: "Tenant not found",
		Status:  http.StatusNotFound,
	}
	ErrPermissionDenied = &Error{
		Code:    "permission_denied",
		Message: "Permission denied",
		Status:  http.StatusForbidden,
	}
	ErrStoreUnavailable = &Error{
		Code:    "store_unavailable",
		Message: "Internal Server Error",
		Status:  http.StatusInternalServerError,
	}
)

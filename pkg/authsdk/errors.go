package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/marketauth/pkg/httpx"
)

// ============================================================================
// Error Kinds and Codes
// ============================================================================

// Kinds group codes by the HTTP status they are reported with.
const (
	KindValidation     = "validation"
	KindAuthentication = "authentication"
	KindAuthorization  = "authorization"
	KindNotFound       = "not_found"
	KindConflict       = "conflict"
	KindRateLimited    = "rate_limited"
	KindInternal       = "internal"
)

const (
	CodeValidationError         = "ValidationError"
	CodeInvalidCredentials      = "InvalidCredentials"
	CodeAccountInactive         = "AccountInactive"
	CodeRefreshTokenRequired    = "RefreshTokenRequired"
	CodeRefreshTokenInvalid     = "RefreshTokenInvalid"
	CodeNoAccessToken           = "NoAccessToken"
	CodeAccessTokenRequired     = "AccessTokenRequired"
	CodeAccessTokenInvalid      = "AccessTokenInvalid"
	CodeAccessTokenExpired      = "AccessTokenExpired"
	CodeAccessDenied            = "AccessDenied"
	CodeInsufficientPermissions = "InsufficientPermissions"
	CodeCsrfTokenNotFound       = "CsrfTokenNotFound"
	CodeRoleNotFound            = "RoleNotFound"
	CodeUserNotFound            = "UserNotFound"
	CodePermissionNotFound      = "PermissionNotFound"
	CodeAlreadyExists           = "AlreadyExists"
	CodeRoleInUse               = "RoleInUse"
	CodeBuiltinRole             = "BuiltinRole"
	CodeTooManyAttempts         = "TooManyAttempts"
	CodeInternalFailure         = "InternalFailure"
)

// ============================================================================
// APIError
// ============================================================================

// APIError is the body of every non-2xx response. The server writes it with
// WriteError and the client hands it back from every failed call.
type APIError struct {
	StatusCode int               `json:"-"`
	Kind       string            `json:"kind"`
	Code       string            `json:"error"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Is matches on Code so callers can write errors.Is(err, authsdk.ErrAccessDenied)
// against a response decoded by the client.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WithMessage returns a copy of e carrying msg.
func (e *APIError) WithMessage(msg string) *APIError {
	cp := *e
	cp.Message = msg
	return &cp
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, e.StatusCode, e)
}

// NewAPIError creates an APIError, deriving the kind from the status code.
func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Kind:       kindFor(statusCode),
		Code:       code,
		Message:    message,
	}
}

// NewValidationError reports a 400 with per-field details.
func NewValidationError(message string, fields map[string]string) *APIError {
	e := NewAPIError(http.StatusBadRequest, CodeValidationError, message)
	e.Fields = fields
	return e
}

func kindFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindAuthentication
	case http.StatusForbidden:
		return KindAuthorization
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusTooManyRequests:
		return KindRateLimited
	default:
		return KindInternal
	}
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrValidation = NewAPIError(http.StatusBadRequest, CodeValidationError, "the request is malformed")

	ErrInvalidCredentials   = NewAPIError(http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email or password.")
	ErrAccountInactive      = NewAPIError(http.StatusUnauthorized, CodeAccountInactive, "Account is not active.")
	ErrRefreshTokenRequired = NewAPIError(http.StatusUnauthorized, CodeRefreshTokenRequired, "Refresh token is required.")
	ErrRefreshTokenInvalid  = NewAPIError(http.StatusUnauthorized, CodeRefreshTokenInvalid, "Refresh token is invalid.")
	ErrNoAccessToken        = NewAPIError(http.StatusUnauthorized, CodeNoAccessToken, "No access token.")
	ErrAccessTokenRequired  = NewAPIError(http.StatusUnauthorized, CodeAccessTokenRequired, "Access token is required.")
	ErrAccessTokenInvalid   = NewAPIError(http.StatusUnauthorized, CodeAccessTokenInvalid, "Access token is invalid.")
	ErrAccessTokenExpired   = NewAPIError(http.StatusUnauthorized, CodeAccessTokenExpired, "Access token has expired.")

	ErrAccessDenied            = NewAPIError(http.StatusForbidden, CodeAccessDenied, "Access denied.")
	ErrInsufficientPermissions = NewAPIError(http.StatusForbidden, CodeInsufficientPermissions, "Insufficient permissions.")
	ErrCsrfTokenNotFound       = NewAPIError(http.StatusForbidden, CodeCsrfTokenNotFound, "CSRF token missing or invalid.")

	ErrRoleNotFound       = NewAPIError(http.StatusNotFound, CodeRoleNotFound, "Role not found.")
	ErrUserNotFound       = NewAPIError(http.StatusNotFound, CodeUserNotFound, "User not found.")
	ErrPermissionNotFound = NewAPIError(http.StatusNotFound, CodePermissionNotFound, "Permission not found.")

	ErrAlreadyExists = NewAPIError(http.StatusConflict, CodeAlreadyExists, "Resource already exists.")
	ErrRoleInUse     = NewAPIError(http.StatusConflict, CodeRoleInUse, "Role is still assigned to users.")
	ErrBuiltinRole   = NewAPIError(http.StatusConflict, CodeBuiltinRole, "Built-in roles cannot be deleted.")

	ErrTooManyAttempts = NewAPIError(http.StatusTooManyRequests, CodeTooManyAttempts, "Too many attempts, please try again later.")

	// ErrInternalFailure never carries detail; the cause is only logged.
	ErrInternalFailure = NewAPIError(http.StatusInternalServerError, CodeInternalFailure, "Internal server error.")
)

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response body into an *APIError.
// Returns nil if the response indicates success (2xx status code).
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		apiErr.StatusCode = resp.StatusCode
		if apiErr.Kind == "" {
			apiErr.Kind = kindFor(resp.StatusCode)
		}
		return &apiErr
	}

	// Fallback: create generic error from status code
	return &APIError{
		StatusCode: resp.StatusCode,
		Kind:       kindFor(resp.StatusCode),
		Code:       CodeInternalFailure,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

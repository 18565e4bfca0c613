package service

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	ErrInvalidCredentials   = errors.New("invalid_credentials")
	ErrAccountInactive      = errors.New("account_inactive")
	ErrRefreshTokenRequired = errors.New("refresh_token_required")
	ErrRefreshTokenInvalid  = errors.New("refresh_token_invalid")
	ErrNoAccessToken        = errors.New("no_access_token")
	ErrAccessTokenInvalid   = errors.New("access_token_invalid")
	ErrAccessTokenExpired   = errors.New("access_token_expired")

	ErrUserNotFound       = errors.New("user_not_found")
	ErrRoleNotFound       = errors.New("role_not_found")
	ErrPermissionNotFound = errors.New("permission_not_found")
	ErrAlreadyExists      = errors.New("already_exists")
	ErrRoleInUse          = errors.New("role_in_use")
	ErrBuiltinRole        = errors.New("builtin_role")
)

// ValidationError reports unusable input. Fields maps JSON field names to
// a human readable reason and may be empty.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation: " + e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation: " + e.Message + " (" + strings.Join(parts, "; ") + ")"
}

package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/marketauth/internal/auth/service"
	"github.com/aussiebroadwan/marketauth/pkg/authsdk"
	"github.com/aussiebroadwan/marketauth/pkg/httpx"
	"github.com/aussiebroadwan/marketauth/pkg/slogx"
)

var serviceErrors = []struct {
	err error
	api *authsdk.APIError
}{
	{service.ErrInvalidCredentials, authsdk.ErrInvalidCredentials},
	{service.ErrAccountInactive, authsdk.ErrAccountInactive},
	{service.ErrRefreshTokenRequired, authsdk.ErrRefreshTokenRequired},
	{service.ErrRefreshTokenInvalid, authsdk.ErrRefreshTokenInvalid},
	{service.ErrNoAccessToken, authsdk.ErrNoAccessToken},
	{service.ErrAccessTokenInvalid, authsdk.ErrAccessTokenInvalid},
	{service.ErrAccessTokenExpired, authsdk.ErrAccessTokenExpired},
	{service.ErrUserNotFound, authsdk.ErrUserNotFound},
	{service.ErrRoleNotFound, authsdk.ErrRoleNotFound},
	{service.ErrAlreadyExists, authsdk.ErrAlreadyExists},
	{service.ErrRoleInUse, authsdk.ErrRoleInUse},
	{service.ErrBuiltinRole, authsdk.ErrBuiltinRole},
}

// writeServiceError maps a service error to its API error. Anything unknown
// is logged and reported as an internal failure without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		authsdk.NewValidationError(verr.Message, verr.Fields).WriteError(w)
		return
	}

	// The wrapped message names the permission that was not found
	if errors.Is(err, service.ErrPermissionNotFound) {
		name := strings.TrimPrefix(err.Error(), service.ErrPermissionNotFound.Error())
		name = strings.TrimPrefix(name, ": ")
		if name == "" {
			authsdk.ErrPermissionNotFound.WriteError(w)
			return
		}
		authsdk.ErrPermissionNotFound.WithMessage("Permission not found: " + name).WriteError(w)
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			m.api.WriteError(w)
			return
		}
	}

	slogx.FromContext(r.Context()).Error("request failed", slog.Any("error", err))
	authsdk.ErrInternalFailure.WriteError(w)
}

// decodeBody reads a JSON body into v, writing a validation error on
// failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httpx.DecodeJSON(w, r, v); err != nil {
		msg := "Invalid request body."
		if errors.Is(err, httpx.ErrEmptyBody) {
			msg = "All fields are required."
		}
		authsdk.ErrValidation.WithMessage(msg).WriteError(w)
		return false
	}
	return true
}

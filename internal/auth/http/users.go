package http

import (
	"net/http"

	"github.com/aussiebroadwan/marketauth/internal/auth/guard"
	"github.com/aussiebroadwan/marketauth/internal/auth/service"
	"github.com/aussiebroadwan/marketauth/pkg/authsdk"
	"github.com/aussiebroadwan/marketauth/pkg/httpx"
)

type UsersHandler struct {
	UserService *service.UserService
	Cookies     CookieConfig
}

// HandleSignup godoc
//
//	@Summary		Register an account
//	@Description	Creates a USER account. Depending on configuration the account starts inactive until an
//	@Description	administrator activates it.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.SignupRequest	true	"Account details"
//	@Success		201		{object}	authsdk.Profile
//	@Failure		400		{object}	authsdk.APIError	"ValidationError with per-field details"
//	@Failure		409		{object}	authsdk.APIError	"AlreadyExists"
//	@Failure		429		{object}	authsdk.APIError	"TooManyAttempts"
//	@Router			/api/users/signup [post].
func (h *UsersHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupInput
	if !decodeBody(w, r, &req) {
		return
	}

	profile, err := h.UserService.Signup(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toProfile(profile))
}

// HandleActivate godoc
//
//	@Summary		Activate an account
//	@Description	Marks an account active so it can log in. Requires ADMIN and UPDATE_CURRENT_USER.
//	@Tags			Users
//	@Produce		json
//	@Param			id				path		string	true	"User ID"
//	@Param			X-CSRF-Token	header		string	true	"CSRF token"
//	@Success		200				{object}	authsdk.Profile
//	@Failure		401				{object}	authsdk.APIError
//	@Failure		403				{object}	authsdk.APIError
//	@Failure		404				{object}	authsdk.APIError	"UserNotFound"
//	@Security		CookieAuth
//	@Router			/api/users/{id}/activate [patch].
func (h *UsersHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	profile, err := h.UserService.SetActive(r.Context(), r.PathValue("id"), true)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProfile(profile))
}

// HandleList godoc
//
//	@Summary		List accounts
//	@Description	Returns every account, oldest first. Requires ADMIN and GET_ALL_USERS.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{array}		authsdk.Profile
//	@Failure		401	{object}	authsdk.APIError
//	@Failure		403	{object}	authsdk.APIError
//	@Security		CookieAuth
//	@Router			/api/users [get].
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]authsdk.Profile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfile(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet godoc
//
//	@Summary		Get an account
//	@Description	Requires ADMIN and GET_ALL_USERS.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	authsdk.Profile
//	@Failure		401	{object}	authsdk.APIError
//	@Failure		403	{object}	authsdk.APIError
//	@Failure		404	{object}	authsdk.APIError	"UserNotFound"
//	@Security		CookieAuth
//	@Router			/api/users/{id} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := h.UserService.GetProfile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProfile(profile))
}

// HandleDelete godoc
//
//	@Summary		Delete an account
//	@Description	Removes the account and its refresh token. Requires ADMIN and DELETE_CURRENT_USER.
//	@Tags			Users
//	@Param			id				path	string	true	"User ID"
//	@Param			X-CSRF-Token	header	string	true	"CSRF token"
//	@Success		204
//	@Failure		401	{object}	authsdk.APIError
//	@Failure		403	{object}	authsdk.APIError
//	@Failure		404	{object}	authsdk.APIError	"UserNotFound"
//	@Security		CookieAuth
//	@Router			/api/users/{id} [delete].
func (h *UsersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleChangePassword godoc
//
//	@Summary		Change password
//	@Description	Replaces the caller's password. The session ends and the cookies are cleared.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			X-CSRF-Token	header		string							true	"CSRF token"
//	@Param			body			body		authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200				{object}	authsdk.MessageResponse
//	@Failure		400				{object}	authsdk.APIError
//	@Failure		401				{object}	authsdk.APIError	"InvalidCredentials when the current password is wrong"
//	@Failure		403				{object}	authsdk.APIError
//	@Security		CookieAuth
//	@Router			/api/auth/change-password [post].
func (h *UsersHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := guard.PrincipalFromContext(r.Context())
	if !ok {
		authsdk.ErrAccessTokenRequired.WriteError(w)
		return
	}

	var req service.ChangePasswordInput
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.UserService.ChangePassword(r.Context(), principal.UserID, req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.clearSession(w)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Password changed, please log in again."})
}

package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/marketauth/internal/auth/csrf"
	"github.com/aussiebroadwan/marketauth/internal/auth/guard"
	"github.com/aussiebroadwan/marketauth/internal/auth/service"
	"github.com/aussiebroadwan/marketauth/pkg/authsdk"
	"github.com/aussiebroadwan/marketauth/pkg/httpx"
	"github.com/aussiebroadwan/marketauth/pkg/slogx"
)

type SessionHandler struct {
	SessionService *service.SessionService
	Cookies        CookieConfig
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Checks email and password and starts a session. Both tokens are set as http-only cookies and
//	@Description	returned in the body. Logging in again invalidates the previous refresh token.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			X-CSRF-Token	header		string					true	"CSRF token from /api/csrf-token"
//	@Param			body			body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200				{object}	authsdk.TokenPair
//	@Failure		400				{object}	authsdk.APIError	"Missing fields"
//	@Failure		401				{object}	authsdk.APIError	"InvalidCredentials or AccountInactive"
//	@Failure		403				{object}	authsdk.APIError	"CsrfTokenNotFound"
//	@Failure		429				{object}	authsdk.APIError	"TooManyAttempts"
//	@Router			/api/auth/login [post].
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginInput
	if !decodeBody(w, r, &req) {
		return
	}

	pair, err := h.SessionService.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.setSession(w, pair)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// HandleRefresh godoc
//
//	@Summary		Rotate the session
//	@Description	Redeems the refresh token cookie for a new pair. The presented refresh token is dead afterwards.
//	@Tags			Session
//	@Produce		json
//	@Param			X-CSRF-Token	header		string	true	"CSRF token from /api/csrf-token"
//	@Success		200				{object}	authsdk.TokenPair
//	@Failure		401				{object}	authsdk.APIError	"RefreshTokenRequired or RefreshTokenInvalid"
//	@Failure		403				{object}	authsdk.APIError	"CsrfTokenNotFound"
//	@Failure		429				{object}	authsdk.APIError	"TooManyAttempts"
//	@Router			/api/auth/refresh-token [post].
func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	pair, err := h.SessionService.Refresh(r.Context(), h.Cookies.refreshToken(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.setSession(w, pair)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenPair{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Ends the session of the refresh token cookie, if it is still current, and clears both cookies.
//	@Description	Always succeeds.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse
//	@Router			/api/auth/logout [post].
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionService.Logout(r.Context(), h.Cookies.refreshToken(r)); err != nil {
		slogx.FromContext(r.Context()).Error("logout failed to clear session", slog.Any("error", err))
	}

	h.Cookies.clearSession(w)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Logged out successfully."})
}

// HandleMe godoc
//
//	@Summary		Current user
//	@Description	Returns the profile of the logged in user. Requires GET_LOGGED_IN_USER.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	authsdk.Profile
//	@Failure		401	{object}	authsdk.APIError	"AccessTokenRequired, AccessTokenInvalid or AccessTokenExpired"
//	@Failure		403	{object}	authsdk.APIError	"AccessDenied or InsufficientPermissions"
//	@Failure		404	{object}	authsdk.APIError	"UserNotFound"
//	@Security		CookieAuth
//	@Router			/api/auth/me [get].
func (h *SessionHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	profile, err := h.SessionService.WhoAmI(r.Context(), guard.AccessToken(r, h.Cookies.AccessName))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toProfile(profile))
}

// HandleLoggedIn godoc
//
//	@Summary		Session probe
//	@Description	Reports whether the request carries a valid access token. Never fails.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	authsdk.LoggedInResponse
//	@Router			/api/auth/loggedin [get].
func (h *SessionHandler) HandleLoggedIn(w http.ResponseWriter, r *http.Request) {
	loggedIn := h.SessionService.IsLoggedIn(guard.AccessToken(r, h.Cookies.AccessName))

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoggedInResponse{LoggedIn: loggedIn})
}

// CSRFTokenHandler godoc
//
//	@Summary		Issue a CSRF token
//	@Description	Sets the CSRF secret cookie if missing and returns a token to send in the X-CSRF-Token header.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	authsdk.CSRFTokenResponse
//	@Router			/api/csrf-token [get].
func CSRFTokenHandler(p *csrf.Protector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := p.Issue(w, r)
		if err != nil {
			slogx.FromContext(r.Context()).Error("failed to issue csrf token", slog.Any("error", err))
			authsdk.ErrInternalFailure.WriteError(w)
			return
		}

		httpx.NoCache(w)
		httpx.WriteJSON(w, http.StatusOK, authsdk.CSRFTokenResponse{CSRFToken: token})
	}
}

package http

import (
	"net/http"

	"github.com/aussiebroadwan/marketauth/internal/auth/service"
	"github.com/aussiebroadwan/marketauth/pkg/authsdk"
	"github.com/aussiebroadwan/marketauth/pkg/httpx"
)

type PermissionsHandler struct {
	PermissionsService *service.PermissionsService
}

// HandleList godoc
//
//	@Summary	List permissions
//	@Tags		Permissions
//	@Produce	json
//	@Success	200	{array}	authsdk.Permission
//	@Security	CookieAuth
//	@Router		/api/permissions [get].
func (h *PermissionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	perms, err := h.PermissionsService.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response := make([]authsdk.Permission, len(perms))
	for i, p := range perms {
		response[i] = toPermission(p)
	}
	httpx.WriteJSON(w, http.StatusOK, response)
}

// HandleGet godoc
//
//	@Summary	Get a permission
//	@Tags		Permissions
//	@Produce	json
//	@Param		id	path		string	true	"Permission ID"
//	@Success	200	{object}	authsdk.Permission
//	@Failure	404	{object}	authsdk.APIError	"PermissionNotFound"
//	@Security	CookieAuth
//	@Router		/api/permissions/{id} [get].
func (h *PermissionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.PermissionsService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPermission(p))
}

// HandleCreate godoc
//
//	@Summary	Create a permission
//	@Tags		Permissions
//	@Accept		json
//	@Produce	json
//	@Param		body	body		authsdk.PermissionRequest	true	"Permission name"
//	@Success	201		{object}	authsdk.Permission
//	@Failure	409		{object}	authsdk.APIError	"AlreadyExists"
//	@Security	CookieAuth
//	@Router		/api/permissions [post].
func (h *PermissionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req service.PermissionInput
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.PermissionsService.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toPermission(p))
}

// HandleRename godoc
//
//	@Summary	Rename a permission
//	@Tags		Permissions
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Permission ID"
//	@Param		body	body		authsdk.PermissionRequest	true	"New name"
//	@Success	200		{object}	authsdk.Permission
//	@Failure	404		{object}	authsdk.APIError	"PermissionNotFound"
//	@Failure	409		{object}	authsdk.APIError	"AlreadyExists"
//	@Security	CookieAuth
//	@Router		/api/permissions/{id} [put].
func (h *PermissionsHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	var req service.PermissionInput
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.PermissionsService.Rename(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toPermission(p))
}

// HandleDelete godoc
//
//	@Summary	Delete a permission
//	@Tags		Permissions
//	@Param		id	path	string	true	"Permission ID"
//	@Success	204
//	@Failure	404	{object}	authsdk.APIError	"PermissionNotFound"
//	@Security	CookieAuth
//	@Router		/api/permissions/{id} [delete].
func (h *PermissionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.PermissionsService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

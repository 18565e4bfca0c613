package http

import (
	"net/http"

	"github.com/aussiebroadwan/marketauth/internal/auth/service"
	"github.com/aussiebroadwan/marketauth/pkg/authsdk"
	"github.com/aussiebroadwan/marketauth/pkg/httpx"
)

type RolesHandler struct {
	RolesService *service.RolesService
}

// HandleList handles the list roles endpoint
//
//	@Summary		List all roles
//	@Description	Returns every role and the permissions it grants. Requires ADMIN and GET_ROLES.
//	@Tags			Roles
//	@Produce		json
//	@Success		200	{array}		authsdk.Role
//	@Failure		401	{object}	authsdk.APIError
//	@Failure		403	{object}	authsdk.APIError
//	@Security		CookieAuth
//	@Router			/api/roles [get].
func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RolesService.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response := make([]authsdk.Role, len(roles))
	for i, role := range roles {
		response[i] = toRole(role)
	}

	httpx.WriteJSON(w, http.StatusOK, response)
}

// HandleCreate godoc
//
//	@Summary		Create a role
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.RoleRequest	true	"Role name and permission names"
//	@Success		201		{object}	authsdk.Role
//	@Failure		400		{object}	authsdk.APIError
//	@Failure		404		{object}	authsdk.APIError	"PermissionNotFound"
//	@Failure		409		{object}	authsdk.APIError	"AlreadyExists"
//	@Security		CookieAuth
//	@Router			/api/roles [post].
func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req service.RoleInput
	if !decodeBody(w, r, &req) {
		return
	}

	role, err := h.RolesService.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toRole(role))
}

// HandleSetPermissions godoc
//
//	@Summary		Replace a role's permissions
//	@Tags			Roles
//	@Accept			json
//	@Produce		json
//	@Param			name	path		string							true	"Role name"
//	@Param			body	body		authsdk.RolePermissionsRequest	true	"Permission names"
//	@Success		200		{object}	authsdk.Role
//	@Failure		404		{object}	authsdk.APIError	"RoleNotFound or PermissionNotFound"
//	@Security		CookieAuth
//	@Router			/api/roles/{name}/permissions [put].
func (h *RolesHandler) HandleSetPermissions(w http.ResponseWriter, r *http.Request) {
	var req service.RolePermissionsInput
	if !decodeBody(w, r, &req) {
		return
	}

	role, err := h.RolesService.SetPermissions(r.Context(), r.PathValue("name"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toRole(role))
}

// HandleDelete godoc
//
//	@Summary		Delete a role
//	@Description	Fails while users still hold the role. ADMIN and USER cannot be deleted.
//	@Tags			Roles
//	@Param			name	path	string	true	"Role name"
//	@Success		204
//	@Failure		404	{object}	authsdk.APIError	"RoleNotFound"
//	@Failure		409	{object}	authsdk.APIError	"RoleInUse or BuiltinRole"
//	@Security		CookieAuth
//	@Router			/api/roles/{name} [delete].
func (h *RolesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.RolesService.Delete(r.Context(), r.PathValue("name")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

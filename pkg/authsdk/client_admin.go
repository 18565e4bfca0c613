package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*Profile, error) {
	var p Profile
	if err := c.call(ctx, http.MethodPost, "/api/users/signup", req, &p, http.StatusCreated); err != nil {
		return nil, err
	}
	return &p, nil
}

// ActivateUser activates an account. Requires an ADMIN session.
func (c *Client) ActivateUser(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	path := "/api/users/" + url.PathEscape(userID) + "/activate"
	if err := c.call(ctx, http.MethodPatch, path, nil, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListUsers returns every account, oldest first.
func (c *Client) ListUsers(ctx context.Context) ([]Profile, error) {
	var users []Profile
	if err := c.call(ctx, http.MethodGet, "/api/users", nil, &users, http.StatusOK); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	if err := c.call(ctx, http.MethodGet, "/api/users/"+url.PathEscape(userID), nil, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.call(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(userID), nil, nil, http.StatusNoContent)
}

// ListRoles returns every role with its permission names.
func (c *Client) ListRoles(ctx context.Context) ([]Role, error) {
	var roles []Role
	if err := c.call(ctx, http.MethodGet, "/api/roles", nil, &roles, http.StatusOK); err != nil {
		return nil, err
	}
	return roles, nil
}

func (c *Client) CreateRole(ctx context.Context, req RoleRequest) (*Role, error) {
	var r Role
	if err := c.call(ctx, http.MethodPost, "/api/roles", req, &r, http.StatusCreated); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) SetRolePermissions(ctx context.Context, name string, permissions []string) (*Role, error) {
	var r Role
	path := "/api/roles/" + url.PathEscape(name) + "/permissions"
	if err := c.call(ctx, http.MethodPut, path, RolePermissionsRequest{Permissions: permissions}, &r, http.StatusOK); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) DeleteRole(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodDelete, "/api/roles/"+url.PathEscape(name), nil, nil, http.StatusNoContent)
}

func (c *Client) ListPermissions(ctx context.Context) ([]Permission, error) {
	var perms []Permission
	if err := c.call(ctx, http.MethodGet, "/api/permissions", nil, &perms, http.StatusOK); err != nil {
		return nil, err
	}
	return perms, nil
}

func (c *Client) GetPermission(ctx context.Context, id string) (*Permission, error) {
	var p Permission
	if err := c.call(ctx, http.MethodGet, "/api/permissions/"+url.PathEscape(id), nil, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreatePermission(ctx context.Context, name string) (*Permission, error) {
	var p Permission
	if err := c.call(ctx, http.MethodPost, "/api/permissions", PermissionRequest{Name: name}, &p, http.StatusCreated); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) RenamePermission(ctx context.Context, id, name string) (*Permission, error) {
	var p Permission
	path := "/api/permissions/" + url.PathEscape(id)
	if err := c.call(ctx, http.MethodPut, path, PermissionRequest{Name: name}, &p, http.StatusOK); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeletePermission(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/api/permissions/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

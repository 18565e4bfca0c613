package http

import (
	"github.com/aussiebroadwan/marketauth/internal/auth/domain"
	"github.com/aussiebroadwan/marketauth/pkg/authsdk"
)

func toProfile(p domain.Profile) authsdk.Profile {
	return authsdk.Profile{
		ID:        p.ID,
		Username:  p.Username,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Role:      p.Role,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toRole(r domain.Role) authsdk.Role {
	return authsdk.Role{
		ID:          r.ID,
		Name:        r.Name,
		Permissions: r.PermissionNames(),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toPermission(p domain.Permission) authsdk.Permission {
	return authsdk.Permission{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

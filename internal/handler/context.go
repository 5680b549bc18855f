package handler

import (
	"buildcrm/internal/middleware"
	"buildcrm/internal/tenant"
	"buildcrm/pkg/database"
	"buildcrm/pkg/jwtutil"

	"github.com/labstack/echo/v4"
)

// claimsFrom returns the token claims stored by RequireAuth
func claimsFrom(c echo.Context) *jwtutil.UserClaims {
	claims, _ := c.Get(middleware.ContextClaims).(*jwtutil.UserClaims)
	return claims
}

// partitionFrom resolves the caller's tenant partition. Client-scoped
// users resolve to their own tenant. Super admins may address another
// tenant with the ?tenant= query parameter (legacy slug or numeric id).
func partitionFrom(c echo.Context) *tenant.Partition {
	claims := claimsFrom(c)

	if claims != nil && claims.Role == jwtutil.RoleSuperAdmin {
		if identifier := c.QueryParam("tenant"); identifier != "" {
			return tenant.ByIdentifier(database.GetDB(), identifier)
		}
	}

	return tenant.FromClaims(database.GetDB(), claims)
}

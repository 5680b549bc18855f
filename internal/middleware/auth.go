package middleware

import (
	"net/http"
	"strings"

	"buildcrm/internal/model"
	"buildcrm/pkg/database"
	"buildcrm/pkg/jwtutil"
	"buildcrm/pkg/logger"
	"buildcrm/pkg/response"
	"buildcrm/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Context keys set by RequireAuth
const (
	ContextClaims = "claims"
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
	ContextTenant = "tenant_id"
)

// RequireAuth validates the bearer token from the Authorization header
// and stores the claims in the request context. Missing or invalid
// tokens fail with 401.
func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing authorization token", nil)
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid authorization format, expected Bearer token", nil)
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token", nil)
		}

		c.Set(ContextClaims, claims)
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextRole, claims.Role)
		if claims.TenantID != nil {
			c.Set(ContextTenant, *claims.TenantID)
		}

		return next(c)
	}
}

// RequireClientAccess permits only authenticated users bound to a
// tenant. Tokens without tenant context get 403.
func RequireClientAccess(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		claims, ok := c.Get(ContextClaims).(*jwtutil.UserClaims)
		if !ok {
			prometheus.RecordAuthError("missing_claims")
			return response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required", nil)
		}

		if claims.TenantID == nil {
			log.Warn("Token has no tenant context",
				zap.Uint("user_id", claims.UserID),
				zap.String("role", claims.Role))
			prometheus.RecordAuthError("no_tenant_context")
			return response.Error(c, http.StatusForbidden, response.CodeForbidden, "tenant context required", nil)
		}

		return next(c)
	}
}

// RequireSuperAdmin permits only super admins; everyone else gets 403
func RequireSuperAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		claims, ok := c.Get(ContextClaims).(*jwtutil.UserClaims)
		if !ok {
			prometheus.RecordAuthError("missing_claims")
			return response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "authentication required", nil)
		}

		if claims.Role != jwtutil.RoleSuperAdmin {
			log.Warn("Super admin access denied",
				zap.Uint("user_id", claims.UserID),
				zap.String("role", claims.Role))
			prometheus.RecordAuthError("super_admin_denied")
			return response.Error(c, http.StatusForbidden, response.CodeForbidden, "super admin access required", nil)
		}

		return next(c)
	}
}

// RequireModule gates a vertical module route group on the tenant
// having that module enabled.
func RequireModule(name string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			tenantID, ok := c.Get(ContextTenant).(uint)
			if !ok {
				prometheus.RecordAuthError("no_tenant_context")
				return response.Error(c, http.StatusForbidden, response.CodeForbidden, "tenant context required", nil)
			}

			var t model.Tenant
			if err := database.GetDB().First(&t, tenantID).Error; err != nil {
				log.Error("Failed to load tenant for module check", zap.Error(err))
				return response.Error(c, http.StatusForbidden, response.CodeForbidden, "tenant not found", nil)
			}

			if t.Status != model.TenantStatusActive {
				log.Warn("Paused tenant attempted module access",
					zap.Uint("tenant_id", tenantID),
					zap.String("module", name))
				return response.Error(c, http.StatusForbidden, response.CodeForbidden, "tenant is paused", nil)
			}

			if !t.HasModule(name) {
				log.Warn("Module not enabled for tenant",
					zap.Uint("tenant_id", tenantID),
					zap.String("module", name))
				return response.Error(c, http.StatusForbidden, response.CodeModuleDisabled, "module not enabled for this tenant", nil)
			}

			return next(c)
		}
	}
}

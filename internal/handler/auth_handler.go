package handler

import (
	"net/http"
	"strings"
	"time"

	"buildcrm/internal/model"
	"buildcrm/pkg/database"
	"buildcrm/pkg/jwtutil"
	"buildcrm/pkg/logger"
	"buildcrm/pkg/response"
	"buildcrm/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Register creates a new tenant and its first client-admin user
func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RegisterCounter.Inc()

	var req struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		Name        string `json:"name"`
		CompanyName string `json:"company_name"`
		CompanySlug string `json:"company_slug"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse registration request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request", nil)
	}

	if req.Email == "" || req.Password == "" || req.CompanyName == "" {
		prometheus.RecordAuthError("incomplete_registration")
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "email, password and company_name are required", nil)
	}
	if !strings.Contains(req.Email, "@") {
		prometheus.RecordAuthError("invalid_email")
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid email address", nil)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	var existing model.User
	if result := database.GetDB().Where("email = ?", req.Email).First(&existing); result.Error == nil {
		log.Warn("Email already registered", zap.String("email", req.Email))
		prometheus.RecordAuthError("email_taken")
		return response.Error(c, http.StatusBadRequest, response.CodeConflict, "email already registered", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "registration failed", nil)
	}

	slug := req.CompanySlug
	if slug == "" {
		slug = strings.ToLower(strings.ReplaceAll(req.CompanyName, " ", "-"))
	}

	var user model.User
	var t model.Tenant
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		t = model.Tenant{
			Name:     req.CompanyName,
			Slug:     slug,
			PlanCode: "starter",
			Status:   model.TenantStatusActive,
			Modules:  "[]",
		}
		if err := tx.Create(&t).Error; err != nil {
			return err
		}

		user = model.User{
			Email:    req.Email,
			Password: string(hashed),
			Name:     req.Name,
			Role:     jwtutil.RoleClientAdmin,
			TenantID: &t.ID,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		return tx.Model(&model.Tenant{}).Where("id = ?", t.ID).Update("owner_id", user.ID).Error
	})
	if err != nil {
		log.Error("Registration failed", zap.Error(err))
		prometheus.RecordAuthError("registration_failed")
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "registration failed", nil)
	}

	log.Info("Tenant registered",
		zap.String("email", user.Email),
		zap.Uint("tenant_id", t.ID),
		zap.String("slug", t.Slug))

	return response.Created(c, echo.Map{
		"user": echo.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		},
		"tenant": echo.Map{
			"id":   t.ID,
			"name": t.Name,
			"slug": t.Slug,
		},
	})
}

// Login authenticates a user and issues a tenant-scoped token
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request", nil)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&user)
	if result.Error != nil {
		log.Warn("User not found", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid credentials", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid credentials", nil)
	}

	var tenantSlug string
	if user.TenantID != nil {
		var t model.Tenant
		if result := database.GetDB().Select("slug", "status").First(&t, *user.TenantID); result.Error == nil {
			if t.Status == model.TenantStatusPaused {
				log.Warn("Login attempt for paused tenant",
					zap.String("email", req.Email),
					zap.Uint("tenant_id", *user.TenantID))
				prometheus.RecordAuthError("tenant_paused")
				return response.Error(c, http.StatusForbidden, response.CodeForbidden, "tenant is paused", nil)
			}
			tenantSlug = t.Slug
		}
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID, user.Role, user.TenantID, tenantSlug)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "token error", nil)
	}

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.String("role", user.Role))

	return response.JSON(c, echo.Map{
		"token": token,
		"user": echo.Map{
			"id":        user.ID,
			"email":     user.Email,
			"role":      user.Role,
			"tenant_id": user.TenantID,
		},
	})
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"buildcrm/internal/model"
	"buildcrm/pkg/database"
	"buildcrm/pkg/logger"
	"buildcrm/pkg/response"
	"buildcrm/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var knownModules = []string{
	model.ModuleFlooring,
	model.ModuleDoorsWindows,
	model.ModuleFurniture,
	model.ModulePaints,
}

// ListTenants returns all tenants (super admin)
func ListTenants(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("list")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var tenants []model.Tenant
	if result := database.GetDB().Order("id").Find(&tenants); result.Error != nil {
		log.Error("Failed to list tenants", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to retrieve tenants", nil)
	}

	return response.JSON(c, tenants)
}

// GetTenant returns one tenant by legacy slug or numeric id
func GetTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("access")

	identifier := c.Param("id")
	defer prometheus.TrackDBOperation("query")(time.Now())

	t, err := findTenant(identifier)
	if err != nil {
		log.Warn("Tenant not found", zap.String("identifier", identifier))
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "tenant not found", nil)
	}

	return response.JSON(c, t)
}

// CreateTenant provisions a tenant (super admin)
func CreateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("create")

	var req struct {
		Name     string   `json:"name"`
		Slug     string   `json:"slug"`
		PlanCode string   `json:"plan_code"`
		Modules  []string `json:"modules"`
	}

	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request", nil)
	}
	if req.Name == "" || req.Slug == "" {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "name and slug are required", nil)
	}

	t := model.Tenant{
		Name:     req.Name,
		Slug:     req.Slug,
		PlanCode: req.PlanCode,
		Status:   model.TenantStatusActive,
	}
	if err := t.SetModules(req.Modules); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid modules", nil)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&t); result.Error != nil {
		log.Error("Failed to create tenant", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "tenant creation failed", nil)
	}

	log.Info("Tenant created", zap.Uint("id", t.ID), zap.String("slug", t.Slug))
	return response.Created(c, t)
}

// UpdateTenant changes a tenant's plan, status or enabled modules
func UpdateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("update")

	t, err := findTenant(c.Param("id"))
	if err != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "tenant not found", nil)
	}

	var req struct {
		Name     *string   `json:"name"`
		PlanCode *string   `json:"plan_code"`
		Status   *string   `json:"status"`
		Modules  *[]string `json:"modules"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request", nil)
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.PlanCode != nil {
		t.PlanCode = *req.PlanCode
	}
	if req.Status != nil {
		if *req.Status != model.TenantStatusActive && *req.Status != model.TenantStatusPaused {
			return response.Error(c, http.StatusBadRequest, response.CodeValidation, "status must be active or paused", nil)
		}
		t.Status = *req.Status
	}
	if req.Modules != nil {
		for _, m := range *req.Modules {
			if !isKnownModule(m) {
				return response.Error(c, http.StatusBadRequest, response.CodeValidation, "unknown module: "+m, nil)
			}
		}
		if err := t.SetModules(*req.Modules); err != nil {
			return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid modules", nil)
		}
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Save(t).Error; err != nil {
		log.Error("Failed to update tenant", zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "tenant update failed", nil)
	}

	log.Info("Tenant updated",
		zap.Uint("id", t.ID),
		zap.String("status", t.Status),
		zap.String("plan", t.PlanCode))
	return response.JSON(c, t)
}

// findTenant matches the legacy slug first, then the numeric id when
// the identifier parses as one. Both forms are still accepted.
func findTenant(identifier string) (*model.Tenant, error) {
	var t model.Tenant

	query := database.GetDB().Where("slug = ?", identifier)
	if id, err := strconv.ParseUint(identifier, 10, 32); err == nil {
		query = database.GetDB().Where("slug = ? OR id = ?", identifier, uint(id))
	}

	if err := query.First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func isKnownModule(name string) bool {
	for _, m := range knownModules {
		if m == name {
			return true
		}
	}
	return false
}

// ListPlans returns all pricing plans
func ListPlans(c echo.Context) error {
	var plans []model.Plan
	if result := database.GetDB().Order("monthly_price").Find(&plans); result.Error != nil {
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to retrieve plans", nil)
	}
	return response.JSON(c, plans)
}

// CreatePlan adds a pricing plan (super admin)
func CreatePlan(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Code         string  `json:"code"`
		Name         string  `json:"name"`
		MonthlyPrice float64 `json:"monthly_price"`
		MaxUsers     int     `json:"max_users"`
		MaxProjects  int     `json:"max_projects"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request", nil)
	}
	if req.Code == "" || req.Name == "" {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "code and name are required", nil)
	}

	plan := model.Plan{
		Code:         req.Code,
		Name:         req.Name,
		MonthlyPrice: req.MonthlyPrice,
		MaxUsers:     req.MaxUsers,
		MaxProjects:  req.MaxProjects,
	}
	if err := database.GetDB().Create(&plan).Error; err != nil {
		log.Error("Failed to create plan", zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "plan creation failed", nil)
	}

	return response.Created(c, plan)
}

// DeletePlan removes a pricing plan (super admin only)
func DeletePlan(c echo.Context) error {
	log := logger.FromContext(c)

	result := database.GetDB().Delete(&model.Plan{}, c.Param("id"))
	if result.Error != nil {
		log.Error("Failed to delete plan", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "plan deletion failed", nil)
	}
	if result.RowsAffected == 0 {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "plan not found", nil)
	}

	log.Info("Plan deleted", zap.String("id", c.Param("id")))
	return response.JSON(c, echo.Map{"deleted": true})
}

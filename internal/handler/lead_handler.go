package handler

import (
	"net/http"
	"strconv"
	"time"

	"buildcrm/internal/model"
	"buildcrm/pkg/logger"
	"buildcrm/pkg/response"
	"buildcrm/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LeadRequest defines the structure for lead creation/update requests
type LeadRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Source string `json:"source"`
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// ListLeads retrieves the tenant's leads with optional filtering
func ListLeads(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	query := p.DB().Model(&model.Lead{})
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if source := c.QueryParam("source"); source != "" {
		query = query.Where("source = ?", source)
	}

	page, limit := pagination(c)
	var total int64
	query.Count(&total)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var leads []model.Lead
	result := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&leads)
	if result.Error != nil {
		log.Error("Failed to list leads", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to retrieve leads", nil)
	}

	return response.Collection(c, leads, response.PaginationMeta{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: int64(page*limit) < total,
	})
}

// GetLead retrieves a single lead by ID
func GetLead(c echo.Context) error {
	p := partitionFrom(c)

	var lead model.Lead
	if result := p.DB().First(&lead, c.Param("id")); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "lead not found", nil)
	}
	return response.JSON(c, lead)
}

// CreateLead creates a new lead in the tenant partition
func CreateLead(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var req LeadRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}
	if req.Name == "" {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "name is required", nil)
	}

	status := req.Status
	if status == "" {
		status = model.LeadStatusNew
	}

	claims := claimsFrom(c)
	lead := model.Lead{
		TenantID: p.TenantID(),
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Source:   req.Source,
		Status:   status,
		Notes:    req.Notes,
		OwnerID:  claims.UserID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := p.Raw().Create(&lead); result.Error != nil {
		log.Error("Failed to create lead", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to create lead", nil)
	}

	log.Info("Lead created",
		zap.Uint("lead_id", lead.ID),
		zap.String("name", lead.Name))
	return response.Created(c, lead)
}

// UpdateLead updates an existing lead
func UpdateLead(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var lead model.Lead
	if result := p.DB().First(&lead, c.Param("id")); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "lead not found", nil)
	}

	var req LeadRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}

	if req.Name != "" {
		lead.Name = req.Name
	}
	if req.Email != "" {
		lead.Email = req.Email
	}
	if req.Phone != "" {
		lead.Phone = req.Phone
	}
	if req.Source != "" {
		lead.Source = req.Source
	}
	if req.Status != "" {
		lead.Status = req.Status
	}
	if req.Notes != "" {
		lead.Notes = req.Notes
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := p.Raw().Save(&lead); result.Error != nil {
		log.Error("Failed to update lead", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to update lead", nil)
	}

	return response.JSON(c, lead)
}

// DeleteLead soft-deletes a lead
func DeleteLead(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	result := p.DB().Delete(&model.Lead{}, c.Param("id"))
	if result.Error != nil {
		log.Error("Failed to delete lead", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to delete lead", nil)
	}
	if result.RowsAffected == 0 {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "lead not found", nil)
	}

	return response.JSON(c, echo.Map{"deleted": true})
}

// pagination parses page/limit query parameters with defaults
func pagination(c echo.Context) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 200 {
		limit = 20
	}
	return page, limit
}

package handler

import (
	"net/http"
	"time"

	"buildcrm/internal/model"
	"buildcrm/pkg/logger"
	"buildcrm/pkg/response"
	"buildcrm/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ProjectRequest defines the structure for project creation/update requests
type ProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ContactID   uint       `json:"contact_id"`
	Status      string     `json:"status"`
	Budget      float64    `json:"budget"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// ListProjects retrieves the tenant's projects
func ListProjects(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	query := p.DB().Model(&model.Project{})
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	page, limit := pagination(c)
	var total int64
	query.Count(&total)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var projects []model.Project
	if result := query.Preload("Members").Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&projects); result.Error != nil {
		log.Error("Failed to list projects", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to retrieve projects", nil)
	}

	return response.Collection(c, projects, response.PaginationMeta{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: int64(page*limit) < total,
	})
}

// GetProject retrieves a project with its members and the advisory
// team-role capability table
func GetProject(c echo.Context) error {
	p := partitionFrom(c)

	var project model.Project
	if result := p.DB().Preload("Members").First(&project, c.Param("id")); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "project not found", nil)
	}

	return response.JSON(c, echo.Map{
		"project":           project,
		"role_capabilities": model.TeamRoleCapabilities,
	})
}

// CreateProject creates a project in the tenant partition
func CreateProject(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var req ProjectRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}
	if req.Name == "" {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "name is required", nil)
	}

	status := req.Status
	if status == "" {
		status = model.ProjectStatusPlanning
	}

	project := model.Project{
		TenantID:    p.TenantID(),
		Name:        req.Name,
		Description: req.Description,
		ContactID:   req.ContactID,
		Status:      status,
		Budget:      req.Budget,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := p.Raw().Create(&project); result.Error != nil {
		log.Error("Failed to create project", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to create project", nil)
	}

	// Creator joins as project manager
	claims := claimsFrom(c)
	member := model.ProjectMember{
		TenantID:  p.TenantID(),
		ProjectID: project.ID,
		UserID:    claims.UserID,
		TeamRole:  model.TeamRoleProjectManager,
	}
	if err := p.Raw().Create(&member).Error; err != nil {
		log.Warn("Failed to add creator as project manager", zap.Error(err))
	}

	log.Info("Project created",
		zap.Uint("project_id", project.ID),
		zap.String("name", project.Name))
	return response.Created(c, project)
}

// UpdateProject updates an existing project
func UpdateProject(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var project model.Project
	if result := p.DB().First(&project, c.Param("id")); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "project not found", nil)
	}

	var req ProjectRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}

	if req.Name != "" {
		project.Name = req.Name
	}
	if req.Description != "" {
		project.Description = req.Description
	}
	if req.ContactID != 0 {
		project.ContactID = req.ContactID
	}
	if req.Status != "" {
		project.Status = req.Status
	}
	if req.Budget != 0 {
		project.Budget = req.Budget
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := p.Raw().Save(&project); result.Error != nil {
		log.Error("Failed to update project", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to update project", nil)
	}

	return response.JSON(c, project)
}

// DeleteProject soft-deletes a project
func DeleteProject(c echo.Context) error {
	p := partitionFrom(c)

	result := p.DB().Delete(&model.Project{}, c.Param("id"))
	if result.Error != nil {
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to delete project", nil)
	}
	if result.RowsAffected == 0 {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "project not found", nil)
	}
	return response.JSON(c, echo.Map{"deleted": true})
}

// AddProjectMember assigns a user to a project under a team role
func AddProjectMember(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var project model.Project
	if result := p.DB().First(&project, c.Param("id")); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "project not found", nil)
	}

	var req struct {
		UserID   uint   `json:"user_id"`
		TeamRole string `json:"team_role"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}
	if req.UserID == 0 {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "user_id is required", nil)
	}
	if req.TeamRole == "" {
		req.TeamRole = model.TeamRoleWorker
	}
	if _, ok := model.TeamRoleCapabilities[req.TeamRole]; !ok {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "unknown team role: "+req.TeamRole, nil)
	}

	// Existing member: update the role instead of duplicating the row
	var existing model.ProjectMember
	result := p.DB().Where("project_id = ? AND user_id = ?", project.ID, req.UserID).First(&existing)
	if result.Error == nil {
		existing.TeamRole = req.TeamRole
		if err := p.Raw().Save(&existing).Error; err != nil {
			return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to update member", nil)
		}
		return response.JSON(c, existing)
	}

	member := model.ProjectMember{
		TenantID:  p.TenantID(),
		ProjectID: project.ID,
		UserID:    req.UserID,
		TeamRole:  req.TeamRole,
	}
	if err := p.Raw().Create(&member).Error; err != nil {
		log.Error("Failed to add project member", zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to add member", nil)
	}

	log.Info("Project member added",
		zap.Uint("project_id", project.ID),
		zap.Uint("user_id", req.UserID),
		zap.String("team_role", req.TeamRole))
	return response.Created(c, member)
}

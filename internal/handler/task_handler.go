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

// TaskRequest defines the structure for task creation/update requests
type TaskRequest struct {
	ProjectID  uint       `json:"project_id"`
	Title      string     `json:"title"`
	Details    string     `json:"details"`
	AssigneeID uint       `json:"assignee_id"`
	Status     string     `json:"status"`
	DueDate    *time.Time `json:"due_date"`
}

// ListTasks retrieves tasks, optionally filtered by project, assignee
// or status
func ListTasks(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	query := p.DB().Model(&model.Task{})
	if projectID := c.QueryParam("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if assignee := c.QueryParam("assignee_id"); assignee != "" {
		query = query.Where("assignee_id = ?", assignee)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	page, limit := pagination(c)
	var total int64
	query.Count(&total)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var tasks []model.Task
	if result := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&tasks); result.Error != nil {
		log.Error("Failed to list tasks", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to retrieve tasks", nil)
	}

	return response.Collection(c, tasks, response.PaginationMeta{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: int64(page*limit) < total,
	})
}

// CreateTask creates a task inside a project
func CreateTask(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var req TaskRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}
	if req.Title == "" || req.ProjectID == 0 {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "title and project_id are required", nil)
	}

	// Project must exist in this partition
	var project model.Project
	if result := p.DB().First(&project, req.ProjectID); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "project not found", nil)
	}

	status := req.Status
	if status == "" {
		status = model.TaskStatusTodo
	}

	task := model.Task{
		TenantID:   p.TenantID(),
		ProjectID:  req.ProjectID,
		Title:      req.Title,
		Details:    req.Details,
		AssigneeID: req.AssigneeID,
		Status:     status,
		DueDate:    req.DueDate,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := p.Raw().Create(&task); result.Error != nil {
		log.Error("Failed to create task", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to create task", nil)
	}

	log.Info("Task created",
		zap.Uint("task_id", task.ID),
		zap.Uint("project_id", task.ProjectID))
	return response.Created(c, task)
}

// UpdateTask updates an existing task
func UpdateTask(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var task model.Task
	if result := p.DB().First(&task, c.Param("id")); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "task not found", nil)
	}

	var req TaskRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}

	if req.Title != "" {
		task.Title = req.Title
	}
	if req.Details != "" {
		task.Details = req.Details
	}
	if req.AssigneeID != 0 {
		task.AssigneeID = req.AssigneeID
	}
	if req.Status != "" {
		task.Status = req.Status
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := p.Raw().Save(&task); result.Error != nil {
		log.Error("Failed to update task", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to update task", nil)
	}

	return response.JSON(c, task)
}

// DeleteTask hard-deletes a task
func DeleteTask(c echo.Context) error {
	p := partitionFrom(c)

	result := p.DB().Delete(&model.Task{}, c.Param("id"))
	if result.Error != nil {
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to delete task", nil)
	}
	if result.RowsAffected == 0 {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "task not found", nil)
	}
	return response.JSON(c, echo.Map{"deleted": true})
}

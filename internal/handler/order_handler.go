package handler

import (
	"net/http"
	"time"

	"buildcrm/internal/model"
	"buildcrm/internal/sequence"
	"buildcrm/pkg/logger"
	"buildcrm/pkg/response"
	"buildcrm/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// WorkOrderRequest defines the structure for work order creation/update
type WorkOrderRequest struct {
	ProjectID    uint       `json:"project_id"`
	AssigneeID   uint       `json:"assignee_id"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

// ListWorkOrders retrieves the tenant's work orders
func ListWorkOrders(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	query := p.DB().Model(&model.WorkOrder{})
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if projectID := c.QueryParam("project_id"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	page, limit := pagination(c)
	var total int64
	query.Count(&total)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var orders []model.WorkOrder
	if result := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&orders); result.Error != nil {
		log.Error("Failed to list work orders", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to retrieve work orders", nil)
	}

	return response.Collection(c, orders, response.PaginationMeta{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: int64(page*limit) < total,
	})
}

// CreateWorkOrder creates a work order with the next sequential number
func CreateWorkOrder(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var req WorkOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}
	if req.ProjectID == 0 {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "project_id is required", nil)
	}

	var project model.Project
	if result := p.DB().First(&project, req.ProjectID); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "project not found", nil)
	}

	number, err := sequence.Next(p, sequence.DocTypeWorkOrder, time.Now())
	if err != nil {
		log.Error("Failed to allocate work order number", zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to create work order", nil)
	}

	order := model.WorkOrder{
		TenantID:     p.TenantID(),
		Number:       number,
		ProjectID:    req.ProjectID,
		AssigneeID:   req.AssigneeID,
		Description:  req.Description,
		Status:       model.WorkOrderStatusOpen,
		ScheduledFor: req.ScheduledFor,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := p.Raw().Create(&order); result.Error != nil {
		log.Error("Failed to create work order", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to create work order", nil)
	}

	prometheus.DocumentCounter.WithLabelValues("work_order").Inc()
	log.Info("Work order created",
		zap.Uint("work_order_id", order.ID),
		zap.String("number", order.Number))
	return response.Created(c, order)
}

// UpdateWorkOrder updates an existing work order
func UpdateWorkOrder(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var order model.WorkOrder
	if result := p.DB().First(&order, c.Param("id")); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "work order not found", nil)
	}

	var req WorkOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}

	if req.Status != "" {
		switch req.Status {
		case model.WorkOrderStatusOpen, model.WorkOrderStatusInProgress,
			model.WorkOrderStatusCompleted, model.WorkOrderStatusCancelled:
			order.Status = req.Status
		default:
			return response.Error(c, http.StatusBadRequest, response.CodeValidation, "unknown status: "+req.Status, nil)
		}
	}
	if req.AssigneeID != 0 {
		order.AssigneeID = req.AssigneeID
	}
	if req.Description != "" {
		order.Description = req.Description
	}
	if req.ScheduledFor != nil {
		order.ScheduledFor = req.ScheduledFor
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := p.Raw().Save(&order); result.Error != nil {
		log.Error("Failed to update work order", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to update work order", nil)
	}

	return response.JSON(c, order)
}

// DeleteWorkOrder soft-deletes a work order
func DeleteWorkOrder(c echo.Context) error {
	p := partitionFrom(c)

	result := p.DB().Delete(&model.WorkOrder{}, c.Param("id"))
	if result.Error != nil {
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to delete work order", nil)
	}
	if result.RowsAffected == 0 {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "work order not found", nil)
	}
	return response.JSON(c, echo.Map{"deleted": true})
}

// PurchaseOrderRequest defines the structure for purchase order
// creation/update
type PurchaseOrderRequest struct {
	SupplierName string     `json:"supplier_name"`
	ProjectID    uint       `json:"project_id"`
	Total        float64    `json:"total"`
	Status       string     `json:"status"`
	ExpectedAt   *time.Time `json:"expected_at"`
	Notes        string     `json:"notes"`
}

// ListPurchaseOrders retrieves the tenant's purchase orders
func ListPurchaseOrders(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	query := p.DB().Model(&model.PurchaseOrder{})
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	page, limit := pagination(c)
	var total int64
	query.Count(&total)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var orders []model.PurchaseOrder
	if result := query.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&orders); result.Error != nil {
		log.Error("Failed to list purchase orders", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to retrieve purchase orders", nil)
	}

	return response.Collection(c, orders, response.PaginationMeta{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: int64(page*limit) < total,
	})
}

// CreatePurchaseOrder creates a purchase order with the next sequential
// number
func CreatePurchaseOrder(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var req PurchaseOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}
	if req.SupplierName == "" {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "supplier_name is required", nil)
	}

	number, err := sequence.Next(p, sequence.DocTypePurchaseOrder, time.Now())
	if err != nil {
		log.Error("Failed to allocate purchase order number", zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to create purchase order", nil)
	}

	order := model.PurchaseOrder{
		TenantID:     p.TenantID(),
		Number:       number,
		SupplierName: req.SupplierName,
		ProjectID:    req.ProjectID,
		Total:        req.Total,
		Status:       model.PurchaseOrderStatusDraft,
		ExpectedAt:   req.ExpectedAt,
		Notes:        req.Notes,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := p.Raw().Create(&order); result.Error != nil {
		log.Error("Failed to create purchase order", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to create purchase order", nil)
	}

	prometheus.DocumentCounter.WithLabelValues("purchase_order").Inc()
	log.Info("Purchase order created",
		zap.Uint("purchase_order_id", order.ID),
		zap.String("number", order.Number))
	return response.Created(c, order)
}

// UpdatePurchaseOrder updates an existing purchase order
func UpdatePurchaseOrder(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var order model.PurchaseOrder
	if result := p.DB().First(&order, c.Param("id")); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "purchase order not found", nil)
	}

	var req PurchaseOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}

	if req.Status != "" {
		switch req.Status {
		case model.PurchaseOrderStatusDraft, model.PurchaseOrderStatusOrdered,
			model.PurchaseOrderStatusReceived, model.PurchaseOrderStatusCancelled:
			order.Status = req.Status
		default:
			return response.Error(c, http.StatusBadRequest, response.CodeValidation, "unknown status: "+req.Status, nil)
		}
	}
	if req.SupplierName != "" {
		order.SupplierName = req.SupplierName
	}
	if req.Total != 0 {
		order.Total = req.Total
	}
	if req.ExpectedAt != nil {
		order.ExpectedAt = req.ExpectedAt
	}
	if req.Notes != "" {
		order.Notes = req.Notes
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := p.Raw().Save(&order); result.Error != nil {
		log.Error("Failed to update purchase order", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to update purchase order", nil)
	}

	return response.JSON(c, order)
}

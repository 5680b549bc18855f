package handler

import (
	"net/http"
	"time"

	"buildcrm/internal/inventory"
	"buildcrm/internal/model"
	"buildcrm/internal/sequence"
	"buildcrm/pkg/logger"
	"buildcrm/pkg/response"
	"buildcrm/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// QuotationItemRequest is one line of a quotation request
type QuotationItemRequest struct {
	Description string  `json:"description"`
	ItemID      uint    `json:"item_id"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// ListQuotations retrieves the tenant's quotations
func ListQuotations(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	query := p.DB().Model(&model.Quotation{})
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
	var quotations []model.Quotation
	if result := query.Preload("Items").Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&quotations); result.Error != nil {
		log.Error("Failed to list quotations", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to retrieve quotations", nil)
	}

	return response.Collection(c, quotations, response.PaginationMeta{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: int64(page*limit) < total,
	})
}

// GetQuotation retrieves a single quotation with its lines
func GetQuotation(c echo.Context) error {
	p := partitionFrom(c)

	var quotation model.Quotation
	if result := p.DB().Preload("Items").First(&quotation, c.Param("id")); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "quotation not found", nil)
	}
	return response.JSON(c, quotation)
}

// CreateQuotation creates a draft quotation with a sequential number
func CreateQuotation(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var req struct {
		ContactID uint                   `json:"contact_id"`
		ProjectID uint                   `json:"project_id"`
		Items     []QuotationItemRequest `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}
	if len(req.Items) == 0 {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "at least one item is required", nil)
	}

	number, err := sequence.Next(p, sequence.DocTypeQuotation, time.Now())
	if err != nil {
		log.Error("Failed to allocate quotation number", zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to create quotation", nil)
	}

	quotation := model.Quotation{
		TenantID:  p.TenantID(),
		Number:    number,
		ContactID: req.ContactID,
		ProjectID: req.ProjectID,
		Status:    model.QuotationStatusDraft,
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return response.Error(c, http.StatusBadRequest, response.CodeValidation, "item quantity must be greater than zero", nil)
		}
		quotation.Items = append(quotation.Items, model.QuotationItem{
			Description: item.Description,
			ItemID:      item.ItemID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
		quotation.Total += float64(item.Quantity) * item.UnitPrice
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := p.Raw().Create(&quotation); result.Error != nil {
		log.Error("Failed to create quotation", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to create quotation", nil)
	}

	prometheus.DocumentCounter.WithLabelValues("quotation").Inc()
	log.Info("Quotation created",
		zap.Uint("quotation_id", quotation.ID),
		zap.String("number", quotation.Number))
	return response.Created(c, quotation)
}

// UpdateQuotation handles status transitions via a tagged action.
// Approving commits every active reservation held against the
// quotation; rejecting releases them.
func UpdateQuotation(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var quotation model.Quotation
	if result := p.DB().First(&quotation, c.Param("id")); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "quotation not found", nil)
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}

	claims := claimsFrom(c)

	switch req.Action {
	case "send":
		if quotation.Status != model.QuotationStatusDraft {
			return response.Error(c, http.StatusBadRequest, response.CodeValidation, "only draft quotations can be sent", nil)
		}
		quotation.Status = model.QuotationStatusSent

	case "approve":
		if quotation.Status == model.QuotationStatusApproved || quotation.Status == model.QuotationStatusRejected {
			return response.Error(c, http.StatusBadRequest, response.CodeValidation, "quotation is already finalized", nil)
		}
		committed, err := inventory.CommitForQuotation(p, quotation.ID)
		if err != nil {
			log.Error("Failed to commit reservations for quotation", zap.Error(err))
			return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to commit reservations", nil)
		}
		quotation.Status = model.QuotationStatusApproved
		prometheus.RecordReservationOperation("commit")
		log.Info("Quotation approved",
			zap.Uint("quotation_id", quotation.ID),
			zap.Int("reservations_committed", committed))

	case "reject":
		if quotation.Status == model.QuotationStatusApproved || quotation.Status == model.QuotationStatusRejected {
			return response.Error(c, http.StatusBadRequest, response.CodeValidation, "quotation is already finalized", nil)
		}
		released, err := inventory.ReleaseForQuotation(p, quotation.ID, "quotation rejected", claims.Email)
		if err != nil {
			log.Error("Failed to release reservations for quotation", zap.Error(err))
			return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to release reservations", nil)
		}
		quotation.Status = model.QuotationStatusRejected
		prometheus.RecordReservationOperation("release")
		log.Info("Quotation rejected",
			zap.Uint("quotation_id", quotation.ID),
			zap.Int("reservations_released", released))

	default:
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "unknown action: "+req.Action, nil)
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := p.Raw().Save(&quotation); result.Error != nil {
		log.Error("Failed to update quotation", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to update quotation", nil)
	}

	return response.JSON(c, quotation)
}

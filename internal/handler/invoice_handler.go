package handler

import (
	"net/http"
	"time"

	"buildcrm/internal/model"
	"buildcrm/internal/notify"
	"buildcrm/internal/sequence"
	"buildcrm/pkg/logger"
	"buildcrm/pkg/response"
	"buildcrm/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// InvoiceItemRequest is one line of an invoice request
type InvoiceItemRequest struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// ListInvoices retrieves the tenant's invoices
func ListInvoices(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	query := p.DB().Model(&model.Invoice{})
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if contactID := c.QueryParam("contact_id"); contactID != "" {
		query = query.Where("contact_id = ?", contactID)
	}

	page, limit := pagination(c)
	var total int64
	query.Count(&total)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var invoices []model.Invoice
	if result := query.Preload("Items").Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).Find(&invoices); result.Error != nil {
		log.Error("Failed to list invoices", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to retrieve invoices", nil)
	}

	return response.Collection(c, invoices, response.PaginationMeta{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: int64(page*limit) < total,
	})
}

// GetInvoice retrieves a single invoice with its lines
func GetInvoice(c echo.Context) error {
	p := partitionFrom(c)

	var invoice model.Invoice
	if result := p.DB().Preload("Items").First(&invoice, c.Param("id")); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "invoice not found", nil)
	}
	return response.JSON(c, invoice)
}

// CreateInvoice creates an invoice with the next sequential number for
// the tenant and year
func CreateInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var req struct {
		ContactID uint                 `json:"contact_id"`
		ProjectID uint                 `json:"project_id"`
		DueDate   *time.Time           `json:"due_date"`
		Items     []InvoiceItemRequest `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}
	if len(req.Items) == 0 {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "at least one item is required", nil)
	}

	number, err := sequence.Next(p, sequence.DocTypeInvoice, time.Now())
	if err != nil {
		log.Error("Failed to allocate invoice number", zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to create invoice", nil)
	}

	invoice := model.Invoice{
		TenantID:  p.TenantID(),
		Number:    number,
		ContactID: req.ContactID,
		ProjectID: req.ProjectID,
		Status:    model.InvoiceStatusDraft,
		DueDate:   req.DueDate,
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return response.Error(c, http.StatusBadRequest, response.CodeValidation, "item quantity must be greater than zero", nil)
		}
		invoice.Items = append(invoice.Items, model.InvoiceItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
		invoice.Total += float64(item.Quantity) * item.UnitPrice
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := p.Raw().Create(&invoice); result.Error != nil {
		log.Error("Failed to create invoice", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to create invoice", nil)
	}

	prometheus.DocumentCounter.WithLabelValues("invoice").Inc()
	notify.Send("invoice.created", p.TenantID(), echo.Map{
		"invoice_id": invoice.ID,
		"number":     invoice.Number,
		"total":      invoice.Total,
	})

	log.Info("Invoice created",
		zap.Uint("invoice_id", invoice.ID),
		zap.String("number", invoice.Number),
		zap.Float64("total", invoice.Total))
	return response.Created(c, invoice)
}

// UpdateInvoice updates invoice status
func UpdateInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var invoice model.Invoice
	if result := p.DB().First(&invoice, c.Param("id")); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "invoice not found", nil)
	}

	var req struct {
		Status  string     `json:"status"`
		DueDate *time.Time `json:"due_date"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}

	if req.Status != "" {
		switch req.Status {
		case model.InvoiceStatusDraft, model.InvoiceStatusSent, model.InvoiceStatusPaid, model.InvoiceStatusVoid:
			invoice.Status = req.Status
		default:
			return response.Error(c, http.StatusBadRequest, response.CodeValidation, "unknown status: "+req.Status, nil)
		}
	}
	if req.DueDate != nil {
		invoice.DueDate = req.DueDate
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := p.Raw().Save(&invoice); result.Error != nil {
		log.Error("Failed to update invoice", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to update invoice", nil)
	}

	return response.JSON(c, invoice)
}

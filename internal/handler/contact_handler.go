package handler

import (
	"net/http"
	"strings"
	"time"

	"buildcrm/internal/model"
	"buildcrm/pkg/logger"
	"buildcrm/pkg/response"
	"buildcrm/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ContactRequest defines the structure for contact creation/update requests
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Address string `json:"address"`
}

// ListContacts retrieves the tenant's contacts
func ListContacts(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	query := p.DB().Model(&model.Contact{})
	if search := c.QueryParam("q"); search != "" {
		query = query.Where("name LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	page, limit := pagination(c)
	var total int64
	query.Count(&total)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var contacts []model.Contact
	if result := query.Order("name").Offset((page - 1) * limit).Limit(limit).Find(&contacts); result.Error != nil {
		log.Error("Failed to list contacts", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to retrieve contacts", nil)
	}

	return response.Collection(c, contacts, response.PaginationMeta{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: int64(page*limit) < total,
	})
}

// GetContact retrieves a single contact by ID
func GetContact(c echo.Context) error {
	p := partitionFrom(c)

	var contact model.Contact
	if result := p.DB().First(&contact, c.Param("id")); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "contact not found", nil)
	}
	return response.JSON(c, contact)
}

// CreateContact creates a contact. Email must be unique within the
// tenant; the check is read-then-write, matching the rest of the
// duplicate handling in this codebase.
func CreateContact(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}
	if req.Name == "" {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "name is required", nil)
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid email address", nil)
	}

	if req.Email != "" {
		var count int64
		p.DB().Model(&model.Contact{}).Where("email = ?", req.Email).Count(&count)
		if count > 0 {
			log.Warn("Contact with this email already exists", zap.String("email", req.Email))
			return response.Error(c, http.StatusConflict, response.CodeConflict, "contact with this email already exists", nil)
		}
	}

	contact := model.Contact{
		TenantID: p.TenantID(),
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Company:  req.Company,
		Address:  req.Address,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := p.Raw().Create(&contact); result.Error != nil {
		log.Error("Failed to create contact", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to create contact", nil)
	}

	log.Info("Contact created",
		zap.Uint("contact_id", contact.ID),
		zap.String("name", contact.Name))
	return response.Created(c, contact)
}

// UpdateContact updates an existing contact
func UpdateContact(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var contact model.Contact
	if result := p.DB().First(&contact, c.Param("id")); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "contact not found", nil)
	}

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}

	if req.Email != "" && req.Email != contact.Email {
		var count int64
		p.DB().Model(&model.Contact{}).Where("email = ? AND id != ?", req.Email, contact.ID).Count(&count)
		if count > 0 {
			return response.Error(c, http.StatusConflict, response.CodeConflict, "contact with this email already exists", nil)
		}
		contact.Email = req.Email
	}
	if req.Name != "" {
		contact.Name = req.Name
	}
	if req.Phone != "" {
		contact.Phone = req.Phone
	}
	if req.Company != "" {
		contact.Company = req.Company
	}
	if req.Address != "" {
		contact.Address = req.Address
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := p.Raw().Save(&contact); result.Error != nil {
		log.Error("Failed to update contact", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to update contact", nil)
	}

	return response.JSON(c, contact)
}

// DeleteContact soft-deletes a contact
func DeleteContact(c echo.Context) error {
	p := partitionFrom(c)

	result := p.DB().Delete(&model.Contact{}, c.Param("id"))
	if result.Error != nil {
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to delete contact", nil)
	}
	if result.RowsAffected == 0 {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "contact not found", nil)
	}
	return response.JSON(c, echo.Map{"deleted": true})
}

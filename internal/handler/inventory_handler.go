package handler

import (
	"errors"
	"net/http"
	"time"

	"buildcrm/internal/inventory"
	"buildcrm/internal/model"
	"buildcrm/pkg/logger"
	"buildcrm/pkg/response"
	"buildcrm/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// InventoryItemRequest defines the structure for item creation/update
type InventoryItemRequest struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	WarehouseID string  `json:"warehouse_id"`
	Quantity    *int    `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// ListInventoryItems retrieves the tenant's inventory items
func ListInventoryItems(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	query := p.DB().Model(&model.InventoryItem{})
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if warehouse := c.QueryParam("warehouse_id"); warehouse != "" {
		query = query.Where("warehouse_id = ?", warehouse)
	}

	page, limit := pagination(c)
	var total int64
	query.Count(&total)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var items []model.InventoryItem
	if result := query.Order("sku").Offset((page - 1) * limit).Limit(limit).Find(&items); result.Error != nil {
		log.Error("Failed to list inventory items", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to retrieve inventory", nil)
	}

	return response.Collection(c, items, response.PaginationMeta{
		Page:    page,
		Limit:   limit,
		Total:   total,
		HasNext: int64(page*limit) < total,
	})
}

// GetInventoryItem retrieves a single item with its availability
func GetInventoryItem(c echo.Context) error {
	p := partitionFrom(c)

	var item model.InventoryItem
	if result := p.DB().First(&item, c.Param("id")); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "inventory item not found", nil)
	}

	return response.JSON(c, echo.Map{
		"item":      item,
		"available": item.Available(),
	})
}

// CreateInventoryItem adds a stocked product to the tenant partition
func CreateInventoryItem(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var req InventoryItemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}
	if req.SKU == "" || req.Name == "" {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "sku and name are required", nil)
	}

	var count int64
	p.DB().Model(&model.InventoryItem{}).Where("sku = ?", req.SKU).Count(&count)
	if count > 0 {
		log.Warn("Item with this SKU already exists", zap.String("sku", req.SKU))
		return response.Error(c, http.StatusConflict, response.CodeConflict, "item with this SKU already exists", nil)
	}

	warehouse := req.WarehouseID
	if warehouse == "" {
		warehouse = model.DefaultWarehouse
	}
	quantity := 0
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	item := model.InventoryItem{
		TenantID:    p.TenantID(),
		SKU:         req.SKU,
		Name:        req.Name,
		Category:    req.Category,
		WarehouseID: warehouse,
		Quantity:    quantity,
		UnitPrice:   req.UnitPrice,
		IsActive:    true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := p.Raw().Create(&item); result.Error != nil {
		log.Error("Failed to create inventory item", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to create item", nil)
	}

	log.Info("Inventory item created",
		zap.Uint("item_id", item.ID),
		zap.String("sku", item.SKU))
	return response.Created(c, item)
}

// UpdateInventoryItem updates item attributes or performs a tagged
// action. The "reserve" action delegates to the reservation service so
// the availability rule is applied the same way as every other entry
// point; "adjust" changes on-hand quantity.
func UpdateInventoryItem(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var item model.InventoryItem
	if result := p.DB().First(&item, c.Param("id")); result.Error != nil {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "inventory item not found", nil)
	}

	var req struct {
		InventoryItemRequest
		Action      string `json:"action"`
		ReserveQty  int    `json:"reserve_qty"`
		QuotationID uint   `json:"quotation_id"`
		QuoteNumber string `json:"quote_number"`
		ExpiryDays  int    `json:"expiry_days"`
		Adjustment  int    `json:"adjustment"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}

	switch req.Action {
	case "reserve":
		prometheus.RecordReservationOperation("create")
		res, err := inventory.Create(p, inventory.CreateInput{
			ItemID:      item.ID,
			Quantity:    req.ReserveQty,
			QuotationID: req.QuotationID,
			QuoteNumber: req.QuoteNumber,
			WarehouseID: item.WarehouseID,
			ExpiryDays:  req.ExpiryDays,
		})
		if err != nil {
			return reservationError(c, log, err)
		}
		log.Info("Stock reserved via inventory endpoint",
			zap.Uint("item_id", item.ID),
			zap.Int("quantity", req.ReserveQty))
		return response.Created(c, res)

	case "adjust":
		if item.Quantity+req.Adjustment < item.ReservedQuantity {
			return response.Error(c, http.StatusBadRequest, response.CodeValidation, "adjustment would leave less stock than is reserved", nil)
		}
		item.Quantity += req.Adjustment

	case "":
		if req.Name != "" {
			item.Name = req.Name
		}
		if req.Category != "" {
			item.Category = req.Category
		}
		if req.WarehouseID != "" {
			item.WarehouseID = req.WarehouseID
		}
		if req.UnitPrice != 0 {
			item.UnitPrice = req.UnitPrice
		}

	default:
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "unknown action: "+req.Action, nil)
	}

	// Write only the columns this handler owns. reserved_quantity
	// belongs to the reservation service; carrying the value read above
	// back into the row would clobber any hold placed in between.
	defer prometheus.TrackDBOperation("update")(time.Now())
	result := p.DB().Model(&model.InventoryItem{}).
		Where("id = ?", item.ID).
		Select("name", "category", "warehouse_id", "quantity", "unit_price").
		Updates(&item)
	if result.Error != nil {
		log.Error("Failed to update inventory item", zap.Error(result.Error))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to update item", nil)
	}

	return response.JSON(c, item)
}

// DeleteInventoryItem soft-deletes an item
func DeleteInventoryItem(c echo.Context) error {
	p := partitionFrom(c)

	result := p.DB().Delete(&model.InventoryItem{}, c.Param("id"))
	if result.Error != nil {
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to delete item", nil)
	}
	if result.RowsAffected == 0 {
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, "inventory item not found", nil)
	}
	return response.JSON(c, echo.Map{"deleted": true})
}

// reservationError maps reservation service errors to HTTP responses
func reservationError(c echo.Context, log *zap.Logger, err error) error {
	switch {
	case errors.Is(err, inventory.ErrInvalidQuantity):
		prometheus.RecordReservationError("invalid_quantity")
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, err.Error(), nil)
	case errors.Is(err, inventory.ErrInsufficientStock):
		prometheus.RecordReservationError("insufficient_stock")
		return response.Error(c, http.StatusConflict, response.CodeInsufficientStock, err.Error(), nil)
	case errors.Is(err, inventory.ErrItemNotFound), errors.Is(err, inventory.ErrReservationNotFound):
		prometheus.RecordReservationError("not_found")
		return response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error(), nil)
	case errors.Is(err, inventory.ErrAlreadyTerminal):
		prometheus.RecordReservationError("already_terminal")
		return response.Error(c, http.StatusConflict, response.CodeAlreadyTerminal, err.Error(), nil)
	default:
		log.Error("Reservation operation failed", zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "reservation operation failed", nil)
	}
}

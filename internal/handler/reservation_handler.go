package handler

import (
	"net/http"
	"strconv"
	"time"

	"buildcrm/internal/inventory"
	"buildcrm/internal/notify"
	"buildcrm/pkg/logger"
	"buildcrm/pkg/response"
	"buildcrm/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ListReservations returns reservations with per-status stats and a
// per-product rollup of actively held quantity. Lapsed reservations
// are excluded unless includeExpired=true.
func ListReservations(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)
	prometheus.RecordReservationOperation("list")

	filter := inventory.ListFilter{
		Status: c.QueryParam("status"),
	}
	if productID := c.QueryParam("productId"); productID != "" {
		id, err := strconv.ParseUint(productID, 10, 32)
		if err != nil {
			return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid productId", nil)
		}
		filter.ItemID = uint(id)
	}
	if quotationID := c.QueryParam("quotationId"); quotationID != "" {
		id, err := strconv.ParseUint(quotationID, 10, 32)
		if err != nil {
			return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid quotationId", nil)
		}
		filter.QuotationID = uint(id)
	}
	if include := c.QueryParam("includeExpired"); include != "" {
		filter.IncludeExpired, _ = strconv.ParseBool(include)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	reservations, stats, byProduct, err := inventory.List(p, filter)
	if err != nil {
		log.Error("Failed to list reservations", zap.Error(err))
		return response.Error(c, http.StatusInternalServerError, response.CodeInternal, "failed to retrieve reservations", nil)
	}

	return response.JSON(c, echo.Map{
		"reservations": reservations,
		"stats":        stats,
		"byProduct":    byProduct,
	})
}

// CreateReservation places a hold of stock against a quotation
func CreateReservation(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)
	prometheus.RecordReservationOperation("create")

	var req struct {
		ProductID   uint   `json:"productId"`
		Quantity    int    `json:"quantity"`
		QuotationID uint   `json:"quotationId"`
		QuoteNumber string `json:"quoteNumber"`
		WarehouseID string `json:"warehouseId"`
		ExpiryDays  int    `json:"expiryDays"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}
	if req.ProductID == 0 {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "productId is required", nil)
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	res, err := inventory.Create(p, inventory.CreateInput{
		ItemID:      req.ProductID,
		Quantity:    req.Quantity,
		QuotationID: req.QuotationID,
		QuoteNumber: req.QuoteNumber,
		WarehouseID: req.WarehouseID,
		ExpiryDays:  req.ExpiryDays,
	})
	if err != nil {
		return reservationError(c, log, err)
	}

	log.Info("Reservation created",
		zap.Uint("reservation_id", res.ID),
		zap.Uint("item_id", res.ItemID),
		zap.Int("quantity", res.Quantity),
		zap.String("quote_number", res.QuoteNumber))
	return response.Created(c, res)
}

// UpdateReservation performs a tagged action against a reservation:
// release returns held stock, extend pushes expiry forward, commit
// consumes the stock, and sweep releases every lapsed hold.
func UpdateReservation(c echo.Context) error {
	log := logger.FromContext(c)
	p := partitionFrom(c)

	var req struct {
		ID     uint   `json:"id"`
		Action string `json:"action"`
		Reason string `json:"reason"`
	}
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "invalid request data", nil)
	}

	claims := claimsFrom(c)
	defer prometheus.TrackDBOperation("update")(time.Now())

	switch req.Action {
	case "release":
		prometheus.RecordReservationOperation("release")
		if req.ID == 0 {
			return response.Error(c, http.StatusBadRequest, response.CodeValidation, "id is required", nil)
		}
		res, err := inventory.Release(p, req.ID, req.Reason, claims.Email)
		if err != nil {
			return reservationError(c, log, err)
		}
		log.Info("Reservation released",
			zap.Uint("reservation_id", res.ID),
			zap.String("reason", req.Reason))
		return response.JSON(c, res)

	case "extend":
		prometheus.RecordReservationOperation("extend")
		if req.ID == 0 {
			return response.Error(c, http.StatusBadRequest, response.CodeValidation, "id is required", nil)
		}
		res, err := inventory.Extend(p, req.ID)
		if err != nil {
			return reservationError(c, log, err)
		}
		log.Info("Reservation extended",
			zap.Uint("reservation_id", res.ID),
			zap.Time("expires_at", res.ExpiresAt))
		return response.JSON(c, res)

	case "commit":
		prometheus.RecordReservationOperation("commit")
		if req.ID == 0 {
			return response.Error(c, http.StatusBadRequest, response.CodeValidation, "id is required", nil)
		}
		res, err := inventory.Commit(p, req.ID)
		if err != nil {
			return reservationError(c, log, err)
		}
		notify.Send("reservation.committed", p.TenantID(), echo.Map{
			"reservation_id": res.ID,
			"item_id":        res.ItemID,
			"quantity":       res.Quantity,
		})
		log.Info("Reservation committed",
			zap.Uint("reservation_id", res.ID),
			zap.Int("quantity", res.Quantity))
		return response.JSON(c, res)

	case "sweep":
		prometheus.RecordReservationOperation("sweep")
		count, err := inventory.Sweep(p, time.Now())
		if err != nil {
			return reservationError(c, log, err)
		}
		log.Info("Lapsed reservations swept", zap.Int("count", count))
		return response.JSON(c, echo.Map{"released": count})

	default:
		return response.Error(c, http.StatusBadRequest, response.CodeValidation, "unknown action: "+req.Action, nil)
	}
}

// Package inventory owns the reservation lifecycle and the
// reserved-quantity counter on inventory items. All entry points that
// hold or return stock go through this package, so the availability
// rule is enforced in exactly one place and the counter has a single
// owner.
package inventory

import (
	"sort"
	"time"

	"buildcrm/internal/model"
	"buildcrm/internal/tenant"
	"buildcrm/pkg/config"
	"buildcrm/prometheus"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultTTLDays is the reservation time-to-live when neither the
// caller nor the configuration supplies one. Extend pushes expiry
// forward by the same window.
const DefaultTTLDays = 7

var ttlDays = DefaultTTLDays

// Initialize applies inventory configuration
func Initialize(cfg *config.InventoryConfig) {
	if cfg.ReservationTTLDays > 0 {
		ttlDays = cfg.ReservationTTLDays
	}
}

// CreateInput describes a reservation request
type CreateInput struct {
	ItemID      uint
	Quantity    int
	QuotationID uint
	QuoteNumber string
	WarehouseID string
	ExpiryDays  int
	ExpiresAt   *time.Time
}

// ListFilter narrows reservation listings. Expired reservations are
// excluded unless IncludeExpired is set.
type ListFilter struct {
	ItemID         uint
	QuotationID    uint
	Status         string
	IncludeExpired bool
}

// Stats aggregates reservation counts per status plus the total
// actively held quantity
type Stats struct {
	Total            int `json:"total"`
	Active           int `json:"active"`
	Committed        int `json:"committed"`
	Released         int `json:"released"`
	Expired          int `json:"expired"`
	TotalReservedQty int `json:"total_reserved_qty"`
}

// ProductRollup sums actively reserved quantity per inventory item
type ProductRollup struct {
	ItemID       uint                `json:"item_id"`
	SKU          string              `json:"sku"`
	ProductName  string              `json:"product_name"`
	ReservedQty  int                 `json:"reserved_qty"`
	Reservations []model.Reservation `json:"reservations"`
}

// Create places a hold of in.Quantity against the item. The
// availability check and both writes (reservation row, reserved
// counter) happen inside one transaction, so the reserved total on an
// item can never exceed its on-hand quantity.
func Create(p *tenant.Partition, in CreateInput) (*model.Reservation, error) {
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var res model.Reservation
	err := p.Transaction(func(tx *tenant.Partition) error {
		var item model.InventoryItem
		if err := tx.DB().First(&item, in.ItemID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrItemNotFound
			}
			return err
		}

		if item.Available() < in.Quantity {
			return ErrInsufficientStock
		}

		now := time.Now()
		expiresAt := now.AddDate(0, 0, ttlDays)
		if in.ExpiryDays > 0 {
			expiresAt = now.AddDate(0, 0, in.ExpiryDays)
		}
		if in.ExpiresAt != nil {
			expiresAt = *in.ExpiresAt
		}

		warehouse := in.WarehouseID
		if warehouse == "" {
			warehouse = model.DefaultWarehouse
		}

		res = model.Reservation{
			TenantID:    tx.TenantID(),
			Reference:   uuid.New().String(),
			ItemID:      item.ID,
			ProductName: item.Name,
			Quantity:    in.Quantity,
			QuotationID: in.QuotationID,
			QuoteNumber: in.QuoteNumber,
			WarehouseID: warehouse,
			Status:      model.ReservationStatusActive,
			ExpiresAt:   expiresAt,
		}
		if err := tx.Raw().Create(&res).Error; err != nil {
			return err
		}

		return tx.Model(&model.InventoryItem{}).
			Where("id = ?", item.ID).
			UpdateColumn("reserved_quantity", gorm.Expr("reserved_quantity + ?", in.Quantity)).Error
	})
	if err != nil {
		return nil, err
	}
	prometheus.ActiveReservationsGauge.Inc()
	return &res, nil
}

// Release returns a reservation's held quantity to the available pool.
// The counter is only decremented when the current state is active;
// releasing an already-released reservation is a no-op that returns the
// existing record, so a repeated release can never corrupt the counter.
func Release(p *tenant.Partition, id uint, reason, actor string) (*model.Reservation, error) {
	var res model.Reservation
	released := false
	err := p.Transaction(func(tx *tenant.Partition) error {
		if err := tx.DB().First(&res, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrReservationNotFound
			}
			return err
		}

		if res.Status == model.ReservationStatusReleased || res.Status == model.ReservationStatusExpired {
			return nil // idempotent: stock was already returned
		}
		if res.Terminal() {
			return ErrAlreadyTerminal
		}

		released = true
		return release(tx, &res, model.ReservationStatusReleased, reason, actor)
	})
	if err != nil {
		return nil, err
	}
	if released {
		prometheus.ActiveReservationsGauge.Dec()
	}
	return &res, nil
}

// release transitions an active reservation to a stock-returning
// terminal state and decrements the item's reserved counter. Must run
// inside a transaction.
func release(tx *tenant.Partition, res *model.Reservation, status, reason, actor string) error {
	now := time.Now()
	res.Status = status
	res.ReleasedAt = &now
	res.ReleaseReason = reason
	res.ReleasedBy = actor
	if err := tx.Raw().Save(res).Error; err != nil {
		return err
	}

	return tx.Model(&model.InventoryItem{}).
		Where("id = ?", res.ItemID).
		UpdateColumn("reserved_quantity", gorm.Expr("reserved_quantity - ?", res.Quantity)).Error
}

// Commit consumes a reservation: on-hand and reserved quantities both
// drop by the held amount and the reservation becomes terminal. There
// is no reversal once committed.
func Commit(p *tenant.Partition, id uint) (*model.Reservation, error) {
	var res model.Reservation
	err := p.Transaction(func(tx *tenant.Partition) error {
		if err := tx.DB().First(&res, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrReservationNotFound
			}
			return err
		}
		if res.Terminal() {
			return ErrAlreadyTerminal
		}

		res.Status = model.ReservationStatusCommitted
		if err := tx.Raw().Save(&res).Error; err != nil {
			return err
		}

		return tx.Model(&model.InventoryItem{}).
			Where("id = ?", res.ItemID).
			UpdateColumns(map[string]interface{}{
				"quantity":          gorm.Expr("quantity - ?", res.Quantity),
				"reserved_quantity": gorm.Expr("reserved_quantity - ?", res.Quantity),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	prometheus.ActiveReservationsGauge.Dec()
	return &res, nil
}

// Extend pushes an active reservation's expiry forward by the renewal
// window without changing the held quantity.
func Extend(p *tenant.Partition, id uint) (*model.Reservation, error) {
	var res model.Reservation
	err := p.Transaction(func(tx *tenant.Partition) error {
		if err := tx.DB().First(&res, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrReservationNotFound
			}
			return err
		}
		if res.Terminal() {
			return ErrAlreadyTerminal
		}

		res.ExpiresAt = res.ExpiresAt.AddDate(0, 0, ttlDays)
		return tx.Raw().Save(&res).Error
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CommitForQuotation commits every active reservation made against the
// quotation. Called when the source document is approved.
func CommitForQuotation(p *tenant.Partition, quotationID uint) (int, error) {
	return forQuotation(p, quotationID, func(tx *tenant.Partition, res *model.Reservation) error {
		res.Status = model.ReservationStatusCommitted
		if err := tx.Raw().Save(res).Error; err != nil {
			return err
		}
		return tx.Model(&model.InventoryItem{}).
			Where("id = ?", res.ItemID).
			UpdateColumns(map[string]interface{}{
				"quantity":          gorm.Expr("quantity - ?", res.Quantity),
				"reserved_quantity": gorm.Expr("reserved_quantity - ?", res.Quantity),
			}).Error
	})
}

// ReleaseForQuotation releases every active reservation made against
// the quotation. Called when the source document is rejected.
func ReleaseForQuotation(p *tenant.Partition, quotationID uint, reason, actor string) (int, error) {
	return forQuotation(p, quotationID, func(tx *tenant.Partition, res *model.Reservation) error {
		return release(tx, res, model.ReservationStatusReleased, reason, actor)
	})
}

func forQuotation(p *tenant.Partition, quotationID uint, apply func(*tenant.Partition, *model.Reservation) error) (int, error) {
	count := 0
	err := p.Transaction(func(tx *tenant.Partition) error {
		var reservations []model.Reservation
		err := tx.DB().
			Where("quotation_id = ? AND status = ?", quotationID, model.ReservationStatusActive).
			Find(&reservations).Error
		if err != nil {
			return err
		}

		for i := range reservations {
			if err := apply(tx, &reservations[i]); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	prometheus.ActiveReservationsGauge.Sub(float64(count))
	return count, nil
}

// Sweep releases every active reservation whose expiry has passed,
// marking them expired and returning their quantity to the pool.
// Expiry is otherwise lazy: lapsed holds keep their reserved quantity
// until this runs or the hold is released explicitly.
func Sweep(p *tenant.Partition, now time.Time) (int, error) {
	count := 0
	err := p.Transaction(func(tx *tenant.Partition) error {
		var lapsed []model.Reservation
		err := tx.DB().
			Where("status = ? AND expires_at < ?", model.ReservationStatusActive, now).
			Find(&lapsed).Error
		if err != nil {
			return err
		}

		for i := range lapsed {
			if err := release(tx, &lapsed[i], model.ReservationStatusExpired, "expired", "sweep"); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	prometheus.ActiveReservationsGauge.Sub(float64(count))
	return count, nil
}

// List returns reservations matching the filter, aggregate counts per
// status and a per-product rollup of actively held quantity, ordered by
// item. Expired reservations are hidden by default, whether already
// swept or merely lapsed; the lapsed ones still count in the held
// totals because they continue to hold stock until released.
func List(p *tenant.Partition, f ListFilter) ([]model.Reservation, Stats, []ProductRollup, error) {
	query := p.DB().Model(&model.Reservation{})
	if f.ItemID != 0 {
		query = query.Where("item_id = ?", f.ItemID)
	}
	if f.QuotationID != 0 {
		query = query.Where("quotation_id = ?", f.QuotationID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}

	var all []model.Reservation
	if err := query.Order("created_at DESC").Find(&all).Error; err != nil {
		return nil, Stats{}, nil, err
	}

	now := time.Now()
	stats := Stats{}
	rollupIndex := map[uint]*ProductRollup{}
	var visible []model.Reservation

	for _, res := range all {
		stats.Total++
		switch {
		case res.Lapsed(now):
			stats.Expired++
		case res.Status == model.ReservationStatusActive:
			stats.Active++
		case res.Status == model.ReservationStatusCommitted:
			stats.Committed++
		case res.Status == model.ReservationStatusReleased:
			stats.Released++
		case res.Status == model.ReservationStatusExpired:
			stats.Expired++
		}

		// Active holds keep stock reserved whether lapsed or not
		if res.Status == model.ReservationStatusActive {
			stats.TotalReservedQty += res.Quantity

			roll, ok := rollupIndex[res.ItemID]
			if !ok {
				roll = &ProductRollup{ItemID: res.ItemID, ProductName: res.ProductName}
				rollupIndex[res.ItemID] = roll
			}
			roll.ReservedQty += res.Quantity
			roll.Reservations = append(roll.Reservations, res)
		}

		if !f.IncludeExpired && (res.Lapsed(now) || res.Status == model.ReservationStatusExpired) {
			continue
		}
		visible = append(visible, res)
	}

	var rollups []ProductRollup
	if len(rollupIndex) > 0 {
		itemIDs := make([]uint, 0, len(rollupIndex))
		for id := range rollupIndex {
			itemIDs = append(itemIDs, id)
		}
		sort.Slice(itemIDs, func(i, j int) bool { return itemIDs[i] < itemIDs[j] })

		var items []model.InventoryItem
		if err := p.DB().Where("id IN ?", itemIDs).Find(&items).Error; err != nil {
			return nil, Stats{}, nil, err
		}
		skus := make(map[uint]string, len(items))
		for _, item := range items {
			skus[item.ID] = item.SKU
		}

		for _, id := range itemIDs {
			roll := rollupIndex[id]
			roll.SKU = skus[id]
			rollups = append(rollups, *roll)
		}
	}

	return visible, stats, rollups, nil
}

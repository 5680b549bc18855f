package model

import (
	"time"

	"gorm.io/gorm"
)

// DefaultWarehouse is used when a caller does not name a warehouse
const DefaultWarehouse = "main"

// InventoryItem represents a stocked product within a tenant partition.
// ReservedQuantity is owned exclusively by the reservation service;
// nothing else mutates it.
type InventoryItem struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	TenantID         uint           `json:"tenant_id" gorm:"index;not null"`
	SKU              string         `json:"sku" gorm:"type:varchar(50);index;not null"`
	Name             string         `json:"name" gorm:"type:varchar(150);not null"`
	Category         string         `json:"category" gorm:"type:varchar(50);index"` // vertical module: flooring, doors-windows, ...
	WarehouseID      string         `json:"warehouse_id" gorm:"type:varchar(50);default:'main'"`
	Quantity         int            `json:"quantity"`          // on hand
	ReservedQuantity int            `json:"reserved_quantity"` // held by active reservations
	UnitPrice        float64        `json:"unit_price"`
	IsActive         bool           `json:"is_active" gorm:"default:true"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// Available returns on-hand quantity minus reserved quantity
func (i *InventoryItem) Available() int {
	return i.Quantity - i.ReservedQuantity
}

package model

import (
	"time"
)

// Reservation lifecycle states. "committed" is the single terminal
// consumption state; "released" and "expired" return stock to the
// available pool. No transition is defined out of a terminal state.
const (
	ReservationStatusActive    = "active"
	ReservationStatusCommitted = "committed"
	ReservationStatusReleased  = "released"
	ReservationStatusExpired   = "expired"
)

// Reservation links a quantity of one inventory item to a source
// quotation for a bounded time.
type Reservation struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	TenantID      uint       `json:"tenant_id" gorm:"index;not null"`
	Reference     string     `json:"reference" gorm:"type:varchar(40);uniqueIndex"`
	ItemID        uint       `json:"item_id" gorm:"index;not null"`
	ProductName   string     `json:"product_name" gorm:"type:varchar(150)"`
	Quantity      int        `json:"quantity" gorm:"not null"`
	QuotationID   uint       `json:"quotation_id" gorm:"index"`
	QuoteNumber   string     `json:"quote_number" gorm:"type:varchar(30)"`
	WarehouseID   string     `json:"warehouse_id" gorm:"type:varchar(50);default:'main'"`
	Status        string     `json:"status" gorm:"type:varchar(20);index;default:'active'"`
	ExpiresAt     time.Time  `json:"expires_at" gorm:"index"`
	ReleasedAt    *time.Time `json:"released_at,omitempty"`
	ReleaseReason string     `json:"release_reason,omitempty" gorm:"type:varchar(200)"`
	ReleasedBy    string     `json:"released_by,omitempty" gorm:"type:varchar(100)"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Terminal reports whether the reservation has reached a final state
func (r *Reservation) Terminal() bool {
	return r.Status != ReservationStatusActive
}

// Lapsed reports whether an active reservation's expiry has passed.
// Lapsed reservations still hold reserved quantity until released or
// swept; expiry only affects listing visibility.
func (r *Reservation) Lapsed(now time.Time) bool {
	return r.Status == ReservationStatusActive && r.ExpiresAt.Before(now)
}

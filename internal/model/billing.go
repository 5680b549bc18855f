package model

import (
	"time"

	"gorm.io/gorm"
)

// Quotation statuses
const (
	QuotationStatusDraft    = "draft"
	QuotationStatusSent     = "sent"
	QuotationStatusApproved = "approved"
	QuotationStatusRejected = "rejected"
)

// Invoice statuses
const (
	InvoiceStatusDraft = "draft"
	InvoiceStatusSent  = "sent"
	InvoiceStatusPaid  = "paid"
	InvoiceStatusVoid  = "void"
)

// Quotation represents a quote issued to a contact. Approving a
// quotation commits any active inventory reservations made against it;
// rejecting releases them.
type Quotation struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	TenantID  uint            `json:"tenant_id" gorm:"index;not null"`
	Number    string          `json:"number" gorm:"type:varchar(30);index"`
	ContactID uint            `json:"contact_id" gorm:"index"`
	ProjectID uint            `json:"project_id" gorm:"index"`
	Status    string          `json:"status" gorm:"type:varchar(20);default:'draft'"`
	Total     float64         `json:"total"`
	Items     []QuotationItem `json:"items,omitempty" gorm:"foreignKey:QuotationID"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `json:"-" gorm:"index"`
}

// QuotationItem is a line on a quotation
type QuotationItem struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	QuotationID uint    `json:"quotation_id" gorm:"index;not null"`
	Description string  `json:"description" gorm:"type:varchar(200)"`
	ItemID      uint    `json:"item_id" gorm:"index"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Invoice represents a billed document with a sequential per-tenant
// per-year number such as INV-2026-0007.
type Invoice struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	Number    string         `json:"number" gorm:"type:varchar(30);index"`
	ContactID uint           `json:"contact_id" gorm:"index"`
	ProjectID uint           `json:"project_id" gorm:"index"`
	Status    string         `json:"status" gorm:"type:varchar(20);default:'draft'"`
	Total     float64        `json:"total"`
	DueDate   *time.Time     `json:"due_date,omitempty"`
	Items     []InvoiceItem  `json:"items,omitempty" gorm:"foreignKey:InvoiceID"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// InvoiceItem is a line on an invoice
type InvoiceItem struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	InvoiceID   uint    `json:"invoice_id" gorm:"index;not null"`
	Description string  `json:"description" gorm:"type:varchar(200)"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

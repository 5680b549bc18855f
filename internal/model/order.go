package model

import (
	"time"

	"gorm.io/gorm"
)

// Work order statuses
const (
	WorkOrderStatusOpen       = "open"
	WorkOrderStatusInProgress = "in_progress"
	WorkOrderStatusCompleted  = "completed"
	WorkOrderStatusCancelled  = "cancelled"
)

// Purchase order statuses
const (
	PurchaseOrderStatusDraft     = "draft"
	PurchaseOrderStatusOrdered   = "ordered"
	PurchaseOrderStatusReceived  = "received"
	PurchaseOrderStatusCancelled = "cancelled"
)

// WorkOrder represents scheduled field work under a project, numbered
// WO-YYYY-NNNN per tenant and year.
type WorkOrder struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	TenantID     uint           `json:"tenant_id" gorm:"index;not null"`
	Number       string         `json:"number" gorm:"type:varchar(30);index"`
	ProjectID    uint           `json:"project_id" gorm:"index"`
	AssigneeID   uint           `json:"assignee_id" gorm:"index"`
	Description  string         `json:"description" gorm:"type:text"`
	Status       string         `json:"status" gorm:"type:varchar(20);default:'open'"`
	ScheduledFor *time.Time     `json:"scheduled_for,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

// PurchaseOrder represents an order placed with a supplier, numbered
// PO-YYYY-NNNN per tenant and year.
type PurchaseOrder struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	TenantID     uint           `json:"tenant_id" gorm:"index;not null"`
	Number       string         `json:"number" gorm:"type:varchar(30);index"`
	SupplierName string         `json:"supplier_name" gorm:"type:varchar(150)"`
	ProjectID    uint           `json:"project_id" gorm:"index"`
	Total        float64        `json:"total"`
	Status       string         `json:"status" gorm:"type:varchar(20);default:'draft'"`
	ExpectedAt   *time.Time     `json:"expected_at,omitempty"`
	Notes        string         `json:"notes" gorm:"type:text"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

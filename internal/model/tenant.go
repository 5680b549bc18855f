package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// Tenant statuses
const (
	TenantStatusActive = "active"
	TenantStatusPaused = "paused"
)

// Vertical module names that can be enabled per tenant
const (
	ModuleFlooring     = "flooring"
	ModuleDoorsWindows = "doors-windows"
	ModuleFurniture    = "furniture"
	ModulePaints       = "paints"
)

// Tenant represents a client organization. Each tenant owns a logically
// isolated data partition; every scoped record carries its TenantID.
// Tenants are paused rather than hard-deleted.
type Tenant struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	Slug        string         `json:"slug" gorm:"type:varchar(100);uniqueIndex"` // legacy handle, still accepted for lookups
	PlanCode    string         `json:"plan_code" gorm:"type:varchar(50);index"`
	Status      string         `json:"status" gorm:"type:varchar(20);default:'active'"`
	Modules     string         `json:"modules" gorm:"type:jsonb"` // JSON array of enabled vertical modules
	OwnerID     uint           `json:"owner_id" gorm:"index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// EnabledModules decodes the stored module list. Malformed or empty
// settings count as no modules enabled.
func (t *Tenant) EnabledModules() []string {
	var modules []string
	if t.Modules == "" {
		return modules
	}
	if err := json.Unmarshal([]byte(t.Modules), &modules); err != nil {
		return nil
	}
	return modules
}

// HasModule reports whether the named vertical module is enabled
func (t *Tenant) HasModule(name string) bool {
	for _, m := range t.EnabledModules() {
		if m == name {
			return true
		}
	}
	return false
}

// SetModules encodes and stores the module list
func (t *Tenant) SetModules(modules []string) error {
	raw, err := json.Marshal(modules)
	if err != nil {
		return err
	}
	t.Modules = string(raw)
	return nil
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// Lead statuses
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusWon       = "won"
	LeadStatusLost      = "lost"
)

// Lead represents a sales lead scoped to a tenant
type Lead struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Email     string         `json:"email" gorm:"type:varchar(100)"`
	Phone     string         `json:"phone" gorm:"type:varchar(30)"`
	Source    string         `json:"source" gorm:"type:varchar(50)"`
	Status    string         `json:"status" gorm:"type:varchar(20);default:'new'"`
	Notes     string         `json:"notes" gorm:"type:text"`
	OwnerID   uint           `json:"owner_id" gorm:"index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Contact represents a customer contact. Email is unique within a tenant
// (checked at create time, not by a database constraint).
type Contact struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	TenantID  uint           `json:"tenant_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	Email     string         `json:"email" gorm:"type:varchar(100);index"`
	Phone     string         `json:"phone" gorm:"type:varchar(30)"`
	Company   string         `json:"company" gorm:"type:varchar(100)"`
	Address   string         `json:"address" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

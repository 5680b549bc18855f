package model

import (
	"time"

	"gorm.io/gorm"
)

// Plan represents a pricing plan assignable to tenants
type Plan struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Code         string         `json:"code" gorm:"type:varchar(50);uniqueIndex"`
	Name         string         `json:"name" gorm:"type:varchar(100)"`
	MonthlyPrice float64        `json:"monthly_price"`
	MaxUsers     int            `json:"max_users"`
	MaxProjects  int            `json:"max_projects"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

package model

import (
	"time"

	"gorm.io/gorm"
)

// Project statuses
const (
	ProjectStatusPlanning   = "planning"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusOnHold     = "on_hold"
	ProjectStatusCompleted  = "completed"
)

// Team roles within a project. These gate nothing server-side; the
// capability table is advisory data returned to the UI.
const (
	TeamRoleProjectManager = "project_manager"
	TeamRoleTeamLead       = "team_lead"
	TeamRoleWorker         = "worker"
	TeamRoleViewer         = "viewer"
)

// TeamRoleCapabilities is the static capability matrix per team role
var TeamRoleCapabilities = map[string][]string{
	TeamRoleProjectManager: {"view", "edit", "assign_tasks", "manage_members", "approve_quotes"},
	TeamRoleTeamLead:       {"view", "edit", "assign_tasks"},
	TeamRoleWorker:         {"view", "update_own_tasks"},
	TeamRoleViewer:         {"view"},
}

// Project represents a construction project scoped to a tenant
type Project struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	TenantID    uint            `json:"tenant_id" gorm:"index;not null"`
	Name        string          `json:"name" gorm:"type:varchar(150);not null"`
	Description string          `json:"description" gorm:"type:text"`
	ContactID   uint            `json:"contact_id" gorm:"index"`
	Status      string          `json:"status" gorm:"type:varchar(20);default:'planning'"`
	Budget      float64         `json:"budget"`
	StartDate   *time.Time      `json:"start_date,omitempty"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	Members     []ProjectMember `json:"members,omitempty" gorm:"foreignKey:ProjectID"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`
}

// ProjectMember associates a user with a project under a team role
type ProjectMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TenantID  uint      `json:"tenant_id" gorm:"index;not null"`
	ProjectID uint      `json:"project_id" gorm:"index;not null"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	TeamRole  string    `json:"team_role" gorm:"type:varchar(50);default:'worker'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

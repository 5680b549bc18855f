package model

import "time"

// Task statuses
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Task represents a unit of work inside a project. Tasks are
// hard-deleted; there is no DeletedAt column.
type Task struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	TenantID   uint       `json:"tenant_id" gorm:"index;not null"`
	ProjectID  uint       `json:"project_id" gorm:"index;not null"`
	Title      string     `json:"title" gorm:"type:varchar(200);not null"`
	Details    string     `json:"details" gorm:"type:text"`
	AssigneeID uint       `json:"assignee_id" gorm:"index"`
	Status     string     `json:"status" gorm:"type:varchar(20);default:'todo'"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

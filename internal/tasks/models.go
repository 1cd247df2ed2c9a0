package tasks

import (
	"time"

	"github.com/lib/pq"
)

// Task is a piece of work set for a group. Attachments holds link URLs
// handed out with the task.
type Task struct {
	ID          int            `gorm:"primaryKey" json:"id"`
	GroupID     int            `gorm:"not null;index" json:"group_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `json:"description"`
	DateSet     time.Time      `json:"date_set"`
	DateDue     time.Time      `json:"date_due"`
	MaxScore    int            `json:"max_score"`
	Attachments pq.StringArray `gorm:"type:text[]" json:"attachments"`
}

func (Task) TableName() string { return "classtrack.tasks" }

package model

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the known workflow stages.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task is a row of the tasks table. Timestamps are assigned by the database
// and never written from Go.
type Task struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description *string    `json:"description"`
	DueDate     *string    `gorm:"column:due_date" json:"due_date"`
	Status      TaskStatus `gorm:"not null" json:"status"`
	CreatedAt   string     `gorm:"->" json:"created_at"`
	UpdatedAt   string     `gorm:"->" json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

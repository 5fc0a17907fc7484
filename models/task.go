// models/task.go
package models

import "time"

type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
	StatusCancelled  TaskStatus = "CANCELLED"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

const (
	MaxTaskTitleLength       = 200
	MaxTaskDescriptionLength = 5000
	MaxTaskTagsLength        = 500
)

type Task struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Title          string     `json:"title" gorm:"not null;size:200"`
	Description    string     `json:"description" gorm:"type:text"`
	Status         TaskStatus `json:"status" gorm:"not null;size:20;index"`
	Priority       Priority   `json:"priority" gorm:"not null;size:20"`
	DueDate        *time.Time `json:"due_date,omitempty" gorm:"index"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	AssigneeID     uint       `json:"assignee_id" gorm:"not null;index"`
	TeamID         *uint      `json:"team_id,omitempty" gorm:"index"`
	CreatorID      *uint      `json:"creator_id,omitempty"`
	AssignerID     *uint      `json:"assigner_id,omitempty"`
	Tags           string     `json:"tags,omitempty" gorm:"size:500"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	ActualHours    *float64   `json:"actual_hours,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"index"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// SetStatus is the only way a task's status changes. It keeps CompletedAt
// set exactly when the status is Completed and reports whether anything changed.
func (t *Task) SetStatus(status TaskStatus, now time.Time) bool {
	if t.Status == status {
		return false
	}
	t.Status = status
	if status == StatusCompleted {
		at := now
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = now
	return true
}

func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsActive reports whether work on the task is still expected.
func (t *Task) IsActive() bool {
	return t.Status != StatusCompleted && t.Status != StatusCancelled
}

// IsOverdue: due date exists, is before now, and the task is not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.IsCompleted()
}

// IsDueToday: due date falls in [day.Start, day.End).
func (t *Task) IsDueToday(day DayWindow) bool {
	return t.DueDate != nil && day.Contains(*t.DueDate)
}

// DayWindow pins "now" and the bounds of the current calendar day once per
// request so every task in that request is classified against the same instant.
type DayWindow struct {
	Now   time.Time
	Start time.Time
	End   time.Time
}

// NewDayWindow computes the day bounds of now in now's own location.
func NewDayWindow(now time.Time) DayWindow {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return DayWindow{Now: now, Start: start, End: start.AddDate(0, 0, 1)}
}

func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

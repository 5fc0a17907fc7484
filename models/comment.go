// models/comment.go
package models

import "time"

const MaxCommentLength = 1000

type Comment struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	TaskID          uint      `json:"task_id" gorm:"not null;index"`
	AuthorID        uint      `json:"author_id" gorm:"not null;index"`
	Text            string    `json:"text" gorm:"not null;size:1000"`
	IsSystemMessage bool      `json:"is_system_message" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Comment) TableName() string {
	return "comments"
}

// CommentRead is the per-(task, user) read watermark.
type CommentRead struct {
	TaskID     uint      `json:"task_id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"primaryKey;index"`
	LastReadAt time.Time `json:"last_read_at" gorm:"not null"`
}

func (CommentRead) TableName() string {
	return "comment_reads"
}

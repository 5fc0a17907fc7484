// Package comments implements the per-task comment thread and the per-user
// read watermark used for unread counts.
package comments

import (
	"strings"
	"time"
	"unicode/utf8"

	"taskhub/apperrors"
	"taskhub/models"
	"taskhub/permissions"
)

// NewComment validates and builds a comment on task. team is the roster of
// the task's team, or nil. Posting never moves the author's watermark.
func NewComment(task *models.Task, team *models.Roster, author *models.User, text string, system bool, now time.Time) (*models.Comment, error) {
	if !permissions.CanCommentOnTask(author, task, team) {
		return nil, apperrors.Forbidden("not allowed to comment on task %d", task.ID)
	}
	return build(task, author, text, system, now)
}

// SystemNote builds a system message for a change the author was already
// allowed to make, such as a status transition checked with CanEditTask.
// Only the text is validated.
func SystemNote(task *models.Task, author *models.User, text string, now time.Time) (*models.Comment, error) {
	return build(task, author, text, true, now)
}

func build(task *models.Task, author *models.User, text string, system bool, now time.Time) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("comment text is required")
	}
	if utf8.RuneCountInString(text) > models.MaxCommentLength {
		return nil, apperrors.Validation("comment must be at most %d characters", models.MaxCommentLength)
	}
	return &models.Comment{
		TaskID:          task.ID,
		AuthorID:        author.ID,
		Text:            text,
		IsSystemMessage: system,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// CheckDelete returns Forbidden unless requester may delete comment.
func CheckDelete(comment *models.Comment, task *models.Task, team *models.Roster, requester *models.User) error {
	if !permissions.CanDeleteComment(requester, comment, task, team) {
		return apperrors.Forbidden("not allowed to delete comment %d", comment.ID)
	}
	return nil
}

// MarkRead returns the watermark for (task, user) moved to now.
func MarkRead(task *models.Task, team *models.Roster, user *models.User, now time.Time) (models.CommentRead, error) {
	if !permissions.CanViewTask(user, task, team) {
		return models.CommentRead{}, apperrors.Forbidden("not allowed to view task %d", task.ID)
	}
	return models.CommentRead{TaskID: task.ID, UserID: user.ID, LastReadAt: now}, nil
}

// UnreadCount counts comments created after the watermark (all of them when
// watermark is nil). A user's own comments, system messages included, never
// count as unread for that user; system messages by others do.
func UnreadCount(thread []*models.Comment, watermark *models.CommentRead, userID uint) int {
	n := 0
	for _, c := range thread {
		if c.AuthorID == userID {
			continue
		}
		if watermark != nil && !c.CreatedAt.After(watermark.LastReadAt) {
			continue
		}
		n++
	}
	return n
}

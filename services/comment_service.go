// services/comment_service.go - Comment threads and unread tracking
package services

import (
	"context"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskhub/comments"
	"taskhub/models"
	"taskhub/tasks"
)

type CommentService struct {
	base
	feed *CommentFeed
}

// NewCommentService publishes committed changes to feed, which may be nil.
func NewCommentService(db *gorm.DB, feed *CommentFeed) *CommentService {
	return &CommentService{base: newBase(db), feed: feed}
}

// Post appends a user comment. It does not move any read watermark.
func (s *CommentService) Post(ctx context.Context, actorID, taskID uint, text string) (*models.Comment, error) {
	var comment *models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		task, err := loadTask(tx, taskID)
		if err != nil {
			return err
		}
		team, err := loadTaskTeam(tx, task)
		if err != nil {
			return err
		}
		comment, err = comments.NewComment(task, team, actor, text, false, s.now())
		if err != nil {
			return err
		}
		return tx.Create(comment).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}
	log.WithFields(log.Fields{"task": taskID, "comment": comment.ID, "by": actorID}).Info("comment posted")
	s.feed.Publish(taskID, FeedEvent{Type: EventCommentCreated, Comment: comment})
	return comment, nil
}

// List returns the thread oldest first.
func (s *CommentService) List(ctx context.Context, actorID, taskID uint) ([]*models.Comment, error) {
	var thread []*models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkView(tx, actorID, taskID); err != nil {
			return err
		}
		return tx.Where("task_id = ?", taskID).Order("created_at ASC, id ASC").Find(&thread).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return thread, nil
}

// Delete removes a comment under the delete-authority rule.
func (s *CommentService) Delete(ctx context.Context, actorID, commentID uint) (*models.Comment, error) {
	var comment *models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		comment, err = loadComment(tx, commentID)
		if err != nil {
			return err
		}
		task, err := loadTask(tx, comment.TaskID)
		if err != nil {
			return err
		}
		team, err := loadTaskTeam(tx, task)
		if err != nil {
			return err
		}
		if err := comments.CheckDelete(comment, task, team, actor); err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, commentID).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}
	log.WithFields(log.Fields{"task": comment.TaskID, "comment": commentID, "by": actorID}).Info("comment deleted")
	s.feed.Publish(comment.TaskID, FeedEvent{Type: EventCommentDeleted, Comment: comment})
	return comment, nil
}

// MarkRead upserts the actor's watermark on taskID to now.
func (s *CommentService) MarkRead(ctx context.Context, actorID, taskID uint) (models.CommentRead, error) {
	var wm models.CommentRead
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		task, err := loadTask(tx, taskID)
		if err != nil {
			return err
		}
		team, err := loadTaskTeam(tx, task)
		if err != nil {
			return err
		}
		wm, err = comments.MarkRead(task, team, actor, s.now())
		if err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_read_at"}),
		}).Create(&wm).Error
	})
	if err != nil {
		return models.CommentRead{}, storeErr(err)
	}
	return wm, nil
}

// UnreadCount counts comments on taskID the actor has not read.
func (s *CommentService) UnreadCount(ctx context.Context, actorID, taskID uint) (int, error) {
	var n int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkView(tx, actorID, taskID); err != nil {
			return err
		}

		var marks []models.CommentRead
		if err := tx.Where("task_id = ? AND user_id = ?", taskID, actorID).Limit(1).Find(&marks).Error; err != nil {
			return err
		}
		var wm *models.CommentRead
		if len(marks) == 1 {
			wm = &marks[0]
		}

		var thread []*models.Comment
		if err := tx.Where("task_id = ?", taskID).Find(&thread).Error; err != nil {
			return err
		}
		n = comments.UnreadCount(thread, wm, actorID)
		return nil
	})
	if err != nil {
		return 0, storeErr(err)
	}
	return n, nil
}

func (s *CommentService) checkView(tx *gorm.DB, actorID, taskID uint) error {
	actor, err := loadActor(tx, actorID)
	if err != nil {
		return err
	}
	task, err := loadTask(tx, taskID)
	if err != nil {
		return err
	}
	team, err := loadTaskTeam(tx, task)
	if err != nil {
		return err
	}
	return tasks.CheckView(task, team, actor)
}

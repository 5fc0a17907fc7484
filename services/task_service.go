// services/task_service.go - Task lifecycle and per-user listings
package services

import (
	"context"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskhub/apperrors"
	"taskhub/comments"
	"taskhub/models"
	"taskhub/permissions"
	"taskhub/tasks"
)

type TaskService struct {
	base
	feed *CommentFeed
}

// NewTaskService publishes status notes to feed, which may be nil.
func NewTaskService(db *gorm.DB, feed *CommentFeed) *TaskService {
	return &TaskService{base: newBase(db), feed: feed}
}

type NewTaskInput struct {
	AssigneeID uint
	TeamID     *uint
	tasks.Draft
}

// CreateTask records the actor as both creator and assigner.
func (s *TaskService) CreateTask(ctx context.Context, actorID uint, in NewTaskInput) (*models.Task, error) {
	var task *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		assignee, err := loadUser(tx, in.AssigneeID)
		if err != nil {
			return err
		}

		var team *models.Roster
		var rosters []*models.Roster
		if in.TeamID != nil {
			if team, err = loadRoster(tx, *in.TeamID); err != nil {
				return err
			}
		} else if actor.ID != assignee.ID {
			// Only needed to decide whether actor manages assignee.
			if rosters, err = loadRosters(tx, "manager_id = ?", actor.ID); err != nil {
				return err
			}
		}

		task, err = tasks.New(in.Draft, actor, assignee, team, rosters, s.now())
		if err != nil {
			return err
		}
		return tx.Create(task).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}
	log.WithFields(log.Fields{"task": task.ID, "assignee": task.AssigneeID, "by": actorID}).Info("task created")
	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, actorID, taskID uint) (*models.Task, error) {
	var task *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		if task, err = loadTask(tx, taskID); err != nil {
			return err
		}
		team, err := loadTaskTeam(tx, task)
		if err != nil {
			return err
		}
		return tasks.CheckView(task, team, actor)
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return task, nil
}

// UpdateTask replaces the editable fields. Assignee, team and status are
// not touched here.
func (s *TaskService) UpdateTask(ctx context.Context, actorID, taskID uint, d tasks.Draft) (*models.Task, error) {
	var task *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		if task, err = loadTask(tx, taskID); err != nil {
			return err
		}
		team, err := loadTaskTeam(tx, task)
		if err != nil {
			return err
		}
		if err := tasks.Update(task, team, actor, d, s.now()); err != nil {
			return err
		}
		return tx.Model(task).Select(
			"title", "description", "priority", "due_date", "tags",
			"estimated_hours", "actual_hours", "updated_at",
		).Updates(task).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}
	log.WithFields(log.Fields{"task": taskID, "by": actorID}).Info("task updated")
	return task, nil
}

// UpdateStatus moves the task and appends the system note in the same
// transaction. The returned comment is nil when the status did not change.
func (s *TaskService) UpdateStatus(ctx context.Context, actorID, taskID uint, status models.TaskStatus) (*models.Task, *models.Comment, error) {
	var task *models.Task
	var note *models.Comment
	var from models.TaskStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		if task, err = loadTask(tx, taskID); err != nil {
			return err
		}
		team, err := loadTaskTeam(tx, task)
		if err != nil {
			return err
		}

		from = task.Status
		now := s.now()
		text, err := tasks.ChangeStatus(task, team, actor, status, now)
		if err != nil || text == "" {
			return err
		}
		if err := tx.Model(task).Select("status", "completed_at", "updated_at").Updates(task).Error; err != nil {
			return err
		}

		note, err = comments.SystemNote(task, actor, text, now)
		if err != nil {
			return err
		}
		return tx.Create(note).Error
	})
	if err != nil {
		return nil, nil, storeErr(err)
	}
	if note != nil {
		log.WithFields(log.Fields{"task": taskID, "from": from, "to": status, "by": actorID}).Info("status changed")
		s.feed.Publish(taskID, FeedEvent{Type: EventCommentCreated, Comment: note})
	}
	return task, note, nil
}

// DeleteTask removes the task with its comments and read watermarks.
func (s *TaskService) DeleteTask(ctx context.Context, actorID, taskID uint) error {
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
		if err := tasks.CheckEdit(task, team, actor); err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", taskID).Delete(&models.CommentRead{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, taskID).Error
	})
	if err != nil {
		return storeErr(err)
	}
	log.WithFields(log.Fields{"task": taskID, "by": actorID}).Info("task deleted")
	return nil
}

// UserTasks lists the tasks assigned to subjectID, most recent first.
func (s *TaskService) UserTasks(ctx context.Context, actorID, subjectID uint) ([]*models.Task, error) {
	var list []*models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		subject, err := loadUser(tx, subjectID)
		if err != nil {
			return err
		}
		rosters, err := loadRosters(tx, "manager_id = ?", actor.ID)
		if err != nil {
			return err
		}
		if !permissions.CanViewUserTasks(actor, subject, rosters) {
			return apperrors.Forbidden("not allowed to view tasks of user %d", subjectID)
		}
		list, err = loadTasks(tx, "assignee_id = ?", subjectID)
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return list, nil
}

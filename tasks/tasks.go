// Package tasks holds task creation, editing and status-transition rules.
package tasks

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"taskhub/apperrors"
	"taskhub/models"
	"taskhub/permissions"
)

// Draft is the editable part of a task, with tokens already parsed.
type Draft struct {
	Title          string
	Description    string
	Priority       models.Priority
	DueDate        *time.Time
	Tags           string
	EstimatedHours *float64
	ActualHours    *float64
}

func (d *Draft) normalize() error {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Tags = strings.TrimSpace(d.Tags)
	if d.Priority == "" {
		d.Priority = models.PriorityNormal
	}

	switch {
	case d.Title == "":
		return apperrors.Validation("task title is required")
	case utf8.RuneCountInString(d.Title) > models.MaxTaskTitleLength:
		return apperrors.Validation("task title must be at most %d characters", models.MaxTaskTitleLength)
	case utf8.RuneCountInString(d.Description) > models.MaxTaskDescriptionLength:
		return apperrors.Validation("task description must be at most %d characters", models.MaxTaskDescriptionLength)
	case utf8.RuneCountInString(d.Tags) > models.MaxTaskTagsLength:
		return apperrors.Validation("tags must be at most %d characters", models.MaxTaskTagsLength)
	case d.EstimatedHours != nil && *d.EstimatedHours < 0:
		return apperrors.Validation("estimated hours cannot be negative")
	case d.ActualHours != nil && *d.ActualHours < 0:
		return apperrors.Validation("actual hours cannot be negative")
	}
	if _, err := models.ParsePriority(string(d.Priority)); err != nil {
		return err
	}
	return nil
}

// New builds a Pending task. With a team, creator must be allowed to assign
// to it; without one, creator may assign to themself or to a user whose
// tasks they may view. rosters is every team, for that last check.
func New(d Draft, creator, assignee *models.User, team *models.Roster, rosters []*models.Roster, now time.Time) (*models.Task, error) {
	if creator == nil || assignee == nil {
		return nil, apperrors.Validation("creator and assignee are required")
	}
	if err := d.normalize(); err != nil {
		return nil, err
	}
	if !assignee.IsActive {
		return nil, apperrors.Validation("cannot assign a task to inactive user %d", assignee.ID)
	}

	var teamID *uint
	if team != nil {
		if !permissions.CanAssignTaskToTeam(creator, team) {
			return nil, apperrors.Forbidden("not allowed to assign tasks to team %d", team.ID())
		}
		if !team.Team.IsActive {
			return nil, apperrors.Validation("team %q is inactive", team.Team.Name)
		}
		id := team.ID()
		teamID = &id
	} else if creator.ID != assignee.ID && !permissions.CanViewUserTasks(creator, assignee, rosters) {
		return nil, apperrors.Forbidden("not allowed to assign tasks to user %d", assignee.ID)
	}

	creatorID := creator.ID
	assignerID := creator.ID
	return &models.Task{
		Title:          d.Title,
		Description:    d.Description,
		Status:         models.StatusPending,
		Priority:       d.Priority,
		DueDate:        d.DueDate,
		AssigneeID:     assignee.ID,
		TeamID:         teamID,
		CreatorID:      &creatorID,
		AssignerID:     &assignerID,
		Tags:           d.Tags,
		EstimatedHours: d.EstimatedHours,
		ActualHours:    d.ActualHours,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func CheckView(task *models.Task, team *models.Roster, actor *models.User) error {
	if !permissions.CanViewTask(actor, task, team) {
		return apperrors.Forbidden("not allowed to view task %d", task.ID)
	}
	return nil
}

func CheckEdit(task *models.Task, team *models.Roster, actor *models.User) error {
	if !permissions.CanEditTask(actor, task, team) {
		return apperrors.Forbidden("not allowed to edit task %d", task.ID)
	}
	return nil
}

// Update replaces the editable fields of task.
func Update(task *models.Task, team *models.Roster, actor *models.User, d Draft, now time.Time) error {
	if err := CheckEdit(task, team, actor); err != nil {
		return err
	}
	if err := d.normalize(); err != nil {
		return err
	}
	task.Title = d.Title
	task.Description = d.Description
	task.Priority = d.Priority
	task.DueDate = d.DueDate
	task.Tags = d.Tags
	task.EstimatedHours = d.EstimatedHours
	task.ActualHours = d.ActualHours
	task.UpdatedAt = now
	return nil
}

// ChangeStatus moves task to status through Task.SetStatus. When the status
// actually changes it returns the text of the system note to append.
func ChangeStatus(task *models.Task, team *models.Roster, actor *models.User, status models.TaskStatus, now time.Time) (string, error) {
	if err := CheckEdit(task, team, actor); err != nil {
		return "", err
	}
	status, err := models.ParseStatus(string(status))
	if err != nil {
		return "", err
	}
	from := task.Status
	if !task.SetStatus(status, now) {
		return "", nil
	}
	return fmt.Sprintf("Status changed from %s to %s", from, status), nil
}

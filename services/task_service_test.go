package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/apperrors"
	"taskhub/models"
	"taskhub/tasks"
)

func TestCreateTaskRecordsActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	team := f.compras(t)

	task, err := f.tasks.CreateTask(ctx, f.emp.ID, NewTaskInput{
		AssigneeID: f.emp.ID, TeamID: uintPtr(team.ID),
		Draft: tasks.Draft{Title: "  Quote for chairs  ", Priority: models.PriorityHigh},
	})
	require.NoError(t, err)
	assert.Equal(t, "Quote for chairs", task.Title)
	assert.Equal(t, models.StatusPending, task.Status)
	assert.Nil(t, task.CompletedAt)
	require.NotNil(t, task.CreatorID)
	require.NotNil(t, task.AssignerID)
	assert.Equal(t, f.emp.ID, *task.CreatorID)
	assert.Equal(t, f.emp.ID, *task.AssignerID)
}

func TestCreateTaskPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	team := f.compras(t)
	draft := tasks.Draft{Title: "t"}

	// Not a member of the team.
	_, err := f.tasks.CreateTask(ctx, f.other.ID, NewTaskInput{AssigneeID: f.other.ID, TeamID: uintPtr(team.ID), Draft: draft})
	assert.True(t, apperrors.IsForbidden(err))

	// Employees cannot hand personal tasks to each other.
	_, err = f.tasks.CreateTask(ctx, f.emp.ID, NewTaskInput{AssigneeID: f.other.ID, Draft: draft})
	assert.True(t, apperrors.IsForbidden(err))

	// A manager may assign to members of a managed team.
	_, err = f.tasks.CreateTask(ctx, f.manager.ID, NewTaskInput{AssigneeID: f.emp.ID, Draft: draft})
	assert.NoError(t, err)
	_, err = f.tasks.CreateTask(ctx, f.manager.ID, NewTaskInput{AssigneeID: f.other.ID, Draft: draft})
	assert.True(t, apperrors.IsForbidden(err))

	_, err = f.tasks.CreateTask(ctx, f.admin.ID, NewTaskInput{AssigneeID: f.other.ID, Draft: draft})
	assert.NoError(t, err)

	_, err = f.tasks.CreateTask(ctx, f.admin.ID, NewTaskInput{AssigneeID: 999, Draft: draft})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.tasks.CreateTask(ctx, f.admin.ID, NewTaskInput{AssigneeID: f.other.ID, Draft: tasks.Draft{Title: " "}})
	assert.True(t, apperrors.IsValidation(err))
}

func TestTeamMembersViewButDoNotEdit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	team := f.compras(t)
	_, err := f.teams.AddMember(ctx, f.manager.ID, team.ID, f.other.ID)
	require.NoError(t, err)

	task, err := f.tasks.CreateTask(ctx, f.manager.ID, NewTaskInput{
		AssigneeID: f.emp.ID, TeamID: uintPtr(team.ID), Draft: tasks.Draft{Title: "Inventory"},
	})
	require.NoError(t, err)

	_, err = f.tasks.GetTask(ctx, f.other.ID, task.ID)
	require.NoError(t, err)

	_, err = f.tasks.UpdateTask(ctx, f.other.ID, task.ID, tasks.Draft{Title: "Hijacked"})
	assert.True(t, apperrors.IsForbidden(err))

	_, _, err = f.tasks.UpdateStatus(ctx, f.other.ID, task.ID, models.StatusCompleted)
	assert.True(t, apperrors.IsForbidden(err))

	updated, err := f.tasks.UpdateTask(ctx, f.emp.ID, task.ID, tasks.Draft{Title: "Inventory Q2", Tags: "stock"})
	require.NoError(t, err)
	assert.Equal(t, "Inventory Q2", updated.Title)

	got, err := f.tasks.GetTask(ctx, f.admin.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "stock", got.Tags)
}

func TestUpdateStatusMaintainsCompletedAtAndNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, f.emp.ID, NewTaskInput{AssigneeID: f.emp.ID, Draft: tasks.Draft{Title: "Report"}})
	require.NoError(t, err)

	f.advance(time.Minute)
	done, note, err := f.tasks.UpdateStatus(ctx, f.emp.ID, task.ID, models.StatusCompleted)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	require.NotNil(t, note)
	assert.True(t, note.IsSystemMessage)
	assert.Equal(t, "Status changed from PENDING to COMPLETED", note.Text)

	f.advance(time.Minute)
	reopened, _, err := f.tasks.UpdateStatus(ctx, f.emp.ID, task.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)

	stored, err := f.tasks.GetTask(ctx, f.emp.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, stored.Status)
	assert.Nil(t, stored.CompletedAt)

	_, note, err = f.tasks.UpdateStatus(ctx, f.emp.ID, task.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Nil(t, note, "unchanged status adds no note")

	thread, err := f.comments.List(ctx, f.emp.ID, task.ID)
	require.NoError(t, err)
	assert.Len(t, thread, 2)

	_, _, err = f.tasks.UpdateStatus(ctx, f.emp.ID, task.ID, "DONE")
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreatorOutsideTaskChangesStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.compras(t)

	// No team: the manager created it but cannot view it.
	task, err := f.tasks.CreateTask(ctx, f.manager.ID, NewTaskInput{AssigneeID: f.emp.ID, Draft: tasks.Draft{Title: "Invoice"}})
	require.NoError(t, err)
	_, err = f.tasks.GetTask(ctx, f.manager.ID, task.ID)
	require.True(t, apperrors.IsForbidden(err))

	f.advance(time.Minute)
	done, note, err := f.tasks.UpdateStatus(ctx, f.manager.ID, task.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	require.NotNil(t, note)
	assert.Equal(t, f.manager.ID, note.AuthorID)

	thread, err := f.comments.List(ctx, f.emp.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.True(t, thread[0].IsSystemMessage)

	_, _, err = f.tasks.UpdateStatus(ctx, f.other.ID, task.ID, models.StatusPending)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestDeleteTaskCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.tasks.CreateTask(ctx, f.emp.ID, NewTaskInput{AssigneeID: f.emp.ID, Draft: tasks.Draft{Title: "Temp"}})
	require.NoError(t, err)
	_, err = f.comments.Post(ctx, f.emp.ID, task.ID, "note")
	require.NoError(t, err)
	_, err = f.comments.MarkRead(ctx, f.emp.ID, task.ID)
	require.NoError(t, err)

	assert.True(t, apperrors.IsForbidden(f.tasks.DeleteTask(ctx, f.other.ID, task.ID)))
	require.NoError(t, f.tasks.DeleteTask(ctx, f.emp.ID, task.ID))

	_, err = f.tasks.GetTask(ctx, f.emp.ID, task.ID)
	assert.True(t, apperrors.IsNotFound(err))

	var comments, reads int64
	require.NoError(t, f.db.Model(&models.Comment{}).Where("task_id = ?", task.ID).Count(&comments).Error)
	require.NoError(t, f.db.Model(&models.CommentRead{}).Where("task_id = ?", task.ID).Count(&reads).Error)
	assert.Zero(t, comments)
	assert.Zero(t, reads)
}

func TestUserTasksVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.compras(t)

	first, err := f.tasks.CreateTask(ctx, f.emp.ID, NewTaskInput{AssigneeID: f.emp.ID, Draft: tasks.Draft{Title: "first"}})
	require.NoError(t, err)
	f.advance(time.Minute)
	second, err := f.tasks.CreateTask(ctx, f.emp.ID, NewTaskInput{AssigneeID: f.emp.ID, Draft: tasks.Draft{Title: "second"}})
	require.NoError(t, err)

	list, err := f.tasks.UserTasks(ctx, f.manager.ID, f.emp.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	_, err = f.tasks.UserTasks(ctx, f.manager.ID, f.other.ID)
	assert.True(t, apperrors.IsForbidden(err))
	_, err = f.tasks.UserTasks(ctx, f.other.ID, f.emp.ID)
	assert.True(t, apperrors.IsForbidden(err))
}

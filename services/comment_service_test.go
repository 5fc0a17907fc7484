package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/apperrors"
	"taskhub/models"
	"taskhub/tasks"
)

func comprasTask(t *testing.T, f *fixture) (*models.Team, *models.Task) {
	t.Helper()
	team := f.compras(t)
	task, err := f.tasks.CreateTask(context.Background(), f.manager.ID, NewTaskInput{
		AssigneeID: f.emp.ID, TeamID: uintPtr(team.ID), Draft: tasks.Draft{Title: "Supplier review"},
	})
	require.NoError(t, err)
	return team, task
}

func TestPostCommentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, task := comprasTask(t, f)

	_, err := f.comments.Post(ctx, f.emp.ID, task.ID, "   ")
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.comments.Post(ctx, f.emp.ID, task.ID, strings.Repeat("x", models.MaxCommentLength+1))
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.comments.Post(ctx, f.other.ID, task.ID, "let me in")
	assert.True(t, apperrors.IsForbidden(err))

	c, err := f.comments.Post(ctx, f.emp.ID, task.ID, strings.Repeat("x", models.MaxCommentLength))
	require.NoError(t, err)
	assert.False(t, c.IsSystemMessage)
}

func TestListCommentsOldestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, task := comprasTask(t, f)

	_, err := f.comments.Post(ctx, f.emp.ID, task.ID, "first")
	require.NoError(t, err)
	f.advance(time.Second)
	_, err = f.comments.Post(ctx, f.manager.ID, task.ID, "second")
	require.NoError(t, err)

	thread, err := f.comments.List(ctx, f.manager.ID, task.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "first", thread[0].Text)
	assert.Equal(t, "second", thread[1].Text)

	_, err = f.comments.List(ctx, f.other.ID, task.ID)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestDeleteCommentAuthority(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	team, task := comprasTask(t, f)
	_, err := f.teams.AddMember(ctx, f.manager.ID, team.ID, f.other.ID)
	require.NoError(t, err)

	c, err := f.comments.Post(ctx, f.emp.ID, task.ID, "typo")
	require.NoError(t, err)

	_, err = f.comments.Delete(ctx, f.other.ID, c.ID)
	assert.True(t, apperrors.IsForbidden(err), "fellow member")

	_, err = f.comments.Delete(ctx, f.manager.ID, c.ID)
	require.NoError(t, err, "team manager")

	_, err = f.comments.Delete(ctx, f.manager.ID, c.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUnreadTracking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, task := comprasTask(t, f)

	_, err := f.comments.Post(ctx, f.manager.ID, task.ID, "please check")
	require.NoError(t, err)
	_, err = f.comments.Post(ctx, f.emp.ID, task.ID, "on it")
	require.NoError(t, err)

	n, err := f.comments.UnreadCount(ctx, f.emp.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "own comments never count")

	_, err = f.comments.MarkRead(ctx, f.emp.ID, task.ID)
	require.NoError(t, err)
	n, err = f.comments.UnreadCount(ctx, f.emp.ID, task.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	// Marking twice is harmless.
	_, err = f.comments.MarkRead(ctx, f.emp.ID, task.ID)
	require.NoError(t, err)

	f.advance(time.Minute)
	_, _, err = f.tasks.UpdateStatus(ctx, f.manager.ID, task.ID, models.StatusInProgress)
	require.NoError(t, err)
	n, err = f.comments.UnreadCount(ctx, f.emp.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "system notes by others count")

	n, err = f.comments.UnreadCount(ctx, f.manager.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "no watermark: everything not authored by the reader")

	var marks int64
	require.NoError(t, f.db.Model(&models.CommentRead{}).Count(&marks).Error)
	assert.Equal(t, int64(1), marks)
}

func TestCommentFeedReceivesCommittedEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, task := comprasTask(t, f)

	events, cancel := f.feed.Subscribe(task.ID)
	defer cancel()

	c, err := f.comments.Post(ctx, f.emp.ID, task.ID, "hello")
	require.NoError(t, err)
	_, err = f.comments.Delete(ctx, f.emp.ID, c.ID)
	require.NoError(t, err)

	// Rejected posts publish nothing.
	_, err = f.comments.Post(ctx, f.other.ID, task.ID, "nope")
	require.Error(t, err)

	ev := <-events
	assert.Equal(t, EventCommentCreated, ev.Type)
	assert.Equal(t, c.ID, ev.Comment.ID)
	ev = <-events
	assert.Equal(t, EventCommentDeleted, ev.Type)
	assert.Empty(t, events)
}

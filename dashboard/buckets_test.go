package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/apperrors"
	"taskhub/models"
)

var (
	now = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	day = models.NewDayWindow(now)
)

func ptr(v uint) *uint { return &v }

func due(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func created(minutesAgo int) time.Time {
	return now.Add(-time.Duration(minutesAgo) * time.Minute)
}

func TestClassifyPrecedence(t *testing.T) {
	tests := []struct {
		name string
		task models.Task
		want Bucket
	}{
		{"completed beats overdue", models.Task{Status: models.StatusCompleted, DueDate: due(-48 * time.Hour)}, BucketCompleted},
		{"completed beats due today", models.Task{Status: models.StatusCompleted, DueDate: due(time.Hour)}, BucketCompleted},
		{"overdue beats pending", models.Task{Status: models.StatusPending, DueDate: due(-24 * time.Hour)}, BucketOverdue},
		{"overdue beats due today", models.Task{Status: models.StatusInProgress, DueDate: due(-time.Hour)}, BucketOverdue},
		{"due later today", models.Task{Status: models.StatusPending, DueDate: due(time.Hour)}, BucketDueToday},
		{"due next week", models.Task{Status: models.StatusPending, DueDate: due(7 * 24 * time.Hour)}, BucketPending},
		{"no due date", models.Task{Status: models.StatusInProgress}, BucketPending},
		{"cancelled without due date", models.Task{Status: models.StatusCancelled}, BucketPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(&tt.task, day))
		})
	}
}

func TestCalendarDueDates(t *testing.T) {
	tests := []struct {
		token string
		want  Bucket
	}{
		{"2025-03-14", BucketDueToday},
		{"2025-03-13", BucketOverdue},
		{"2025-03-15", BucketPending},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			d, err := models.ParseDueDate(tt.token, time.UTC)
			require.NoError(t, err)
			task := &models.Task{Status: models.StatusPending, DueDate: d}
			assert.Equal(t, tt.want, Classify(task, day))
		})
	}
}

func TestOverdueTaskNeverPending(t *testing.T) {
	task := &models.Task{ID: 1, AssigneeID: 1, Status: models.StatusPending, DueDate: due(-24 * time.Hour)}

	b := Partition([]*models.Task{task}, day)
	assert.Equal(t, []*models.Task{task}, b.Overdue)
	assert.Empty(t, b.Pending)
}

func TestEmployeeBucketsPartitionExactlyOnce(t *testing.T) {
	user := &models.User{ID: 1, Role: models.RoleEmployee}
	tasks := []*models.Task{
		{ID: 1, AssigneeID: 1, Status: models.StatusPending, CreatedAt: created(10)},
		{ID: 2, AssigneeID: 1, Status: models.StatusCompleted, DueDate: due(-time.Hour), CreatedAt: created(20)},
		{ID: 3, AssigneeID: 1, Status: models.StatusPending, DueDate: due(-30 * time.Hour), CreatedAt: created(30)},
		{ID: 4, AssigneeID: 1, Status: models.StatusInProgress, DueDate: due(3 * time.Hour), CreatedAt: created(40)},
		{ID: 5, AssigneeID: 1, Status: models.StatusCancelled, CreatedAt: created(50)},
		{ID: 6, AssigneeID: 2, Status: models.StatusPending, CreatedAt: created(60)},
	}

	b := Employee(user, tasks, day)
	assert.Equal(t, 5, b.Total(), "only the user's tasks, none dropped")

	seen := map[uint]int{}
	for _, bucket := range [][]*models.Task{b.Pending, b.DueToday, b.Overdue, b.Completed} {
		for _, task := range bucket {
			seen[task.ID]++
		}
	}
	for id := uint(1); id <= 5; id++ {
		assert.Equal(t, 1, seen[id], "task %d", id)
	}
	assert.Zero(t, seen[6])

	assert.Equal(t, Counts{Pending: 2, DueToday: 1, Overdue: 1, Completed: 1}, b.Counts())
}

func TestBucketsOrderedMostRecentFirst(t *testing.T) {
	same := created(5)
	tasks := []*models.Task{
		{ID: 1, AssigneeID: 1, CreatedAt: created(30)},
		{ID: 2, AssigneeID: 1, CreatedAt: same},
		{ID: 3, AssigneeID: 1, CreatedAt: same},
		{ID: 4, AssigneeID: 1, CreatedAt: created(1)},
	}

	b := Partition(tasks, day)
	var ids []uint
	for _, task := range b.Pending {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []uint{4, 3, 2, 1}, ids)
	assert.Equal(t, uint(1), tasks[0].ID, "input is not reordered")
}

func TestPartitionEmptyBucketsAreNonNil(t *testing.T) {
	b := Partition(nil, day)
	assert.NotNil(t, b.Pending)
	assert.NotNil(t, b.DueToday)
	assert.NotNil(t, b.Overdue)
	assert.NotNil(t, b.Completed)
}

func TestTeamBuckets(t *testing.T) {
	team := models.NewRoster(models.Team{ID: 10, ManagerID: ptr(2)}, 3)
	tasks := []*models.Task{
		{ID: 1, AssigneeID: 3, TeamID: ptr(10), Status: models.StatusPending},
		{ID: 2, AssigneeID: 3, TeamID: ptr(11), Status: models.StatusPending},
		{ID: 3, AssigneeID: 3, Status: models.StatusPending},
	}

	b, err := Team(team, &models.User{ID: 3, Role: models.RoleEmployee}, tasks, day)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Total())

	_, err = Team(team, &models.User{ID: 9, Role: models.RoleManager}, tasks, day)
	assert.True(t, apperrors.IsForbidden(err))
}

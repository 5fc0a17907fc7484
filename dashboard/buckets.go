// Package dashboard classifies tasks into the four dashboard buckets for each
// audience. It works on an already-loaded snapshot and a single DayWindow.
package dashboard

import (
	"sort"

	"taskhub/apperrors"
	"taskhub/models"
	"taskhub/permissions"
)

type Bucket string

const (
	BucketPending   Bucket = "pending"
	BucketDueToday  Bucket = "due_today"
	BucketOverdue   Bucket = "overdue"
	BucketCompleted Bucket = "completed"
)

// Classify places a task in exactly one bucket. Precedence is Completed,
// then Overdue, then DueToday, then Pending.
func Classify(task *models.Task, day models.DayWindow) Bucket {
	switch {
	case task.IsCompleted():
		return BucketCompleted
	case task.IsOverdue(day.Now):
		return BucketOverdue
	case task.IsDueToday(day):
		return BucketDueToday
	default:
		return BucketPending
	}
}

type Buckets struct {
	Pending   []*models.Task `json:"pending"`
	DueToday  []*models.Task `json:"due_today"`
	Overdue   []*models.Task `json:"overdue"`
	Completed []*models.Task `json:"completed"`
}

type Counts struct {
	Pending   int `json:"pending"`
	DueToday  int `json:"due_today"`
	Overdue   int `json:"overdue"`
	Completed int `json:"completed"`
}

func (b Buckets) Counts() Counts {
	return Counts{
		Pending:   len(b.Pending),
		DueToday:  len(b.DueToday),
		Overdue:   len(b.Overdue),
		Completed: len(b.Completed),
	}
}

func (b Buckets) Total() int {
	c := b.Counts()
	return c.Pending + c.DueToday + c.Overdue + c.Completed
}

// Partition buckets tasks, each bucket ordered most recently created first.
func Partition(tasks []*models.Task, day models.DayWindow) Buckets {
	b := Buckets{
		Pending:   []*models.Task{},
		DueToday:  []*models.Task{},
		Overdue:   []*models.Task{},
		Completed: []*models.Task{},
	}
	for _, t := range SortRecentFirst(tasks) {
		switch Classify(t, day) {
		case BucketCompleted:
			b.Completed = append(b.Completed, t)
		case BucketOverdue:
			b.Overdue = append(b.Overdue, t)
		case BucketDueToday:
			b.DueToday = append(b.DueToday, t)
		default:
			b.Pending = append(b.Pending, t)
		}
	}
	return b
}

// SortRecentFirst returns a copy ordered by CreatedAt descending, then ID descending.
func SortRecentFirst(tasks []*models.Task) []*models.Task {
	out := make([]*models.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func assignedTo(tasks []*models.Task, userID uint) []*models.Task {
	var out []*models.Task
	for _, t := range tasks {
		if t.AssigneeID == userID {
			out = append(out, t)
		}
	}
	return out
}

func ofTeam(tasks []*models.Task, teamID uint) []*models.Task {
	var out []*models.Task
	for _, t := range tasks {
		if t.TeamID != nil && *t.TeamID == teamID {
			out = append(out, t)
		}
	}
	return out
}

// Employee buckets the tasks assigned to user.
func Employee(user *models.User, tasks []*models.Task, day models.DayWindow) Buckets {
	return Partition(assignedTo(tasks, user.ID), day)
}

// Team buckets one team's tasks for a requester allowed to see them.
func Team(team *models.Roster, requester *models.User, tasks []*models.Task, day models.DayWindow) (Buckets, error) {
	if !permissions.CanViewTeamTasks(requester, team) {
		return Buckets{}, apperrors.Forbidden("not allowed to view tasks of team %d", team.ID())
	}
	return Partition(ofTeam(tasks, team.ID()), day), nil
}

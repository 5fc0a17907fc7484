package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskhub/config"
	"taskhub/database"
	"taskhub/models"
)

var fixedNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// fixture is a migrated in-memory database with the usual cast of users.
type fixture struct {
	db       *gorm.DB
	users    *UserService
	teams    *TeamService
	tasks    *TaskService
	comments *CommentService
	boards   *DashboardService
	feed     *CommentFeed

	clock time.Time

	admin, manager, emp, other *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		AppEnv:     "production",
		DBDriver:   "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{db: db, feed: NewCommentFeed(), clock: fixedNow}
	f.users = NewUserService(db)
	f.teams = NewTeamService(db)
	f.tasks = NewTaskService(db, f.feed)
	f.comments = NewCommentService(db, f.feed)
	f.boards = NewDashboardService(db, 5)

	clock := func() time.Time { return f.clock }
	f.users.SetClock(clock)
	f.teams.SetClock(clock)
	f.tasks.SetClock(clock)
	f.comments.SetClock(clock)
	f.boards.SetClock(clock)

	f.admin = f.user(t, "admin", models.RoleAdministrator)
	f.manager = f.user(t, "manager", models.RoleManager)
	f.emp = f.user(t, "emp", models.RoleEmployee)
	f.other = f.user(t, "other", models.RoleEmployee)
	return f
}

func (f *fixture) user(t *testing.T, name string, role models.Role) *models.User {
	t.Helper()
	u, err := f.users.Bootstrap(context.Background(), NewUser{
		Username: name, DisplayName: name, Password: "password123", Role: role,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

// compras builds the team "Compras" managed by f.manager with f.emp as member.
func (f *fixture) compras(t *testing.T) *models.Team {
	t.Helper()
	ctx := context.Background()
	team, err := f.teams.CreateTeam(ctx, f.admin.ID, "Compras", "purchasing")
	require.NoError(t, err)
	_, err = f.teams.SetManager(ctx, f.admin.ID, team.ID, f.manager.ID)
	require.NoError(t, err)
	_, err = f.teams.AddMember(ctx, f.manager.ID, team.ID, f.emp.ID)
	require.NoError(t, err)
	return team
}

func uintPtr(v uint) *uint { return &v }

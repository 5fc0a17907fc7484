package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/config"
	"taskhub/database"
	"taskhub/services"
)

func TestSeedDemo(t *testing.T) {
	cfg := &config.Config{
		AppEnv:     "production",
		DBDriver:   "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	defer closeDB(db)

	ctx := context.Background()
	res, err := seedDemo(ctx, db, "password123")
	require.NoError(t, err)
	assert.Len(t, res.Users, 4)
	assert.Len(t, res.Tasks, 4)
	require.NotNil(t, res.Team.ManagerID)

	manager := res.Users[1]
	view, err := services.NewDashboardService(db, 5).Manager(ctx, manager.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Total())
	assert.Len(t, view.Completed, 1)
	assert.GreaterOrEqual(t, len(view.Overdue), 1)

	_, err = seedDemo(ctx, db, "password123")
	assert.Error(t, err, "usernames are taken")
}

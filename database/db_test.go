package database

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskhub/config"
	"taskhub/models"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	cfg := &config.Config{
		AppEnv:     "production",
		DBDriver:   "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
	conn, err := Open(cfg)
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, RunMigrations(conn))
	require.NoError(t, RunMigrations(conn), "migrations must be re-runnable")

	for _, table := range []any{&models.User{}, &models.Team{}, &models.TeamMember{}, &models.Task{}, &models.Comment{}, &models.CommentRead{}} {
		assert.True(t, conn.Migrator().HasTable(table))
	}
	assert.True(t, conn.Migrator().HasIndex(&models.Task{}, "idx_tasks_status_due"))
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	first := models.Team{Name: "Compras", NameKey: models.TeamNameKey("Compras"), IsActive: true}
	require.NoError(t, conn.Create(&first).Error)
	dup := models.Team{Name: "COMPRAS", NameKey: models.TeamNameKey("COMPRAS"), IsActive: true}
	assert.ErrorIs(t, conn.Create(&dup).Error, gorm.ErrDuplicatedKey)
}

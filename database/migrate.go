// database/migrate.go - Database migration runner
package database

import (
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskhub/models"
)

// RunMigrations creates or updates every table and the secondary indexes.
func RunMigrations(db *gorm.DB) error {
	log.Info("running database migrations")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Task{},
		&models.Comment{},
		&models.CommentRead{},
	); err != nil {
		return err
	}

	if err := createIndexes(db); err != nil {
		return err
	}

	log.Info("database migrations completed")
	return nil
}

var indexes = []string{
	// Dashboard bucket queries
	"CREATE INDEX IF NOT EXISTS idx_tasks_assignee_created ON tasks(assignee_id, created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_tasks_team_status ON tasks(team_id, status)",
	"CREATE INDEX IF NOT EXISTS idx_tasks_status_due ON tasks(status, due_date)",

	// Comment thread and unread counts
	"CREATE INDEX IF NOT EXISTS idx_comments_task_created ON comments(task_id, created_at)",

	"CREATE INDEX IF NOT EXISTS idx_teams_manager_active ON teams(manager_id, is_active)",
}

func createIndexes(db *gorm.DB) error {
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

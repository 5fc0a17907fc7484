package main

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"taskhub/models"
	"taskhub/services"
	"taskhub/tasks"
)

var seedPassword string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo fixture",
	Long: `Creates an administrator, a manager and two employees, the team
"Compras" managed by the manager with both employees as members, and a few
tasks covering every dashboard bucket. All accounts share --password.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		res, err := seedDemo(cmd.Context(), db, seedPassword)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded team %q (id %d) with %d tasks\n", res.Team.Name, res.Team.ID, len(res.Tasks))
		for _, u := range res.Users {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %s\n", u.Role, u.Username)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPassword, "password", "password123", "password for every demo account")
}

type seedResult struct {
	Users []*models.User
	Team  *models.Team
	Tasks []*models.Task
}

func seedDemo(ctx context.Context, db *gorm.DB, password string) (*seedResult, error) {
	users := services.NewUserService(db)
	teams := services.NewTeamService(db)
	taskSvc := services.NewTaskService(db, nil)
	comments := services.NewCommentService(db, nil)

	res := &seedResult{}
	accounts := []services.NewUser{
		{Username: "admin", DisplayName: "Ada Admin", Role: models.RoleAdministrator},
		{Username: "marta", DisplayName: "Marta Manager", Role: models.RoleManager},
		{Username: "eva", DisplayName: "Eva Employee", Role: models.RoleEmployee},
		{Username: "luis", DisplayName: "Luis Employee", Role: models.RoleEmployee},
	}
	for _, a := range accounts {
		a.Password = password
		u, err := users.Bootstrap(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", a.Username, err)
		}
		res.Users = append(res.Users, u)
	}
	admin, manager, eva, luis := res.Users[0], res.Users[1], res.Users[2], res.Users[3]

	team, err := teams.CreateTeam(ctx, admin.ID, "Compras", "Purchasing department")
	if err != nil {
		return nil, err
	}
	if team, err = teams.SetManager(ctx, admin.ID, team.ID, manager.ID); err != nil {
		return nil, err
	}
	for _, m := range []*models.User{eva, luis} {
		if _, err := teams.AddMember(ctx, manager.ID, team.ID, m.ID); err != nil {
			return nil, err
		}
	}
	res.Team = team

	now := time.Now().UTC()
	yesterday := now.AddDate(0, 0, -1)
	endOfDay := time.Date(now.Year(), now.Month(), now.Day(), 23, 0, 0, 0, time.UTC)
	nextWeek := now.AddDate(0, 0, 7)
	teamID := team.ID
	demoTasks := []struct {
		assignee *models.User
		draft    tasks.Draft
		status   models.TaskStatus
	}{
		{eva, tasks.Draft{Title: "Request supplier quotes", Priority: models.PriorityHigh, DueDate: &nextWeek}, ""},
		{eva, tasks.Draft{Title: "Approve office chairs order", DueDate: &endOfDay}, models.StatusInProgress},
		{luis, tasks.Draft{Title: "Renew cleaning contract", Priority: models.PriorityUrgent, DueDate: &yesterday}, ""},
		{luis, tasks.Draft{Title: "Archive 2023 invoices", Tags: "archive,finance"}, models.StatusCompleted},
	}
	for _, s := range demoTasks {
		t, err := taskSvc.CreateTask(ctx, manager.ID, services.NewTaskInput{AssigneeID: s.assignee.ID, TeamID: &teamID, Draft: s.draft})
		if err != nil {
			return nil, fmt.Errorf("creating task %q: %w", s.draft.Title, err)
		}
		if s.status != "" {
			if t, _, err = taskSvc.UpdateStatus(ctx, s.assignee.ID, t.ID, s.status); err != nil {
				return nil, err
			}
		}
		res.Tasks = append(res.Tasks, t)
	}
	if _, err := comments.Post(ctx, manager.ID, res.Tasks[0].ID, "Three quotes minimum, please."); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"team": team.ID, "users": len(res.Users), "tasks": len(res.Tasks)}).Info("demo data seeded")
	return res, nil
}

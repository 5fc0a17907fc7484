// services/dashboard_service.go - Role dashboards and team buckets
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"taskhub/apperrors"
	"taskhub/dashboard"
	"taskhub/models"
)

type DashboardService struct {
	base
	topLimit int
}

// NewDashboardService caps administrator rankings at topLimit entries.
func NewDashboardService(db *gorm.DB, topLimit int) *DashboardService {
	return &DashboardService{base: newBase(db), topLimit: topLimit}
}

// RoleDashboard carries exactly one of its views, picked by Role.
type RoleDashboard struct {
	Role     models.Role            `json:"role"`
	Employee *dashboard.Buckets     `json:"employee,omitempty"`
	Manager  *dashboard.ManagerView `json:"manager,omitempty"`
	Admin    *dashboard.AdminView   `json:"admin,omitempty"`
}

// day computes the calendar window once per request. A nil loc means UTC.
func (s *DashboardService) day(loc *time.Location) models.DayWindow {
	if loc == nil {
		loc = time.UTC
	}
	return models.NewDayWindow(s.now().In(loc))
}

func (s *DashboardService) Employee(ctx context.Context, actorID uint, loc *time.Location) (dashboard.Buckets, error) {
	day := s.day(loc)
	var out dashboard.Buckets
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		list, err := loadTasks(tx, "assignee_id = ?", actor.ID)
		if err != nil {
			return err
		}
		out = dashboard.Employee(actor, list, day)
		return nil
	})
	return out, storeErr(err)
}

func (s *DashboardService) Manager(ctx context.Context, actorID uint, loc *time.Location) (dashboard.ManagerView, error) {
	day := s.day(loc)
	var out dashboard.ManagerView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		if !actor.Role.Capabilities().LeadTeams {
			return apperrors.Forbidden("manager dashboard requires the manager role")
		}
		rosters, err := loadRosters(tx, "manager_id = ?", actor.ID)
		if err != nil {
			return err
		}
		var list []*models.Task
		if len(rosters) > 0 {
			ids := make([]uint, len(rosters))
			for i, r := range rosters {
				ids[i] = r.ID()
			}
			if list, err = loadTasks(tx, "team_id IN ?", ids); err != nil {
				return err
			}
		}
		out = dashboard.Manager(actor, rosters, list, day)
		return nil
	})
	return out, storeErr(err)
}

func (s *DashboardService) Administrator(ctx context.Context, actorID uint, loc *time.Location) (dashboard.AdminView, error) {
	day := s.day(loc)
	var out dashboard.AdminView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		if !actor.Role.Capabilities().ViewAllTasks {
			return apperrors.Forbidden("administrator dashboard requires the administrator role")
		}
		var users []*models.User
		if err := tx.Order("id ASC").Find(&users).Error; err != nil {
			return err
		}
		rosters, err := loadRosters(tx)
		if err != nil {
			return err
		}
		list, err := loadTasks(tx)
		if err != nil {
			return err
		}
		out, err = dashboard.Administrator(actor, users, rosters, list, day, s.topLimit)
		return err
	})
	return out, storeErr(err)
}

// Team buckets one team's tasks for a requester allowed to view the team.
func (s *DashboardService) Team(ctx context.Context, actorID, teamID uint, loc *time.Location) (dashboard.Buckets, error) {
	day := s.day(loc)
	var out dashboard.Buckets
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		r, err := loadRoster(tx, teamID)
		if err != nil {
			return err
		}
		list, err := loadTasks(tx, "team_id = ?", teamID)
		if err != nil {
			return err
		}
		out, err = dashboard.Team(r, actor, list, day)
		return err
	})
	return out, storeErr(err)
}

// ForRole picks the dashboard matching the actor's role.
func (s *DashboardService) ForRole(ctx context.Context, actorID uint, loc *time.Location) (*RoleDashboard, error) {
	actor, err := loadActor(s.db.WithContext(ctx), actorID)
	if err != nil {
		return nil, err
	}
	out := &RoleDashboard{Role: actor.Role}
	switch actor.Role {
	case models.RoleAdministrator:
		v, err := s.Administrator(ctx, actorID, loc)
		if err != nil {
			return nil, err
		}
		out.Admin = &v
	case models.RoleManager:
		v, err := s.Manager(ctx, actorID, loc)
		if err != nil {
			return nil, err
		}
		out.Manager = &v
	default:
		v, err := s.Employee(ctx, actorID, loc)
		if err != nil {
			return nil, err
		}
		out.Employee = &v
	}
	return out, nil
}

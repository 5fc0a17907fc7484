// services/team_service.go - Team lifecycle, roster mutation and statistics
package services

import (
	"context"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskhub/apperrors"
	"taskhub/models"
	"taskhub/permissions"
	"taskhub/roster"
)

type TeamService struct {
	base
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{base: newBase(db)}
}

// TeamDetail is a team with its manager and member accounts resolved.
type TeamDetail struct {
	Team    models.Team    `json:"team"`
	Manager *models.User   `json:"manager,omitempty"`
	Members []*models.User `json:"members"`
}

// ================== TEAM LIFECYCLE ==================

// CreateTeam creates an active team with no manager and no members.
func (s *TeamService) CreateTeam(ctx context.Context, actorID uint, name, description string) (*models.Team, error) {
	var team *models.Team
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}

		// Inactive teams keep their name reserved.
		var existing []models.Team
		if err := tx.Where("name_key = ?", models.TeamNameKey(name)).Find(&existing).Error; err != nil {
			return err
		}

		team, err = roster.NewTeam(name, description, actor, existing, s.now())
		if err != nil {
			return err
		}
		// A concurrent create can still win the name between lookup and insert.
		return conflictErr(tx.Create(team).Error, "a team named %q already exists", team.Name)
	})
	if err != nil {
		return nil, storeErr(err)
	}
	log.WithFields(log.Fields{"team": team.ID, "name": team.Name, "by": actorID}).Info("team created")
	return team, nil
}

// GetTeam returns the team to anyone who may view it.
func (s *TeamService) GetTeam(ctx context.Context, actorID, teamID uint) (*TeamDetail, error) {
	var detail *TeamDetail
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		r, err := loadRoster(tx, teamID)
		if err != nil {
			return err
		}
		if !permissions.CanViewTeam(actor, r) {
			return apperrors.Forbidden("not allowed to view team %d", teamID)
		}

		detail = &TeamDetail{Team: r.Team, Members: []*models.User{}}
		if ids := r.MemberIDs(); len(ids) > 0 {
			if err := tx.Where("id IN ?", ids).Order("id ASC").Find(&detail.Members).Error; err != nil {
				return err
			}
		}
		if r.Team.ManagerID != nil {
			detail.Manager, err = loadUser(tx, *r.Team.ManagerID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return detail, nil
}

// SetActive soft-deletes or restores a team. Task links are left in place.
func (s *TeamService) SetActive(ctx context.Context, actorID, teamID uint, active bool) (*models.Team, error) {
	var team *models.Team
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		r, err := loadRoster(tx, teamID)
		if err != nil {
			return err
		}
		changed, err = roster.SetActive(r, active, actor, s.now())
		if err != nil {
			return err
		}
		team = &r.Team
		if !changed {
			return nil
		}
		return tx.Model(&models.Team{}).Where("id = ?", teamID).
			Updates(map[string]interface{}{"is_active": active, "updated_at": r.Team.UpdatedAt}).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}
	if changed {
		log.WithFields(log.Fields{"team": teamID, "active": active, "by": actorID}).Info("team active flag changed")
	}
	return team, nil
}

// SetManager appoints a Manager or Administrator as the team's manager.
func (s *TeamService) SetManager(ctx context.Context, actorID, teamID, managerID uint) (*models.Team, error) {
	var team *models.Team
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		r, err := loadRoster(tx, teamID)
		if err != nil {
			return err
		}
		candidate, err := loadUser(tx, managerID)
		if err != nil {
			return err
		}
		changed, err = roster.SetManager(r, candidate, actor, s.now())
		if err != nil {
			return err
		}
		team = &r.Team
		if !changed {
			return nil
		}
		return tx.Model(&models.Team{}).Where("id = ?", teamID).
			Updates(map[string]interface{}{"manager_id": managerID, "updated_at": r.Team.UpdatedAt}).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}
	if changed {
		log.WithFields(log.Fields{"team": teamID, "manager": managerID, "by": actorID}).Info("team manager set")
	}
	return team, nil
}

// ================== TEAM MEMBERSHIP ==================

// AddMember reports whether the user was newly added.
func (s *TeamService) AddMember(ctx context.Context, actorID, teamID, userID uint) (bool, error) {
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		r, err := loadRoster(tx, teamID)
		if err != nil {
			return err
		}
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		changed, err = roster.AddMember(r, user, actor)
		if err != nil || !changed {
			return err
		}
		return tx.Create(&models.TeamMember{TeamID: teamID, UserID: userID, JoinedAt: s.now()}).Error
	})
	if err != nil {
		return false, storeErr(err)
	}
	if changed {
		log.WithFields(log.Fields{"team": teamID, "user": userID, "by": actorID}).Info("member added")
	}
	return changed, nil
}

// RemoveMember reports whether the user was a member.
func (s *TeamService) RemoveMember(ctx context.Context, actorID, teamID, userID uint) (bool, error) {
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		r, err := loadRoster(tx, teamID)
		if err != nil {
			return err
		}
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		changed, err = roster.RemoveMember(r, user, actor)
		if err != nil || !changed {
			return err
		}
		return tx.Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&models.TeamMember{}).Error
	})
	if err != nil {
		return false, storeErr(err)
	}
	if changed {
		log.WithFields(log.Fields{"team": teamID, "user": userID, "by": actorID}).Info("member removed")
	}
	return changed, nil
}

// UserTeams lists the teams userID belongs to.
func (s *TeamService) UserTeams(ctx context.Context, userID uint) ([]models.Team, error) {
	var teams []models.Team
	err := s.db.WithContext(ctx).
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Order("teams.id ASC").
		Find(&teams).Error
	return teams, storeErr(err)
}

// ================== TEAM STATISTICS ==================

// Stats returns member and task counts for a team the actor may view.
func (s *TeamService) Stats(ctx context.Context, actorID, teamID uint) (roster.Stats, error) {
	var stats roster.Stats
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		r, err := loadRoster(tx, teamID)
		if err != nil {
			return err
		}
		if !permissions.CanViewTeam(actor, r) {
			return apperrors.Forbidden("not allowed to view team %d", teamID)
		}
		tasks, err := loadTasks(tx, "team_id = ?", teamID)
		if err != nil {
			return err
		}
		stats, err = roster.ComputeStats(r, actor, tasks)
		return err
	})
	if err != nil {
		return roster.Stats{}, storeErr(err)
	}
	return stats, nil
}

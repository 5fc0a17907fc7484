// Package roster holds the team mutation rules and team statistics. Every
// function works on a snapshot and returns what changed; persisting the
// change inside one transaction is the caller's job.
package roster

import (
	"strings"
	"time"
	"unicode/utf8"

	"taskhub/apperrors"
	"taskhub/models"
	"taskhub/permissions"
)

// NewTeam validates and builds a team. existing holds every team, active or
// not, whose folded name might collide with name.
func NewTeam(name, description string, creator *models.User, existing []models.Team, now time.Time) (*models.Team, error) {
	if !permissions.CanCreateTeam(creator) {
		return nil, apperrors.Forbidden("only administrators can create teams")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("team name is required")
	}
	if utf8.RuneCountInString(name) > models.MaxTeamNameLength {
		return nil, apperrors.Validation("team name must be at most %d characters", models.MaxTeamNameLength)
	}
	key := models.TeamNameKey(name)
	for _, t := range existing {
		if t.NameKey == key || models.TeamNameKey(t.Name) == key {
			return nil, apperrors.Validation("a team named %q already exists", t.Name)
		}
	}

	creatorID := creator.ID
	return &models.Team{
		Name:        name,
		NameKey:     key,
		Description: strings.TrimSpace(description),
		IsActive:    true,
		CreatedByID: &creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// AddMember is idempotent: adding a current member reports no change.
func AddMember(team *models.Roster, user, requester *models.User) (bool, error) {
	if !permissions.CanManageTeam(requester, team) {
		return false, apperrors.Forbidden("not allowed to manage members of team %d", team.ID())
	}
	if user == nil {
		return false, apperrors.Validation("user is required")
	}
	return team.Add(user.ID), nil
}

// RemoveMember is idempotent: removing a non-member reports no change.
func RemoveMember(team *models.Roster, user, requester *models.User) (bool, error) {
	if !permissions.CanManageTeam(requester, team) {
		return false, apperrors.Forbidden("not allowed to manage members of team %d", team.ID())
	}
	if user == nil {
		return false, apperrors.Validation("user is required")
	}
	return team.Remove(user.ID), nil
}

// SetManager appoints newManager. Only administrators may appoint, and only
// Manager or Administrator users may be appointed. The manager is not added
// to the member set.
func SetManager(team *models.Roster, newManager, requester *models.User, now time.Time) (bool, error) {
	if !permissions.CanAdministerTeams(requester) {
		return false, apperrors.Forbidden("only administrators can appoint team managers")
	}
	if !permissions.CanLeadTeam(newManager) {
		return false, apperrors.Validation("team manager must be Manager or Administrator")
	}
	if team.IsManagedBy(newManager.ID) {
		return false, nil
	}
	id := newManager.ID
	team.Team.ManagerID = &id
	team.Team.UpdatedAt = now
	return true, nil
}

// SetActive toggles the soft-delete flag. Task links to the team are kept.
func SetActive(team *models.Roster, active bool, requester *models.User, now time.Time) (bool, error) {
	if !permissions.CanAdministerTeams(requester) {
		return false, apperrors.Forbidden("only administrators can activate or deactivate teams")
	}
	if team.Team.IsActive == active {
		return false, nil
	}
	team.Team.IsActive = active
	team.Team.UpdatedAt = now
	return true, nil
}

type Stats struct {
	TeamID         uint `json:"team_id"`
	MemberCount    int  `json:"member_count"`
	TotalTasks     int  `json:"total_tasks"`
	PendingTasks   int  `json:"pending_tasks"`
	CompletedTasks int  `json:"completed_tasks"`
}

// ComputeStats counts the team's tasks. Pending here is anything not Completed.
func ComputeStats(team *models.Roster, requester *models.User, tasks []*models.Task) (Stats, error) {
	if !permissions.CanViewTeam(requester, team) {
		return Stats{}, apperrors.Forbidden("not allowed to view team %d", team.ID())
	}
	s := Stats{TeamID: team.ID(), MemberCount: team.MemberCount()}
	for _, t := range tasks {
		if t.TeamID == nil || *t.TeamID != team.ID() {
			continue
		}
		s.TotalTasks++
		if t.IsCompleted() {
			s.CompletedTasks++
		} else {
			s.PendingTasks++
		}
	}
	return s, nil
}

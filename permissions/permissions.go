// Package permissions answers "may this actor see, edit or assign that task
// or team". Every predicate is pure: it reads only the snapshot it is given
// and never fails. Callers turn a false into apperrors.Forbidden.
package permissions

import "taskhub/models"

// teamOf returns team only when it is the roster of task's assigned team.
func teamOf(task *models.Task, team *models.Roster) *models.Roster {
	if task == nil || task.TeamID == nil || team == nil || team.ID() != *task.TeamID {
		return nil
	}
	return team
}

func isAssignee(actor *models.User, task *models.Task) bool {
	return task.AssigneeID == actor.ID
}

func isCreator(actor *models.User, task *models.Task) bool {
	return task.CreatorID != nil && *task.CreatorID == actor.ID
}

// CanViewTask: assignee, administrator, or member or manager of the task's team.
// team is the roster of the task's team, or nil when it has none.
func CanViewTask(actor *models.User, task *models.Task, team *models.Roster) bool {
	if actor == nil || task == nil {
		return false
	}
	if isAssignee(actor, task) || actor.Role.Capabilities().ViewAllTasks {
		return true
	}
	t := teamOf(task, team)
	return t.HasMember(actor.ID) || t.IsManagedBy(actor.ID)
}

// CanEditTask: assignee, administrator, manager of the task's team, or creator.
// Team membership alone grants view rights only.
func CanEditTask(actor *models.User, task *models.Task, team *models.Roster) bool {
	if actor == nil || task == nil {
		return false
	}
	if isAssignee(actor, task) || actor.IsAdministrator() || isCreator(actor, task) {
		return true
	}
	return teamOf(task, team).IsManagedBy(actor.ID)
}

func CanCommentOnTask(actor *models.User, task *models.Task, team *models.Roster) bool {
	return CanViewTask(actor, task, team)
}

// CanDeleteComment: comment author, administrator, or manager of the team of
// the comment's task.
func CanDeleteComment(actor *models.User, comment *models.Comment, task *models.Task, team *models.Roster) bool {
	if actor == nil || comment == nil {
		return false
	}
	if comment.AuthorID == actor.ID || actor.IsAdministrator() {
		return true
	}
	if task == nil || task.ID != comment.TaskID {
		return false
	}
	return teamOf(task, team).IsManagedBy(actor.ID)
}

// CanManageTeam: administrator or exactly the team's manager.
func CanManageTeam(actor *models.User, team *models.Roster) bool {
	if actor == nil || team == nil {
		return false
	}
	return actor.Role.Capabilities().ManageTeams || team.IsManagedBy(actor.ID)
}

func CanViewTeam(actor *models.User, team *models.Roster) bool {
	return CanManageTeam(actor, team) || (actor != nil && team.HasMember(actor.ID))
}

// CanViewTeamTasks gates the per-team dashboard; it follows CanViewTeam.
func CanViewTeamTasks(actor *models.User, team *models.Roster) bool {
	return CanViewTeam(actor, team)
}

// CanCreateTeam requires the team-management capability, which the Manager
// role does not carry.
func CanCreateTeam(actor *models.User) bool {
	return actor != nil && actor.Role.Capabilities().ManageTeams
}

// CanAdministerTeams covers appointing managers and activating or deactivating teams.
func CanAdministerTeams(actor *models.User) bool {
	return actor != nil && actor.Role.Capabilities().ManageTeams
}

// CanLeadTeam reports whether candidate may be appointed a team's manager.
func CanLeadTeam(candidate *models.User) bool {
	return candidate != nil && candidate.Role.Capabilities().LeadTeams
}

// CanAssignTaskToTeam: administrator, the team's manager, or any member.
func CanAssignTaskToTeam(actor *models.User, team *models.Roster) bool {
	if actor == nil || team == nil {
		return false
	}
	return CanManageTeam(actor, team) || team.HasMember(actor.ID)
}

// CanViewUserTasks: self, administrator, or manager of some team subject belongs to.
func CanViewUserTasks(actor, subject *models.User, rosters []*models.Roster) bool {
	if actor == nil || subject == nil {
		return false
	}
	if actor.ID == subject.ID || actor.Role.Capabilities().ViewAllTasks {
		return true
	}
	for _, r := range models.ManagedBy(rosters, actor.ID) {
		if r.HasMember(subject.ID) {
			return true
		}
	}
	return false
}

func CanManageUsers(actor *models.User) bool {
	return actor != nil && actor.Role.Capabilities().ManageUsers
}

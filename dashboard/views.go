// dashboard/views.go - Manager and administrator aggregates
package dashboard

import (
	"sort"

	"taskhub/apperrors"
	"taskhub/models"
	"taskhub/permissions"
)

type TeamSummary struct {
	TeamID         uint   `json:"team_id"`
	Name           string `json:"name"`
	MemberCount    int    `json:"member_count"`
	ActiveTasks    int    `json:"active_tasks"`
	CompletedTasks int    `json:"completed_tasks"`
}

type ManagerView struct {
	Buckets
	Teams []TeamSummary `json:"teams"`
}

// Manager unions the buckets of every team the manager manages. A task
// belongs to at most one team, so nothing is counted twice.
func Manager(manager *models.User, rosters []*models.Roster, tasks []*models.Task, day models.DayWindow) ManagerView {
	managed := models.ManagedBy(rosters, manager.ID)
	sort.Slice(managed, func(i, j int) bool { return managed[i].ID() < managed[j].ID() })

	view := ManagerView{Teams: []TeamSummary{}}
	var visible []*models.Task
	for _, r := range managed {
		if !permissions.CanViewTeamTasks(manager, r) {
			continue
		}
		teamTasks := ofTeam(tasks, r.ID())
		visible = append(visible, teamTasks...)

		summary := TeamSummary{TeamID: r.ID(), Name: r.Team.Name, MemberCount: r.MemberCount()}
		for _, t := range teamTasks {
			if t.IsActive() {
				summary.ActiveTasks++
			}
			if t.IsCompleted() {
				summary.CompletedTasks++
			}
		}
		view.Teams = append(view.Teams, summary)
	}
	view.Buckets = Partition(visible, day)
	return view
}

type Performer struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Completed int    `json:"completed"`
}

type AdminView struct {
	Buckets
	UsersByRole   map[models.Role]int `json:"users_by_role"`
	ActiveTeams   int                 `json:"active_teams"`
	InactiveTeams int                 `json:"inactive_teams"`
	TopUsers      []Performer         `json:"top_users"`
	TopTeams      []Performer         `json:"top_teams"`
}

// Administrator is the global view over every task. limit caps the
// performer rankings; zero or less means no cap.
func Administrator(actor *models.User, users []*models.User, rosters []*models.Roster, tasks []*models.Task, day models.DayWindow, limit int) (AdminView, error) {
	if actor == nil || !actor.Role.Capabilities().ViewAllTasks {
		return AdminView{}, apperrors.Forbidden("administrator dashboard requires the administrator role")
	}

	view := AdminView{
		Buckets:     Partition(tasks, day),
		UsersByRole: map[models.Role]int{models.RoleEmployee: 0, models.RoleManager: 0, models.RoleAdministrator: 0},
	}
	for _, u := range users {
		view.UsersByRole[u.Role]++
	}
	for _, r := range rosters {
		if r.Team.IsActive {
			view.ActiveTeams++
		} else {
			view.InactiveTeams++
		}
	}

	byUser := map[uint]int{}
	byTeam := map[uint]int{}
	for _, t := range tasks {
		if !t.IsCompleted() {
			continue
		}
		byUser[t.AssigneeID]++
		if t.TeamID != nil {
			byTeam[*t.TeamID]++
		}
	}

	view.TopUsers = make([]Performer, 0, len(users))
	for _, u := range users {
		name := u.DisplayName
		if name == "" {
			name = u.Username
		}
		view.TopUsers = append(view.TopUsers, Performer{ID: u.ID, Name: name, Completed: byUser[u.ID]})
	}
	view.TopTeams = make([]Performer, 0, len(rosters))
	for _, r := range rosters {
		view.TopTeams = append(view.TopTeams, Performer{ID: r.ID(), Name: r.Team.Name, Completed: byTeam[r.ID()]})
	}
	view.TopUsers = rank(view.TopUsers, limit)
	view.TopTeams = rank(view.TopTeams, limit)
	return view, nil
}

// rank orders by completed count descending, ties by id ascending.
func rank(ps []Performer, limit int) []Performer {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Completed != ps[j].Completed {
			return ps[i].Completed > ps[j].Completed
		}
		return ps[i].ID < ps[j].ID
	})
	if limit > 0 && len(ps) > limit {
		ps = ps[:limit]
	}
	return ps
}

// models/team.go
package models

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

const MaxTeamNameLength = 100

type Team struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;size:100"`
	NameKey     string    `json:"-" gorm:"not null;size:100;uniqueIndex"`
	Description string    `json:"description" gorm:"type:text"`
	IsActive    bool      `json:"is_active" gorm:"not null;index"`
	ManagerID   *uint     `json:"manager_id" gorm:"index"`
	CreatedByID *uint     `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Team) TableName() string {
	return "teams"
}

// TeamMember is one (team, user) membership pair.
type TeamMember struct {
	TeamID   uint      `json:"team_id" gorm:"primaryKey"`
	UserID   uint      `json:"user_id" gorm:"primaryKey;index"`
	JoinedAt time.Time `json:"joined_at" gorm:"not null"`
}

func (TeamMember) TableName() string {
	return "team_members"
}

// TeamNameKey folds a team name for case-insensitive uniqueness ("Direção" == "direção").
func TeamNameKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Roster is a team together with its member set, as read in one snapshot.
// The manager is tracked on the team and need not be in the member set.
type Roster struct {
	Team    Team
	members map[uint]struct{}
}

func NewRoster(team Team, memberIDs ...uint) *Roster {
	r := &Roster{Team: team, members: make(map[uint]struct{}, len(memberIDs))}
	for _, id := range memberIDs {
		r.members[id] = struct{}{}
	}
	return r
}

func (r *Roster) ID() uint {
	return r.Team.ID
}

func (r *Roster) HasMember(userID uint) bool {
	if r == nil {
		return false
	}
	_, ok := r.members[userID]
	return ok
}

// IsManagedBy reports whether userID is exactly the team's manager.
func (r *Roster) IsManagedBy(userID uint) bool {
	return r != nil && r.Team.ManagerID != nil && *r.Team.ManagerID == userID
}

func (r *Roster) MemberCount() int {
	return len(r.members)
}

// MemberIDs returns member ids in ascending order.
func (r *Roster) MemberIDs() []uint {
	ids := make([]uint, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Add inserts userID and reports whether the set changed.
func (r *Roster) Add(userID uint) bool {
	if r.HasMember(userID) {
		return false
	}
	r.members[userID] = struct{}{}
	return true
}

// Remove deletes userID and reports whether the set changed.
func (r *Roster) Remove(userID uint) bool {
	if !r.HasMember(userID) {
		return false
	}
	delete(r.members, userID)
	return true
}

// TeamsOf returns the rosters userID belongs to, derived from the same
// membership pairs so the user side never drifts from the team side.
func TeamsOf(rosters []*Roster, userID uint) []*Roster {
	var out []*Roster
	for _, r := range rosters {
		if r.HasMember(userID) {
			out = append(out, r)
		}
	}
	return out
}

// ManagedBy returns the rosters whose manager is userID.
func ManagedBy(rosters []*Roster, userID uint) []*Roster {
	var out []*Roster
	for _, r := range rosters {
		if r.IsManagedBy(userID) {
			out = append(out, r)
		}
	}
	return out
}

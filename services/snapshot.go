// services/snapshot.go - Loading consistent snapshots for the pure engines
package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"taskhub/apperrors"
	"taskhub/models"
)

// base is shared by every service: a connection and a clock.
type base struct {
	db  *gorm.DB
	now func() time.Time
}

func newBase(db *gorm.DB) base {
	return base{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// SetClock replaces the clock, for tests and fixtures.
func (b *base) SetClock(now func() time.Time) {
	b.now = now
}

// storeErr passes typed errors through and wraps everything else as Internal.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Internal(err)
}

func lookupErr(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(entity, id)
	}
	return storeErr(err)
}

// conflictErr turns a unique-index violation into a Validation error.
func conflictErr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Validation(format, args...)
	}
	return err
}

func loadUser(tx *gorm.DB, id uint) (*models.User, error) {
	var u models.User
	if err := tx.First(&u, id).Error; err != nil {
		return nil, lookupErr(err, "user", id)
	}
	return &u, nil
}

// loadActor loads the acting user; a deactivated account may not act.
func loadActor(tx *gorm.DB, id uint) (*models.User, error) {
	u, err := loadUser(tx, id)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, apperrors.Forbidden("account %d is deactivated", id)
	}
	return u, nil
}

func loadTask(tx *gorm.DB, id uint) (*models.Task, error) {
	var t models.Task
	if err := tx.First(&t, id).Error; err != nil {
		return nil, lookupErr(err, "task", id)
	}
	return &t, nil
}

func loadComment(tx *gorm.DB, id uint) (*models.Comment, error) {
	var c models.Comment
	if err := tx.First(&c, id).Error; err != nil {
		return nil, lookupErr(err, "comment", id)
	}
	return &c, nil
}

func memberIDs(tx *gorm.DB, teamID uint) ([]uint, error) {
	var ids []uint
	err := tx.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Pluck("user_id", &ids).Error
	return ids, storeErr(err)
}

func loadRoster(tx *gorm.DB, teamID uint) (*models.Roster, error) {
	var team models.Team
	if err := tx.First(&team, teamID).Error; err != nil {
		return nil, lookupErr(err, "team", teamID)
	}
	ids, err := memberIDs(tx, teamID)
	if err != nil {
		return nil, err
	}
	return models.NewRoster(team, ids...), nil
}

// loadTaskTeam returns the roster of the task's team, or nil when it has none.
func loadTaskTeam(tx *gorm.DB, task *models.Task) (*models.Roster, error) {
	if task.TeamID == nil {
		return nil, nil
	}
	return loadRoster(tx, *task.TeamID)
}

// loadRosters loads every team matching the optional condition, with members.
func loadRosters(tx *gorm.DB, conds ...any) ([]*models.Roster, error) {
	var teams []models.Team
	q := tx.Order("id ASC")
	if len(conds) > 0 {
		q = q.Where(conds[0], conds[1:]...)
	}
	if err := q.Find(&teams).Error; err != nil {
		return nil, storeErr(err)
	}
	if len(teams) == 0 {
		return nil, nil
	}

	ids := make([]uint, len(teams))
	for i, t := range teams {
		ids[i] = t.ID
	}
	var pairs []models.TeamMember
	if err := tx.Where("team_id IN ?", ids).Find(&pairs).Error; err != nil {
		return nil, storeErr(err)
	}
	members := make(map[uint][]uint, len(teams))
	for _, p := range pairs {
		members[p.TeamID] = append(members[p.TeamID], p.UserID)
	}

	out := make([]*models.Roster, len(teams))
	for i, t := range teams {
		out[i] = models.NewRoster(t, members[t.ID]...)
	}
	return out, nil
}

func loadTasks(tx *gorm.DB, conds ...any) ([]*models.Task, error) {
	var tasks []*models.Task
	q := tx.Order("created_at DESC, id DESC")
	if len(conds) > 0 {
		q = q.Where(conds[0], conds[1:]...)
	}
	if err := q.Find(&tasks).Error; err != nil {
		return nil, storeErr(err)
	}
	return tasks, nil
}

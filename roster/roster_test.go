package roster

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/apperrors"
	"taskhub/models"
)

var now = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func ptr(v uint) *uint { return &v }

var (
	admin    = &models.User{ID: 1, Role: models.RoleAdministrator}
	manager  = &models.User{ID: 2, Role: models.RoleManager}
	employee = &models.User{ID: 3, Role: models.RoleEmployee}
	other    = &models.User{ID: 4, Role: models.RoleEmployee}
)

func TestNewTeam(t *testing.T) {
	team, err := NewTeam("  Compras ", "buying", admin, nil, now)
	require.NoError(t, err)
	assert.Equal(t, "Compras", team.Name)
	assert.Equal(t, models.TeamNameKey("compras"), team.NameKey)
	assert.True(t, team.IsActive)
	assert.Equal(t, admin.ID, *team.CreatedByID)
	assert.Nil(t, team.ManagerID)
}

func TestNewTeamRejectsNonAdministrators(t *testing.T) {
	_, err := NewTeam("Unique", "", employee, nil, now)
	assert.True(t, apperrors.IsForbidden(err))

	_, err = NewTeam("Unique", "", manager, nil, now)
	assert.True(t, apperrors.IsForbidden(err), "manager role does not carry team creation")
}

func TestNewTeamDuplicateNameCaseInsensitive(t *testing.T) {
	first, err := NewTeam("Direção", "", admin, nil, now)
	require.NoError(t, err)

	inactive := *first
	inactive.IsActive = false

	_, err = NewTeam("direção", "", admin, []models.Team{inactive}, now)
	assert.True(t, apperrors.IsValidation(err))
}

func TestNewTeamValidatesName(t *testing.T) {
	_, err := NewTeam("   ", "", admin, nil, now)
	assert.True(t, apperrors.IsValidation(err))

	_, err = NewTeam(strings.Repeat("x", models.MaxTeamNameLength+1), "", admin, nil, now)
	assert.True(t, apperrors.IsValidation(err))
}

func TestAddThenRemoveRestoresMembership(t *testing.T) {
	team := models.NewRoster(models.Team{ID: 10, ManagerID: ptr(manager.ID)}, 3)
	before := team.MemberIDs()

	changed, err := AddMember(team, other, manager)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = RemoveMember(team, other, manager)
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, before, team.MemberIDs())
}

func TestMembershipIsIdempotent(t *testing.T) {
	team := models.NewRoster(models.Team{ID: 10}, 3)

	changed, err := AddMember(team, employee, admin)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = RemoveMember(team, other, admin)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, []uint{3}, team.MemberIDs())
}

func TestMembershipRequiresManageRights(t *testing.T) {
	team := models.NewRoster(models.Team{ID: 10, ManagerID: ptr(manager.ID)}, 3)

	_, err := AddMember(team, other, employee)
	assert.True(t, apperrors.IsForbidden(err), "members cannot add members")

	_, err = RemoveMember(team, employee, &models.User{ID: 9, Role: models.RoleManager})
	assert.True(t, apperrors.IsForbidden(err))
	assert.True(t, team.HasMember(3))
}

func TestSetManager(t *testing.T) {
	team := models.NewRoster(models.Team{ID: 10}, 3)

	changed, err := SetManager(team, manager, admin, now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, team.IsManagedBy(manager.ID))
	assert.False(t, team.HasMember(manager.ID))

	changed, err = SetManager(team, manager, admin, now)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSetManagerRejectsEmployee(t *testing.T) {
	team := models.NewRoster(models.Team{ID: 10})

	_, err := SetManager(team, employee, admin, now)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "must be Manager or Administrator")
	assert.Nil(t, team.Team.ManagerID)
}

func TestSetManagerRequiresAdministrator(t *testing.T) {
	team := models.NewRoster(models.Team{ID: 10, ManagerID: ptr(manager.ID)})

	_, err := SetManager(team, &models.User{ID: 8, Role: models.RoleManager}, manager, now)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestSetActive(t *testing.T) {
	team := models.NewRoster(models.Team{ID: 10, IsActive: true, ManagerID: ptr(manager.ID)})

	_, err := SetActive(team, false, manager, now)
	assert.True(t, apperrors.IsForbidden(err), "managers cannot deactivate")

	changed, err := SetActive(team, false, admin, now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, team.Team.IsActive)

	changed, err = SetActive(team, false, admin, now)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestComputeStats(t *testing.T) {
	team := models.NewRoster(models.Team{ID: 10, ManagerID: ptr(manager.ID)}, 3, 4)
	tasks := []*models.Task{
		{ID: 1, TeamID: ptr(10), Status: models.StatusPending},
		{ID: 2, TeamID: ptr(10), Status: models.StatusCompleted},
		{ID: 3, TeamID: ptr(10), Status: models.StatusCancelled},
		{ID: 4, TeamID: ptr(11), Status: models.StatusCompleted},
		{ID: 5, Status: models.StatusPending},
	}

	stats, err := ComputeStats(team, employee, tasks)
	require.NoError(t, err)
	assert.Equal(t, Stats{TeamID: 10, MemberCount: 2, TotalTasks: 3, PendingTasks: 2, CompletedTasks: 1}, stats)

	_, err = ComputeStats(team, &models.User{ID: 9, Role: models.RoleEmployee}, tasks)
	assert.True(t, apperrors.IsForbidden(err))
}

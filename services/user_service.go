// services/user_service.go - Accounts, roles and credential verification
package services

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskhub/apperrors"
	"taskhub/models"
	"taskhub/permissions"
)

const MinPasswordLength = 8

type UserService struct {
	base
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{base: newBase(db)}
}

type NewUser struct {
	Username    string
	DisplayName string
	Password    string
	Role        models.Role
}

// HashPassword is the only place the hashing scheme is chosen.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Authenticate verifies credentials. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Unauthorized("invalid username or password")
	}
	if err != nil {
		return nil, storeErr(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.Unauthorized("invalid username or password")
	}
	if !u.IsActive {
		return nil, apperrors.Unauthorized("account is deactivated")
	}
	return &u, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return loadUser(s.db.WithContext(ctx), id)
}

// Create adds an account on behalf of an administrator.
func (s *UserService) Create(ctx context.Context, actorID uint, in NewUser) (*models.User, error) {
	var created *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		if !permissions.CanManageUsers(actor) {
			return apperrors.Forbidden("only administrators can create users")
		}
		created, err = createUser(tx, in)
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}
	log.WithFields(log.Fields{"user": created.ID, "role": created.Role, "by": actorID}).Info("user created")
	return created, nil
}

// Bootstrap creates an account with no acting user. It backs the admin CLI
// and fixtures, never an HTTP route.
func (s *UserService) Bootstrap(ctx context.Context, in NewUser) (*models.User, error) {
	var created *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = createUser(tx, in)
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}
	log.WithFields(log.Fields{"user": created.ID, "role": created.Role}).Info("user bootstrapped")
	return created, nil
}

func createUser(tx *gorm.DB, in NewUser) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || len(username) > 50 {
		return nil, apperrors.Validation("username must be 1 to 50 characters")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperrors.Validation("password must be at least %d characters", MinPasswordLength)
	}
	if !in.Role.Valid() {
		return nil, apperrors.Validation("invalid role %q", in.Role)
	}

	var count int64
	if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, storeErr(err)
	}
	if count > 0 {
		return nil, apperrors.Validation("username %q is already taken", username)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	display := strings.TrimSpace(in.DisplayName)
	if display == "" {
		display = username
	}
	u := &models.User{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  display,
		Role:         in.Role,
		IsActive:     true,
	}
	if err := tx.Create(u).Error; err != nil {
		return nil, storeErr(conflictErr(err, "username %q is already taken", username))
	}
	return u, nil
}

// ChangeRole is an administrator action. Administrators cannot demote
// themselves, and a user still managing teams cannot drop to Employee.
func (s *UserService) ChangeRole(ctx context.Context, actorID, userID uint, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, apperrors.Validation("invalid role %q", role)
	}
	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		if !permissions.CanManageUsers(actor) {
			return apperrors.Forbidden("only administrators can change roles")
		}
		user, err = loadUser(tx, userID)
		if err != nil {
			return err
		}
		if user.Role == role {
			return nil
		}
		if user.ID == actor.ID && !role.Capabilities().ManageUsers {
			return apperrors.Validation("administrators cannot demote themselves")
		}
		if !role.Capabilities().LeadTeams {
			var managed int64
			if err := tx.Model(&models.Team{}).Where("manager_id = ?", user.ID).Count(&managed).Error; err != nil {
				return err
			}
			if managed > 0 {
				return apperrors.Validation("user %d still manages %d team(s); appoint another manager first", user.ID, managed)
			}
		}
		user.Role = role
		return tx.Model(user).Update("role", role).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}
	log.WithFields(log.Fields{"user": userID, "role": role, "by": actorID}).Info("role changed")
	return user, nil
}

// SetActive deactivates or reactivates an account.
func (s *UserService) SetActive(ctx context.Context, actorID, userID uint, active bool) (*models.User, error) {
	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		actor, err := loadActor(tx, actorID)
		if err != nil {
			return err
		}
		if !permissions.CanManageUsers(actor) {
			return apperrors.Forbidden("only administrators can activate or deactivate users")
		}
		if actor.ID == userID && !active {
			return apperrors.Validation("administrators cannot deactivate themselves")
		}
		user, err = loadUser(tx, userID)
		if err != nil {
			return err
		}
		user.IsActive = active
		return tx.Model(user).Update("is_active", active).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}
	log.WithFields(log.Fields{"user": userID, "active": active, "by": actorID}).Info("user active flag changed")
	return user, nil
}

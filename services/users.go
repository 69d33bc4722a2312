package services

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/taskdesk/backend/models"
)

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmployeeNotFound   = errors.New("employee not found")
)

// UserService is the credential store: account provisioning, password
// verification, promotion and employee listings.
type UserService struct {
	db   *gorm.DB
	nats *nats.Conn
}

// NewUserService creates a user service. A nil NATS connection disables
// event publishing (tests, seed tool).
func NewUserService(db *gorm.DB, nc *nats.Conn) *UserService {
	return &UserService{db: db, nats: nc}
}

// Create provisions an account with a freshly issued badge. The badge is
// computed and the row inserted in one transaction; a badge collision with
// a concurrent signup retries with a recomputed badge.
func (s *UserService) Create(ctx context.Context, username, password string, role models.Role) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxBadgeAttempts; attempt++ {
		user := models.User{
			Username:     username,
			PasswordHash: string(hashed),
			Role:         role,
		}
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			badge, err := nextBadge(tx)
			if err != nil {
				return err
			}
			user.EmployeeID = &badge
			return tx.Create(&user).Error
		})
		if err == nil {
			return &user, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}

		// Duplicate key: a taken username loses outright, a badge
		// collision gets another attempt.
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("username = ?", username).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrUsernameTaken
		}
	}

	return nil, ErrBadgeConflict
}

// Verify checks a username/password pair. Unknown username and wrong
// password both return ErrInvalidCredentials so callers cannot enumerate
// usernames.
func (s *UserService) Verify(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// GetByID returns the user with the given internal id, or nil if absent.
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Promote makes the user with the given badge an admin. Promoting an admin
// again is a no-op success; there is no demotion.
func (s *UserService) Promote(ctx context.Context, badge string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("employee_id = ?", badge).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	if user.Role == models.RoleAdmin {
		return &user, nil
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("role", models.RoleAdmin).Error; err != nil {
		return nil, err
	}

	publishEvent(s.nats, SubjectUserPromoted, map[string]interface{}{
		"employeeId": badge,
		"username":   user.Username,
	})
	return &user, nil
}

// ListEmployees returns every employee account in id order. Password hashes
// never serialize. withTasks preloads each employee's task list for the
// admin dashboard.
func (s *UserService) ListEmployees(ctx context.Context, withTasks bool) ([]models.User, error) {
	q := s.db.WithContext(ctx).Where("role = ?", models.RoleEmployee).Order("id")
	if withTasks {
		q = q.Preload("Tasks")
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// SeedAdmin ensures a bootstrap admin exists. The seeded admin predates
// badge issuance and carries none.
func (s *UserService) SeedAdmin(ctx context.Context, username, password string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         models.RoleAdmin,
	}
	return s.db.WithContext(ctx).Create(&admin).Error
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/smartserve/models"
	"github.com/yeremiapane/smartserve/utils"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("unable to log in with provided credentials")

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token  string       `json:"token"`
	Expiry time.Time    `json:"expiry"`
	User   *models.User `json:"user"`
}

// AuthService issues and checks login tokens. A token is a signed JWT whose
// jti is stored server side as a SHA-256 digest together with an expiry. The
// expiry slides forward on use, at most once per RefreshInterval.
type AuthService struct {
	DB              *gorm.DB
	TTL             time.Duration
	RefreshInterval time.Duration
	Now             func() time.Time
}

func NewAuthService(db *gorm.DB, ttl, refreshInterval time.Duration) *AuthService {
	return &AuthService{
		DB:              db,
		TTL:             ttl,
		RefreshInterval: refreshInterval,
		Now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) Login(ctx context.Context, employeeID, password string) (*LoginResult, error) {
	db := s.DB.WithContext(ctx)
	var u models.User
	if err := db.Where("employee_id = ?", employeeID).First(&u).Error; err != nil {
		if IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive || !utils.VerifyPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}

	now := s.Now()
	tokenID := uuid.NewString()
	signed, err := utils.GenerateToken(u.ID, tokenID, now)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	record := models.AuthToken{
		Digest:          utils.HashSHA256([]byte(tokenID)),
		UserID:          u.ID,
		Expiry:          now.Add(s.TTL),
		LastRefreshedAt: now,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		u.LastLogin = &now
		return tx.Model(&u).Update("last_login", now).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("User %s logged in", u.EmployeeID)
	return &LoginResult{Token: signed, Expiry: record.Expiry, User: &u}, nil
}

// Authenticate resolves a bearer token into its user and token record.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, *models.AuthToken, error) {
	claims, err := utils.ParseToken(token)
	if err != nil {
		return nil, nil, utils.ErrInvalidToken
	}
	db := s.DB.WithContext(ctx)

	var record models.AuthToken
	err = db.Preload("User").Where("digest = ?", utils.HashSHA256([]byte(claims.ID))).First(&record).Error
	if err != nil {
		if IsNotFound(err) {
			return nil, nil, utils.ErrInvalidToken
		}
		return nil, nil, err
	}
	if record.UserID != claims.UserID || record.User == nil {
		return nil, nil, utils.ErrInvalidToken
	}

	now := s.Now()
	if !now.Before(record.Expiry) {
		if err := db.Delete(&record).Error; err != nil {
			utils.ErrorLogger.Printf("Delete expired token %d: %v", record.ID, err)
		}
		return nil, nil, utils.ErrInvalidToken
	}
	if !record.User.IsActive {
		return nil, nil, utils.ErrInvalidToken
	}

	if now.Sub(record.LastRefreshedAt) >= s.RefreshInterval {
		record.Expiry = now.Add(s.TTL)
		record.LastRefreshedAt = now
		err := db.Model(&models.AuthToken{}).Where("id = ?", record.ID).
			Updates(map[string]interface{}{"expiry": record.Expiry, "last_refreshed_at": now}).Error
		if err != nil {
			return nil, nil, err
		}
	}
	return record.User, &record, nil
}

// Logout revokes one token.
func (s *AuthService) Logout(ctx context.Context, tokenID uint) error {
	return s.DB.WithContext(ctx).Delete(&models.AuthToken{}, tokenID).Error
}

// LogoutAll revokes every token of the user and returns how many were removed.
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) (int64, error) {
	res := s.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.AuthToken{})
	return res.RowsAffected, res.Error
}

// PurgeExpired deletes tokens whose expiry has passed.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).Where("expiry <= ?", s.Now()).Delete(&models.AuthToken{})
	return res.RowsAffected, res.Error
}

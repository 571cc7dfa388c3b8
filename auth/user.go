package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/KOMKZ/cpipeline/database"
)

// User account
type User struct {
	ID             uint   `gorm:"primaryKey"`
	Email          string `gorm:"size:255;uniqueIndex;not null"`
	HashedPassword string `gorm:"size:255;not null"`
	FullName       string `gorm:"size:255"`
	IsActive       bool   `gorm:"not null"`
	IsSuperuser    bool   `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (User) TableName() string {
	return "users"
}

// UserRepository persists users on the primary database
type UserRepository struct {
	*database.BaseRepository[User]
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{BaseRepository: database.NewBaseRepository[User](db)}
}

// AutoMigrate creates or updates the users table
func (r *UserRepository) AutoMigrate(ctx context.Context) error {
	return r.DB().WithContext(ctx).AutoMigrate(&User{})
}

// FindByEmail matches the address case-insensitively
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	user, err := r.FindOne(ctx, "LOWER(email) = ?", normalizeEmail(email))
	if errors.Is(err, database.ErrRecordNotFound) {
		return nil, ErrUserNotFound.Wrap(err)
	}
	return user, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package domain

import (
	"context"
	"errors"
	"time"
)

// 仓储层哨兵错误：gorm/driver 细节不出 repo 包
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(32)" json:"id"`
	Name         string    `gorm:"size:64;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Mobile       string    `gorm:"size:10" json:"mobile,omitempty"`
	Role         string    `gorm:"size:16;not null;default:user" json:"role"` // "user"/"admin"
	IsActive     bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, search string, offset, limit int) ([]User, int64, error)
	Update(ctx context.Context, u *User) error
	SetActive(ctx context.Context, id string, active bool) error
}

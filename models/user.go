package models

import (
	"time"
)

type UserRole string

const (
	RoleAdmin UserRole = "admin"
)

type User struct {
	ID        string    `json:"id" gorm:"primarykey;type:varchar(36)"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	Role      UserRole  `json:"role" gorm:"default:'admin'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "admin_users" }
